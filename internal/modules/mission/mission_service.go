package mission

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"convoyage-platform/internal/models"
	emailSvc "convoyage-platform/pkg/email"
)

// DocumentStoreInterface is the object store slice the mission module
// needs for driver uploads.
type DocumentStoreInterface interface {
	Upload(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// UserDirectoryInterface resolves user IDs, used to validate driver
// assignments and address notification emails.
type UserDirectoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// ServiceInterface defines the contract for the mission service.
type ServiceInterface interface {
	GetMission(ctx context.Context, missionID, userID, role string) (*models.Mission, error)
	ListMissions(ctx context.Context, userID, role, status string, page, limit int) ([]*models.Mission, int, error)
	AssignDriver(ctx context.Context, missionID, driverID string) (*models.Mission, error)
	UpdateStatus(ctx context.Context, missionID, userID, role, newStatus string) (*models.Mission, error)
	UploadDocument(ctx context.Context, missionID, uploaderID, role, kind, fileName, contentType string, body io.Reader, size int64) (*models.MissionDocument, error)
	ListDocuments(ctx context.Context, missionID, userID, role string) ([]models.MissionDocument, error)
}

// legalTransitions maps a mission status to the statuses it may move to.
var legalTransitions = map[string][]string{
	models.MissionStatusPending:    {models.MissionStatusAssigned, models.MissionStatusCancelled},
	models.MissionStatusAssigned:   {models.MissionStatusInProgress, models.MissionStatusCancelled},
	models.MissionStatusInProgress: {models.MissionStatusDelivered, models.MissionStatusCancelled},
	models.MissionStatusDelivered:  {models.MissionStatusCompleted},
}

// driverTransitions is the subset a driver may perform on their own
// mission; everything else requires an admin.
var driverTransitions = map[string]string{
	models.MissionStatusAssigned:   models.MissionStatusInProgress,
	models.MissionStatusInProgress: models.MissionStatusDelivered,
}

func transitionAllowed(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Service implements the mission business logic.
type Service struct {
	repo            RepositoryInterface
	users           UserDirectoryInterface
	documents       DocumentStoreInterface
	emailer         emailSvc.ServiceInterface
	templateManager *emailSvc.TemplateManager
	clientOrigin    string
}

// NewService creates a new mission service.
func NewService(
	repo RepositoryInterface,
	users UserDirectoryInterface,
	documents DocumentStoreInterface,
	emailer emailSvc.ServiceInterface,
	tm *emailSvc.TemplateManager,
	clientOrigin string,
) *Service {
	return &Service{
		repo:            repo,
		users:           users,
		documents:       documents,
		emailer:         emailer,
		templateManager: tm,
		clientOrigin:    clientOrigin,
	}
}

// canSee reports whether a user may read a mission.
func canSee(m *models.Mission, userID, role string) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleDriver:
		return m.DriverID.Valid && m.DriverID.String == userID
	default:
		return m.ClientID == userID
	}
}

// GetMission retrieves a single mission, scoped to the caller's role.
func (s *Service) GetMission(ctx context.Context, missionID, userID, role string) (*models.Mission, error) {
	m, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.GetMission: %w", err)
	}
	if !canSee(m, userID, role) {
		return nil, models.ErrNotFound // avoid leaking other users' missions
	}
	return m, nil
}

// ListMissions lists missions scoped to the caller's role: admins see
// everything, drivers their assignments, clients their own missions.
func (s *Service) ListMissions(ctx context.Context, userID, role, status string, page, limit int) ([]*models.Mission, int, error) {
	switch role {
	case models.RoleAdmin:
		return s.repo.ListAll(ctx, status, page, limit)
	case models.RoleDriver:
		return s.repo.ListByDriver(ctx, userID, page, limit)
	default:
		return s.repo.ListByClient(ctx, userID, page, limit)
	}
}

// AssignDriver attaches a driver to a mission (admin). Reassignment is
// allowed until the driver starts the mission.
func (s *Service) AssignDriver(ctx context.Context, missionID, driverID string) (*models.Mission, error) {
	driver, err := s.users.FindByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.AssignDriver: %w", err)
	}
	if driver.Role != models.RoleDriver {
		return nil, fmt.Errorf("service.AssignDriver: user %s is not a driver: %w", driverID, models.ErrForbidden)
	}

	if err := s.repo.AssignDriver(ctx, missionID, driverID); err != nil {
		return nil, fmt.Errorf("service.AssignDriver: %w", err)
	}

	m, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.AssignDriver.Reload: %w", err)
	}

	s.sendAssignmentEmail(driver, m)
	return m, nil
}

// sendAssignmentEmail notifies the driver asynchronously; a failed
// email never fails the assignment.
func (s *Service) sendAssignmentEmail(driver *models.User, m *models.Mission) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}

	link := fmt.Sprintf("%s/missions/%s", s.clientOrigin, m.ID)
	htmlContent, err := s.templateManager.GenerateMissionAssignedEmailHTML(emailSvc.TemplateData{
		Name:      driver.Name,
		Link:      link,
		Reference: m.QuoteNumber,
		Detail:    fmt.Sprintf("%s → %s", m.PickupAddress, m.DeliveryAddress),
	})
	if err != nil {
		log.Printf("Failed to generate mission assignment email HTML: %v", err)
		return
	}

	subject := fmt.Sprintf("Nouvelle mission %s", m.QuoteNumber)
	plainText := fmt.Sprintf("A new mission has been assigned to you: %s to %s, pickup on %s. Details: %s",
		m.PickupAddress, m.DeliveryAddress, m.PickupAt.Format("02/01/2006 15:04"), link)

	go func() {
		if err := s.emailer.SendEmail(context.Background(), driver.Email, subject, plainText, htmlContent); err != nil {
			log.Printf("Failed to send mission assignment email to %s: %v", driver.Email, err)
		}
	}()
}

// UpdateStatus advances a mission through its lifecycle. Drivers may
// only start and deliver their own missions; admins may perform any
// legal transition.
func (s *Service) UpdateStatus(ctx context.Context, missionID, userID, role, newStatus string) (*models.Mission, error) {
	m, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateMissionStatus: %w", err)
	}

	switch role {
	case models.RoleAdmin:
		// fall through to the transition check
	case models.RoleDriver:
		if !m.DriverID.Valid || m.DriverID.String != userID {
			return nil, models.ErrNotFound
		}
		if driverTransitions[m.Status] != newStatus {
			return nil, fmt.Errorf("service.UpdateMissionStatus: driver %s -> %s: %w", m.Status, newStatus, models.ErrInvalidTransition)
		}
	default:
		return nil, models.ErrForbidden
	}

	if !transitionAllowed(m.Status, newStatus) {
		return nil, fmt.Errorf("service.UpdateMissionStatus: %s -> %s: %w", m.Status, newStatus, models.ErrInvalidTransition)
	}

	if err := s.repo.UpdateStatus(ctx, missionID, newStatus); err != nil {
		return nil, fmt.Errorf("service.UpdateMissionStatus: %w", err)
	}

	m.Status = newStatus
	m.UpdatedAt = time.Now()
	return m, nil
}

// UploadDocument stores a driver-uploaded file in the object store and
// records its metadata. Only the assigned driver or an admin may attach
// documents, and only once the mission has been assigned.
func (s *Service) UploadDocument(ctx context.Context, missionID, uploaderID, role, kind, fileName, contentType string, body io.Reader, size int64) (*models.MissionDocument, error) {
	m, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.UploadDocument: %w", err)
	}

	if role != models.RoleAdmin {
		if role != models.RoleDriver || !m.DriverID.Valid || m.DriverID.String != uploaderID {
			return nil, models.ErrForbidden
		}
	}
	if m.Status == models.MissionStatusPending || m.Status == models.MissionStatusCancelled {
		return nil, fmt.Errorf("service.UploadDocument: mission is %s: %w", m.Status, models.ErrInvalidTransition)
	}

	objectKey := fmt.Sprintf("missions/%s/%d%s", missionID, time.Now().UnixNano(), path.Ext(fileName))
	if err := s.documents.Upload(ctx, objectKey, contentType, body, size); err != nil {
		return nil, fmt.Errorf("service.UploadDocument.Store: %w", err)
	}

	doc, err := s.repo.AddDocument(ctx, &models.MissionDocument{
		MissionID:   missionID,
		UploaderID:  uploaderID,
		Kind:        kind,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
		ObjectKey:   objectKey,
	})
	if err != nil {
		return nil, fmt.Errorf("service.UploadDocument: %w", err)
	}
	return doc, nil
}

// ListDocuments returns a mission's documents with short-lived download
// URLs.
func (s *Service) ListDocuments(ctx context.Context, missionID, userID, role string) ([]models.MissionDocument, error) {
	m, err := s.repo.FindByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.ListDocuments: %w", err)
	}
	if !canSee(m, userID, role) {
		return nil, models.ErrNotFound
	}

	docs, err := s.repo.ListDocuments(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("service.ListDocuments: %w", err)
	}

	for i := range docs {
		url, err := s.documents.PresignedURL(ctx, docs[i].ObjectKey, 15*time.Minute)
		if err != nil {
			log.Printf("Failed to presign document %s: %v", docs[i].ID, err)
			continue
		}
		docs[i].URL = url
	}
	return docs, nil
}
