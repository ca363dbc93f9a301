package mission

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"testing"
	"time"

	"convoyage-platform/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMissionRepo struct {
	missions map[string]*models.Mission
	docs     map[string][]models.MissionDocument
}

func newFakeMissionRepo() *fakeMissionRepo {
	return &fakeMissionRepo{
		missions: make(map[string]*models.Mission),
		docs:     make(map[string][]models.MissionDocument),
	}
}

func (r *fakeMissionRepo) add(clientID, status string) *models.Mission {
	m := &models.Mission{
		ID:          uuid.NewString(),
		QuoteID:     uuid.NewString(),
		QuoteNumber: "DEV-000042",
		ClientID:    clientID,
		Status:      status,
	}
	r.missions[m.ID] = m
	return m
}

func (r *fakeMissionRepo) FindByID(ctx context.Context, missionID string) (*models.Mission, error) {
	m, ok := r.missions[missionID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMissionRepo) ListByClient(ctx context.Context, clientID string, page, limit int) ([]*models.Mission, int, error) {
	var out []*models.Mission
	for _, m := range r.missions {
		if m.ClientID == clientID {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

func (r *fakeMissionRepo) ListByDriver(ctx context.Context, driverID string, page, limit int) ([]*models.Mission, int, error) {
	var out []*models.Mission
	for _, m := range r.missions {
		if m.DriverID.Valid && m.DriverID.String == driverID {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

func (r *fakeMissionRepo) ListAll(ctx context.Context, status string, page, limit int) ([]*models.Mission, int, error) {
	var out []*models.Mission
	for _, m := range r.missions {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	return out, len(out), nil
}

func (r *fakeMissionRepo) AssignDriver(ctx context.Context, missionID, driverID string) error {
	m, ok := r.missions[missionID]
	if !ok || (m.Status != models.MissionStatusPending && m.Status != models.MissionStatusAssigned) {
		return models.ErrNotFound
	}
	m.DriverID = sql.NullString{String: driverID, Valid: true}
	m.Status = models.MissionStatusAssigned
	return nil
}

func (r *fakeMissionRepo) UpdateStatus(ctx context.Context, missionID, status string) error {
	m, ok := r.missions[missionID]
	if !ok {
		return models.ErrNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMissionRepo) AddDocument(ctx context.Context, doc *models.MissionDocument) (*models.MissionDocument, error) {
	stored := *doc
	stored.ID = uuid.NewString()
	stored.UploadedAt = time.Now()
	r.docs[doc.MissionID] = append(r.docs[doc.MissionID], stored)
	return &stored, nil
}

func (r *fakeMissionRepo) ListDocuments(ctx context.Context, missionID string) ([]models.MissionDocument, error) {
	return r.docs[missionID], nil
}

type fakeUserDir struct {
	users map[string]*models.User
}

func (d *fakeUserDir) FindByID(ctx context.Context, userID string) (*models.User, error) {
	u, ok := d.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

type fakeDocStore struct {
	objects map[string][]byte
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{objects: make(map[string][]byte)}
}

func (s *fakeDocStore) Upload(ctx context.Context, objectKey, contentType string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[objectKey] = data
	return nil
}

func (s *fakeDocStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if _, ok := s.objects[objectKey]; !ok {
		return "", fmt.Errorf("unknown object %s", objectKey)
	}
	return "https://store.example.test/" + objectKey, nil
}

func newMissionService(repo RepositoryInterface, users UserDirectoryInterface, docs DocumentStoreInterface) *Service {
	return NewService(repo, users, docs, nil, nil, "https://app.example.test")
}

func driverDirectory() *fakeUserDir {
	return &fakeUserDir{users: map[string]*models.User{
		"driver-1": {ID: "driver-1", Name: "Paul", Email: "paul@example.test", Role: models.RoleDriver},
		"client-1": {ID: "client-1", Name: "Jean", Email: "jean@example.test", Role: models.RoleClient},
	}}
}

func TestAssignDriver(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	m := repo.add("client-1", models.MissionStatusPending)

	assigned, err := svc.AssignDriver(context.Background(), m.ID, "driver-1")
	require.NoError(t, err)
	assert.Equal(t, models.MissionStatusAssigned, assigned.Status)
	require.True(t, assigned.DriverID.Valid)
	assert.Equal(t, "driver-1", assigned.DriverID.String)
}

func TestAssignDriverRejectsNonDrivers(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	m := repo.add("client-1", models.MissionStatusPending)

	_, err := svc.AssignDriver(context.Background(), m.ID, "client-1")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.AssignDriver(context.Background(), m.ID, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssignDriverOnlyBeforeStart(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	m := repo.add("client-1", models.MissionStatusInProgress)

	_, err := svc.AssignDriver(context.Background(), m.ID, "driver-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDriverStatusTransitions(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	ctx := context.Background()

	m := repo.add("client-1", models.MissionStatusPending)
	_, err := svc.AssignDriver(ctx, m.ID, "driver-1")
	require.NoError(t, err)

	// A driver cannot skip straight to delivered.
	_, err = svc.UpdateStatus(ctx, m.ID, "driver-1", models.RoleDriver, models.MissionStatusDelivered)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	updated, err := svc.UpdateStatus(ctx, m.ID, "driver-1", models.RoleDriver, models.MissionStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.MissionStatusInProgress, updated.Status)

	updated, err = svc.UpdateStatus(ctx, m.ID, "driver-1", models.RoleDriver, models.MissionStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.MissionStatusDelivered, updated.Status)

	// Closing out a delivered mission is an admin action.
	_, err = svc.UpdateStatus(ctx, m.ID, "driver-1", models.RoleDriver, models.MissionStatusCompleted)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = svc.UpdateStatus(ctx, m.ID, "admin-1", models.RoleAdmin, models.MissionStatusCompleted)
	require.NoError(t, err)
}

func TestDriverCannotTouchOthersMissions(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	ctx := context.Background()

	m := repo.add("client-1", models.MissionStatusAssigned)
	m2 := repo.missions[m.ID]
	m2.DriverID = sql.NullString{String: "driver-9", Valid: true}

	_, err := svc.UpdateStatus(ctx, m.ID, "driver-1", models.RoleDriver, models.MissionStatusInProgress)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClientCannotChangeStatus(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	m := repo.add("client-1", models.MissionStatusPending)

	_, err := svc.UpdateStatus(context.Background(), m.ID, "client-1", models.RoleClient, models.MissionStatusCancelled)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestAdminIllegalTransition(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	m := repo.add("client-1", models.MissionStatusCompleted)

	_, err := svc.UpdateStatus(context.Background(), m.ID, "admin-1", models.RoleAdmin, models.MissionStatusInProgress)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestUploadDocument(t *testing.T) {
	repo := newFakeMissionRepo()
	store := newFakeDocStore()
	svc := newMissionService(repo, driverDirectory(), store)
	ctx := context.Background()

	m := repo.add("client-1", models.MissionStatusPending)
	_, err := svc.AssignDriver(ctx, m.ID, "driver-1")
	require.NoError(t, err)

	content := []byte("%PDF-1.4 cmr")
	doc, err := svc.UploadDocument(ctx, m.ID, "driver-1", models.RoleDriver,
		"cmr", "cmr.pdf", "application/pdf", bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, "cmr", doc.Kind)
	assert.Len(t, store.objects, 1)

	docs, err := svc.ListDocuments(ctx, m.ID, "client-1", models.RoleClient)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].URL, "https://store.example.test/")
}

func TestUploadDocumentPermissions(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	ctx := context.Background()

	m := repo.add("client-1", models.MissionStatusPending)
	body := bytes.NewReader([]byte("x"))

	// Pending mission: even the admin cannot attach documents yet.
	_, err := svc.UploadDocument(ctx, m.ID, "admin-1", models.RoleAdmin, "photo", "a.jpg", "image/jpeg", body, 1)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.AssignDriver(ctx, m.ID, "driver-1")
	require.NoError(t, err)

	// Another driver cannot upload.
	_, err = svc.UploadDocument(ctx, m.ID, "driver-9", models.RoleDriver, "photo", "a.jpg", "image/jpeg", body, 1)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// Clients cannot upload at all.
	_, err = svc.UploadDocument(ctx, m.ID, "client-1", models.RoleClient, "photo", "a.jpg", "image/jpeg", body, 1)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestListMissionsScopedByRole(t *testing.T) {
	repo := newFakeMissionRepo()
	svc := newMissionService(repo, driverDirectory(), newFakeDocStore())
	ctx := context.Background()

	m1 := repo.add("client-1", models.MissionStatusPending)
	repo.add("client-2", models.MissionStatusPending)
	_, err := svc.AssignDriver(ctx, m1.ID, "driver-1")
	require.NoError(t, err)

	mine, total, err := svc.ListMissions(ctx, "client-1", models.RoleClient, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, m1.ID, mine[0].ID)

	driven, total, err := svc.ListMissions(ctx, "driver-1", models.RoleDriver, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, m1.ID, driven[0].ID)

	_, total, err = svc.ListMissions(ctx, "admin-1", models.RoleAdmin, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
