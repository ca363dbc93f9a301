package mission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"convoyage-platform/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RepositoryInterface defines the contract for mission persistence.
type RepositoryInterface interface {
	FindByID(ctx context.Context, missionID string) (*models.Mission, error)
	ListByClient(ctx context.Context, clientID string, page, limit int) ([]*models.Mission, int, error)
	ListByDriver(ctx context.Context, driverID string, page, limit int) ([]*models.Mission, int, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]*models.Mission, int, error)
	AssignDriver(ctx context.Context, missionID, driverID string) error
	UpdateStatus(ctx context.Context, missionID, status string) error
	AddDocument(ctx context.Context, doc *models.MissionDocument) (*models.MissionDocument, error)
	ListDocuments(ctx context.Context, missionID string) ([]models.MissionDocument, error)
}

// Repository implements the RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new mission repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const missionColumns = `m.id, m.quote_id, q.quote_number, m.client_id, m.driver_id, m.status,
		m.pickup_address, m.delivery_address, m.distance_km, m.vehicles,
		m.total_ht::text, m.total_ttc::text, m.pickup_at, m.delivery_at, m.created_at, m.updated_at`

const missionFrom = ` FROM missions m JOIN quotes q ON q.id = m.quote_id`

// scanMission is a helper to scan a row into a Mission model.
func (r *Repository) scanMission(row pgx.Row) (*models.Mission, error) {
	var m models.Mission
	var vehicles []byte
	var totalHT, totalTTC string

	err := row.Scan(
		&m.ID,
		&m.QuoteID,
		&m.QuoteNumber,
		&m.ClientID,
		&m.DriverID,
		&m.Status,
		&m.PickupAddress,
		&m.DeliveryAddress,
		&m.DistanceKm,
		&vehicles,
		&totalHT,
		&totalTTC,
		&m.PickupAt,
		&m.DeliveryAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan mission: %w", err)
	}

	if err := json.Unmarshal(vehicles, &m.Vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode mission vehicles: %w", err)
	}
	if m.TotalHT, err = decimal.NewFromString(totalHT); err != nil {
		return nil, fmt.Errorf("failed to decode stored price %q: %w", totalHT, err)
	}
	if m.TotalTTC, err = decimal.NewFromString(totalTTC); err != nil {
		return nil, fmt.Errorf("failed to decode stored price %q: %w", totalTTC, err)
	}
	return &m, nil
}

// FindByID retrieves a single mission by its ID.
func (r *Repository) FindByID(ctx context.Context, missionID string) (*models.Mission, error) {
	query := `SELECT ` + missionColumns + missionFrom + ` WHERE m.id = $1`
	m, err := r.scanMission(r.db.QueryRow(ctx, query, missionID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindMissionByID: %w", err)
	}
	return m, nil
}

func (r *Repository) list(ctx context.Context, where string, countWhere string, args []interface{}, page, limit int) ([]*models.Mission, int, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + missionColumns + missionFrom + where +
		fmt.Sprintf(` ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListMissions.Query: %w", err)
	}
	defer rows.Close()

	var missions []*models.Mission
	for rows.Next() {
		m, err := r.scanMission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListMissions.Scan: %w", err)
		}
		missions = append(missions, m)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM missions m`+countWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListMissions.Count: %w", err)
	}
	return missions, total, nil
}

// ListByClient retrieves a client's missions with pagination.
func (r *Repository) ListByClient(ctx context.Context, clientID string, page, limit int) ([]*models.Mission, int, error) {
	return r.list(ctx, ` WHERE m.client_id = $1`, ` WHERE m.client_id = $1`, []interface{}{clientID}, page, limit)
}

// ListByDriver retrieves a driver's missions with pagination.
func (r *Repository) ListByDriver(ctx context.Context, driverID string, page, limit int) ([]*models.Mission, int, error) {
	return r.list(ctx, ` WHERE m.driver_id = $1`, ` WHERE m.driver_id = $1`, []interface{}{driverID}, page, limit)
}

// ListAll retrieves every mission (admin), optionally filtered by status.
func (r *Repository) ListAll(ctx context.Context, status string, page, limit int) ([]*models.Mission, int, error) {
	return r.list(ctx, ` WHERE ($1 = '' OR m.status = $1)`, ` WHERE ($1 = '' OR m.status = $1)`, []interface{}{status}, page, limit)
}

// AssignDriver sets the driver and moves the mission to assigned. Only
// missions that have not started yet can be (re)assigned.
func (r *Repository) AssignDriver(ctx context.Context, missionID, driverID string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE missions
		SET driver_id = $1, status = 'assigned', updated_at = NOW()
		WHERE id = $2 AND status IN ('pending', 'assigned')`,
		driverID, missionID)
	if err != nil {
		return fmt.Errorf("repository.AssignDriver: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateStatus writes the new mission status. Transition legality is
// enforced by the service before calling this.
func (r *Repository) UpdateStatus(ctx context.Context, missionID, status string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE missions SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, missionID)
	if err != nil {
		return fmt.Errorf("repository.UpdateMissionStatus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddDocument inserts the metadata row for an uploaded file.
func (r *Repository) AddDocument(ctx context.Context, doc *models.MissionDocument) (*models.MissionDocument, error) {
	query := `
		INSERT INTO mission_documents (id, mission_id, uploader_id, kind, file_name, content_type, size_bytes, object_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING uploaded_at`

	stored := *doc
	stored.ID = uuid.NewString()
	err := r.db.QueryRow(ctx, query,
		stored.ID, stored.MissionID, stored.UploaderID, stored.Kind,
		stored.FileName, stored.ContentType, stored.SizeBytes, stored.ObjectKey,
	).Scan(&stored.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.AddMissionDocument: %w", err)
	}
	return &stored, nil
}

// ListDocuments returns the metadata of every document uploaded for a
// mission, newest first.
func (r *Repository) ListDocuments(ctx context.Context, missionID string) ([]models.MissionDocument, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, mission_id, uploader_id, kind, file_name, content_type, size_bytes, object_key, uploaded_at
		FROM mission_documents
		WHERE mission_id = $1
		ORDER BY uploaded_at DESC`, missionID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListMissionDocuments.Query: %w", err)
	}
	defer rows.Close()

	var docs []models.MissionDocument
	for rows.Next() {
		var d models.MissionDocument
		if err := rows.Scan(&d.ID, &d.MissionID, &d.UploaderID, &d.Kind, &d.FileName,
			&d.ContentType, &d.SizeBytes, &d.ObjectKey, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("repository.ListMissionDocuments.Scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListMissionDocuments.Rows: %w", err)
	}
	return docs, nil
}
