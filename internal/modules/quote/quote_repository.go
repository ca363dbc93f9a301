package quote

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

// RepositoryInterface defines the contract for quote persistence.
type RepositoryInterface interface {
	Create(ctx context.Context, q *models.Quote) (*models.Quote, error)
	FindByID(ctx context.Context, quoteID string) (*models.Quote, error)
	ListByClient(ctx context.Context, clientID, status string, page, limit int) ([]*models.Quote, int, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]*models.Quote, int, error)
	// DeletePending removes a client's quote while it is still pending.
	DeletePending(ctx context.Context, quoteID, clientID string) error
	// Accept marks a pending quote accepted and creates its mission in
	// the same transaction.
	Accept(ctx context.Context, quoteID string) (*models.Mission, error)
}

// Repository implements the RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new quote repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const quoteColumns = `id, quote_number, client_id, pickup_address, delivery_address, distance_km,
		vehicles, total_ht::text, total_ttc::text, status, pickup_at, delivery_at,
		pickup_contact, delivery_contact, created_at`

// Create inserts a new quote. The quote number comes from a dedicated
// sequence so it is unique and strictly increasing.
func (r *Repository) Create(ctx context.Context, q *models.Quote) (*models.Quote, error) {
	vehicles, err := json.Marshal(q.Vehicles)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateQuote.MarshalVehicles: %w", err)
	}
	pickupContact, err := json.Marshal(q.PickupContact)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateQuote.MarshalPickupContact: %w", err)
	}
	deliveryContact, err := json.Marshal(q.DeliveryContact)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateQuote.MarshalDeliveryContact: %w", err)
	}

	query := `
		INSERT INTO quotes (id, quote_number, client_id, pickup_address, delivery_address, distance_km,
			vehicles, total_ht, total_ttc, status, pickup_at, delivery_at, pickup_contact, delivery_contact)
		VALUES ($1, 'DEV-' || lpad(nextval('quote_number_seq')::text, 6, '0'), $2, $3, $4, $5,
			$6, $7, $8, 'pending', $9, $10, $11, $12)
		RETURNING ` + quoteColumns

	row := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		q.ClientID,
		q.PickupAddress,
		q.DeliveryAddress,
		q.DistanceKm,
		vehicles,
		q.TotalHT.StringFixed(2),
		q.TotalTTC.StringFixed(2),
		q.PickupAt,
		q.DeliveryAt,
		pickupContact,
		deliveryContact,
	)

	created, err := r.scanQuote(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateQuote: %w", err)
	}
	return created, nil
}

// scanQuote is a helper to scan a row into a Quote model.
func (r *Repository) scanQuote(row pgx.Row) (*models.Quote, error) {
	var q models.Quote
	var vehicles, pickupContact, deliveryContact []byte
	var totalHT, totalTTC string

	err := row.Scan(
		&q.ID,
		&q.QuoteNumber,
		&q.ClientID,
		&q.PickupAddress,
		&q.DeliveryAddress,
		&q.DistanceKm,
		&vehicles,
		&totalHT,
		&totalTTC,
		&q.Status,
		&q.PickupAt,
		&q.DeliveryAt,
		&pickupContact,
		&deliveryContact,
		&q.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}

	if err := json.Unmarshal(vehicles, &q.Vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode quote vehicles: %w", err)
	}
	if err := json.Unmarshal(pickupContact, &q.PickupContact); err != nil {
		return nil, fmt.Errorf("failed to decode pickup contact: %w", err)
	}
	if err := json.Unmarshal(deliveryContact, &q.DeliveryContact); err != nil {
		return nil, fmt.Errorf("failed to decode delivery contact: %w", err)
	}
	if q.TotalHT, err = decimalFromDB(totalHT); err != nil {
		return nil, err
	}
	if q.TotalTTC, err = decimalFromDB(totalTTC); err != nil {
		return nil, err
	}
	return &q, nil
}

// decimalFromDB parses a price read back as text from a NUMERIC column.
func decimalFromDB(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to decode stored price %q: %w", s, err)
	}
	return d, nil
}

// FindByID retrieves a single quote by its ID.
func (r *Repository) FindByID(ctx context.Context, quoteID string) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	q, err := r.scanQuote(r.db.QueryRow(ctx, query, quoteID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindQuoteByID: %w", err)
	}
	return q, nil
}

// ListByClient retrieves a client's quotes, optionally filtered by
// status, newest first.
func (r *Repository) ListByClient(ctx context.Context, clientID, status string, page, limit int) ([]*models.Quote, int, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + quoteColumns + `
		FROM quotes
		WHERE client_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, clientID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListQuotesByClient.Query: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q, err := r.scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListQuotesByClient.Scan: %w", err)
		}
		quotes = append(quotes, q)
	}

	var total int
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotes WHERE client_id = $1 AND ($2 = '' OR status = $2)`,
		clientID, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListQuotesByClient.Count: %w", err)
	}

	return quotes, total, nil
}

// ListAll retrieves every quote in the system (admin), optionally
// filtered by status.
func (r *Repository) ListAll(ctx context.Context, status string, page, limit int) ([]*models.Quote, int, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + quoteColumns + `
		FROM quotes
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAllQuotes.Query: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q, err := r.scanQuote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListAllQuotes.Scan: %w", err)
		}
		quotes = append(quotes, q)
	}

	var total int
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE ($1 = '' OR status = $1)`, status).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAllQuotes.Count: %w", err)
	}

	return quotes, total, nil
}

// DeletePending removes a quote that still belongs to the client and is
// still pending. Acceptance or deletion elsewhere makes this a no-op
// reported to the caller.
func (r *Repository) DeletePending(ctx context.Context, quoteID, clientID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM quotes WHERE id = $1 AND client_id = $2 AND status = 'pending'`,
		quoteID, clientID)
	if err != nil {
		return fmt.Errorf("repository.DeletePendingQuote: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Accept flips a pending quote to accepted and creates the mission that
// will execute it, inside one transaction. Either both rows change or
// neither does.
func (r *Repository) Accept(ctx context.Context, quoteID string) (*models.Mission, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("repository.AcceptQuote.Begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updateQuery := `
		UPDATE quotes SET status = 'accepted'
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + quoteColumns

	q, err := r.scanQuote(tx.QueryRow(ctx, updateQuery, quoteID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Distinguish an unknown quote from one already handled.
			var status string
			if probeErr := r.db.QueryRow(ctx, `SELECT status FROM quotes WHERE id = $1`, quoteID).Scan(&status); probeErr != nil {
				return nil, models.ErrNotFound
			}
			return nil, models.ErrQuoteNotPending
		}
		return nil, fmt.Errorf("repository.AcceptQuote.Update: %w", err)
	}

	vehicles, err := json.Marshal(q.Vehicles)
	if err != nil {
		return nil, fmt.Errorf("repository.AcceptQuote.MarshalVehicles: %w", err)
	}

	insertQuery := `
		INSERT INTO missions (id, quote_id, client_id, status, pickup_address, delivery_address,
			distance_km, vehicles, total_ht, total_ttc, pickup_at, delivery_at)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, status, created_at, updated_at`

	m := &models.Mission{
		QuoteID:         q.ID,
		QuoteNumber:     q.QuoteNumber,
		ClientID:        q.ClientID,
		PickupAddress:   q.PickupAddress,
		DeliveryAddress: q.DeliveryAddress,
		DistanceKm:      q.DistanceKm,
		Vehicles:        q.Vehicles,
		TotalHT:         q.TotalHT,
		TotalTTC:        q.TotalTTC,
		PickupAt:        q.PickupAt,
		DeliveryAt:      q.DeliveryAt,
	}
	err = tx.QueryRow(ctx, insertQuery,
		uuid.NewString(), q.ID, q.ClientID, q.PickupAddress, q.DeliveryAddress,
		q.DistanceKm, vehicles, q.TotalHT.StringFixed(2), q.TotalTTC.StringFixed(2),
		q.PickupAt, q.DeliveryAt,
	).Scan(&m.ID, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository.AcceptQuote.InsertMission: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.AcceptQuote.Commit: %w", err)
	}
	return m, nil
}
