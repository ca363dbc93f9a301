package pricing

import (
	"context"
	"fmt"

	"convoyage-platform/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the persistence contract for the price
// grid and the read-only vehicle type catalog.
type RepositoryInterface interface {
	// LoadAll returns every grid entry, ordered by vehicle type and band.
	LoadAll(ctx context.Context) ([]models.PriceGridEntry, error)
	// SavePrices upserts the given entries inside a single transaction:
	// either every entry is written or none is. This is what keeps a
	// price group's paired writes atomic.
	SavePrices(ctx context.Context, entries []models.PriceGridEntry) error
	// ListVehicleTypes returns the vehicle catalog.
	ListVehicleTypes(ctx context.Context) ([]models.VehicleType, error)
}

// Repository is the PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new pricing repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// LoadAll reads the full grid. Prices travel as text so the decimal
// value is never routed through a float.
func (r *Repository) LoadAll(ctx context.Context) ([]models.PriceGridEntry, error) {
	query := `
		SELECT vehicle_type_id, distance_range_id, range_label, per_kilometer, price_ht::text, updated_at
		FROM price_grid
		ORDER BY vehicle_type_id, band_position`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pricing.Repository.LoadAll: %w: %v", models.ErrPersistFailed, err)
	}
	defer rows.Close()

	var entries []models.PriceGridEntry
	for rows.Next() {
		var entry models.PriceGridEntry
		var priceText string
		if err := rows.Scan(
			&entry.VehicleTypeID,
			&entry.DistanceRangeID,
			&entry.RangeLabel,
			&entry.PerKilometer,
			&priceText,
			&entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pricing.Repository.LoadAll.Scan: %w: %v", models.ErrPersistFailed, err)
		}
		entry.PriceHT, err = ParsePrice(priceText)
		if err != nil {
			return nil, fmt.Errorf("pricing.Repository.LoadAll: stored price %q: %w", priceText, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pricing.Repository.LoadAll.Rows: %w: %v", models.ErrPersistFailed, err)
	}

	return entries, nil
}

// SavePrices writes every entry or nothing. Band position is stored
// alongside the composite key so LoadAll can return entries in catalog
// order without joining against code-level configuration.
func (r *Repository) SavePrices(ctx context.Context, entries []models.PriceGridEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("pricing.Repository.SavePrices.Begin: %w: %v", models.ErrPersistFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO price_grid (vehicle_type_id, distance_range_id, range_label, per_kilometer, band_position, price_ht, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (vehicle_type_id, distance_range_id)
		DO UPDATE SET price_ht = EXCLUDED.price_ht, updated_at = NOW()`

	for _, entry := range entries {
		position := bandPosition(entry.DistanceRangeID)
		if _, err := tx.Exec(ctx, query,
			entry.VehicleTypeID,
			entry.DistanceRangeID,
			entry.RangeLabel,
			entry.PerKilometer,
			position,
			entry.PriceHT.StringFixed(2),
		); err != nil {
			return fmt.Errorf("pricing.Repository.SavePrices(%s, %s): %w: %v",
				entry.VehicleTypeID, entry.DistanceRangeID, models.ErrPersistFailed, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pricing.Repository.SavePrices.Commit: %w: %v", models.ErrPersistFailed, err)
	}
	return nil
}

// ListVehicleTypes returns the external vehicle catalog.
func (r *Repository) ListVehicleTypes(ctx context.Context) ([]models.VehicleType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM vehicle_types ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("pricing.Repository.ListVehicleTypes: %w: %v", models.ErrPersistFailed, err)
	}
	defer rows.Close()

	var types []models.VehicleType
	for rows.Next() {
		var vt models.VehicleType
		if err := rows.Scan(&vt.ID, &vt.Name); err != nil {
			return nil, fmt.Errorf("pricing.Repository.ListVehicleTypes.Scan: %w: %v", models.ErrPersistFailed, err)
		}
		types = append(types, vt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pricing.Repository.ListVehicleTypes.Rows: %w: %v", models.ErrPersistFailed, err)
	}
	return types, nil
}

// bandPosition returns the catalog index of a band, used only for
// ordering rows on read.
func bandPosition(rangeID string) int {
	for i, r := range distanceRanges {
		if r.ID == rangeID {
			return i
		}
	}
	return len(distanceRanges)
}
