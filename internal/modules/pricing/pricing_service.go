package pricing

import (
	"context"
	"fmt"
	"log"
	"sync"

	"convoyage-platform/internal/models"
)

// ServiceInterface defines the pricing operations exposed to handlers
// and to the quote module.
type ServiceInterface interface {
	Ranges() []models.DistanceRange
	VehicleTypes(ctx context.Context) ([]models.VehicleType, error)
	// Grid returns the cached grid keyed by vehicle type, entries in
	// catalog order, seeding defaults first if the store is empty.
	Grid(ctx context.Context) (map[string][]models.PriceGridEntry, error)
	// SavePrice validates and persists one cell, propagating the value
	// to every member of the vehicle type's price group atomically.
	SavePrice(ctx context.Context, vehicleTypeID, rangeID, priceHT string) error
	// Resolve prices one vehicle type over a distance.
	Resolve(ctx context.Context, vehicleTypeID string, distanceKm float64) (*models.ResolvedPrice, error)
	Reload(ctx context.Context) error
	Invalidate()
}

// Service owns the in-process grid cache. The grid is tiny (a few
// hundred rows) and changes only on admin edits, so it is loaded once
// and refreshed explicitly rather than re-fetched per request.
// Concurrent admin edits are last-write-wins; there is no optimistic
// locking.
type Service struct {
	repo RepositoryInterface

	mu     sync.RWMutex
	grid   map[string][]models.PriceGridEntry
	loaded bool
}

// NewService creates a new pricing service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Ranges exposes the static band catalog.
func (s *Service) Ranges() []models.DistanceRange {
	return Ranges()
}

// VehicleTypes exposes the vehicle catalog.
func (s *Service) VehicleTypes(ctx context.Context) ([]models.VehicleType, error) {
	return s.repo.ListVehicleTypes(ctx)
}

// Grid returns the cached grid, loading it on first use. An empty
// backing store triggers default seeding: the system never operates on
// a partially populated grid.
func (s *Service) Grid(ctx context.Context) (map[string][]models.PriceGridEntry, error) {
	s.mu.RLock()
	if s.loaded {
		grid := s.grid
		s.mu.RUnlock()
		return grid, nil
	}
	s.mu.RUnlock()

	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) (map[string][]models.PriceGridEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.grid, nil
	}

	entries, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("pricing.Service.Grid: %w", err)
	}

	if len(entries) == 0 {
		if err := s.seedDefaultsLocked(ctx); err != nil {
			return nil, err
		}
		entries, err = s.repo.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("pricing.Service.Grid: reload after seed: %w", err)
		}
	}

	s.grid = groupByVehicleType(entries)
	s.loaded = true
	return s.grid, nil
}

// seedDefaultsLocked writes the canonical default price table for every
// vehicle type in the catalog. Seeding is deterministic and idempotent.
func (s *Service) seedDefaultsLocked(ctx context.Context) error {
	types, err := s.repo.ListVehicleTypes(ctx)
	if err != nil {
		return fmt.Errorf("pricing.Service.SeedDefaults: %w", err)
	}

	var entries []models.PriceGridEntry
	for _, vt := range types {
		defaults, ok := defaultPrices[vt.ID]
		if !ok {
			return fmt.Errorf("pricing.Service.SeedDefaults: no default prices for vehicle type %q", vt.ID)
		}
		for i, r := range distanceRanges {
			price, err := ParsePrice(defaults[i])
			if err != nil {
				return fmt.Errorf("pricing.Service.SeedDefaults(%s, %s): %w", vt.ID, r.ID, err)
			}
			entries = append(entries, models.PriceGridEntry{
				VehicleTypeID:   vt.ID,
				DistanceRangeID: r.ID,
				RangeLabel:      r.Label,
				PerKilometer:    r.PerKilometer,
				PriceHT:         price,
			})
		}
	}

	if err := s.repo.SavePrices(ctx, entries); err != nil {
		return fmt.Errorf("pricing.Service.SeedDefaults: %w", err)
	}
	log.Printf("Seeded default price grid %s: %d entries (%d vehicle types x %d bands)",
		defaultGridVersion, len(entries), len(types), len(distanceRanges))
	return nil
}

// SavePrice validates the submitted price and writes it for the target
// vehicle type and every other member of its price group, in one
// transaction. A failure anywhere rolls back the whole save.
func (s *Service) SavePrice(ctx context.Context, vehicleTypeID, rangeID, priceHT string) error {
	band, ok := RangeByID(rangeID)
	if !ok {
		return fmt.Errorf("pricing.Service.SavePrice: range %q: %w", rangeID, models.ErrNotFound)
	}

	price, err := ParsePrice(priceHT)
	if err != nil {
		return fmt.Errorf("pricing.Service.SavePrice: %w", models.ErrValidationFailed)
	}
	if price.IsNegative() {
		return fmt.Errorf("pricing.Service.SavePrice: %q: %w", priceHT, models.ErrValidationFailed)
	}

	grid, err := s.Grid(ctx)
	if err != nil {
		return err
	}
	if _, ok := grid[vehicleTypeID]; !ok {
		return fmt.Errorf("pricing.Service.SavePrice: vehicle type %q: %w", vehicleTypeID, models.ErrNotFound)
	}

	var entries []models.PriceGridEntry
	for _, member := range groupFor(vehicleTypeID) {
		entries = append(entries, models.PriceGridEntry{
			VehicleTypeID:   member,
			DistanceRangeID: band.ID,
			RangeLabel:      band.Label,
			PerKilometer:    band.PerKilometer,
			PriceHT:         price,
		})
	}

	if err := s.repo.SavePrices(ctx, entries); err != nil {
		return fmt.Errorf("pricing.Service.SavePrice: %w", err)
	}

	s.Invalidate()
	return nil
}

// Resolve prices one vehicle type over a distance against the cached
// grid snapshot.
func (s *Service) Resolve(ctx context.Context, vehicleTypeID string, distanceKm float64) (*models.ResolvedPrice, error) {
	grid, err := s.Grid(ctx)
	if err != nil {
		return nil, err
	}
	return Resolve(grid, vehicleTypeID, distanceKm)
}

// Reload drops the cache and loads the grid again immediately.
func (s *Service) Reload(ctx context.Context) error {
	s.Invalidate()
	_, err := s.load(ctx)
	return err
}

// Invalidate drops the cache; the next Grid call re-reads the store.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.grid = nil
	s.mu.Unlock()
}

func groupByVehicleType(entries []models.PriceGridEntry) map[string][]models.PriceGridEntry {
	grid := make(map[string][]models.PriceGridEntry)
	for _, entry := range entries {
		grid[entry.VehicleTypeID] = append(grid[entry.VehicleTypeID], entry)
	}
	return grid
}
