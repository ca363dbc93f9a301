package pricing

import (
	"fmt"

	"convoyage-platform/internal/models"

	"github.com/shopspring/decimal"
)

// Resolve computes the HT and TTC price for one vehicle type over a
// given distance, against a snapshot of the price grid. It is a pure
// function: no side effects, no I/O.
//
// The band lookup is an ascending linear scan over the 17-entry range
// catalog; the first band containing the distance wins. Bands are
// contiguous and non-overlapping so at most one can match. For per-km
// bands the stored value is a rate and the effective HT price is
// rate * distance; flat bands return the stored fee regardless of where
// the distance falls inside the band.
func Resolve(grid map[string][]models.PriceGridEntry, vehicleTypeID string, distanceKm float64) (*models.ResolvedPrice, error) {
	entries, ok := grid[vehicleTypeID]
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("pricing.Resolve(%s): %w", vehicleTypeID, models.ErrNoGridForVehicle)
	}

	if distanceKm <= 0 {
		return nil, fmt.Errorf("pricing.Resolve: distance %.2f km: %w", distanceKm, models.ErrNoRangeMatch)
	}

	var matched *models.DistanceRange
	for _, r := range distanceRanges {
		if r.Contains(distanceKm) {
			matched = &r
			break
		}
	}
	if matched == nil {
		// Unreachable while the catalog keeps its final unbounded band.
		return nil, fmt.Errorf("pricing.Resolve: distance %.2f km: %w", distanceKm, models.ErrNoRangeMatch)
	}

	var entry *models.PriceGridEntry
	for i := range entries {
		if entries[i].DistanceRangeID == matched.ID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		// The grid is missing a cell the catalog requires. That is a
		// configuration error, reported as missing pricing data.
		return nil, fmt.Errorf("pricing.Resolve(%s, %s): %w", vehicleTypeID, matched.ID, models.ErrNoGridForVehicle)
	}

	priceHT := entry.PriceHT
	if matched.PerKilometer {
		priceHT = entry.PriceHT.Mul(decimal.NewFromFloat(distanceKm)).Round(2)
	}

	return &models.ResolvedPrice{
		VehicleTypeID:   vehicleTypeID,
		DistanceRangeID: matched.ID,
		PerKilometer:    matched.PerKilometer,
		PriceHT:         priceHT,
		PriceTTC:        TTCOf(priceHT),
	}, nil
}
