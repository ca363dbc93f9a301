package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistanceRange is one band of the fixed distance catalog. Bands are
// contiguous and non-overlapping when ordered by LowerKm; exactly one
// band (the last) is unbounded, marked by UpperKm == 0.
type DistanceRange struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	LowerKm      int    `json:"lower_km"`
	UpperKm      int    `json:"upper_km,omitempty"` // 0 means no upper bound
	PerKilometer bool   `json:"per_kilometer"`
}

// Unbounded reports whether the band has no upper limit.
func (r DistanceRange) Unbounded() bool {
	return r.UpperKm == 0
}

// Contains reports whether a distance falls within the band. The lower
// bound is exclusive at LowerKm-1 so that fractional distances below the
// first band's nominal start (e.g. 0.5 km against "1-10") still match.
func (r DistanceRange) Contains(distanceKm float64) bool {
	if distanceKm <= float64(r.LowerKm-1) {
		return false
	}
	return r.Unbounded() || distanceKm <= float64(r.UpperKm)
}

// VehicleType is one entry of the external vehicle catalog.
type VehicleType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PriceGridEntry is the stored HT price for one (vehicle type, distance
// range) pair. For per-kilometer bands PriceHT is a rate, otherwise a
// flat fee.
type PriceGridEntry struct {
	VehicleTypeID   string          `json:"vehicle_type_id"`
	DistanceRangeID string          `json:"distance_range_id"`
	RangeLabel      string          `json:"range_label"`
	PerKilometer    bool            `json:"per_kilometer"`
	PriceHT         decimal.Decimal `json:"price_ht"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ResolvedPrice is the outcome of a price lookup for a single vehicle.
type ResolvedPrice struct {
	VehicleTypeID   string          `json:"vehicle_type_id"`
	DistanceRangeID string          `json:"distance_range_id"`
	PerKilometer    bool            `json:"per_kilometer"`
	PriceHT         decimal.Decimal `json:"price_ht"`
	PriceTTC        decimal.Decimal `json:"price_ttc"`
}

// SavePriceRequest is the admin request body for editing one grid cell.
type SavePriceRequest struct {
	PriceHT string `json:"price_ht" validate:"required"`
}

// EstimateRequest asks for a price without persisting anything.
type EstimateRequest struct {
	VehicleTypeID string  `json:"vehicle_type_id" validate:"required"`
	DistanceKm    float64 `json:"distance_km" validate:"required,gt=0"`
}
