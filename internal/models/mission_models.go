package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Mission lifecycle states. A mission is created pending when an admin
// accepts a quote, assigned to a driver, then advanced by the driver up
// to delivered and closed by an admin.
const (
	MissionStatusPending    = "pending"
	MissionStatusAssigned   = "assigned"
	MissionStatusInProgress = "in_progress"
	MissionStatusDelivered  = "delivered"
	MissionStatusCompleted  = "completed"
	MissionStatusCancelled  = "cancelled"
)

// Mission is the execution of an accepted quote.
type Mission struct {
	ID              string          `json:"id"`
	QuoteID         string          `json:"quote_id"`
	QuoteNumber     string          `json:"quote_number"`
	ClientID        string          `json:"client_id"`
	DriverID        sql.NullString  `json:"driver_id,omitempty"`
	Status          string          `json:"status"`
	PickupAddress   string          `json:"pickup_address"`
	DeliveryAddress string          `json:"delivery_address"`
	DistanceKm      float64         `json:"distance_km"`
	Vehicles        []QuoteVehicle  `json:"vehicles"`
	TotalHT         decimal.Decimal `json:"total_ht"`
	TotalTTC        decimal.Decimal `json:"total_ttc"`
	PickupAt        time.Time       `json:"pickup_at"`
	DeliveryAt      time.Time       `json:"delivery_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MissionDocument is the metadata row for a file a driver uploaded for a
// mission (CMR, handover report, condition photos). The bytes live in
// the object store under ObjectKey.
type MissionDocument struct {
	ID          string    `json:"id"`
	MissionID   string    `json:"mission_id"`
	UploaderID  string    `json:"uploader_id"`
	Kind        string    `json:"kind"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	ObjectKey   string    `json:"-"`
	URL         string    `json:"url,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// AssignDriverRequest is the admin body for assigning a mission.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id" validate:"required,uuid4"`
}

// UpdateMissionStatusRequest advances a mission through its lifecycle.
type UpdateMissionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=assigned in_progress delivered completed cancelled"`
}
