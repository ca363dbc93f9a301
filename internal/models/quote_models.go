package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote lifecycle states.
const (
	QuoteStatusPending  = "pending"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
)

// Contact is the person to meet at pickup or delivery.
type Contact struct {
	Name  string `json:"name" validate:"required,min=2"`
	Phone string `json:"phone" validate:"required,min=6"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// QuoteVehicle describes one vehicle to convoy. The price of the quote
// is the sum of the resolved price of each vehicle.
type QuoteVehicle struct {
	VehicleTypeID string `json:"vehicle_type_id" validate:"required"`
	Brand         string `json:"brand,omitempty"`
	Model         string `json:"model,omitempty"`
	Registration  string `json:"registration,omitempty"`
}

// Quote represents a client request for a convoying mission, priced at
// creation time. TotalTTC always equals round(TotalHT * 1.20, 2).
type Quote struct {
	ID              string          `json:"id"`
	QuoteNumber     string          `json:"quote_number"`
	ClientID        string          `json:"client_id"`
	PickupAddress   string          `json:"pickup_address"`
	DeliveryAddress string          `json:"delivery_address"`
	DistanceKm      float64         `json:"distance_km"`
	Vehicles        []QuoteVehicle  `json:"vehicles"`
	TotalHT         decimal.Decimal `json:"total_ht"`
	TotalTTC        decimal.Decimal `json:"total_ttc"`
	Status          string          `json:"status"`
	PickupAt        time.Time       `json:"pickup_at"`
	DeliveryAt      time.Time       `json:"delivery_at"`
	PickupContact   Contact         `json:"pickup_contact"`
	DeliveryContact Contact         `json:"delivery_contact"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateQuoteRequest is the client-facing quote submission body.
type CreateQuoteRequest struct {
	PickupAddress   string         `json:"pickup_address" validate:"required,min=5"`
	DeliveryAddress string         `json:"delivery_address" validate:"required,min=5"`
	DistanceKm      float64        `json:"distance_km" validate:"required,gt=0"`
	Vehicles        []QuoteVehicle `json:"vehicles" validate:"required,min=1,dive"`
	PickupAt        time.Time      `json:"pickup_at" validate:"required"`
	DeliveryAt      time.Time      `json:"delivery_at" validate:"required"`
	PickupContact   Contact        `json:"pickup_contact" validate:"required"`
	DeliveryContact Contact        `json:"delivery_contact" validate:"required"`
}
