package models

import "errors"

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a resource already exists, e.g. a
	// signup with an email address that is already registered.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned when an activation or password reset
	// token is unknown or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrForbidden is returned when an authenticated user is not allowed
	// to act on the resource (e.g. a driver touching someone else's mission).
	ErrForbidden = errors.New("operation not permitted")

	// ErrValidationFailed is returned when a submitted price is not a
	// valid non-negative decimal. Nothing is written in that case.
	ErrValidationFailed = errors.New("price must be a non-negative decimal")

	// ErrPersistFailed is returned when the backing store rejects a grid
	// read or write. The error is surfaced to the administrator; there is
	// no automatic retry.
	ErrPersistFailed = errors.New("pricing store operation failed")

	// ErrNoGridForVehicle is returned by the price resolver when no grid
	// entries exist for the requested vehicle type.
	ErrNoGridForVehicle = errors.New("no price grid configured for this vehicle type")

	// ErrNoRangeMatch is returned when a distance falls outside every
	// defined band. With the final unbounded band this only happens for
	// degenerate distances (zero or negative), but the API defines it for
	// robustness.
	ErrNoRangeMatch = errors.New("no distance range matches the requested distance")

	// ErrParse is returned by the tax conversion utility on malformed
	// numeric input. Callers must reject the surrounding submission rather
	// than coerce the value to zero.
	ErrParse = errors.New("malformed decimal value")

	// ErrQuoteNotPending is returned when a quote is deleted or accepted
	// after it has already left the pending state.
	ErrQuoteNotPending = errors.New("quote is no longer pending")

	// ErrInvalidTransition is returned when a mission status update does
	// not follow the allowed lifecycle.
	ErrInvalidTransition = errors.New("mission status transition not allowed")
)

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
