package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// RequestValidator wraps go-playground/validator so handlers share a
// single configured instance.
type RequestValidator struct {
	validate *validator.Validate
}

var (
	validatorOnce sync.Once
	requestVal    *RequestValidator
)

// GetValidator returns the shared request validator.
func GetValidator() *RequestValidator {
	validatorOnce.Do(func() {
		requestVal = &RequestValidator{validate: validator.New()}
	})
	return requestVal
}

// Validate checks struct tags on a request body.
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
