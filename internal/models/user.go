package models

import "time"

// User roles.
const (
	RoleClient = "client"
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

// User represents any account on the platform: client, driver or admin.
type User struct {
	ID             string    `json:"id" db:"id"` // UUID string from DB
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	Role           string    `json:"role" db:"role"`
	CompanyName    string    `json:"company_name,omitempty" db:"company_name"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	AuthProvider   string    `json:"auth_provider" db:"auth_provider"`
	AuthProviderID string    `json:"-" db:"auth_provider_id"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	MissionCount   int       `json:"mission_count,omitempty" db:"-"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=6"`
	Password string `json:"password" validate:"required,min=8"`
	Company  string `json:"company_name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ActivationRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// UserUpdateData defines fields that can be updated for a user profile.
type UserUpdateData struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,min=6"`
	Company *string `json:"company_name,omitempty"`
}

// AdminCreateUserRequest lets an administrator create driver or admin
// accounts directly, without the activation flow.
type AdminCreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=6"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=client driver admin"`
}

// ResendActivationRequest defines the body for the resend activation email request.
type ResendActivationRequest struct {
	Email string `json:"email" validate:"required,email"`
}
