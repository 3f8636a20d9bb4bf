package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the role a user acts under.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

// User is a registered account.
type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	Name            string     `json:"name" db:"name"`
	Phone           string     `json:"phone" db:"phone"`
	ProfilePhotoURL *string    `json:"profilePhotoUrl,omitempty" db:"profile_photo_url"`
	Role            Role       `json:"role" db:"role"`
	IsEmailVerified bool       `json:"isEmailVerified" db:"is_email_verified"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// Identity is the authenticated caller as seen by the order flow.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role,omitempty"`
}

// LoginRequest is the payload for e-mail and password sign-in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSignInRequest carries a Google ID token obtained by the client.
type GoogleSignInRequest struct {
	IDToken string `json:"idToken"`
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// AuthResponse is returned by every sign-in operation.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
