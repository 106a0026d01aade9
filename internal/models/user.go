// Package models contains the wire and storage shapes of the recipe domain.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles understood by the authorization policy. Anything other than
// RoleAdmin is an ordinary user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account. When embedded in a recipe or comment only the
// identity and display name are populated.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"not null;default:user" json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// BeforeCreate assigns a string identity the way document stores do.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Credentials is the body of POST /api/users/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /api/users/signup.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token string `json:"token"`
	ID    string `json:"_id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
