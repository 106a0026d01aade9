// Package session holds the signed-in identity that every workflow reads.
// A Session value is passed explicitly to the components that need it; the
// Store persists it between CLI invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cookbook/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity attached to outgoing calls. The zero value is an
// anonymous session.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"_id"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// FromAuth builds a session from a login or signup response.
func FromAuth(a *models.AuthResponse) Session {
	if a == nil {
		return Session{}
	}
	return Session{
		Token:  a.Token,
		UserID: a.ID,
		Role:   a.Role,
		Name:   a.Name,
		Email:  a.Email,
	}
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.Token) != ""
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// Expired reports whether the token's exp claim is in the past. The
// signature is not checked here; the API does that. Tokens without an exp
// claim, or that cannot be parsed, are treated as not expired.
func (s Session) Expired(now time.Time) bool {
	if !s.Authenticated() {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Store persists a session as JSON in a single file.
type Store struct {
	Path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the saved session, or an anonymous one when none was saved.
func (st *Store) Load() (Session, error) {
	data, err := os.ReadFile(st.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("failed to parse session %s: %w", st.Path, err)
	}
	return s, nil
}

// Save writes the session readable by the owner only.
func (st *Store) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(st.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := st.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, st.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the saved session. Clearing an absent session is not an error.
func (st *Store) Clear() error {
	if err := os.Remove(st.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
