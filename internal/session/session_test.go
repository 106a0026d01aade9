package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cookbook/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSession_Roles(t *testing.T) {
	t.Parallel()
	assert.False(t, Session{}.Authenticated())
	assert.False(t, Session{Token: "   "}.Authenticated())
	assert.True(t, Session{Token: "t"}.Authenticated())
	assert.True(t, Session{Role: models.RoleAdmin}.IsAdmin())
	assert.False(t, Session{Role: models.RoleUser}.IsAdmin())
}

func TestSession_Expired(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{"anonymous", Session{}, false},
		{"opaque token", Session{Token: "not-a-jwt"}, false},
		{"no exp", Session{Token: signed(t, jwt.MapClaims{"sub": "u1"})}, false},
		{"future exp", Session{Token: signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})}, false},
		{"past exp", Session{Token: signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Expired(now))
		})
	}
}

func TestFromAuth(t *testing.T) {
	t.Parallel()
	s := FromAuth(&models.AuthResponse{Token: "t", ID: "u1", Role: "admin", Name: "Ada", Email: "a@b.c"})
	assert.Equal(t, Session{Token: "t", UserID: "u1", Role: "admin", Name: "Ada", Email: "a@b.c"}, s)
	assert.Equal(t, Session{}, FromAuth(nil))
}

func TestStore_RoundTripAndClear(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	st := NewStore(path)

	s, err := st.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	want := Session{Token: "t", UserID: "u1", Role: "user", Name: "Bo"}
	require.NoError(t, st.Save(want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, st.Clear())
	require.NoError(t, st.Clear())
	got, err = st.Load()
	require.NoError(t, err)
	assert.Equal(t, Session{}, got)
}

func TestStore_LoadCorrupt(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}
