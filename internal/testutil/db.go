// Package testutil provides shared fixtures for the server-side tests.
package testutil

import (
	"testing"

	"cookbook/internal/database"
	"cookbook/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database private to t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with the given role. The password is stored as given.
func CreateUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateRecipe inserts a recipe owned by owner.
func CreateRecipe(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Recipe {
	t.Helper()
	r := &models.Recipe{Title: title, Descriptions: title + " description", ImageURL: "/api/uploads/x.jpg", CreatedByID: owner.ID}
	require.NoError(t, db.Omit("CreatedBy").Create(r).Error)
	return r
}
