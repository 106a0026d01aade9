// Package bootstrap opens the API server's runtime dependencies and
// prepares a development database.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cookbook/internal/cache"
	"cookbook/internal/config"
	"cookbook/internal/database"
	"cookbook/internal/models"
	"cookbook/internal/observability"
	"cookbook/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
}

// InitRuntime connects to the database and Redis. The Redis client is nil
// when Redis cannot be reached.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	rdb := cache.Connect(ctx, cfg.RedisURL)

	if err := EnsureDevAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}
	if opts.SeedDemo && !cfg.IsProduction() {
		if err := seedIfEmpty(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return db, rdb, nil
}

// EnsureDevAdmin creates or promotes the DEV_ADMIN_EMAIL account in
// development. Outside development, or with no email configured, it does
// nothing.
func EnsureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevAdminEmail))
	if !strings.EqualFold(cfg.Env, "development") || email == "" {
		return nil
	}
	if cfg.DevAdminPassword == "" {
		return errors.New("DEV_ADMIN_PASSWORD must be set when DEV_ADMIN_EMAIL is")
	}
	name := strings.TrimSpace(cfg.DevAdminName)
	if name == "" {
		name = "Admin"
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevAdminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			return tx.Create(&models.User{Name: name, Email: email, Password: string(hashed), Role: models.RoleAdmin}).Error
		case findErr != nil:
			return findErr
		case admin.Role != models.RoleAdmin:
			return tx.Model(&admin).Update("role", models.RoleAdmin).Error
		}
		return nil
	})
	if err != nil {
		return err
	}
	observability.Logger.InfoContext(ctx, "development admin ensured", slog.String("email", email))
	return nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Recipe{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := seed.NewSeeder(db, seed.Options{Users: 5, Recipes: 10, CommentsPerRecipe: 2}).Run(ctx)
	return err
}
