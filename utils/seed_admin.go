package utils

import (
	"context"
	"fmt"

	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/models"
)

type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, admin models.User) (bool, error)
}

// SeedAdminUser creates the configured admin account unless it already exists.
func SeedAdminUser(ctx context.Context, users AdminSeeder, cfg config.Admin, log logging.Logger) error {
	if !cfg.Enabled() {
		log.Warn(ctx, "admin seeding skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := users.EnsureAdmin(ctx, models.User{
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsVerified:   true,
	})
	if err != nil {
		return err
	}

	if created {
		log.Info(ctx, "admin user seeded", "email", cfg.Email)
	} else {
		log.Info(ctx, "admin user already exists", "email", cfg.Email)
	}
	return nil
}
