package config

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/seniorstay/staycation-api/internal/store"
)

// CreateDefaultAdmin seeds the admin account named by AdminEmail. It reports
// whether a row was inserted; an existing account is left untouched.
func CreateDefaultAdmin(ctx context.Context, cfg *Config, db *store.DB) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE lower(email) = lower($1)", cfg.AdminEmail).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check existing admin: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminSuperUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO users (email, username, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (email) DO NOTHING`,
		cfg.AdminEmail, "admin", string(hashedPassword),
	)
	if err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
