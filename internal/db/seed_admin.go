package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelhub/parcelhub/internal/config"
	"github.com/parcelhub/parcelhub/internal/domain/user"
	"github.com/parcelhub/parcelhub/internal/security"
)

// EnsureAdminUser provisions the admin account from env at startup. There is
// no registration path to the admin role, so this is the only way one comes
// to exist.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, name, address, phone_number, role)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		cfg.AdminEmail, hash, cfg.AdminName, "", "", user.RoleAdmin,
	)

	return err
}
