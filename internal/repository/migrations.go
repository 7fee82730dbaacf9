package repository

import (
	"context"

	"dashauth/pkg/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type migration struct {
	version int
	name    string
	up      string
}

// Additive columns live in their own versioned step instead of a pile of
// "add column, ignore if exists" statements.
var migrations = []migration{
	{
		version: 1,
		name:    "create_users_table",
		up: `
			CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				email TEXT UNIQUE,
				password_hash TEXT,
				name TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
	},
	{
		version: 2,
		name:    "add_telegram_columns",
		up: `
			ALTER TABLE users
				ADD COLUMN IF NOT EXISTS telegram_id BIGINT UNIQUE,
				ADD COLUMN IF NOT EXISTS telegram_username TEXT,
				ADD COLUMN IF NOT EXISTS telegram_first_name TEXT,
				ADD COLUMN IF NOT EXISTS telegram_last_name TEXT,
				ADD COLUMN IF NOT EXISTS telegram_photo_url TEXT,
				ADD COLUMN IF NOT EXISTS auth_method TEXT NOT NULL DEFAULT 'email'`,
	},
}

// migrate applies pending migrations in order. It runs once at startup and is
// idempotent, tracked through the schema_migrations table.
func (r *Repository) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		m := m
		err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
			var applied bool
			err := tx.GetContext(ctx, &applied,
				`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version)
			if err != nil {
				return err
			}
			if applied {
				return nil
			}

			if _, err := tx.ExecContext(ctx, m.up); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
				return err
			}

			logger.Logger().Info("applied migration",
				zap.Int("version", m.version),
				zap.String("name", m.name))
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
