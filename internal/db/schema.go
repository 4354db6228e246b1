package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id               TEXT PRIMARY KEY,
		username         TEXT NOT NULL UNIQUE,
		email            TEXT NOT NULL,
		password_hash    TEXT NOT NULL,
		total_exercises  INT NOT NULL DEFAULT 0,
		weekly_exercises INT NOT NULL DEFAULT 0,
		streak           INT NOT NULL DEFAULT 0,
		created_at       TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id          SERIAL PRIMARY KEY,
		user_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration    TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL,
		date        TEXT NOT NULL,
		timestamp   TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exercises_user_date ON exercises(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_users_total_exercises ON users(total_exercises DESC);
`

// Bootstrap creates the tables if they are not present yet.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}
