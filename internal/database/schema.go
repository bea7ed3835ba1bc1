package database

import (
	"context"
	"fmt"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

ALTER TABLE users ALTER COLUMN name TYPE TEXT, ALTER COLUMN email TYPE TEXT;

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS todos (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title        VARCHAR(200) NOT NULL CHECK (char_length(title) >= 1),
	completed    BOOLEAN NOT NULL DEFAULT FALSE,
	due_date     TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	priority     VARCHAR(10) NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
	category     VARCHAR(50),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT todos_completed_at_check CHECK (completed = (completed_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_todos_user_due ON todos (user_id, due_date);
CREATE INDEX IF NOT EXISTS idx_todos_user_created ON todos (user_id, created_at);
`

// EnsureSchema creates the tables and indexes if they do not exist.
func (m *DBManager) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := m.Write().Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
