package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Appointment and message user references are deliberately not foreign keys;
// enrichment tolerates dangling ids.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		auth_provider TEXT NOT NULL DEFAULT 'local',
		password_hash TEXT,
		first_name    TEXT,
		last_name     TEXT,
		user_type     TEXT NOT NULL DEFAULT 'patient',
		specialty     TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id         BIGSERIAL PRIMARY KEY,
		patient_id BIGINT NOT NULL,
		doctor_id  BIGINT NOT NULL,
		"date"     TEXT NOT NULL,
		"time"     TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'upcoming',
		"type"     TEXT NOT NULL,
		specialty  TEXT,
		notes      TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS appointments_patient_id_idx ON appointments (patient_id)`,
	`CREATE INDEX IF NOT EXISTS appointments_doctor_id_idx ON appointments (doctor_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id          BIGSERIAL PRIMARY KEY,
		sender_id   BIGINT NOT NULL,
		receiver_id BIGINT NOT NULL,
		content     TEXT NOT NULL,
		"timestamp" TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		"read"      BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS messages_sender_id_idx ON messages (sender_id)`,
	`CREATE INDEX IF NOT EXISTS messages_receiver_id_idx ON messages (receiver_id)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		title       TEXT NOT NULL,
		"type"      TEXT NOT NULL,
		url         TEXT NOT NULL,
		upload_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS documents_user_id_idx ON documents (user_id)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		sid     TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		expire  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_expire_idx ON sessions (expire)`,
}

// Migrate creates missing tables and indexes. It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
