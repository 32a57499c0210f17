package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre la base SQLite (driver puro Go, sin CGO).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Una sola conexión: evita "database is locked" bajo escrituras
	// concurrentes y serializa el chequeo de cupo con el insert.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// InitSchema crea las tablas si no existen (suficiente para dev y tests;
// Postgres es el backend con migraciones propias).
func InitSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date_text TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		max_attendees INTEGER,
		created_by TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS registrations (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		snapshot_title TEXT NOT NULL DEFAULT '',
		snapshot_date_text TEXT NOT NULL DEFAULT '',
		snapshot_location TEXT NOT NULL DEFAULT '',
		snapshot_image_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(event_id, participant_id)
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		recipient_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		event_id TEXT,
		event_title TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reminder_dispatches (
		day TEXT NOT NULL,
		event_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(day, event_id)
	);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
