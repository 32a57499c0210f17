package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"campus-events/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (
			id, title, date_text, description, location, image_url,
			max_attendees, created_by, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		e.ID,
		e.Title,
		e.DateText,
		e.Description,
		e.Location,
		e.ImageURL,
		toNullInt(e.MaxAttendees),
		e.CreatedBy,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) Update(ctx context.Context, e events.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, date_text = ?, description = ?, location = ?,
			image_url = ?, max_attendees = ?, updated_at = ?
		WHERE id = ?
	`,
		e.Title,
		e.DateText,
		e.Description,
		e.Location,
		e.ImageURL,
		toNullInt(e.MaxAttendees),
		e.UpdatedAt,
		e.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, date_text, description, location, image_url,
			max_attendees, created_by, created_at, updated_at
		FROM events
		WHERE id = ?
	`, id)

	return scanEvent(row)
}

func (r *EventsRepo) List(ctx context.Context) ([]events.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, date_text, description, location, image_url,
			max_attendees, created_by, created_at, updated_at
		FROM events
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventsRepo) ListByDateText(ctx context.Context, dateText string) ([]events.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, date_text, description, location, image_url,
			max_attendees, created_by, created_at, updated_at
		FROM events
		WHERE date_text = ?
		ORDER BY created_at ASC
	`, dateText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (events.Event, error) {
	var e events.Event
	var max sql.NullInt64
	if err := row.Scan(
		&e.ID,
		&e.Title,
		&e.DateText,
		&e.Description,
		&e.Location,
		&e.ImageURL,
		&max,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return events.Event{}, ErrNotFound
		}
		return events.Event{}, err
	}

	if max.Valid {
		v := int(max.Int64)
		e.MaxAttendees = &v
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]events.Event, error) {
	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
