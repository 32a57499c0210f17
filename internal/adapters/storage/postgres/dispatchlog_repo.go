package postgres

import (
	"context"
	"database/sql"
	"time"
)

type DispatchLogRepo struct {
	db *sql.DB
}

func NewDispatchLogRepo(db *sql.DB) *DispatchLogRepo {
	return &DispatchLogRepo{db: db}
}

// MarkDispatched reclama (día, evento) vía el índice único de la tabla: el
// primer run inserta, cualquier reintento del scheduler cae en el conflict y
// recibe false.
func (r *DispatchLogRepo) MarkDispatched(ctx context.Context, day, eventID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_dispatches (day, event_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, event_id) DO NOTHING
	`, day, eventID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
