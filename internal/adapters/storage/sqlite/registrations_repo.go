package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"campus-events/internal/domain/registrations"
)

type RegistrationsRepo struct {
	db *sql.DB
}

func NewRegistrationsRepo(db *sql.DB) *RegistrationsRepo {
	return &RegistrationsRepo{db: db}
}

// Upsert corre en una transacción sobre la única conexión del pool: el
// conteo de cupo y el insert quedan serializados contra cualquier otra
// escritura, sin ventana de over-booking. El índice único
// (event_id, participant_id) es el backstop contra duplicados.
func (r *RegistrationsRepo) Upsert(ctx context.Context, reg registrations.Registration, maxAttendees *int) (registrations.UpsertResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return registrations.UpsertResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// fila existente: re-registro, solo cambia address
	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM registrations WHERE event_id = ? AND participant_id = ?`,
		reg.EventID, reg.ParticipantID,
	).Scan(&existingID)
	if err == nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE registrations SET address = ?, updated_at = ? WHERE id = ?`,
			reg.Address, reg.UpdatedAt, existingID,
		); err != nil {
			return registrations.UpsertResult{}, err
		}
		if err := tx.Commit(); err != nil {
			return registrations.UpsertResult{}, err
		}
		return registrations.UpsertResult{
			Status:         registrations.UpsertUpdated,
			RegistrationID: existingID,
		}, nil
	}
	if err != sql.ErrNoRows {
		return registrations.UpsertResult{}, err
	}

	if maxAttendees != nil {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM registrations WHERE event_id = ?`, reg.EventID,
		).Scan(&count); err != nil {
			return registrations.UpsertResult{}, err
		}
		if count >= *maxAttendees {
			return registrations.UpsertResult{Status: registrations.UpsertFull}, nil
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO registrations (
			id, event_id, participant_id, address,
			snapshot_title, snapshot_date_text, snapshot_location, snapshot_image_url,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		reg.ID,
		reg.EventID,
		reg.ParticipantID,
		reg.Address,
		reg.Snapshot.Title,
		reg.Snapshot.DateText,
		reg.Snapshot.Location,
		reg.Snapshot.ImageURL,
		reg.CreatedAt,
		reg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return registrations.UpsertResult{Status: registrations.UpsertDuplicate}, nil
		}
		return registrations.UpsertResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return registrations.UpsertResult{}, err
	}
	return registrations.UpsertResult{
		Status:         registrations.UpsertCreated,
		RegistrationID: reg.ID,
	}, nil
}

func (r *RegistrationsRepo) GetByID(ctx context.Context, id string) (registrations.Registration, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return registrations.Registration{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, participant_id, address,
			snapshot_title, snapshot_date_text, snapshot_location, snapshot_image_url,
			created_at, updated_at
		FROM registrations
		WHERE id = ?
	`, id)

	return scanRegistration(row)
}

func (r *RegistrationsRepo) Exists(ctx context.Context, eventID, participantID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM registrations WHERE event_id = ? AND participant_id = ?`,
		eventID, participantID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RegistrationsRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID,
	).Scan(&count)
	return count, err
}

func (r *RegistrationsRepo) ListByParticipant(ctx context.Context, participantID string) ([]registrations.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, participant_id, address,
			snapshot_title, snapshot_date_text, snapshot_location, snapshot_image_url,
			created_at, updated_at
		FROM registrations
		WHERE participant_id = ?
		ORDER BY created_at DESC
	`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRegistrations(rows)
}

func (r *RegistrationsRepo) ListByEvent(ctx context.Context, eventID string) ([]registrations.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, participant_id, address,
			snapshot_title, snapshot_date_text, snapshot_location, snapshot_image_url,
			created_at, updated_at
		FROM registrations
		WHERE event_id = ?
		ORDER BY created_at DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRegistrations(rows)
}

func (r *RegistrationsRepo) ParticipantIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT participant_id FROM registrations WHERE event_id = ?`, eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *RegistrationsRepo) BackfillSnapshots(ctx context.Context, eventID string, snap registrations.EventSnapshot) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE registrations
		SET snapshot_title = ?, snapshot_date_text = ?,
			snapshot_location = ?, snapshot_image_url = ?
		WHERE event_id = ?
		  AND (snapshot_title = '' OR snapshot_date_text = '' OR snapshot_location = '')
	`,
		snap.Title,
		snap.DateText,
		snap.Location,
		snap.ImageURL,
		eventID,
	)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *RegistrationsRepo) Delete(ctx context.Context, id, participantID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE id = ? AND participant_id = ?`,
		id, participantID,
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

func scanRegistration(row rowScanner) (registrations.Registration, error) {
	var reg registrations.Registration
	if err := row.Scan(
		&reg.ID,
		&reg.EventID,
		&reg.ParticipantID,
		&reg.Address,
		&reg.Snapshot.Title,
		&reg.Snapshot.DateText,
		&reg.Snapshot.Location,
		&reg.Snapshot.ImageURL,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return registrations.Registration{}, ErrNotFound
		}
		return registrations.Registration{}, err
	}
	return reg, nil
}

func scanRegistrations(rows *sql.Rows) ([]registrations.Registration, error) {
	out := make([]registrations.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
