package sqlite

import (
	"context"
	"database/sql"

	"campus-events/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *sql.DB
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

// CreateBatch inserta el fanout completo en una transacción: o quedan todas
// las notificaciones o ninguna.
func (r *NotificationsRepo) CreateBatch(ctx context.Context, items []notifications.Notification) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (
			id, recipient_id, kind, message,
			event_id, event_title, read, created_at
		) VALUES (?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range items {
		if _, err := stmt.ExecContext(ctx,
			n.ID,
			n.RecipientID,
			string(n.Kind),
			n.Message,
			toNullString(n.EventID),
			n.EventTitle,
			n.Read,
			n.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *NotificationsRepo) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]notifications.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, recipient_id, kind, message,
			event_id, event_title, read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		var n notifications.Notification
		var kind string
		var eventID sql.NullString
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&kind,
			&n.Message,
			&eventID,
			&n.EventTitle,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		n.Kind = notifications.Kind(kind)
		if eventID.Valid {
			n.EventID = eventID.String
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE recipient_id = ? AND read = FALSE
	`, recipientID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
