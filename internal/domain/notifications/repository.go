package notifications

import "context"

type Repository interface {
	// CreateBatch inserta todas las notificaciones de un fanout de una vez.
	CreateBatch(ctx context.Context, items []Notification) error

	// ListByRecipient devuelve las más recientes primero, acotado a limit.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error)

	// MarkAllRead marca como leídas todas las no leídas del destinatario y
	// devuelve cuántas tocó (0 en una segunda llamada consecutiva).
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}
