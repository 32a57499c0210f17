package notifications

import "time"

type Kind string

const (
	// KindNew existe en el esquema por compatibilidad con el inbox de la UI,
	// pero el fanout no lo produce: un evento recién creado no tiene inscritos.
	KindNew      Kind = "new"
	KindEdited   Kind = "edited"
	KindDeleted  Kind = "deleted"
	KindReminder Kind = "reminder"
)

// Notification es una fila del inbox. El mensaje se compone al escribir,
// no se recalcula al leer; EventTitle queda desnormalizado para poder
// mostrar la notificación aunque el evento ya no exista.
type Notification struct {
	ID          string
	RecipientID string

	Kind    Kind
	Message string

	// EventID vacío = el evento ya no existe (soft reference).
	EventID    string
	EventTitle string

	Read      bool
	CreatedAt time.Time
}
