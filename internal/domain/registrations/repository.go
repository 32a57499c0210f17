package registrations

import "context"

// UpsertStatus es el resultado del upsert atómico en el store.
type UpsertStatus string

const (
	UpsertCreated UpsertStatus = "created"
	UpsertUpdated UpsertStatus = "updated"

	// UpsertFull: el chequeo de cupo dentro de la misma operación atómica
	// rechazó el insert.
	UpsertFull UpsertStatus = "full"

	// UpsertDuplicate: el índice único (participant, event) rechazó el
	// insert; otra escritura concurrente del mismo participante ganó.
	UpsertDuplicate UpsertStatus = "duplicate"
)

type UpsertResult struct {
	Status         UpsertStatus
	RegistrationID string
}

// Repository persiste el ledger. Upsert debe ser atómico respecto del cupo:
// el conteo y el insert ocurren bajo la misma exclusión (lock de fila,
// transacción inmediata o mutex según el backend), así que no queda ventana
// de over-booking entre participantes distintos.
type Repository interface {
	// Upsert actualiza address si la fila (participante, evento) existe;
	// si no, inserta respetando maxAttendees (nil = sin límite).
	Upsert(ctx context.Context, reg Registration, maxAttendees *int) (UpsertResult, error)

	GetByID(ctx context.Context, id string) (Registration, error)
	Exists(ctx context.Context, eventID, participantID string) (bool, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)

	ListByParticipant(ctx context.Context, participantID string) ([]Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]Registration, error)
	ParticipantIDsByEvent(ctx context.Context, eventID string) ([]string, error)

	// BackfillSnapshots completa el snapshot de toda fila del evento que lo
	// tenga ausente o incompleto. Devuelve cuántas filas tocó.
	BackfillSnapshots(ctx context.Context, eventID string, snap EventSnapshot) (int, error)

	Delete(ctx context.Context, id, participantID string) error
}
