package registrations

import (
	"time"

	"campus-events/internal/domain/events"
)

// EventSnapshot es la copia de los campos del evento tomada al inscribirse.
// Una vez escrita no se vuelve a tocar: representa "a qué me inscribí",
// aunque el evento cambie o se borre después.
type EventSnapshot struct {
	Title    string
	DateText string
	Location string
	ImageURL string
}

// Complete indica si el snapshot alcanza para renderizar el historial.
// ImageURL es opcional; filas anteriores a esta feature pueden venir vacías.
func (s EventSnapshot) Complete() bool {
	return s.Title != "" && s.DateText != "" && s.Location != ""
}

func SnapshotFrom(ev events.Event) EventSnapshot {
	return EventSnapshot{
		Title:    ev.Title,
		DateText: ev.DateText,
		Location: ev.Location,
		ImageURL: ev.ImageURL,
	}
}

// Registration es una fila del ledger: a lo sumo una por (participante, evento).
type Registration struct {
	ID string

	ParticipantID string
	EventID       string

	// Address la aporta el participante al inscribirse; es lo único que un
	// re-registro puede modificar.
	Address string

	Snapshot EventSnapshot

	CreatedAt time.Time
	UpdatedAt time.Time
}
