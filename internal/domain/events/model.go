package events

import "time"

// Event representa una actividad publicada en el catálogo.
// DateText es un label libre de fecha (YYYY-MM-DD para que el recordatorio
// "empieza mañana" pueda matchear); se usa tal cual para mostrar.
type Event struct {
	ID string

	Title       string
	DateText    string
	Description string
	Location    string
	ImageURL    string

	// MaxAttendees limita el cupo. nil = sin límite.
	MaxAttendees *int

	CreatedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}
