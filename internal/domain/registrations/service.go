package registrations

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus-events/internal/domain/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotOrphaned       = errors.New("event still exists")
)

// EventCatalog es la vista del catálogo que necesita el ledger: solo lectura.
// La implementa el repo de eventos.
type EventCatalog interface {
	GetByID(ctx context.Context, id string) (events.Event, error)
}

type Service struct {
	repo    Repository
	catalog EventCatalog
	now     func() time.Time
}

func NewService(repo Repository, catalog EventCatalog) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		now:     time.Now,
	}
}

// RegisterStatus es el desenlace de un registro para el caller HTTP.
type RegisterStatus string

const (
	StatusCreated RegisterStatus = "created"
	StatusUpdated RegisterStatus = "updated"
)

type RegisterResult struct {
	Status         RegisterStatus
	RegistrationID string
}

// Register es el upsert idempotente del ledger:
// - primera vez: inserta la fila con snapshot del evento, respetando el cupo
// - repetido: solo actualiza address, nunca duplica ni consume otro lugar
// Errores esperados: ErrNotFound, ErrEventFull, ErrAlreadyRegistered.
func (s *Service) Register(ctx context.Context, eventID, participantID, address string) (RegisterResult, error) {
	eventID = strings.TrimSpace(eventID)
	participantID = strings.TrimSpace(participantID)
	if eventID == "" || participantID == "" {
		return RegisterResult{}, ErrInvalidInput
	}

	ev, err := s.catalog.GetByID(ctx, eventID)
	if err != nil {
		return RegisterResult{}, ErrNotFound
	}

	now := s.now()
	reg := Registration{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		EventID:       eventID,
		Address:       strings.TrimSpace(address),
		Snapshot:      SnapshotFrom(ev),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	res, err := s.repo.Upsert(ctx, reg, ev.MaxAttendees)
	if err != nil {
		return RegisterResult{}, err
	}

	switch res.Status {
	case UpsertCreated:
		return RegisterResult{Status: StatusCreated, RegistrationID: res.RegistrationID}, nil
	case UpsertUpdated:
		return RegisterResult{Status: StatusUpdated, RegistrationID: res.RegistrationID}, nil
	case UpsertFull:
		return RegisterResult{}, ErrEventFull
	case UpsertDuplicate:
		return RegisterResult{}, ErrAlreadyRegistered
	default:
		return RegisterResult{}, errors.New("unexpected upsert status")
	}
}

// CanRegister es el guard de cupo como pre-chequeo de lectura (p.ej. para que
// la UI deshabilite el botón). Es advisory: la decisión final la toma el
// Upsert atómico del repo.
func (s *Service) CanRegister(ctx context.Context, eventID, participantID string) (bool, string, error) {
	eventID = strings.TrimSpace(eventID)
	participantID = strings.TrimSpace(participantID)
	if eventID == "" || participantID == "" {
		return false, "", ErrInvalidInput
	}

	ev, err := s.catalog.GetByID(ctx, eventID)
	if err != nil {
		return false, "", ErrNotFound
	}
	if ev.MaxAttendees == nil {
		return true, "", nil
	}

	// Quien ya tiene fila siempre puede: es una modificación, no un lugar nuevo.
	exists, err := s.repo.Exists(ctx, eventID, participantID)
	if err != nil {
		return false, "", err
	}
	if exists {
		return true, "", nil
	}

	count, err := s.repo.CountByEvent(ctx, eventID)
	if err != nil {
		return false, "", err
	}
	if count >= *ev.MaxAttendees {
		return false, "event is full", nil
	}
	return true, "", nil
}

func (s *Service) IsRegistered(ctx context.Context, eventID, participantID string) (bool, error) {
	eventID = strings.TrimSpace(eventID)
	participantID = strings.TrimSpace(participantID)
	if eventID == "" || participantID == "" {
		return false, ErrInvalidInput
	}
	return s.repo.Exists(ctx, eventID, participantID)
}

func (s *Service) ListByParticipant(ctx context.Context, participantID string) ([]Registration, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByParticipant(ctx, participantID)
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]Registration, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByEvent(ctx, eventID)
}

// HistoryEntry es una fila del historial del participante. Live viene seteado
// solo si el evento todavía existe; si no, el snapshot es lo único que queda
// y la UI muestra "ya no disponible".
type HistoryEntry struct {
	Registration Registration
	Live         *events.Event
}

func (s *Service) History(ctx context.Context, participantID string) ([]HistoryEntry, error) {
	regs, err := s.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	out := make([]HistoryEntry, 0, len(regs))
	for _, reg := range regs {
		entry := HistoryEntry{Registration: reg}
		if ev, err := s.catalog.GetByID(ctx, reg.EventID); err == nil {
			entry.Live = &ev
		}
		out = append(out, entry)
	}
	return out, nil
}

// RemoveOrphaned borra una fila propia cuyo evento ya no existe (limpieza
// iniciada por el participante). Si el evento sigue vivo, no se borra: el
// sistema nunca elimina historial de eventos vigentes.
func (s *Service) RemoveOrphaned(ctx context.Context, registrationID, participantID string) error {
	registrationID = strings.TrimSpace(registrationID)
	participantID = strings.TrimSpace(participantID)
	if registrationID == "" || participantID == "" {
		return ErrInvalidInput
	}

	reg, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		return ErrNotFound
	}
	if reg.ParticipantID != participantID {
		return ErrNotFound
	}

	if _, err := s.catalog.GetByID(ctx, reg.EventID); err == nil {
		return ErrNotOrphaned
	}

	return s.repo.Delete(ctx, registrationID, participantID)
}

// PreserveBeforeDelete implementa events.SnapshotPreserver: completa el
// snapshot de toda inscripción del evento que aún no lo tenga, antes de que
// el evento desaparezca. Si falla, el caller debe abortar el borrado.
func (s *Service) PreserveBeforeDelete(ctx context.Context, ev events.Event) error {
	if strings.TrimSpace(ev.ID) == "" {
		return ErrInvalidInput
	}
	_, err := s.repo.BackfillSnapshots(ctx, ev.ID, SnapshotFrom(ev))
	return err
}
