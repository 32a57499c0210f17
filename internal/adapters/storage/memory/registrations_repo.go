package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"campus-events/internal/domain/registrations"
)

type registrationsRepo struct {
	mu   sync.RWMutex
	byID map[string]registrations.Registration
}

func NewRegistrationsRepo() registrations.Repository {
	return &registrationsRepo{
		byID: make(map[string]registrations.Registration),
	}
}

// Upsert corre entero bajo el mismo lock: el conteo de cupo y el insert son
// una sola sección crítica, así que no hay ventana de over-booking.
func (r *registrationsRepo) Upsert(ctx context.Context, reg registrations.Registration, maxAttendees *int) (registrations.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(reg.ID) == "" {
		return registrations.UpsertResult{}, errors.New("registration id required")
	}

	// fila existente: re-registro, solo cambia address
	for id, existing := range r.byID {
		if existing.EventID == reg.EventID && existing.ParticipantID == reg.ParticipantID {
			existing.Address = reg.Address
			existing.UpdatedAt = reg.UpdatedAt
			r.byID[id] = existing
			return registrations.UpsertResult{
				Status:         registrations.UpsertUpdated,
				RegistrationID: id,
			}, nil
		}
	}

	if maxAttendees != nil {
		count := 0
		for _, existing := range r.byID {
			if existing.EventID == reg.EventID {
				count++
			}
		}
		if count >= *maxAttendees {
			return registrations.UpsertResult{Status: registrations.UpsertFull}, nil
		}
	}

	r.byID[reg.ID] = reg
	return registrations.UpsertResult{
		Status:         registrations.UpsertCreated,
		RegistrationID: reg.ID,
	}, nil
}

func (r *registrationsRepo) GetByID(ctx context.Context, id string) (registrations.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byID[id]
	if !ok {
		return registrations.Registration{}, ErrNotFound
	}
	return reg, nil
}

func (r *registrationsRepo) Exists(ctx context.Context, eventID, participantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.byID {
		if reg.EventID == eventID && reg.ParticipantID == participantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *registrationsRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, reg := range r.byID {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *registrationsRepo) ListByParticipant(ctx context.Context, participantID string) ([]registrations.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]registrations.Registration, 0)
	for _, reg := range r.byID {
		if reg.ParticipantID == participantID {
			out = append(out, reg)
		}
	}

	// más reciente primero, como el historial original
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *registrationsRepo) ListByEvent(ctx context.Context, eventID string) ([]registrations.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]registrations.Registration, 0)
	for _, reg := range r.byID {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *registrationsRepo) ParticipantIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0)
	for _, reg := range r.byID {
		if reg.EventID == eventID {
			out = append(out, reg.ParticipantID)
		}
	}
	return out, nil
}

func (r *registrationsRepo) BackfillSnapshots(ctx context.Context, eventID string, snap registrations.EventSnapshot) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	touched := 0
	for id, reg := range r.byID {
		if reg.EventID != eventID {
			continue
		}
		if reg.Snapshot.Complete() {
			continue
		}
		reg.Snapshot = snap
		r.byID[id] = reg
		touched++
	}
	return touched, nil
}

func (r *registrationsRepo) Delete(ctx context.Context, id, participantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byID[id]
	if !ok || reg.ParticipantID != participantID {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
