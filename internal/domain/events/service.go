package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-events/internal/platform/logger"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("event not found")
)

// SnapshotPreserver copia los campos del evento en cada inscripción antes de
// que el evento desaparezca. Si falla, el delete se aborta (fail closed).
type SnapshotPreserver interface {
	PreserveBeforeDelete(ctx context.Context, ev Event) error
}

// Notifier escribe una notificación por inscrito. Es best-effort: un error
// acá jamás revierte la edición/borrado que lo disparó.
type Notifier interface {
	EventEdited(ctx context.Context, ev Event, changedSummary string) (int, error)
	EventDeleted(ctx context.Context, ev Event) (int, error)
}

type Service struct {
	repo      Repository
	preserver SnapshotPreserver
	notifier  Notifier
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, preserver SnapshotPreserver, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		preserver: preserver,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}
}

type CreateInput struct {
	Title        string
	DateText     string
	Description  string
	Location     string
	ImageURL     string
	MaxAttendees *int
}

func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (Event, error) {
	if strings.TrimSpace(createdBy) == "" {
		return Event{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return Event{}, ErrInvalidInput
	}
	if in.MaxAttendees != nil && *in.MaxAttendees < 0 {
		return Event{}, ErrInvalidInput
	}

	now := s.now()
	e := Event{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(in.Title),
		DateText:     strings.TrimSpace(in.DateText),
		Description:  strings.TrimSpace(in.Description),
		Location:     strings.TrimSpace(in.Location),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		MaxAttendees: in.MaxAttendees,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Title       *string
	DateText    *string
	Description *string
	Location    *string
	ImageURL    *string

	// MaxAttendees admite "presente y null" para quitar el límite de cupo.
	MaxAttendees PatchMaxAttendees
}

type PatchMaxAttendees struct {
	Present bool
	Value   *int
}

// Update aplica el patch, calcula qué campos cambiaron y dispara el fanout
// de notificaciones a los inscritos. El fanout es best-effort.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, ErrNotFound
	}

	updated := current
	changed := make([]string, 0, 5)

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return Event{}, ErrInvalidInput
		}
		if t != current.Title {
			changed = append(changed, "title")
		}
		updated.Title = t
	}
	if in.DateText != nil {
		d := strings.TrimSpace(*in.DateText)
		if d != current.DateText {
			changed = append(changed, "date")
		}
		updated.DateText = d
	}
	if in.Location != nil {
		l := strings.TrimSpace(*in.Location)
		if l != current.Location {
			changed = append(changed, "location")
		}
		updated.Location = l
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d != current.Description {
			changed = append(changed, "description")
		}
		updated.Description = d
	}
	if in.ImageURL != nil {
		u := strings.TrimSpace(*in.ImageURL)
		if u != current.ImageURL {
			changed = append(changed, "image")
		}
		updated.ImageURL = u
	}
	if in.MaxAttendees.Present {
		if in.MaxAttendees.Value != nil && *in.MaxAttendees.Value < 0 {
			return Event{}, ErrInvalidInput
		}
		updated.MaxAttendees = in.MaxAttendees.Value
	}

	updated.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, updated); err != nil {
		return Event{}, err
	}

	// Solo avisamos cambios visibles para el inscrito; cambiar el cupo no
	// genera notificación.
	if len(changed) > 0 && s.notifier != nil {
		summary := fmt.Sprintf("%s changed", strings.Join(changed, ", "))
		if _, err := s.notifier.EventEdited(ctx, updated, summary); err != nil {
			s.logWarn("event edited fanout failed", map[string]any{
				"event_id": updated.ID,
				"error":    err.Error(),
			})
		}
	}

	return updated, nil
}

// Delete borra el evento. Antes, el preserver debe completar el snapshot de
// cada inscripción; si eso falla, el borrado se aborta para no dejar filas
// huérfanas sin historial.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	ev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if s.preserver != nil {
		if err := s.preserver.PreserveBeforeDelete(ctx, ev); err != nil {
			return fmt.Errorf("preserve snapshots: %w", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.notifier != nil {
		if _, err := s.notifier.EventDeleted(ctx, ev); err != nil {
			s.logWarn("event deleted fanout failed", map[string]any{
				"event_id": ev.ID,
				"error":    err.Error(),
			})
		}
	}

	return nil
}

func (s *Service) logWarn(msg string, fields map[string]any) {
	if s.log == nil {
		return
	}
	s.log.Warn(msg, fields)
}
