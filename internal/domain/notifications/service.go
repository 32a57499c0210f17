package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus-events/internal/domain/events"
	"campus-events/internal/platform/logger"
	"campus-events/internal/ports/mailer"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// inboxLimit acota el inbox a las 50 más recientes.
const inboxLimit = 50

// Audience resuelve quiénes reciben el fanout de un evento: el conjunto de
// participantes con inscripción. No hay lista de suscripción aparte.
// La implementa el repo de inscripciones.
type Audience interface {
	ParticipantIDsByEvent(ctx context.Context, eventID string) ([]string, error)
}

type Service struct {
	repo     Repository
	audience Audience
	sender   mailer.Sender // opcional; nil = sin correo
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, audience Audience, sender mailer.Sender, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		audience: audience,
		sender:   sender,
		log:      log,
		now:      time.Now,
	}
}

// EventEdited implementa events.Notifier: una notificación por inscrito con
// el resumen de campos cambiados que calculó el caller.
func (s *Service) EventEdited(ctx context.Context, ev events.Event, changedSummary string) (int, error) {
	msg := fmt.Sprintf("Event '%s' %s, please review", ev.Title, changedSummary)
	return s.fanout(ctx, ev, KindEdited, msg, true)
}

// EventDeleted implementa events.Notifier. Se llama después del borrado, así
// que la notificación no guarda EventID: la referencia ya no resuelve.
func (s *Service) EventDeleted(ctx context.Context, ev events.Event) (int, error) {
	msg := fmt.Sprintf("Event '%s' has been cancelled", ev.Title)
	return s.fanout(ctx, ev, KindDeleted, msg, false)
}

// EventReminder compone el aviso de "empieza mañana" para el trigger diario.
func (s *Service) EventReminder(ctx context.Context, ev events.Event) (int, error) {
	msg := fmt.Sprintf("Reminder: event '%s' starts tomorrow!", ev.Title)
	return s.fanout(ctx, ev, KindReminder, msg, true)
}

func (s *Service) fanout(ctx context.Context, ev events.Event, kind Kind, message string, keepEventID bool) (int, error) {
	ids, err := s.audience.ParticipantIDsByEvent(ctx, ev.ID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	eventID := ""
	if keepEventID {
		eventID = ev.ID
	}

	now := s.now()
	seen := make(map[string]struct{}, len(ids))
	batch := make([]Notification, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		batch = append(batch, Notification{
			ID:          uuid.NewString(),
			RecipientID: id,
			Kind:        kind,
			Message:     message,
			EventID:     eventID,
			EventTitle:  ev.Title,
			Read:        false,
			CreatedAt:   now,
		})
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return 0, err
	}

	// Correo best-effort: un relay caído no afecta al fanout ya persistido.
	if s.sender != nil {
		for _, n := range batch {
			if err := s.sender.Send(ctx, mailer.Message{
				RecipientID: n.RecipientID,
				Subject:     ev.Title,
				Body:        n.Message,
			}); err != nil && s.log != nil {
				s.log.Warn("notification email failed", map[string]any{
					"recipient_id": n.RecipientID,
					"event_id":     ev.ID,
					"error":        err.Error(),
				})
			}
		}
	}

	return len(batch), nil
}

func (s *Service) ListForRecipient(ctx context.Context, recipientID string) ([]Notification, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByRecipient(ctx, recipientID, inboxLimit)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.MarkAllRead(ctx, recipientID)
}
