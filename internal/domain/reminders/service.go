package reminders

import (
	"context"
	"time"

	"campus-events/internal/domain/events"
	"campus-events/internal/platform/logger"
)

// dayFormat es el formato canónico que debe usar dateText para que el
// recordatorio matchee (igual que el trigger original: YYYY-MM-DD).
const dayFormat = "2006-01-02"

// EventSource lista los eventos cuyo dateText cae en un día dado.
// La implementa el repo de eventos.
type EventSource interface {
	ListByDateText(ctx context.Context, dateText string) ([]events.Event, error)
}

// Notifier produce el fanout de recordatorio de un evento.
type Notifier interface {
	EventReminder(ctx context.Context, ev events.Event) (int, error)
}

// DispatchLog registra (día, evento) ya despachados. MarkDispatched devuelve
// false si otro run del trigger ya reclamó ese par: el reintento de un
// scheduler no debe duplicar recordatorios.
type DispatchLog interface {
	MarkDispatched(ctx context.Context, day, eventID string) (bool, error)
}

type Service struct {
	events   EventSource
	notifier Notifier
	dispatch DispatchLog
	log      logger.Logger
	now      func() time.Time
}

func NewService(events EventSource, notifier Notifier, dispatch DispatchLog, log logger.Logger) *Service {
	return &Service{
		events:   events,
		notifier: notifier,
		dispatch: dispatch,
		log:      log,
		now:      time.Now,
	}
}

type DispatchResult struct {
	EventsProcessed      int
	NotificationsCreated int
}

// DispatchTomorrowReminders genera "empieza mañana" para cada evento de
// mañana que todavía no fue despachado hoy. El trigger en sí (schedule,
// retries) es externo; esta operación solo tiene que ser idempotente por día.
func (s *Service) DispatchTomorrowReminders(ctx context.Context) (DispatchResult, error) {
	tomorrow := s.now().UTC().AddDate(0, 0, 1).Format(dayFormat)

	upcoming, err := s.events.ListByDateText(ctx, tomorrow)
	if err != nil {
		return DispatchResult{}, err
	}

	var res DispatchResult
	for _, ev := range upcoming {
		first, err := s.dispatch.MarkDispatched(ctx, tomorrow, ev.ID)
		if err != nil {
			s.logWarn("reminder dispatch mark failed", ev.ID, err)
			continue
		}
		if !first {
			// otro run de hoy ya lo cubrió
			continue
		}

		n, err := s.notifier.EventReminder(ctx, ev)
		if err != nil {
			s.logWarn("reminder fanout failed", ev.ID, err)
			continue
		}

		res.EventsProcessed++
		res.NotificationsCreated += n
	}

	return res, nil
}

func (s *Service) logWarn(msg, eventID string, err error) {
	if s.log == nil {
		return
	}
	s.log.Warn(msg, map[string]any{"event_id": eventID, "error": err.Error()})
}
