package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-events/internal/domain/events"
)

// -------------------------
// Colaboradores de test
// -------------------------

type testEvents struct {
	byDate map[string][]events.Event
}

func (s *testEvents) ListByDateText(ctx context.Context, dateText string) ([]events.Event, error) {
	return s.byDate[dateText], nil
}

type testNotifier struct {
	calls []string
	per   int
	err   error
}

func (n *testNotifier) EventReminder(ctx context.Context, ev events.Event) (int, error) {
	if n.err != nil {
		return 0, n.err
	}
	n.calls = append(n.calls, ev.ID)
	return n.per, nil
}

type testDispatchLog struct {
	claimed map[string]bool
	err     error
}

func newTestDispatchLog() *testDispatchLog {
	return &testDispatchLog{claimed: map[string]bool{}}
}

func (d *testDispatchLog) MarkDispatched(ctx context.Context, day, eventID string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	key := day + "|" + eventID
	if d.claimed[key] {
		return false, nil
	}
	d.claimed[key] = true
	return true, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Dispatch_OnlyTomorrowEvents(t *testing.T) {
	source := &testEvents{byDate: map[string][]events.Event{
		"2026-08-30": {
			{ID: "ev-1", Title: "Feria", DateText: "2026-08-30"},
			{ID: "ev-2", Title: "Charla", DateText: "2026-08-30"},
		},
		"2026-08-31": {
			{ID: "ev-later", Title: "Otro", DateText: "2026-08-31"},
		},
	}}
	notifier := &testNotifier{per: 3}
	svc := NewService(source, notifier, newTestDispatchLog(), nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC) }

	res, err := svc.DispatchTomorrowReminders(context.Background())
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if res.EventsProcessed != 2 {
		t.Fatalf("expected 2 events processed, got %d", res.EventsProcessed)
	}
	if res.NotificationsCreated != 6 {
		t.Fatalf("expected 6 notifications, got %d", res.NotificationsCreated)
	}
	if len(notifier.calls) != 2 {
		t.Fatalf("expected 2 fanouts, got %v", notifier.calls)
	}
}

func TestService_Dispatch_SecondRunSameDay_SendsNothing(t *testing.T) {
	source := &testEvents{byDate: map[string][]events.Event{
		"2026-08-30": {{ID: "ev-1", Title: "Feria", DateText: "2026-08-30"}},
	}}
	notifier := &testNotifier{per: 5}
	svc := NewService(source, notifier, newTestDispatchLog(), nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC) }

	if _, err := svc.DispatchTomorrowReminders(context.Background()); err != nil {
		t.Fatalf("Dispatch #1 error: %v", err)
	}

	// el retry del scheduler, horas después el mismo día
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 19, 0, 0, 0, time.UTC) }
	res, err := svc.DispatchTomorrowReminders(context.Background())
	if err != nil {
		t.Fatalf("Dispatch #2 error: %v", err)
	}
	if res.EventsProcessed != 0 || res.NotificationsCreated != 0 {
		t.Fatalf("expected no-op on same-day retry, got %+v", res)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected single fanout across runs, got %v", notifier.calls)
	}
}

func TestService_Dispatch_NextDay_SendsAgain(t *testing.T) {
	// el mismo evento aparece dos días seguidos solo si su fecha cambió;
	// acá simulamos un evento cuyo dateText sigue siendo "mañana" tras correr
	// el reloj, y el log debe tratarlo como día nuevo.
	source := &testEvents{byDate: map[string][]events.Event{
		"2026-08-30": {{ID: "ev-1", Title: "Feria", DateText: "2026-08-30"}},
		"2026-08-31": {{ID: "ev-1", Title: "Feria", DateText: "2026-08-31"}},
	}}
	notifier := &testNotifier{per: 1}
	svc := NewService(source, notifier, newTestDispatchLog(), nil)

	svc.now = func() time.Time { return time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC) }
	if _, err := svc.DispatchTomorrowReminders(context.Background()); err != nil {
		t.Fatalf("Dispatch day 1 error: %v", err)
	}

	svc.now = func() time.Time { return time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC) }
	res, err := svc.DispatchTomorrowReminders(context.Background())
	if err != nil {
		t.Fatalf("Dispatch day 2 error: %v", err)
	}
	if res.EventsProcessed != 1 {
		t.Fatalf("expected dispatch on new day, got %+v", res)
	}
}

func TestService_Dispatch_FanoutError_ContinuesWithRest(t *testing.T) {
	source := &testEvents{byDate: map[string][]events.Event{
		"2026-08-30": {{ID: "ev-1", Title: "Feria", DateText: "2026-08-30"}},
	}}
	notifier := &testNotifier{err: errors.New("boom")}
	svc := NewService(source, notifier, newTestDispatchLog(), nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC) }

	res, err := svc.DispatchTomorrowReminders(context.Background())
	if err != nil {
		t.Fatalf("expected fanout error swallowed, got %v", err)
	}
	if res.EventsProcessed != 0 {
		t.Fatalf("expected failed event not counted, got %+v", res)
	}
}
