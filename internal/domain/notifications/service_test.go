package notifications

import (
	"context"
	"errors"
	"sort"
	"testing"

	"campus-events/internal/domain/events"
	"campus-events/internal/ports/mailer"
)

// -------------------------
// Test repo + colaboradores
// -------------------------

type testRepo struct {
	items []Notification
}

func (r *testRepo) CreateBatch(ctx context.Context, items []Notification) error {
	r.items = append(r.items, items...)
	return nil
}

func (r *testRepo) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	out := make([]Notification, 0)
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *testRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	updated := 0
	for i, n := range r.items {
		if n.RecipientID == recipientID && !n.Read {
			r.items[i].Read = true
			updated++
		}
	}
	return updated, nil
}

type testAudience struct {
	ids []string
	err error
}

func (a *testAudience) ParticipantIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	return a.ids, a.err
}

type testSender struct {
	sent []mailer.Message
	err  error
}

func (s *testSender) Send(ctx context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testEvent() events.Event {
	return events.Event{ID: "ev-1", Title: "Feria de ciencias"}
}

// -------------------------
// Tests
// -------------------------

func TestService_EventEdited_OnePerRegistrant(t *testing.T) {
	repo := &testRepo{}
	audience := &testAudience{ids: []string{"user-1", "user-2", "user-1", ""}}
	svc := NewService(repo, audience, nil, nil)

	n, err := svc.EventEdited(context.Background(), testEvent(), "date, location changed")
	if err != nil {
		t.Fatalf("EventEdited returned error: %v", err)
	}
	// duplicados y IDs vacíos no cuentan
	if n != 2 {
		t.Fatalf("expected 2 notifications, got %d", n)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 rows persisted, got %d", len(repo.items))
	}

	for _, item := range repo.items {
		if item.Kind != KindEdited {
			t.Fatalf("expected kind edited, got %s", item.Kind)
		}
		if item.Read {
			t.Fatalf("expected notifications to start unread")
		}
		if item.EventID != "ev-1" {
			t.Fatalf("expected event reference kept on edit, got %q", item.EventID)
		}
		if item.Message != "Event 'Feria de ciencias' date, location changed, please review" {
			t.Fatalf("unexpected message: %q", item.Message)
		}
	}
}

func TestService_EventDeleted_DropsEventReference(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo, &testAudience{ids: []string{"user-1"}}, nil, nil)

	n, err := svc.EventDeleted(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("EventDeleted returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 notification, got %d", n)
	}

	item := repo.items[0]
	if item.Kind != KindDeleted {
		t.Fatalf("expected kind deleted, got %s", item.Kind)
	}
	// el evento ya no existe: la notificación guarda título, no referencia
	if item.EventID != "" {
		t.Fatalf("expected empty event ID after delete, got %q", item.EventID)
	}
	if item.EventTitle != "Feria de ciencias" {
		t.Fatalf("expected event title denormalized, got %q", item.EventTitle)
	}
	if item.Message != "Event 'Feria de ciencias' has been cancelled" {
		t.Fatalf("unexpected message: %q", item.Message)
	}
}

func TestService_EventReminder_Message(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo, &testAudience{ids: []string{"user-1"}}, nil, nil)

	if _, err := svc.EventReminder(context.Background(), testEvent()); err != nil {
		t.Fatalf("EventReminder returned error: %v", err)
	}
	if repo.items[0].Message != "Reminder: event 'Feria de ciencias' starts tomorrow!" {
		t.Fatalf("unexpected message: %q", repo.items[0].Message)
	}
	if repo.items[0].Kind != KindReminder {
		t.Fatalf("expected kind reminder, got %s", repo.items[0].Kind)
	}
}

func TestService_Fanout_EmptyAudience_NoRows(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo, &testAudience{ids: nil}, nil, nil)

	n, err := svc.EventEdited(context.Background(), testEvent(), "title changed")
	if err != nil {
		t.Fatalf("EventEdited returned error: %v", err)
	}
	if n != 0 || len(repo.items) != 0 {
		t.Fatalf("expected empty fanout, got n=%d rows=%d", n, len(repo.items))
	}
}

func TestService_Fanout_MailFailure_DoesNotFailFanout(t *testing.T) {
	repo := &testRepo{}
	sender := &testSender{err: errors.New("relay down")}
	svc := NewService(repo, &testAudience{ids: []string{"user-1", "user-2"}}, sender, nil)

	n, err := svc.EventDeleted(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("expected mail failure to be swallowed, got %v", err)
	}
	if n != 2 || len(repo.items) != 2 {
		t.Fatalf("expected fanout persisted despite relay, got n=%d rows=%d", n, len(repo.items))
	}
}

func TestService_Fanout_SendsMailPerRecipient(t *testing.T) {
	repo := &testRepo{}
	sender := &testSender{}
	svc := NewService(repo, &testAudience{ids: []string{"user-1", "user-2"}}, sender, nil)

	if _, err := svc.EventReminder(context.Background(), testEvent()); err != nil {
		t.Fatalf("EventReminder returned error: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(sender.sent))
	}
	if sender.sent[0].Subject != "Feria de ciencias" {
		t.Fatalf("expected event title as subject, got %q", sender.sent[0].Subject)
	}
}

func TestService_MarkAllRead_CountsOnlyUnread(t *testing.T) {
	repo := &testRepo{}
	svc := NewService(repo, &testAudience{ids: []string{"user-1", "user-2"}}, nil, nil)

	if _, err := svc.EventEdited(context.Background(), testEvent(), "title changed"); err != nil {
		t.Fatalf("EventEdited returned error: %v", err)
	}

	n, err := svc.MarkAllRead(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("MarkAllRead returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 marked, got %d", n)
	}

	// idempotente: segunda pasada no marca nada
	n, err = svc.MarkAllRead(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("MarkAllRead #2 returned error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 marked on repeat, got %d", n)
	}

	items, err := svc.ListForRecipient(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ListForRecipient returned error: %v", err)
	}
	if len(items) != 1 || items[0].Read {
		t.Fatalf("expected other recipient untouched, got %#v", items)
	}
}
