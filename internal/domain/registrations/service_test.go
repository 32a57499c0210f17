package registrations

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-events/internal/domain/events"
)

// -------------------------
// Test repo + catálogo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Registration
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Registration{}}
}

func (r *testRepo) find(eventID, participantID string) (Registration, bool) {
	for _, reg := range r.byID {
		if reg.EventID == eventID && reg.ParticipantID == participantID {
			return reg, true
		}
	}
	return Registration{}, false
}

func (r *testRepo) Upsert(ctx context.Context, reg Registration, maxAttendees *int) (UpsertResult, error) {
	if existing, ok := r.find(reg.EventID, reg.ParticipantID); ok {
		existing.Address = reg.Address
		existing.UpdatedAt = reg.UpdatedAt
		r.byID[existing.ID] = existing
		return UpsertResult{Status: UpsertUpdated, RegistrationID: existing.ID}, nil
	}

	if maxAttendees != nil {
		count := 0
		for _, other := range r.byID {
			if other.EventID == reg.EventID {
				count++
			}
		}
		if count >= *maxAttendees {
			return UpsertResult{Status: UpsertFull}, nil
		}
	}

	r.byID[reg.ID] = reg
	return UpsertResult{Status: UpsertCreated, RegistrationID: reg.ID}, nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Registration, error) {
	reg, ok := r.byID[id]
	if !ok {
		return Registration{}, errRepoNotFound
	}
	return reg, nil
}

func (r *testRepo) Exists(ctx context.Context, eventID, participantID string) (bool, error) {
	_, ok := r.find(eventID, participantID)
	return ok, nil
}

func (r *testRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	count := 0
	for _, reg := range r.byID {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *testRepo) ListByParticipant(ctx context.Context, participantID string) ([]Registration, error) {
	out := make([]Registration, 0)
	for _, reg := range r.byID {
		if reg.ParticipantID == participantID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *testRepo) ListByEvent(ctx context.Context, eventID string) ([]Registration, error) {
	out := make([]Registration, 0)
	for _, reg := range r.byID {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *testRepo) ParticipantIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	out := make([]string, 0)
	for _, reg := range r.byID {
		if reg.EventID == eventID {
			out = append(out, reg.ParticipantID)
		}
	}
	return out, nil
}

func (r *testRepo) BackfillSnapshots(ctx context.Context, eventID string, snap EventSnapshot) (int, error) {
	updated := 0
	for id, reg := range r.byID {
		if reg.EventID != eventID || reg.Snapshot.Complete() {
			continue
		}
		reg.Snapshot = snap
		r.byID[id] = reg
		updated++
	}
	return updated, nil
}

func (r *testRepo) Delete(ctx context.Context, id, participantID string) error {
	reg, ok := r.byID[id]
	if !ok || reg.ParticipantID != participantID {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

type testCatalog struct {
	byID map[string]events.Event
}

func newTestCatalog(evs ...events.Event) *testCatalog {
	c := &testCatalog{byID: map[string]events.Event{}}
	for _, ev := range evs {
		c.byID[ev.ID] = ev
	}
	return c
}

func (c *testCatalog) GetByID(ctx context.Context, id string) (events.Event, error) {
	ev, ok := c.byID[id]
	if !ok {
		return events.Event{}, errRepoNotFound
	}
	return ev, nil
}

func intPtr(v int) *int { return &v }

func testEvent(id string, max *int) events.Event {
	return events.Event{
		ID:           id,
		Title:        "Feria de ciencias",
		DateText:     "2026-09-01",
		Location:     "Auditorio",
		ImageURL:     "https://img.example/feria.png",
		MaxAttendees: max,
		CreatedBy:    "admin-1",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_FirstTime_CreatesWithSnapshot(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, newTestCatalog(testEvent("ev-1", nil)))

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	res, err := svc.Register(context.Background(), "ev-1", "user-1", "Calle 123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Status != StatusCreated {
		t.Fatalf("expected created, got %s", res.Status)
	}

	reg, err := repo.GetByID(context.Background(), res.RegistrationID)
	if err != nil {
		t.Fatalf("registration not persisted: %v", err)
	}
	if reg.Address != "Calle 123" {
		t.Fatalf("expected address persisted, got %q", reg.Address)
	}
	// el snapshot se copia en el insert, no después
	if reg.Snapshot.Title != "Feria de ciencias" || reg.Snapshot.DateText != "2026-09-01" || reg.Snapshot.Location != "Auditorio" {
		t.Fatalf("expected snapshot copied from event, got %#v", reg.Snapshot)
	}
	if reg.CreatedAt != now {
		t.Fatalf("expected CreatedAt = now")
	}
}

func TestService_Register_Repeat_UpdatesAddressOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, newTestCatalog(testEvent("ev-1", intPtr(1))))

	res1, err := svc.Register(context.Background(), "ev-1", "user-1", "Calle 123")
	if err != nil {
		t.Fatalf("Register #1 error: %v", err)
	}

	// el evento quedó lleno, pero repetir sigue permitido: es modificación
	res2, err := svc.Register(context.Background(), "ev-1", "user-1", "Av. Siempreviva 742")
	if err != nil {
		t.Fatalf("Register #2 error: %v", err)
	}
	if res2.Status != StatusUpdated {
		t.Fatalf("expected updated, got %s", res2.Status)
	}
	if res2.RegistrationID != res1.RegistrationID {
		t.Fatalf("expected same registration ID, got %s vs %s", res1.RegistrationID, res2.RegistrationID)
	}

	count, _ := repo.CountByEvent(context.Background(), "ev-1")
	if count != 1 {
		t.Fatalf("expected 1 registration after repeat, got %d", count)
	}

	reg, _ := repo.GetByID(context.Background(), res1.RegistrationID)
	if reg.Address != "Av. Siempreviva 742" {
		t.Fatalf("expected address updated, got %q", reg.Address)
	}
}

func TestService_Register_FullEvent_RejectsNewcomer(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, newTestCatalog(testEvent("ev-1", intPtr(2))))

	if _, err := svc.Register(context.Background(), "ev-1", "user-1", ""); err != nil {
		t.Fatalf("Register user-1 error: %v", err)
	}
	if _, err := svc.Register(context.Background(), "ev-1", "user-2", ""); err != nil {
		t.Fatalf("Register user-2 error: %v", err)
	}

	_, err := svc.Register(context.Background(), "ev-1", "user-3", "")
	if !errors.Is(err, ErrEventFull) {
		t.Fatalf("expected ErrEventFull, got %v", err)
	}

	count, _ := repo.CountByEvent(context.Background(), "ev-1")
	if count != 2 {
		t.Fatalf("expected count to stay at 2, got %d", count)
	}
}

func TestService_Register_NilCapacity_NeverFull(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, newTestCatalog(testEvent("ev-1", nil)))

	for i := 0; i < 10; i++ {
		id := "user-" + string(rune('a'+i))
		if _, err := svc.Register(context.Background(), "ev-1", id, ""); err != nil {
			t.Fatalf("Register %s error: %v", id, err)
		}
	}

	ok, reason, err := svc.CanRegister(context.Background(), "ev-1", "user-new")
	if err != nil {
		t.Fatalf("CanRegister error: %v", err)
	}
	if !ok || reason != "" {
		t.Fatalf("expected unlimited event to stay open, got ok=%v reason=%q", ok, reason)
	}
}

func TestService_Register_UnknownEvent_NotFound(t *testing.T) {
	svc := NewService(newTestRepo(), newTestCatalog())

	_, err := svc.Register(context.Background(), "ev-missing", "user-1", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_CanRegister_FullForNewcomer_OpenForRegistered(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, newTestCatalog(testEvent("ev-1", intPtr(1))))

	if _, err := svc.Register(context.Background(), "ev-1", "user-1", ""); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	ok, reason, err := svc.CanRegister(context.Background(), "ev-1", "user-2")
	if err != nil {
		t.Fatalf("CanRegister newcomer error: %v", err)
	}
	if ok || reason != "event is full" {
		t.Fatalf("expected full for newcomer, got ok=%v reason=%q", ok, reason)
	}

	ok, _, err = svc.CanRegister(context.Background(), "ev-1", "user-1")
	if err != nil {
		t.Fatalf("CanRegister registered error: %v", err)
	}
	if !ok {
		t.Fatalf("expected registered participant to still be allowed")
	}
}

func TestService_History_DeletedEvent_KeepsSnapshot(t *testing.T) {
	repo := newTestRepo()
	catalog := newTestCatalog(testEvent("ev-1", nil))
	svc := NewService(repo, catalog)

	res, err := svc.Register(context.Background(), "ev-1", "user-1", "Calle 123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// simula el borrado del evento: preserve + quitar del catálogo
	ev := catalog.byID["ev-1"]
	if err := svc.PreserveBeforeDelete(context.Background(), ev); err != nil {
		t.Fatalf("PreserveBeforeDelete error: %v", err)
	}
	delete(catalog.byID, "ev-1")

	entries, err := svc.History(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Registration.ID != res.RegistrationID {
		t.Fatalf("expected registration %s, got %s", res.RegistrationID, entry.Registration.ID)
	}
	if entry.Live != nil {
		t.Fatalf("expected no live event after delete")
	}
	if entry.Registration.Snapshot.Title != "Feria de ciencias" {
		t.Fatalf("expected snapshot to survive delete, got %#v", entry.Registration.Snapshot)
	}
}

func TestService_PreserveBeforeDelete_OnlyFillsIncomplete(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, newTestCatalog())

	// fila vieja sin snapshot (migrada) y fila nueva ya completa
	repo.byID["reg-old"] = Registration{
		ID: "reg-old", EventID: "ev-1", ParticipantID: "user-1",
	}
	repo.byID["reg-new"] = Registration{
		ID: "reg-new", EventID: "ev-1", ParticipantID: "user-2",
		Snapshot: EventSnapshot{Title: "Original", DateText: "2026-01-01", Location: "Patio"},
	}

	ev := testEvent("ev-1", nil)
	ev.Title = "Renombrado"
	if err := svc.PreserveBeforeDelete(context.Background(), ev); err != nil {
		t.Fatalf("PreserveBeforeDelete error: %v", err)
	}

	if got := repo.byID["reg-old"].Snapshot.Title; got != "Renombrado" {
		t.Fatalf("expected incomplete snapshot backfilled, got %q", got)
	}
	if got := repo.byID["reg-new"].Snapshot.Title; got != "Original" {
		t.Fatalf("expected complete snapshot untouched, got %q", got)
	}
}

func TestService_RemoveOrphaned_RejectsLiveEvent(t *testing.T) {
	repo := newTestRepo()
	catalog := newTestCatalog(testEvent("ev-1", nil))
	svc := NewService(repo, catalog)

	res, err := svc.Register(context.Background(), "ev-1", "user-1", "")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	err = svc.RemoveOrphaned(context.Background(), res.RegistrationID, "user-1")
	if !errors.Is(err, ErrNotOrphaned) {
		t.Fatalf("expected ErrNotOrphaned while event exists, got %v", err)
	}

	// evento borrado: ahora sí se puede limpiar
	delete(catalog.byID, "ev-1")
	if err := svc.RemoveOrphaned(context.Background(), res.RegistrationID, "user-1"); err != nil {
		t.Fatalf("RemoveOrphaned error: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), res.RegistrationID); err == nil {
		t.Fatalf("expected registration deleted")
	}
}

func TestService_RemoveOrphaned_OtherParticipant_NotFound(t *testing.T) {
	repo := newTestRepo()
	catalog := newTestCatalog(testEvent("ev-1", nil))
	svc := NewService(repo, catalog)

	res, err := svc.Register(context.Background(), "ev-1", "user-1", "")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	delete(catalog.byID, "ev-1")

	err = svc.RemoveOrphaned(context.Background(), res.RegistrationID, "user-2")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign registration, got %v", err)
	}
}
