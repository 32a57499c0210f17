package memory

import (
	"context"
	"sync"

	"campus-events/internal/domain/reminders"
)

type dispatchLogRepo struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDispatchLogRepo() reminders.DispatchLog {
	return &dispatchLogRepo{
		seen: make(map[string]struct{}),
	}
}

// MarkDispatched reclama (día, evento); false si un run anterior ya lo hizo.
func (r *dispatchLogRepo) MarkDispatched(ctx context.Context, day, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := day + "|" + eventID
	if _, ok := r.seen[key]; ok {
		return false, nil
	}
	r.seen[key] = struct{}{}
	return true, nil
}
