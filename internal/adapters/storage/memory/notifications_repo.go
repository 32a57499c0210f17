package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"campus-events/internal/domain/notifications"
)

type notificationsRepo struct {
	mu   sync.RWMutex
	byID map[string]notifications.Notification
}

func NewNotificationsRepo() notifications.Repository {
	return &notificationsRepo{
		byID: make(map[string]notifications.Notification),
	}
}

func (r *notificationsRepo) CreateBatch(ctx context.Context, items []notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range items {
		if strings.TrimSpace(n.ID) == "" {
			return errors.New("notification id required")
		}
	}
	for _, n := range items {
		r.byID[n.ID] = n
	}
	return nil
}

func (r *notificationsRepo) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *notificationsRepo) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	for id, n := range r.byID {
		if n.RecipientID != recipientID || n.Read {
			continue
		}
		n.Read = true
		r.byID[id] = n
		updated++
	}
	return updated, nil
}
