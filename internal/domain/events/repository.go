package events

import "context"

type Repository interface {
	Create(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	List(ctx context.Context) ([]Event, error)
	ListByDateText(ctx context.Context, dateText string) ([]Event, error)
	Delete(ctx context.Context, id string) error
}
