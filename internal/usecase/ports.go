package usecase

import (
	"context"

	"github.com/totegamma/momento/internal/domain"
)

// TableRepository defines row storage for one resource table.
// Every mutating call returns the affected rows as the store reports them.
type TableRepository[T any] interface {
	Select(ctx context.Context, where domain.Fields, limit int) ([]T, error)
	Insert(ctx context.Context, values domain.Fields) ([]T, error)
	Update(ctx context.Context, where, values domain.Fields) ([]T, error)
	Delete(ctx context.Context, where domain.Fields) ([]T, error)
}

// EventPublisher fans committed changes out to realtime listeners.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event domain.Event) error
}
