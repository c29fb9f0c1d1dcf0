package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/momento/internal/domain"
)

var tracer = otel.Tracer("usecase")

// ResourceUsecase implements list, get, create, update and delete for one resource.
// T is the full row shape, C the create payload and U the update payload.
type ResourceUsecase[T any, C domain.CreateShape, U domain.UpdateShape] struct {
	def    domain.Definition
	repo   TableRepository[T]
	events EventPublisher
}

// NewResourceUsecase builds the engine for def. events may be nil.
func NewResourceUsecase[T any, C domain.CreateShape, U domain.UpdateShape](
	def domain.Definition,
	repo TableRepository[T],
	events EventPublisher,
) *ResourceUsecase[T, C, U] {
	return &ResourceUsecase[T, C, U]{
		def:    def,
		repo:   repo,
		events: events,
	}
}

func (uc *ResourceUsecase[T, C, U]) Definition() domain.Definition {
	return uc.def
}

// List returns every row matching all filters, in store order.
func (uc *ResourceUsecase[T, C, U]) List(ctx context.Context, filters domain.Fields) ([]T, error) {
	ctx, span := tracer.Start(ctx, "Resource.Usecase.List")
	defer span.End()
	span.SetAttributes(attribute.String("resource", uc.def.Name))

	if err := uc.def.CheckFilters(filters); err != nil {
		return nil, err
	}

	rows, err := uc.repo.Select(ctx, filters, 0)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (uc *ResourceUsecase[T, C, U]) Get(ctx context.Context, key domain.Fields) (T, error) {
	ctx, span := tracer.Start(ctx, "Resource.Usecase.Get")
	defer span.End()
	span.SetAttributes(attribute.String("resource", uc.def.Name))

	var zero T
	if err := uc.def.CheckKey(key); err != nil {
		return zero, err
	}

	rows, err := uc.repo.Select(ctx, key, 1)
	if err != nil {
		span.RecordError(err)
		return zero, err
	}
	if len(rows) == 0 {
		return zero, domain.NotFoundError{Resource: uc.def.Singular}
	}
	return rows[0], nil
}

func (uc *ResourceUsecase[T, C, U]) Create(ctx context.Context, payload C) (T, error) {
	ctx, span := tracer.Start(ctx, "Resource.Usecase.Create")
	defer span.End()
	span.SetAttributes(attribute.String("resource", uc.def.Name))

	var zero T
	if err := payload.Validate(); err != nil {
		return zero, err
	}

	rows, err := uc.repo.Insert(ctx, payload.Columns())
	if err != nil {
		span.RecordError(err)
		return zero, err
	}
	if len(rows) == 0 {
		return zero, domain.CreateFailedError{Resource: uc.def.Singular}
	}

	created := rows[0]
	uc.publish(ctx, domain.EventCreated, uc.keyOf(created), created)
	return created, nil
}

// Update applies the fields present in payload to the row at key and returns the row afterwards.
func (uc *ResourceUsecase[T, C, U]) Update(ctx context.Context, key domain.Fields, payload U) (T, error) {
	ctx, span := tracer.Start(ctx, "Resource.Usecase.Update")
	defer span.End()
	span.SetAttributes(attribute.String("resource", uc.def.Name))

	var zero T
	if err := uc.def.CheckKey(key); err != nil {
		return zero, err
	}
	if err := payload.Validate(); err != nil {
		return zero, err
	}

	values := payload.Columns()
	var keyCols []string
	for _, col := range values.Columns() {
		if uc.def.IsKey(col) {
			keyCols = append(keyCols, col)
		}
	}
	if len(keyCols) > 0 {
		return zero, domain.ValidationError{Fields: keyCols, Reason: "identity columns cannot be updated"}
	}
	if len(values) == 0 {
		return zero, domain.ErrEmptyUpdate
	}

	rows, err := uc.repo.Update(ctx, key, values)
	if err != nil {
		span.RecordError(err)
		return zero, err
	}
	if len(rows) == 0 {
		return zero, domain.NotFoundError{Resource: uc.def.Singular}
	}

	updated := rows[0]
	uc.publish(ctx, domain.EventUpdated, key, updated)
	return updated, nil
}

func (uc *ResourceUsecase[T, C, U]) Delete(ctx context.Context, key domain.Fields) error {
	ctx, span := tracer.Start(ctx, "Resource.Usecase.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("resource", uc.def.Name))

	if err := uc.def.CheckKey(key); err != nil {
		return err
	}

	rows, err := uc.repo.Delete(ctx, key)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if len(rows) == 0 {
		return domain.NotFoundError{Resource: uc.def.Singular}
	}

	uc.publish(ctx, domain.EventDeleted, key, nil)
	return nil
}

// publish is best effort. The change is already committed, so failures are only logged.
func (uc *ResourceUsecase[T, C, U]) publish(ctx context.Context, typ domain.EventType, key domain.Fields, row any) {
	if uc.events == nil {
		return
	}

	event := domain.Event{
		Type:     typ,
		Resource: uc.def.Name,
		Key:      key,
		Row:      row,
	}
	if err := uc.events.Publish(ctx, uc.def.Name, event); err != nil {
		slog.ErrorContext(
			ctx, "failed to publish change",
			slog.String("error", err.Error()),
			slog.String("resource", uc.def.Name),
			slog.String("module", "usecase"),
		)
	}
}

// keyOf reads the identity columns out of a returned row.
func (uc *ResourceUsecase[T, C, U]) keyOf(row T) domain.Fields {
	key := domain.Fields{}

	b, err := json.Marshal(row)
	if err != nil {
		return key
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return key
	}
	for _, col := range uc.def.Key {
		key[col] = all[col]
	}
	return key
}
