package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/totegamma/momento/internal/domain"
)

// MemoryTable keeps rows of one resource in process memory.
// It mirrors the store's behavior: generated id and created_at, unique keys, RETURNING rows.
type MemoryTable[T any] struct {
	def domain.Definition
	now func() time.Time

	mu   sync.RWMutex
	rows []map[string]any
}

func NewMemoryTable[T any](def domain.Definition) *MemoryTable[T] {
	return &MemoryTable[T]{def: def, now: time.Now}
}

func (m *MemoryTable[T]) Select(ctx context.Context, where domain.Fields, limit int) ([]T, error) {
	cond, err := normalize(where)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []map[string]any
	for _, row := range m.rows {
		if limit > 0 && len(matched) >= limit {
			break
		}
		if matches(row, cond) {
			matched = append(matched, row)
		}
	}
	return m.decode(matched)
}

func (m *MemoryTable[T]) Insert(ctx context.Context, values domain.Fields) ([]T, error) {
	row, err := normalize(values)
	if err != nil {
		return nil, err
	}

	if len(m.def.Key) == 1 && m.def.Key[0] == "id" && row["id"] == nil {
		row["id"] = uuid.NewString()
	}
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = m.now().UTC().Format(time.RFC3339Nano)
	}

	key := map[string]any{}
	for _, col := range m.def.Key {
		if row[col] == nil {
			return nil, fmt.Errorf("null value in column %q of %s violates not-null constraint", col, m.def.Table)
		}
		key[col] = row[col]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.rows {
		if matches(existing, key) {
			return nil, fmt.Errorf("duplicate key value violates unique constraint of %s", m.def.Table)
		}
	}
	m.rows = append(m.rows, row)

	return m.decode([]map[string]any{row})
}

func (m *MemoryTable[T]) Update(ctx context.Context, where, values domain.Fields) ([]T, error) {
	cond, err := normalize(where)
	if err != nil {
		return nil, err
	}
	set, err := normalize(values)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var updated []map[string]any
	for _, row := range m.rows {
		if !matches(row, cond) {
			continue
		}
		for col, v := range set {
			row[col] = v
		}
		updated = append(updated, row)
	}
	return m.decode(updated)
}

func (m *MemoryTable[T]) Delete(ctx context.Context, where domain.Fields) ([]T, error) {
	cond, err := normalize(where)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted []map[string]any
	kept := m.rows[:0]
	for _, row := range m.rows {
		if matches(row, cond) {
			deleted = append(deleted, row)
			continue
		}
		kept = append(kept, row)
	}
	m.rows = kept
	return m.decode(deleted)
}

func (m *MemoryTable[T]) decode(rows []map[string]any) ([]T, error) {
	result := make([]T, 0, len(rows))
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return nil, domain.DecodingError{Resource: m.def.Singular, Err: err}
		}
		var t T
		if err := json.Unmarshal(b, &t); err != nil {
			return nil, domain.DecodingError{Resource: m.def.Singular, Err: err}
		}
		result = append(result, t)
	}
	return result, nil
}

// normalize brings values into their JSON representation so that a uuid.UUID
// and its string form compare equal.
func normalize(f domain.Fields) (map[string]any, error) {
	out := map[string]any{}
	if len(f) == 0 {
		return out, nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(row, cond map[string]any) bool {
	for col, v := range cond {
		if row[col] != v {
			return false
		}
	}
	return true
}
