package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Fields maps store column names to values.
type Fields map[string]any

// Columns returns the column names in a stable order.
func (f Fields) Columns() []string {
	cols := make([]string, 0, len(f))
	for k := range f {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

type FieldKind int

const (
	FieldString FieldKind = iota
	FieldUUID
)

// Parse converts a raw path or query value into the store representation.
func (k FieldKind) Parse(name, raw string) (any, error) {
	switch k {
	case FieldUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ValidationError{Fields: []string{name}, Reason: "invalid uuid"}
		}
		return id.String(), nil
	default:
		return raw, nil
	}
}

// Definition describes how a resource type maps onto its store table.
type Definition struct {
	Name      string // route segment and change channel
	Table     string
	Singular  string
	Key       []string
	KeyKinds  map[string]FieldKind
	Filters   map[string]FieldKind
	Updatable bool
}

// KeyPath is the echo route suffix addressing a single row.
func (d Definition) KeyPath() string {
	return "/:" + strings.Join(d.Key, "/:")
}

// CheckKey ensures key names exactly the key columns.
func (d Definition) CheckKey(key Fields) error {
	if len(key) != len(d.Key) {
		return ValidationError{Fields: d.Key, Reason: "identity must name every key column"}
	}
	for _, col := range d.Key {
		v, ok := key[col]
		if !ok || v == nil {
			return ValidationError{Fields: []string{col}, Reason: "missing key column"}
		}
	}
	return nil
}

// CheckFilters ensures every filter is one the resource accepts.
func (d Definition) CheckFilters(filters Fields) error {
	var unknown []string
	for col := range filters {
		if _, ok := d.Filters[col]; !ok {
			unknown = append(unknown, col)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return ValidationError{Fields: unknown, Reason: fmt.Sprintf("not a %s filter", d.Singular)}
	}
	return nil
}

// IsKey reports whether col is part of the identity.
func (d Definition) IsKey(col string) bool {
	for _, k := range d.Key {
		if k == col {
			return true
		}
	}
	return false
}

// CreateShape is a payload accepted by a resource's create operation.
type CreateShape interface {
	Validate() error
	Columns() Fields
}

// UpdateShape is a payload accepted by a resource's update operation.
type UpdateShape interface {
	Validate() error
	Columns() Fields
}

// NoUpdate is the update shape of resources that cannot be modified after creation.
type NoUpdate struct{}

func (NoUpdate) Validate() error {
	return ValidationError{Reason: "resource is not updatable"}
}

func (NoUpdate) Columns() Fields { return Fields{} }

// requireFields builds a ValidationError listing every required field without a value.
func requireFields(present map[string]bool) error {
	var missing []string
	for name, ok := range present {
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return ValidationError{Fields: missing, Reason: "field required"}
}

// rejectNulls builds a ValidationError listing every non-nullable field sent as an explicit null.
func rejectNulls(null map[string]bool) error {
	var fields []string
	for name, isNull := range null {
		if isNull {
			fields = append(fields, name)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)
	return ValidationError{Fields: fields, Reason: "must not be null"}
}

var (
	Profiles = Definition{
		Name:      "profiles",
		Table:     "profiles",
		Singular:  "profile",
		Key:       []string{"id"},
		KeyKinds:  map[string]FieldKind{"id": FieldUUID},
		Filters:   map[string]FieldKind{"email": FieldString},
		Updatable: true,
	}

	Momentos = Definition{
		Name:     "momentos",
		Table:    "momentos",
		Singular: "momento",
		Key:      []string{"id"},
		KeyKinds: map[string]FieldKind{"id": FieldUUID},
		Filters: map[string]FieldKind{
			"owner_id":   FieldUUID,
			"visibility": FieldString,
		},
		Updatable: true,
	}

	Collections = Definition{
		Name:     "collections",
		Table:    "collections",
		Singular: "collection",
		Key:      []string{"id"},
		KeyKinds: map[string]FieldKind{"id": FieldUUID},
		Filters: map[string]FieldKind{
			"owner_id":   FieldUUID,
			"visibility": FieldString,
		},
		Updatable: true,
	}

	Follows = Definition{
		Name:     "follows",
		Table:    "follows",
		Singular: "follow",
		Key:      []string{"follower_id", "followee_id"},
		KeyKinds: map[string]FieldKind{
			"follower_id": FieldUUID,
			"followee_id": FieldUUID,
		},
		Filters: map[string]FieldKind{
			"follower_id": FieldUUID,
			"followee_id": FieldUUID,
		},
	}

	Likes = Definition{
		Name:     "likes",
		Table:    "likes",
		Singular: "like",
		Key:      []string{"momento_id", "user_id"},
		KeyKinds: map[string]FieldKind{
			"momento_id": FieldUUID,
			"user_id":    FieldUUID,
		},
		Filters: map[string]FieldKind{
			"momento_id": FieldUUID,
			"user_id":    FieldUUID,
		},
	}

	Comments = Definition{
		Name:     "comments",
		Table:    "comments",
		Singular: "comment",
		Key:      []string{"id"},
		KeyKinds: map[string]FieldKind{"id": FieldUUID},
		Filters: map[string]FieldKind{
			"momento_id": FieldUUID,
			"user_id":    FieldUUID,
		},
		Updatable: true,
	}
)
