package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestOptionalUnmarshal(t *testing.T) {
	var payload struct {
		Absent  Optional[string] `json:"absent"`
		Null    Optional[string] `json:"null"`
		Value   Optional[string] `json:"value"`
		Empty   Optional[string] `json:"empty"`
		Invalid Optional[int]    `json:"invalid"`
	}

	err := json.Unmarshal([]byte(`{"null":null,"value":"x","empty":""}`), &payload)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if payload.Absent.IsSet() {
		t.Fatalf("absent field should not be set")
	}
	if !payload.Null.IsSet() || !payload.Null.IsNull() || payload.Null.HasValue() {
		t.Fatalf("null field should be set and null")
	}
	if v, ok := payload.Value.Get(); !ok || v != "x" {
		t.Fatalf("expected value x got %q %v", v, ok)
	}
	if v, ok := payload.Empty.Get(); !ok || v != "" {
		t.Fatalf("empty string is a value, got %q %v", v, ok)
	}

	if err := json.Unmarshal([]byte(`{"invalid":"nope"}`), &payload); err == nil {
		t.Fatalf("expected type mismatch to fail")
	}
}

func TestOptionalMarshal(t *testing.T) {
	b, err := json.Marshal(struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
	}{A: Some("x"), B: Null[string]()})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(b) != `{"a":"x","b":null}` {
		t.Fatalf("unexpected json %s", b)
	}
}

func TestMomentoCreateColumns(t *testing.T) {
	owner := uuid.New()
	var payload MomentoCreate
	err := json.Unmarshal([]byte(`{"owner_id":"`+owner.String()+`","image_path":"a.jpg","model_path":"a.glb","title":null,"taken_at":"2024-05-01T21:00:00+09:00"}`), &payload)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := payload.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	cols := payload.Columns()
	if cols["owner_id"] != owner.String() {
		t.Fatalf("expected owner_id as canonical string got %v", cols["owner_id"])
	}
	if _, ok := cols["title"]; ok {
		t.Fatalf("null title must be omitted on create")
	}
	if _, ok := cols["note"]; ok {
		t.Fatalf("absent note must be omitted on create")
	}
	if cols["visibility"] != VisibilityPublic {
		t.Fatalf("expected default visibility got %v", cols["visibility"])
	}
	taken, ok := cols["taken_at"].(time.Time)
	if !ok || taken.Location() != time.UTC || taken.Hour() != 12 {
		t.Fatalf("expected taken_at normalized to UTC got %v", cols["taken_at"])
	}
}

func TestMomentoCreateValidate(t *testing.T) {
	err := MomentoCreate{ImagePath: Null[string]()}.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error got %v", err)
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError got %T", err)
	}
	want := []string{"image_path", "model_path", "owner_id"}
	if len(verr.Fields) != len(want) {
		t.Fatalf("expected %v got %v", want, verr.Fields)
	}
	for i := range want {
		if verr.Fields[i] != want[i] {
			t.Fatalf("expected %v got %v", want, verr.Fields)
		}
	}
}

func TestCreateRejectsNullDefault(t *testing.T) {
	owner := uuid.New()

	momento := MomentoCreate{
		OwnerID:    Some(owner),
		ImagePath:  Some("a.jpg"),
		ModelPath:  Some("a.glb"),
		Visibility: Null[string](),
	}
	var verr ValidationError
	if err := momento.Validate(); !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0] != "visibility" {
		t.Fatalf("expected visibility rejected got %v", err)
	}

	collection := CollectionCreate{OwnerID: Some(owner), Name: Some("trip"), Visibility: Null[string]()}
	if err := collection.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error got %v", err)
	}

	collection.Visibility = Optional[string]{}
	if err := collection.Validate(); err != nil {
		t.Fatalf("absent visibility should validate: %v", err)
	}
	if cols := collection.Columns(); cols["visibility"] != VisibilityPublic {
		t.Fatalf("expected default visibility got %v", cols["visibility"])
	}
}

func TestUpdateColumns(t *testing.T) {
	cases := []struct {
		name    string
		payload UpdateShape
		body    string
		want    Fields
	}{
		{"momento title", &MomentoUpdate{}, `{"title":"t"}`, Fields{"title": "t"}},
		{"momento clear note", &MomentoUpdate{}, `{"note":null}`, Fields{"note": nil}},
		{"momento null required", &MomentoUpdate{}, `{"image_path":null}`, Fields{}},
		{"profile clear avatar", &ProfileUpdate{}, `{"avatar_image_path":null,"full_name":null}`, Fields{"avatar_image_path": nil}},
		{"collection", &CollectionUpdate{}, `{"name":"trip","visibility":"private"}`, Fields{"name": "trip", "visibility": "private"}},
		{"comment", &CommentUpdate{}, `{}`, Fields{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := json.Unmarshal([]byte(tc.body), tc.payload); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			got := tc.payload.Columns()
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
			for col, v := range tc.want {
				gv, ok := got[col]
				if !ok || gv != v {
					t.Fatalf("column %s: expected %v got %v", col, v, gv)
				}
			}
		})
	}
}
