package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/momento/internal/domain"
	"github.com/totegamma/momento/internal/present/rest/presenter"
	"github.com/totegamma/momento/internal/usecase"
)

// Routes is a resource endpoint set mounted by Handler.
type Routes interface {
	Definition() domain.Definition
	RegisterRoutes(e *echo.Echo)
}

// ResourceHandler exposes one ResourceUsecase over HTTP.
type ResourceHandler[T any, C domain.CreateShape, U domain.UpdateShape] struct {
	uc  *usecase.ResourceUsecase[T, C, U]
	def domain.Definition
}

func NewResourceHandler[T any, C domain.CreateShape, U domain.UpdateShape](uc *usecase.ResourceUsecase[T, C, U]) *ResourceHandler[T, C, U] {
	return &ResourceHandler[T, C, U]{uc: uc, def: uc.Definition()}
}

func (h *ResourceHandler[T, C, U]) Definition() domain.Definition {
	return h.def
}

func (h *ResourceHandler[T, C, U]) RegisterRoutes(e *echo.Echo) {
	base := "/" + h.def.Name
	item := base + h.def.KeyPath()

	e.GET(base, h.handleList)
	e.POST(base, h.handleCreate)
	e.GET(item, h.handleGet)
	if h.def.Updatable {
		e.PATCH(item, h.handleUpdate)
	}
	e.DELETE(item, h.handleDelete)
}

func (h *ResourceHandler[T, C, U]) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	// unlisted and empty query parameters are ignored
	filters := domain.Fields{}
	for name, kind := range h.def.Filters {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := kind.Parse(name, raw)
		if err != nil {
			return presenter.UnprocessableEntity(c, err)
		}
		filters[name] = v
	}

	rows, err := h.uc.List(ctx, filters)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, rows)
}

func (h *ResourceHandler[T, C, U]) handleGet(c echo.Context) error {
	ctx := c.Request().Context()

	key, err := h.key(c)
	if err != nil {
		return presenter.UnprocessableEntity(c, err)
	}

	row, err := h.uc.Get(ctx, key)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, row)
}

func (h *ResourceHandler[T, C, U]) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	var payload C
	if err := decodeBody(c, &payload); err != nil {
		return presenter.UnprocessableEntity(c, err)
	}

	row, err := h.uc.Create(ctx, payload)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, row)
}

func (h *ResourceHandler[T, C, U]) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	key, err := h.key(c)
	if err != nil {
		return presenter.UnprocessableEntity(c, err)
	}

	var payload U
	if err := decodeBody(c, &payload); err != nil {
		return presenter.UnprocessableEntity(c, err)
	}

	row, err := h.uc.Update(ctx, key, payload)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, row)
}

func (h *ResourceHandler[T, C, U]) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	key, err := h.key(c)
	if err != nil {
		return presenter.UnprocessableEntity(c, err)
	}

	if err := h.uc.Delete(ctx, key); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

// key reads the identity columns from the path.
func (h *ResourceHandler[T, C, U]) key(c echo.Context) (domain.Fields, error) {
	key := domain.Fields{}
	for _, col := range h.def.Key {
		v, err := h.def.KeyKinds[col].Parse(col, c.Param(col))
		if err != nil {
			return nil, err
		}
		key[col] = v
	}
	return key, nil
}

// decodeBody rejects bodies that are not exactly one JSON object of known fields.
// Field names must match exactly; encoding/json alone would fold their case.
func decodeBody(c echo.Context, dst any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return domain.ValidationError{Reason: "failed to read request body: " + err.Error()}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.ValidationError{Reason: "request body required"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	if fields == nil {
		return domain.ValidationError{Reason: "request body must be a JSON object"}
	}

	known := jsonFields(reflect.TypeOf(dst))
	var unknown []string
	for name := range fields {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return domain.ValidationError{Fields: unknown, Reason: "unknown field"}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return domain.ValidationError{Reason: "invalid request body: " + err.Error()}
	}
	return nil
}

// jsonFields lists the JSON names of the struct fields behind t.
func jsonFields(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	names := map[string]bool{}
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = true
	}
	return names
}
