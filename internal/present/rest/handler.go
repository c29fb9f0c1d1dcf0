package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/momento/internal/domain"
	"github.com/totegamma/momento/internal/present/rest/presenter"
)

const version = "1.0"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Realtime streams change events of the requested resources.
type Realtime interface {
	Realtime(ctx context.Context, request <-chan []string, response chan<- domain.Event)
}

type Handler struct {
	store     Pinger
	signal    Realtime
	resources []Routes
}

// NewHandler mounts resources. signal may be nil, in which case /realtime is not served.
func NewHandler(store Pinger, signal Realtime, resources ...Routes) *Handler {
	return &Handler{
		store:     store,
		signal:    signal,
		resources: resources,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/momento", h.handleWellKnown)
	e.GET("/healthz", h.handleHealth)
	if h.signal != nil {
		e.GET("/realtime", h.handleRealtime)
	}
	for _, r := range h.resources {
		r.RegisterRoutes(e)
	}
}

type Endpoint struct {
	Template string    `json:"template"`
	Methods  []string  `json:"methods"`
	Query    *[]string `json:"query,omitempty"`
}

type WellKnown struct {
	Version   string              `json:"version"`
	Realtime  bool                `json:"realtime"`
	Endpoints map[string]Endpoint `json:"endpoints"`
}

func (h *Handler) handleWellKnown(c echo.Context) error {
	endpoints := map[string]Endpoint{}
	for _, r := range h.resources {
		def := r.Definition()

		var query []string
		for name := range def.Filters {
			query = append(query, name)
		}
		sort.Strings(query)

		item := "/" + def.Name
		for _, col := range def.Key {
			item += "/{" + col + "}"
		}
		itemMethods := []string{http.MethodGet, http.MethodDelete}
		if def.Updatable {
			itemMethods = []string{http.MethodGet, http.MethodPatch, http.MethodDelete}
		}

		endpoints[def.Name] = Endpoint{
			Template: "/" + def.Name,
			Methods:  []string{http.MethodGet, http.MethodPost},
			Query:    &query,
		}
		endpoints[def.Singular] = Endpoint{
			Template: item,
			Methods:  itemMethods,
		}
	}

	return presenter.OK(c, WellKnown{
		Version:   version,
		Realtime:  h.signal != nil,
		Endpoints: endpoints,
	})
}

func (h *Handler) handleHealth(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return presenter.ServiceUnavailable(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type      string   `json:"type"`
	Resources []string `json:"resources"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan domain.Event)

	go h.signal.Realtime(ctx, input, output)

	known := map[string]bool{}
	for _, r := range h.resources {
		known[r.Definition().Name] = true
	}

	go func() {
		defer cancel()
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {
				var wsErr *websocket.CloseError
				if errors.As(err, &wsErr) {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				resources := make([]string, 0, len(req.Resources))
				for _, name := range req.Resources {
					if known[name] {
						resources = append(resources, name)
					}
				}
				select {
				case input <- resources:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, "Socket subscribe",
					slog.Any("resources", resources),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
