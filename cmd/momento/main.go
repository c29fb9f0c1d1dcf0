package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/momento/internal/application"
	"github.com/totegamma/momento/internal/config"
	"github.com/totegamma/momento/internal/infra/database"
	"github.com/totegamma/momento/internal/infra/tracing"
	"github.com/totegamma/momento/internal/present/rest"
	"github.com/totegamma/momento/internal/service"
	"github.com/totegamma/momento/internal/usecase"
)

var (
	version = "unknown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		slog.Error("momento gateway stopped", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Deferred cleanup, such as
// flushing buffered spans, always runs before it returns.
func run(ctx context.Context, configPath string) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if conf.Server.EnableTrace {
		shutdown, err := tracing.SetupTraceProvider(ctx, conf.Server.TraceEndpoint, "momento", version)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				slog.Error("failed to flush traces", slog.String("error", err.Error()))
			}
		}()
	}

	store, err := application.NewStore(conf.Store)
	if err != nil {
		return err
	}

	var signals *service.SignalService
	var events usecase.EventPublisher
	var realtime rest.Realtime
	if conf.Server.RedisAddr != "" {
		rdb := database.NewRedis(conf.Server)
		signals = service.NewSignalService(rdb)
		events = signals
		realtime = signals
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("momento"))
	}

	h := rest.NewHandler(store, realtime, application.Resources(store, events)...)
	h.RegisterRoutes(e)

	slog.Info(
		"momento gateway starting",
		slog.String("addr", conf.Server.Addr),
		slog.String("backend", conf.Store.Backend),
		slog.Bool("realtime", realtime != nil),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(conf.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("momento gateway shutting down")
	return e.Shutdown(shutdownCtx)
}
