package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().String()
}

func TestRunFlushesTracesOnShutdown(t *testing.T) {
	var exported atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			exported.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	addr := freeAddr(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	conf := fmt.Sprintf(
		"server:\n  addr: %q\n  enableTrace: true\n  traceEndpoint: %q\nstore:\n  backend: memory\n",
		addr, strings.TrimPrefix(collector.URL, "http://"),
	)
	if err := os.WriteFile(path, []byte(conf), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx, path) }()

	up := false
	for i := 0; i < 100 && !up; i++ {
		res, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			res.Body.Close()
			up = res.StatusCode == http.StatusOK
		}
		if !up {
			time.Sleep(20 * time.Millisecond)
		}
	}
	if !up {
		t.Fatalf("server never became healthy")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("run did not return after cancellation")
	}

	if exported.Load() == 0 {
		t.Fatalf("expected pending spans flushed before run returned")
	}
}

func TestRunReportsConfigurationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store:\n  backend: dynamo\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := run(context.Background(), path); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}
