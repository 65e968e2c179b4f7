package http_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"prsentinel/internal/platform/config"
	phttp "prsentinel/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestServer_RunServesUntilCancelled(t *testing.T) {
	addr := freeAddr(t)
	t.Setenv("API_PORT", addr)
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")

	hooked := false
	srv := phttp.NewServer(config.New(), func(*chi.Mux) { hooked = true })
	if !hooked {
		t.Fatalf("option hook not called")
	}
	srv.Router().Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	var resp *http.Response
	var err error
	for range 50 {
		resp, err = http.Get("http://" + addr + "/health")
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("clean shutdown returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestServer_RunReturnsListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	t.Setenv("API_PORT", l.Addr().String())

	if err := phttp.NewServer(config.New()).Run(context.Background()); err == nil {
		t.Fatalf("expected address in use")
	}
}
