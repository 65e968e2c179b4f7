package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "prsentinel/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func serve(t *testing.T, d Deps, path string) map[string]any {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("%s status = %d body=%s", path, rr.Code, rr.Body.String())
	}
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return env.Data
}

func TestReady_ReportsEachBackend(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp 127.0.0.1:9000: connect: connection refused") }

	got := serve(t, Deps{Checks: []Check{{Name: "pg", Ping: ok}, {Name: "ch", Ping: down}}}, "/ready")
	if got["status"] != "fail" {
		t.Fatalf("status = %v", got["status"])
	}
	checks := got["checks"].([]any)
	if len(checks) != 2 {
		t.Fatalf("checks = %v", checks)
	}
	ch := checks[1].(map[string]any)
	if ch["name"] != "ch" || ch["status"] != "fail" || ch["error"] == "" {
		t.Fatalf("ch check = %v", ch)
	}

	got = serve(t, Deps{Checks: []Check{{Name: "redis", Ping: ok}}}, "/ready")
	if got["status"] != "ok" {
		t.Fatalf("healthy status = %v", got["status"])
	}
}

func TestReady_NoBackendsIsOK(t *testing.T) {
	t.Parallel()

	got := serve(t, Deps{}, "/ready")
	if got["status"] != "ok" || len(got["checks"].([]any)) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestService_ModelID(t *testing.T) {
	t.Parallel()

	started := time.Now().Add(-90 * time.Second)
	d := Deps{
		ServiceName: "prsentinel-api",
		StartedAt:   started,
		ModelID:     func() (string, bool) { return "m-20261016-080000-1a2b3c", true },
	}
	got := serve(t, d, "/service")
	if got["name"] != "prsentinel-api" || got["model_id"] != "m-20261016-080000-1a2b3c" {
		t.Fatalf("got %v", got)
	}
	if up := got["uptime"].(float64); up < 90 {
		t.Fatalf("uptime = %v", up)
	}

	d.ModelID = func() (string, bool) { return "", false }
	if got := serve(t, d, "/service"); got["model_id"] != nil {
		t.Fatalf("unloaded model should omit model_id: %v", got)
	}
}
