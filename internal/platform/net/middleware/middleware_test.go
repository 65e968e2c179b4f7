package middleware

import (
	"compress/flate"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	pnet "prsentinel/internal/platform/net"
)

func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestAccessLog_PassesThrough(t *testing.T) {
	t.Parallel()

	h := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "queued")
	}), RequestID(), AccessLog(time.Nanosecond))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/predict", nil))
	if rr.Code != http.StatusAccepted || rr.Body.String() != "queued" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestStatusWriter_Counts(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}
	sw.WriteHeader(http.StatusConflict)
	_, _ = sw.Write([]byte("abc"))
	if sw.status != http.StatusConflict || sw.bytes != 3 || rr.Code != http.StatusConflict {
		t.Fatalf("status=%d bytes=%d", sw.status, sw.bytes)
	}
}

func TestRecoverJSON(t *testing.T) {
	t.Parallel()

	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("weights nil")
	}), RequestID(), RecoverJSON)

	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError || rr.Header().Get("X-Request-ID") != "req-42" {
		t.Fatalf("status=%d header=%q", rr.Code, rr.Header().Get("X-Request-ID"))
	}
	var body pnet.Wire
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.RequestID != "req-42" || body.Error == "" {
		t.Fatalf("body = %+v", body)
	}
}

func TestCompress_GzipWhenAccepted(t *testing.T) {
	t.Parallel()

	h := Compress(flate.BestSpeed)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, strings.Repeat(`{"reconstruction_error":0.1}`, 64))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("encoding = %q", rr.Header().Get("Content-Encoding"))
	}
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	h := CORS(CORSOptions{AllowedOrigins: []string{"https://dash.example"}})(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example" {
		t.Fatalf("allow origin = %q", got)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Fatalf("allow methods = %q", rr.Header().Get("Access-Control-Allow-Methods"))
	}
}
