package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "prsentinel/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestMountProfiler(t *testing.T) {
	t.Parallel()

	for _, enabled := range []bool{true, false} {
		mux := chi.NewRouter()
		phttp.MountProfiler(phttp.AdaptChi(mux), "/debug", enabled)

		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
		if enabled && rr.Code != http.StatusOK {
			t.Fatalf("enabled profiler status = %d", rr.Code)
		}
		if !enabled && rr.Code != http.StatusNotFound {
			t.Fatalf("disabled profiler status = %d", rr.Code)
		}
	}
}
