package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"prsentinel/internal/platform/net/middleware"
)

const slowRequest = 500 * time.Millisecond

// CommonStack is the middleware every versioned module gets
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLog(slowRequest),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// ProbeStack is the lean stack for unversioned routes like /predict and the
// probes. No cache headers, no compression and no heartbeat so responses stay
// byte-for-byte what callers expect
func ProbeStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(slowRequest),
	}
}
