package github

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "prsentinel/internal/platform/errors"
)

// rateWait reads Retry-After, then an exhausted X-RateLimit-Reset. Zero when
// neither says to wait
func rateWait(h http.Header, now time.Time) time.Duration {
	if s, err := strconv.Atoi(h.Get("Retry-After")); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	if h.Get("X-RateLimit-Remaining") != "0" {
		return 0
	}
	sec, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return 0
	}
	return max(time.Unix(sec, 0).Sub(now), 0)
}

func codeForStatus(status int) perr.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return perr.ErrorCodeNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return perr.ErrorCodeUnauthorized
	case status == http.StatusUnprocessableEntity:
		return perr.ErrorCodeInvalidArgument
	case status >= 500:
		return perr.ErrorCodeUnavailable
	default:
		return perr.ErrorCodeUnknown
	}
}

// nextLink returns the rel="next" target of a Link header
func nextLink(h string) string {
	for part := range strings.SplitSeq(h, ",") {
		target, params, ok := strings.Cut(part, ";")
		if !ok {
			continue
		}
		target = strings.TrimSpace(target)
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for p := range strings.SplitSeq(params, ";") {
			if strings.TrimSpace(p) == `rel="next"` {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}

func splitTokens(csv string) []string {
	var out []string
	for t := range strings.SplitSeq(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 4096))
	_ = rc.Close()
}
