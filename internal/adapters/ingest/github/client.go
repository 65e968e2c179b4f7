// Package github is the REST v3 client the ingest job reads repositories and
// pull requests through
package github

import (
	"cmp"
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
)

// Options configures the Client. Zero values take defaults
type Options struct {
	BaseURL   string        // https://api.github.com
	UserAgent string        // prsentinel-ingest
	Timeout   time.Duration // 10s per request

	// TokensCSV is a comma separated token list rotated per request. Empty
	// runs unauthenticated at 60 requests an hour
	TokensCSV string

	MaxRetries int           // 5
	RetryBase  time.Duration // 500ms, doubled per attempt up to 30s
}

// Client issues authenticated GETs with retry on transport errors, 5xx
// and rate limiting
type Client struct {
	http   *http.Client
	opts   Options
	tokens []string
	turn   atomic.Uint32
	log    *logger.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient applies defaults to o
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(cmp.Or(o.BaseURL, "https://api.github.com"), "/")
	o.UserAgent = cmp.Or(o.UserAgent, "prsentinel-ingest")
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 500 * time.Millisecond
	}
	return &Client{
		http:   &http.Client{Timeout: o.Timeout},
		opts:   o,
		tokens: splitTokens(o.TokensCSV),
		log:    logger.Named("github"),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (c *Client) token() string {
	if len(c.tokens) == 0 {
		return ""
	}
	return c.tokens[int(c.turn.Add(1))%len(c.tokens)]
}

// get fetches path, relative to BaseURL or absolute for pagination links.
// A nil error means a 2xx response whose body the caller closes
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.opts.BaseURL + path
	}
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, wait, err := c.try(ctx, url, attempt)
		if err == nil {
			return resp, nil
		}
		if wait == 0 || attempt >= c.opts.MaxRetries {
			return nil, err
		}
		c.log.Warn().Err(err).Str("path", path).Int("attempt", attempt).Dur("retry_in", wait).Msg("github retrying")
		c.sleep(wait)
	}
}

// try performs one request. It returns the response on success, or the
// error together with how long to wait before the next attempt. A zero wait
// with an error is terminal
func (c *Client) try(ctx context.Context, url string, attempt int) (*http.Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "github: build request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "token "+tok)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, c.backoff(attempt), perr.Wrap(err, perr.ErrorCodeUnavailable, "github: transport")
	}
	c.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Str("rate_remaining", resp.Header.Get("X-RateLimit-Remaining")).
		Msg("github response")

	switch s := resp.StatusCode; {
	case s >= 200 && s < 300:
		return resp, 0, nil
	case s == http.StatusTooManyRequests || s == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		drain(resp.Body)
		wait := cmp.Or(rateWait(resp.Header, c.now()), c.backoff(attempt))
		return nil, wait, perr.Newf(perr.ErrorCodeTooManyRequests, "github: rate limited (%d)", s)
	case s == http.StatusBadGateway || s == http.StatusServiceUnavailable || s == http.StatusGatewayTimeout:
		drain(resp.Body)
		return nil, c.backoff(attempt), perr.Newf(perr.ErrorCodeUnavailable, "github: upstream %d", s)
	default:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, 0, perr.Newf(codeForStatus(s), "github: unexpected status %d: %s", s, strings.TrimSpace(string(tail)))
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	return min(c.opts.RetryBase<<min(attempt, 16), 30*time.Second)
}
