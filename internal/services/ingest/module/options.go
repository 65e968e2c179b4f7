package module

import (
	"time"

	"prsentinel/internal/platform/config"
	"prsentinel/internal/services/ingest/guardrails"
)

// Options holds configuration options for the ingestion service
type Options struct {
	Tokens       string        `env:"CORE_INGEST_TOKENS"`
	Query        string        `env:"CORE_INGEST_QUERY" validate:"required"`
	TopRepos     int           `env:"CORE_INGEST_TOP_REPOS" validate:"gte=1,lte=1000"`
	PerPage      int           `env:"CORE_INGEST_PER_PAGE" validate:"gte=1,lte=100"`
	MaxPages     int           `env:"CORE_INGEST_MAX_PAGES" validate:"gte=0"`
	FetchDetails bool          `env:"CORE_INGEST_DETAILS"`
	DelayPerRepo time.Duration `env:"CORE_INGEST_DELAY" validate:"gte=0"`
	HTTPTimeout  time.Duration `env:"CORE_INGEST_HTTP_TIMEOUT" validate:"gte=0"`
	MaxRetries   int           `env:"CORE_INGEST_RETRIES" validate:"gte=0"`
	RetryBase    time.Duration `env:"CORE_INGEST_RETRY_BASE" validate:"gte=0"`
	BaseURL      string        `env:"CORE_INGEST_GITHUB_URL" validate:"omitempty,url"`

	Timeouts guardrails.Timeouts
}

// FromConfig reads the ingestion options from config with CORE_INGEST_ prefix
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_INGEST_")
	return Options{
		Tokens:       in.MayString("TOKENS", ""),
		Query:        in.MayString("QUERY", "stars:>100"),
		TopRepos:     in.MayInt("TOP_REPOS", 10),
		PerPage:      in.MayInt("PER_PAGE", 100),
		MaxPages:     in.MayInt("MAX_PAGES", 0),
		FetchDetails: in.MayBool("DETAILS", true),
		DelayPerRepo: in.MayDuration("DELAY", 0),
		HTTPTimeout:  in.MayDuration("HTTP_TIMEOUT", 15*time.Second),
		MaxRetries:   in.MayInt("RETRIES", 5),
		RetryBase:    in.MayDuration("RETRY_BASE", 500*time.Millisecond),
		BaseURL:      in.MayString("GITHUB_URL", ""),
		Timeouts: guardrails.Timeouts{
			Repo: in.MayDuration("REPO_TIMEOUT", 30*time.Minute),
			List: in.MayDuration("LIST_TIMEOUT", 10*time.Minute),
			DB:   in.MayDuration("DB_TIMEOUT", time.Minute),
		},
	}
}
