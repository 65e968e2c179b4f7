package module

import (
	"strings"
	"testing"
	"time"

	"prsentinel/internal/platform/config"
)

func TestFromConfig_Defaults(t *testing.T) {
	opts := FromConfig(config.New())
	if opts.Query != "stars:>100" || opts.TopRepos != 10 || opts.PerPage != 100 || !opts.FetchDetails {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	if opts.Timeouts.DB != time.Minute {
		t.Fatalf("db timeout = %v", opts.Timeouts.DB)
	}
	if err := config.Validate(opts); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFromConfig_Invalid(t *testing.T) {
	t.Setenv("CORE_INGEST_TOP_REPOS", "0")
	t.Setenv("CORE_INGEST_PER_PAGE", "500")
	err := config.Validate(FromConfig(config.New()))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"CORE_INGEST_TOP_REPOS", "CORE_INGEST_PER_PAGE"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not name %s", err, want)
		}
	}
}
