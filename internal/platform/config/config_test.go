package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	perr "prsentinel/internal/platform/errors"
	kit "prsentinel/internal/platform/testkit"
)

func TestMay(t *testing.T) {
	c := New().Prefix("TRAIN_")
	t.Setenv("TRAIN_EPOCHS", " 12 ")
	t.Setenv("TRAIN_LR", "0.01")
	t.Setenv("TRAIN_SHUFFLE", "false")
	t.Setenv("TRAIN_LEASE_TTL", "90s")
	t.Setenv("TRAIN_BAD", "lots")
	t.Setenv("TRAIN_BLANK", "   ")

	if got := c.MayInt("EPOCHS", 10); got != 12 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayFloat64("LR", 1e-3); got != 0.01 {
		t.Fatalf("MayFloat64 = %v", got)
	}
	if c.MayBool("SHUFFLE", true) {
		t.Fatalf("MayBool = true")
	}
	if got := c.MayDuration("LEASE_TTL", time.Minute); got != 90*time.Second {
		t.Fatalf("MayDuration = %v", got)
	}

	// unparsable and blank values fall back
	if c.MayInt("BAD", 3) != 3 || c.MayFloat64("BAD", 2.5) != 2.5 || !c.MayBool("BAD", true) {
		t.Fatalf("bad values did not fall back")
	}
	if c.MayDuration("BAD", time.Second) != time.Second {
		t.Fatalf("bad duration did not fall back")
	}
	if got := c.MayString("BLANK", "def"); got != "def" {
		t.Fatalf("MayString blank = %q", got)
	}
	if got := New().MayString("TRAIN_EPOCHS", ""); got != "12" {
		t.Fatalf("root view = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("PG_")
	t.Setenv("PG_URL", " postgres://localhost/prs ")
	if got := c.MustString("URL"); got != "postgres://localhost/prs" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestValidate(t *testing.T) {
	type opts struct {
		Dim    int    `env:"ENCODE_VOCAB_SIZE" validate:"gte=1"`
		Lease  string `env:"TRAIN_LEASE" validate:"oneof=pg redis"`
		Bucket string `validate:"required"`
	}

	if err := Validate(opts{Dim: 1000, Lease: "pg", Bucket: "b"}); err != nil {
		t.Fatalf("valid opts: %v", err)
	}

	err := Validate(opts{Dim: 0, Lease: "etcd"})
	if err == nil {
		t.Fatal("expected error")
	}
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	msg := err.Error()
	for _, want := range []string{"Bucket failed required", "ENCODE_VOCAB_SIZE failed gte=1", "TRAIN_LEASE failed oneof=pg redis"} {
		kit.MustContain(t, msg, want)
	}

	kit.MustPanic(t, func() { MustValidate(opts{}) })
}

func TestLoadDotenv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	if err := os.WriteFile(file, []byte("PRS_DOTENV_A=from-file\nPRS_DOTENV_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PRS_DOTENV_A", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("PRS_DOTENV_B") })

	LoadDotenv(file, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("PRS_DOTENV_A"); got != "from-env" {
		t.Fatalf("A = %q", got)
	}
	if got := os.Getenv("PRS_DOTENV_B"); got != "from-file" {
		t.Fatalf("B = %q", got)
	}
}
