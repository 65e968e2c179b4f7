package module

import (
	"context"
	"errors"
	"strings"
	"testing"

	"prsentinel/internal/core/model"
	"prsentinel/internal/modkit"
	"prsentinel/internal/platform/blob"
	"prsentinel/internal/platform/config"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/store"
)

type nopTx struct{ store.RowQuerier }

func (nopTx) Tx(ctx context.Context, fn func(store.RowQuerier) error) error { return fn(nil) }

type loaderFunc func(ctx context.Context, ref string) (*model.Model, error)

func (f loaderFunc) Load(ctx context.Context, ref string) (*model.Model, error) { return f(ctx, ref) }

func deps(t *testing.T) modkit.Deps {
	t.Helper()
	fs, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return modkit.Deps{Cfg: config.New(), PG: nopTx{}, Blob: fs}
}

func TestFromConfig_Defaults(t *testing.T) {
	opts := FromConfig(config.New())
	if opts.VocabSize != 1000 || opts.LabelThreshold != 5000 || opts.PartitionRows != 50000 {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	if !opts.Since.IsZero() {
		t.Fatalf("since should be unset")
	}
	if err := config.Validate(opts); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFromConfig_Invalid(t *testing.T) {
	t.Setenv("CORE_ENCODE_VOCAB_SIZE", "0")
	t.Setenv("CORE_ENCODE_REPO", "norepo")
	err := config.Validate(FromConfig(config.New()))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"CORE_ENCODE_VOCAB_SIZE", "CORE_ENCODE_REPO"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not name %s", err, want)
		}
	}
}

func TestNew_RequiresStores(t *testing.T) {
	_, err := New(modkit.Deps{Cfg: config.New()}, nil)
	if !perr.IsCode(err, perr.ErrorCodeFailedPrecondition) {
		t.Fatalf("err = %v, want failed precondition", err)
	}
}

func TestNew_VocabFromModelNeedsLoader(t *testing.T) {
	t.Setenv("CORE_ENCODE_VOCAB_FROM_MODEL", "latest")
	if _, err := New(deps(t), nil); err == nil {
		t.Fatalf("expected error without a loader")
	}

	m, err := New(deps(t), loaderFunc(func(context.Context, string) (*model.Model, error) {
		return nil, errors.New("registry empty")
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Name() != "encode" || m.Runner() == nil {
		t.Fatalf("module not wired")
	}
}

func TestNew_VocabFromRunValidatesID(t *testing.T) {
	t.Setenv("CORE_ENCODE_VOCAB_FROM_RUN", "../x")
	if _, err := New(deps(t), nil); err == nil {
		t.Fatalf("expected run id validation error")
	}
}
