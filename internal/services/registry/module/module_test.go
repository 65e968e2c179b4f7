package module

import (
	"context"
	"path/filepath"
	"testing"

	"prsentinel/internal/modkit"
	"prsentinel/internal/platform/blob"
	"prsentinel/internal/platform/config"
	perr "prsentinel/internal/platform/errors"
)

func TestNew_SQLite(t *testing.T) {
	t.Setenv("SERVICE_REGISTRY_DSN", "sqlite://"+filepath.Join(t.TempDir(), "reg.db"))
	fs, err := blob.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(context.Background(), modkit.Deps{Cfg: config.New(), Blob: fs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()
	if m.Name() != "registry" || m.Registry() == nil {
		t.Fatalf("module not wired")
	}
	if _, ok := m.Ports().(Ports); !ok {
		t.Fatalf("Ports has wrong type")
	}
}

func TestNew_RequiresDSNAndBlob(t *testing.T) {
	t.Setenv("SERVICE_REGISTRY_DSN", "")
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	if _, err := New(context.Background(), modkit.Deps{Cfg: config.New()}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("missing dsn: %v", err)
	}

	t.Setenv("SERVICE_REGISTRY_DSN", "sqlite://"+filepath.Join(t.TempDir(), "reg.db"))
	if _, err := New(context.Background(), modkit.Deps{Cfg: config.New()}); !perr.IsCode(err, perr.ErrorCodeFailedPrecondition) {
		t.Fatalf("missing blob: %v", err)
	}
}
