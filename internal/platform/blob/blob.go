// Package blob provides a small object store seam with GCS and filesystem backends
package blob

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"prsentinel/internal/platform/config"
	perr "prsentinel/internal/platform/errors"
)

// ErrNotFound is returned when a key does not exist
var ErrNotFound = perr.New(perr.ErrorCodeNotFound, "blob: object not found")

// Store is the object store surface the pipeline needs
// keys are slash separated and never start with a slash
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a backend
type Config struct {
	// URL is gs://bucket/optional/prefix or file:///abs/dir (a bare path works too)
	URL string `env:"SERVICE_BLOB_URL" validate:"required"`

	// Credentials for GCS; both empty means application default credentials
	CredentialsFile string `env:"SERVICE_BLOB_CREDENTIALS_FILE"`
	CredentialsJSON string `env:"SERVICE_BLOB_CREDENTIALS_JSON"`
}

// FromConfig reads SERVICE_BLOB_URL and the optional GCS credentials
func FromConfig(root config.Conf) Config {
	in := root.Prefix("SERVICE_BLOB_")
	return Config{
		URL:             in.MayString("URL", ""),
		CredentialsFile: in.MayString("CREDENTIALS_FILE", ""),
		CredentialsJSON: in.MayString("CREDENTIALS_JSON", ""),
	}
}

// Open builds the backend named by cfg.URL
func Open(ctx context.Context, cfg Config) (Store, error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "blob: empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "blob: bad url")
	}
	switch u.Scheme {
	case "gs":
		return NewGCS(ctx, u.Host, strings.Trim(u.Path, "/"), cfg)
	case "file":
		return NewFS(u.Path)
	case "":
		return NewFS(raw)
	default:
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "blob: unsupported scheme %q", u.Scheme)
	}
}

// PutBytes writes b under key
func PutBytes(ctx context.Context, s Store, key string, b []byte) error {
	return s.Put(ctx, key, bytes.NewReader(b))
}

// ReadAll fetches the whole object under key
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Exists reports whether key is present
func Exists(ctx context.Context, s Store, key string) (bool, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return false, nil
		}
		return false, err
	}
	_ = rc.Close()
	return true, nil
}

// Join builds a key from parts, dropping empty segments and stray slashes
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}
