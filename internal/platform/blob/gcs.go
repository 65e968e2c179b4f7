package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	perr "prsentinel/internal/platform/errors"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS stores objects in a single bucket under an optional key prefix
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS opens a storage client using explicit credentials when given
func NewGCS(ctx context.Context, bucket, prefix string, cfg Config) (*GCS, error) {
	if bucket == "" {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "blob: gcs bucket missing")
	}
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "blob: gcs client")
	}
	return &GCS{client: c, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (g *GCS) full(key string) string { return Join(g.prefix, key) }

func (g *GCS) rel(name string) string {
	if g.prefix == "" {
		return name
	}
	return strings.TrimPrefix(name, g.prefix+"/")
}

// Put uploads r under key, replacing any existing object
func (g *GCS) Put(ctx context.Context, key string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(g.full(key)).NewWriter(ctx)
	if strings.HasSuffix(key, ".json") {
		w.ContentType = "application/json"
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("blob: write gs://%s/%s: %w", g.bucket, g.full(key), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("blob: close gs://%s/%s: %w", g.bucket, g.full(key), err)
	}
	return nil
}

type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

// Get opens a reader for key; the caller closes it
func (g *GCS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	r, err := g.client.Bucket(g.bucket).Object(g.full(key)).NewReader(ctx)
	if err != nil {
		cancel()
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, perr.WithOp(ErrNotFound, key)
		}
		return nil, fmt.Errorf("blob: read gs://%s/%s: %w", g.bucket, g.full(key), err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

// List returns keys under prefix relative to the store root, in lexical order
func (g *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: g.full(prefix)})
	out := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, g.rel(attrs.Name))
	}
	return out, nil
}

// Delete removes key; missing keys are not an error
func (g *GCS) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := g.client.Bucket(g.bucket).Object(g.full(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("blob: delete gs://%s/%s: %w", g.bucket, g.full(key), err)
	}
	return nil
}

// Close releases the storage client
func (g *GCS) Close() error { return g.client.Close() }
