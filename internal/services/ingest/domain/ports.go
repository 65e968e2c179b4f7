package domain

import (
	"context"
	"time"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context) (Summary, error)
}

// Source is the upstream code host
type Source interface {
	SearchRepositories(ctx context.Context, query, sort, order string, limit int) ([]Repo, error)
	ListPulls(ctx context.Context, owner, name, state string, perPage, maxPages int) ([]Pull, error)
	PullDetail(ctx context.Context, owner, name string, number int) (Pull, error)
}

// StorageRepo is the record store surface ingestion needs
type StorageRepo interface {
	// UpdatedAt returns the stored updated_at for each id that exists. It reads only that column
	UpdatedAt(ctx context.Context, ids []int64) (map[int64]time.Time, error)

	// UpsertPullRequests writes full records. A row whose stored updated_at is not older
	// than the incoming one is left untouched. Returns rows written
	UpsertPullRequests(ctx context.Context, prs []PullRequest) (int, error)
}
