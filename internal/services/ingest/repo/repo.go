// Package repo provides postgres access for pull request ingestion
package repo

import (
	"context"
	"time"

	"prsentinel/internal/modkit/repokit"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/store"
	"prsentinel/internal/services/ingest/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// UpdatedAt projects only the watermark column for the given ids
func (r *queries) UpdatedAt(ctx context.Context, ids []int64) (map[int64]time.Time, error) {
	out := make(map[int64]time.Time, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	type stamp struct {
		id int64
		at time.Time
	}
	stamps, err := store.Many(ctx, r.q, func(row store.Row) (stamp, error) {
		var st stamp
		err := row.Scan(&st.id, &st.at)
		return st, err
	}, `
		SELECT pr_id, updated_at
		FROM pull_requests
		WHERE pr_id = ANY($1::bigint[])
	`, ids)
	if err != nil {
		return nil, err
	}
	for _, st := range stamps {
		out[st.id] = st.at.UTC()
	}
	return out, nil
}

const upsertSQL = `
	INSERT INTO pull_requests (
		pr_id, repo_name, number,
		additions, deletions, changed_files, assignees_count, commits_count,
		author_association, labels, title, body, state,
		created_at, merged_at, closed_at, updated_at, ingested_at
	) VALUES (
		$1, $2, $3,
		$4, $5, $6, $7, $8,
		$9, $10::text[], $11, $12, $13,
		$14, $15, $16, $17, now()
	)
	ON CONFLICT (pr_id) DO UPDATE SET
		repo_name          = excluded.repo_name,
		number             = excluded.number,
		additions          = excluded.additions,
		deletions          = excluded.deletions,
		changed_files      = excluded.changed_files,
		assignees_count    = excluded.assignees_count,
		commits_count      = excluded.commits_count,
		author_association = excluded.author_association,
		labels             = excluded.labels,
		title              = excluded.title,
		body               = excluded.body,
		state              = excluded.state,
		created_at         = excluded.created_at,
		merged_at          = excluded.merged_at,
		closed_at          = excluded.closed_at,
		updated_at         = excluded.updated_at,
		ingested_at        = now()
	WHERE excluded.updated_at > pull_requests.updated_at
`

// UpsertPullRequests writes every record through the guarded upsert
// callers run it inside one transaction per repository
func (r *queries) UpsertPullRequests(ctx context.Context, prs []domain.PullRequest) (int, error) {
	written := 0
	for _, p := range prs {
		labels := p.Labels
		if labels == nil {
			labels = []string{}
		}
		var created any
		if !p.CreatedAt.IsZero() {
			created = p.CreatedAt
		}
		tag, err := r.q.Exec(ctx, upsertSQL,
			p.ID, p.RepoName, p.Number,
			p.Additions, p.Deletions, p.ChangedFiles, p.AssigneesCount, p.CommitsCount,
			p.AuthorAssociation, labels, p.Title, p.Body, p.State,
			created, p.MergedAt, p.ClosedAt, p.UpdatedAt,
		)
		if err != nil {
			return written, perr.FromPostgresf(err, "upsert pull request %d", p.ID)
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}
