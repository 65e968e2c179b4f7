// Package repo reads pull request records for encoding
package repo

import (
	"context"
	"strconv"
	"strings"

	"prsentinel/internal/core/features"
	"prsentinel/internal/modkit/repokit"
	"prsentinel/internal/platform/store"
	"prsentinel/internal/services/encode/domain"
)

type (
	// PG is a Postgres binder for domain.RecordReader
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.RecordReader
func NewPG() repokit.Binder[domain.RecordReader] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.RecordReader { return &queries{q: q} }

// ListRecords streams every matching record in pr_id order. Null columns come back as
// the encoder defaults
func (r *queries) ListRecords(ctx context.Context, f domain.Filter) ([]features.Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Repo != "" {
		args = append(args, f.Repo)
		where = append(where, "repo_name = $"+strconv.Itoa(len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since.UTC())
		where = append(where, "updated_at >= $"+strconv.Itoa(len(args)))
	}
	sql := `
		SELECT
			COALESCE(additions, 0), COALESCE(deletions, 0), COALESCE(changed_files, 0),
			COALESCE(assignees_count, 0), COALESCE(commits_count, 0),
			COALESCE(author_association, ''), COALESCE(labels, '{}'::text[]),
			COALESCE(title, ''), COALESCE(body, '')
		FROM pull_requests`
	if len(where) > 0 {
		sql += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	sql += "\n\t\tORDER BY pr_id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += " LIMIT $" + strconv.Itoa(len(args))
	}

	return store.Many(ctx, r.q, scanRecord, sql, args...)
}

func scanRecord(row store.Row) (features.Record, error) {
	var rec features.Record
	err := row.Scan(
		&rec.Additions, &rec.Deletions, &rec.ChangedFiles,
		&rec.AssigneesCount, &rec.CommitsCount,
		&rec.AuthorAssociation, &rec.Labels,
		&rec.Title, &rec.Body,
	)
	return rec.Clamp(), err
}
