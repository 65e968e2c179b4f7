// Package domain holds the core types and ports for pull request ingestion
package domain

import (
	"time"

	"prsentinel/internal/adapters/ingest/github"
)

// Repo and Pull re-export the source shapes the service consumes
type (
	Repo = github.Repo
	Pull = github.PullRequest
)

// EpochSentinel stands in for a missing source updated_at so such records still order
var EpochSentinel = time.Unix(0, 0).UTC()

// PR states as stored
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateMerged = "merged"
)

// PullRequest is one stored record keyed by the GitHub global id
type PullRequest struct {
	ID                int64
	RepoName          string
	Number            int
	Additions         int
	Deletions         int
	ChangedFiles      int
	AssigneesCount    int
	CommitsCount      int
	AuthorAssociation string
	Labels            []string
	Title             string
	Body              string
	State             string
	CreatedAt         time.Time
	MergedAt          *time.Time
	ClosedAt          *time.Time
	UpdatedAt         time.Time
}

// EffectiveUpdatedAt is the source updated_at or EpochSentinel when absent
func EffectiveUpdatedAt(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return EpochSentinel
	}
	return t.UTC()
}

// StateOf maps the source state to the stored one. A closed PR with a merge time is merged
func StateOf(p Pull) string {
	switch {
	case p.State == StateClosed && p.MergedAt != nil:
		return StateMerged
	case p.State == "":
		return StateOpen
	default:
		return p.State
	}
}

// FromPull builds the stored record for p in repo. Missing counts become 0 and a
// null body becomes ""
func FromPull(repo string, p Pull) PullRequest {
	return PullRequest{
		ID:                p.ID,
		RepoName:          repo,
		Number:            p.Number,
		Additions:         max(p.Additions, 0),
		Deletions:         max(p.Deletions, 0),
		ChangedFiles:      max(p.ChangedFiles, 0),
		AssigneesCount:    len(p.Assignees),
		CommitsCount:      max(p.Commits, 0),
		AuthorAssociation: p.AuthorAssociation,
		Labels:            p.LabelNames(),
		Title:             p.Title,
		Body:              p.BodyText(),
		State:             StateOf(p),
		CreatedAt:         p.CreatedAt.UTC(),
		MergedAt:          p.MergedAt,
		ClosedAt:          p.ClosedAt,
		UpdatedAt:         EffectiveUpdatedAt(p.UpdatedAt),
	}
}

// RepoResult is the outcome for one repository. Err is set when the repository was skipped
type RepoResult struct {
	Repo     string
	Listed   int
	Staged   int
	Upserted int
	Skipped  int
	Detail   int // detail fetches that failed; those PRs retry next run
	Err      error
}

// Summary aggregates a run
type Summary struct {
	Repos    int
	Failed   int
	Listed   int
	Upserted int
	Skipped  int
	Results  []RepoResult
}

// Add folds r into the summary
func (s *Summary) Add(r RepoResult) {
	s.Repos++
	if r.Err != nil {
		s.Failed++
	}
	s.Listed += r.Listed
	s.Upserted += r.Upserted
	s.Skipped += r.Skipped
	s.Results = append(s.Results, r)
}
