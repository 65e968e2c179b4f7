// Package service provides the pull request ingestion service
package service

import (
	"context"
	"time"

	"prsentinel/internal/modkit/repokit"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/services/ingest/domain"
	"prsentinel/internal/services/ingest/guardrails"
)

// Config holds configuration options for the ingestion service
type Config struct {
	Query    string // repository search, e.g. stars:>100
	TopRepos int    // how many search hits to ingest; <=0 -> 10
	PerPage  int    // list page size; <=0 -> 100
	MaxPages int    // 0 = follow every page

	// FetchDetails pulls the detail document for changed PRs to get size counts
	FetchDetails bool

	// DelayPerRepo is an optional sleep between repositories
	DelayPerRepo time.Duration

	Timeouts guardrails.Timeouts
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Source domain.Source
	Cfg    Config
}

// New constructs the ingestion service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], src domain.Source, cfg Config) *Service {
	if db == nil {
		panic("ingest.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ingest.Service requires a non nil Repo binder")
	}
	if src == nil {
		panic("ingest.Service requires a non nil Source")
	}
	if cfg.Query == "" {
		cfg.Query = "stars:>100"
	}
	if cfg.TopRepos <= 0 {
		cfg.TopRepos = 10
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 100
	}
	return &Service{DB: db, Binder: binder, Source: src, Cfg: cfg}
}

// Run ingests the top repositories one after another. A failure inside one repository
// is logged and recorded in the summary; only a failed search or cancellation is returned
func (s *Service) Run(ctx context.Context) (domain.Summary, error) {
	var sum domain.Summary
	log := logger.C(ctx)

	repos, err := s.Source.SearchRepositories(ctx, s.Cfg.Query, "stars", "desc", s.Cfg.TopRepos)
	if err != nil {
		return sum, perr.Wrapf(err, perr.CodeOf(err), "ingest: search repositories %q", s.Cfg.Query)
	}
	if len(repos) > s.Cfg.TopRepos {
		repos = repos[:s.Cfg.TopRepos]
	}

	for i, r := range repos {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res := s.RunRepo(ctx, r)
		sum.Add(res)
		if res.Err != nil {
			log.Error().Err(res.Err).
				Str("repo", res.Repo).
				Bool("transient", perr.Retryable(res.Err)).
				Msg("ingest: repository failed, continuing")
		}
		if s.Cfg.DelayPerRepo > 0 && i < len(repos)-1 {
			if err := sleepCtx(ctx, s.Cfg.DelayPerRepo); err != nil {
				return sum, err
			}
		}
	}

	log.Info().
		Int("repos", sum.Repos).
		Int("failed", sum.Failed).
		Int("upserted", sum.Upserted).
		Int("skipped", sum.Skipped).
		Msg("data fetch complete")
	return sum, nil
}

// RunRepo ingests one repository: list, gate on the stored watermark, enrich the
// changed PRs, then write them in one transaction
func (s *Service) RunRepo(ctx context.Context, r domain.Repo) domain.RepoResult {
	owner, name := r.OwnerName()
	res := domain.RepoResult{Repo: r.FullName}
	if res.Repo == "" {
		res.Repo = owner + "/" + name
	}
	log := logger.C(ctx).With().Str("repo", res.Repo).Logger()

	rctx, cancel := guardrails.ForRepo(ctx, s.Cfg.Timeouts)
	defer cancel()

	pulls, err := s.list(rctx, owner, name)
	if err != nil {
		res.Err = err
		return res
	}
	res.Listed = len(pulls)
	log.Info().Int("count", len(pulls)).Msg("fetching pull requests")
	if len(pulls) == 0 {
		return res
	}

	ids := make([]int64, 0, len(pulls))
	for _, p := range pulls {
		ids = append(ids, p.ID)
	}
	stored, err := s.storedUpdatedAt(rctx, ids)
	if err != nil {
		res.Err = err
		return res
	}

	staged := make([]domain.PullRequest, 0, len(pulls))
	for _, p := range pulls {
		eff := domain.EffectiveUpdatedAt(p.UpdatedAt)
		if prev, ok := stored[p.ID]; ok && !prev.Before(eff) {
			res.Skipped++
			continue
		}
		if s.Cfg.FetchDetails {
			d, err := s.Source.PullDetail(rctx, owner, name, p.Number)
			if err != nil {
				if ctxErr := rctx.Err(); ctxErr != nil {
					res.Err = ctxErr
					return res
				}
				res.Detail++
				log.Warn().Err(err).Int("number", p.Number).Msg("ingest: pull detail failed, will retry next run")
				continue
			}
			// the list document is authoritative for the watermark
			d.UpdatedAt = p.UpdatedAt
			p = d
		}
		staged = append(staged, domain.FromPull(res.Repo, p))
	}
	res.Staged = len(staged)
	if len(staged) == 0 {
		return res
	}

	n, err := s.write(rctx, staged)
	if err != nil {
		res.Err = perr.Wrapf(err, perr.ErrorCodeDB, "ingest: bulk upsert %s", res.Repo)
		return res
	}
	res.Upserted = n
	// rows the guarded upsert declined were already current
	res.Skipped += len(staged) - n
	log.Info().Int("upserted", n).Int("skipped", res.Skipped).Msg("bulk upserted pull requests")
	return res
}

func (s *Service) list(ctx context.Context, owner, name string) ([]domain.Pull, error) {
	lctx, cancel := guardrails.ForList(ctx, s.Cfg.Timeouts)
	defer cancel()
	pulls, err := s.Source.ListPulls(lctx, owner, name, "all", s.Cfg.PerPage, s.Cfg.MaxPages)
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "ingest: list pulls %s/%s", owner, name)
	}
	return pulls, nil
}

func (s *Service) storedUpdatedAt(ctx context.Context, ids []int64) (map[int64]time.Time, error) {
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	var out map[int64]time.Time
	err := s.DB.Tx(dctx, func(q repokit.Queryer) error {
		m, err := s.Binder.Bind(q).UpdatedAt(dctx, ids)
		out = m
		return err
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "ingest: read watermarks")
	}
	return out, nil
}

// write submits the whole staged batch in a single transaction. A failed batch
// is not replayed; the next run stages the same rows again
func (s *Service) write(ctx context.Context, staged []domain.PullRequest) (int, error) {
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	var n int
	err := s.DB.Tx(dctx, func(q repokit.Queryer) error {
		w, err := s.Binder.Bind(q).UpsertPullRequests(dctx, staged)
		n = w
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
