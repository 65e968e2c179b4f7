package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prsentinel/internal/adapters/ingest/github"
	"prsentinel/internal/modkit/repokit"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/store"
	"prsentinel/internal/services/ingest/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory pull_requests table with the same guarded upsert rule
type memStore struct {
	mu        sync.Mutex
	rows      map[int64]domain.PullRequest
	failRepo  string
	projected int
	// transient fails this many upsert calls with a serialization error
	transient int
	upserts   int
}

func newMem() *memStore { return &memStore{rows: map[int64]domain.PullRequest{}} }

func (m *memStore) UpdatedAt(_ context.Context, ids []int64) (map[int64]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projected += len(ids)
	out := map[int64]time.Time{}
	for _, id := range ids {
		if r, ok := m.rows[id]; ok {
			out[id] = r.UpdatedAt
		}
	}
	return out, nil
}

func (m *memStore) UpsertPullRequests(_ context.Context, prs []domain.PullRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.transient > 0 {
		m.transient--
		return 0, perr.FromPostgresf(&pgconn.PgError{Code: "40001"}, "upsert pull request %d", prs[0].ID)
	}
	for _, p := range prs {
		if p.RepoName == m.failRepo {
			return 0, errors.New("write refused")
		}
	}
	n := 0
	for _, p := range prs {
		if prev, ok := m.rows[p.ID]; ok && !p.UpdatedAt.After(prev.UpdatedAt) {
			continue
		}
		m.rows[p.ID] = p
		n++
	}
	return n, nil
}

// fakeTx runs fn directly; the binder ignores the queryer
type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (f fakeTx) Tx(_ context.Context, fn func(store.RowQuerier) error) error  { return fn(f) }

type fakeSource struct {
	repos     []github.Repo
	pulls     map[string][]github.PullRequest
	listErr   map[string]error
	searchErr error
	details   int
}

func (f *fakeSource) SearchRepositories(_ context.Context, _, _, _ string, limit int) ([]github.Repo, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.repos) > limit {
		return f.repos[:limit], nil
	}
	return f.repos, nil
}

func (f *fakeSource) ListPulls(_ context.Context, owner, name, _ string, _, _ int) ([]github.PullRequest, error) {
	key := owner + "/" + name
	if err := f.listErr[key]; err != nil {
		return nil, err
	}
	return f.pulls[key], nil
}

func (f *fakeSource) PullDetail(_ context.Context, owner, name string, number int) (github.PullRequest, error) {
	f.details++
	for _, p := range f.pulls[owner+"/"+name] {
		if p.Number == number {
			p.Additions, p.Deletions, p.ChangedFiles, p.Commits = 10*number, number, 1, 2
			return p, nil
		}
	}
	return github.PullRequest{}, errors.New("no such pull")
}

func ts(s string) *time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return &t
}

func newSvc(mem *memStore, src *fakeSource) *Service {
	binder := repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return mem })
	return New(fakeTx{}, binder, src, Config{FetchDetails: true})
}

func twoRepos() *fakeSource {
	return &fakeSource{
		repos: []github.Repo{{FullName: "a/one"}, {FullName: "b/two"}},
		pulls: map[string][]github.PullRequest{
			"a/one": {
				{ID: 1, Number: 1, State: "open", UpdatedAt: ts("2025-01-01T00:00:00Z")},
				{ID: 2, Number: 2, State: "closed", MergedAt: ts("2025-01-02T00:00:00Z"), UpdatedAt: ts("2025-01-02T00:00:00Z")},
			},
			"b/two": {
				{ID: 3, Number: 1, State: "open", UpdatedAt: ts("2025-01-03T00:00:00Z")},
				{ID: 4, Number: 2, State: "open"},
			},
		},
	}
}

func TestRun_IngestsAndEnriches(t *testing.T) {
	t.Parallel()

	mem, src := newMem(), twoRepos()
	sum, err := newSvc(mem, src).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Repos != 2 || sum.Failed != 0 || sum.Upserted != 4 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if got := mem.rows[2]; got.State != domain.StateMerged || got.Additions != 20 || got.CommitsCount != 2 {
		t.Fatalf("row 2 = %+v", got)
	}
	if got := mem.rows[4]; !got.UpdatedAt.Equal(domain.EpochSentinel) {
		t.Fatalf("missing updated_at stored as %v", got.UpdatedAt)
	}
	if src.details != 4 {
		t.Fatalf("detail fetches = %d, want 4", src.details)
	}
}

// TestRun_Idempotent runs twice against an unchanged source
func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	mem, src := newMem(), twoRepos()
	svc := newSvc(mem, src)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := map[int64]domain.PullRequest{}
	for k, v := range mem.rows {
		before[k] = v
	}
	src.details = 0

	sum, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Upserted != 0 || sum.Skipped != 4 {
		t.Fatalf("second run summary = %+v", sum)
	}
	if src.details != 0 {
		t.Fatalf("unchanged PRs should not be re-fetched, got %d detail calls", src.details)
	}
	if len(mem.rows) != len(before) {
		t.Fatalf("row count changed")
	}
	for k, v := range before {
		if !mem.rows[k].UpdatedAt.Equal(v.UpdatedAt) {
			t.Fatalf("row %d changed on rerun", k)
		}
	}
}

func TestRun_WatermarkMonotonic(t *testing.T) {
	t.Parallel()

	mem, src := newMem(), twoRepos()
	svc := newSvc(mem, src)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// source goes backwards for PR 1 and forwards for PR 3
	src.pulls["a/one"][0].UpdatedAt = ts("2024-06-01T00:00:00Z")
	src.pulls["a/one"][0].Title = "stale"
	src.pulls["b/two"][0].UpdatedAt = ts("2025-02-01T00:00:00Z")
	src.pulls["b/two"][0].Title = "fresh"

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r := mem.rows[1]; r.Title == "stale" || !r.UpdatedAt.Equal(*ts("2025-01-01T00:00:00Z")) {
		t.Fatalf("stale source overwrote row: %+v", r)
	}
	if r := mem.rows[3]; r.Title != "fresh" {
		t.Fatalf("newer source not applied: %+v", r)
	}
}

// TestRun_RepoFailureIsIsolated covers a listing failure and a write failure
func TestRun_RepoFailureIsIsolated(t *testing.T) {
	t.Parallel()

	src := twoRepos()
	src.repos = append([]github.Repo{{FullName: "x/broken"}}, src.repos...)
	src.listErr = map[string]error{"x/broken": errors.New("boom")}
	mem := newMem()
	mem.failRepo = "b/two"

	sum, err := newSvc(mem, src).Run(context.Background())
	if err != nil {
		t.Fatalf("per repo failures must not fail the run: %v", err)
	}
	if sum.Repos != 3 || sum.Failed != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if _, ok := mem.rows[1]; !ok {
		t.Fatalf("healthy repo was not ingested")
	}
	if _, ok := mem.rows[3]; ok {
		t.Fatalf("failed batch should write nothing")
	}
}

func TestRun_TransientWriteFailsRepoWithoutReplay(t *testing.T) {
	t.Parallel()

	mem := newMem()
	mem.transient = 1
	sum, err := newSvc(mem, twoRepos()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// one attempt per repo: the failed batch is left for the next run
	if mem.upserts != 2 {
		t.Fatalf("upsert calls = %d, want 2", mem.upserts)
	}
	if sum.Failed != 1 || sum.Repos != 2 {
		t.Fatalf("summary = %+v, want one failed repo of two", sum)
	}

	// the next run picks the skipped rows up again
	sum, err = newSvc(mem, twoRepos()).Run(context.Background())
	if err != nil || sum.Failed != 0 || sum.Upserted == 0 {
		t.Fatalf("rerun = %+v, %v", sum, err)
	}
}

func TestRun_SearchFailureIsFatal(t *testing.T) {
	t.Parallel()

	src := &fakeSource{searchErr: errors.New("rate limited")}
	if _, err := newSvc(newMem(), src).Run(context.Background()); err == nil {
		t.Fatalf("expected search error")
	}
}

func TestRun_CapsRepos(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	for i := range 15 {
		src.repos = append(src.repos, github.Repo{FullName: "o/r" + string(rune('a'+i))})
	}
	sum, err := newSvc(newMem(), src).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Repos != 10 {
		t.Fatalf("repos = %d, want default cap 10", sum.Repos)
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newSvc(newMem(), twoRepos()).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNew_PanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(nil, nil, nil, Config{})
}
