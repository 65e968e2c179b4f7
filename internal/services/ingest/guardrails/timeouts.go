// Package guardrails holds time budgets for one repository of ingestion work
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for a single repository.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Repo is the overall budget for one repository
	Repo time.Duration

	// List caps paging through the pull request list
	List time.Duration

	// DB caps the projection read and the batch write
	DB time.Duration
}

// ForRepo returns a context limited by the repo budget without extending any parent deadline
func ForRepo(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Repo)
}

// ForList returns a sub context for listing bounded by List and any remaining parent budget
func ForList(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.List)
}

// ForDB returns a sub context for store calls bounded by DB and any remaining parent budget
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout picks the tighter of d and the parent remainder and never extends the parent
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
