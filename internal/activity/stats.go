package activity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"team-tracker/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultWindowDays  = 30
	maxTopContributors = 5
	unknownUserName    = "Unknown"
)

type Contributor struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Count  int64  `json:"count"`
}

// Stats summarizes the activity log over a rolling window.
type Stats struct {
	WindowDays      int           `json:"window_days"`
	TotalActivities int64         `json:"total_activities"`
	TopContributors []Contributor `json:"top_contributors"`
	LateCompletions int64         `json:"late_completions"`
}

// Aggregator computes Stats. It performs no authorization; callers only
// invoke it for managers.
type Aggregator struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

func NewAggregator(store Store, now func() time.Time, logger *slog.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{store: store, now: now, logger: logger}
}

// Compute aggregates the last windowDays days, the window start inclusive.
// Each figure is computed independently; a failing one is logged and left at
// its zero value so the history view still renders.
func (a *Aggregator) Compute(ctx context.Context, windowDays int) Stats {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	since := a.now().UTC().AddDate(0, 0, -windowDays)

	stats := Stats{WindowDays: windowDays, TopContributors: []Contributor{}}

	var g errgroup.Group
	g.Go(func() error {
		n, err := a.store.Count(ctx, Query{Since: since})
		if err != nil {
			a.logger.Warn("history stats: total activities", "error", err)
			return nil
		}
		stats.TotalActivities = n
		return nil
	})
	g.Go(func() error {
		top, err := a.topContributors(ctx, since)
		if err != nil {
			a.logger.Warn("history stats: top contributors", "error", err)
			return nil
		}
		stats.TopContributors = top
		return nil
	})
	g.Go(func() error {
		n, err := a.lateCompletions(ctx, since)
		if err != nil {
			a.logger.Warn("history stats: late completions", "error", err)
			return nil
		}
		stats.LateCompletions = n
		return nil
	})
	_ = g.Wait()

	return stats
}

func (a *Aggregator) topContributors(ctx context.Context, since time.Time) ([]Contributor, error) {
	counts, err := a.store.CountByUser(ctx, Query{Since: since}, maxTopContributors)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.UserID)
	}
	users, err := a.store.UsersByID(ctx, ids)
	if err != nil {
		// Counts are still useful without names.
		a.logger.Warn("history stats: resolve contributors", "error", err)
		users = map[string]models.User{}
	}

	out := make([]Contributor, 0, len(counts))
	for _, c := range counts {
		contributor := Contributor{UserID: c.UserID, Name: unknownUserName, Count: c.Count}
		if u, ok := users[c.UserID]; ok {
			contributor.Name = u.Name
			contributor.Avatar = u.Avatar
		}
		out = append(out, contributor)
	}
	return out, nil
}

// lateCompletions is a text heuristic over the raw details column: the action
// must contain "COMPLETE" and the stored details must contain "LATE". The
// store narrows the rows; the case-sensitive match is applied here.
func (a *Aggregator) lateCompletions(ctx context.Context, since time.Time) (int64, error) {
	rows, err := a.store.Find(ctx, Query{
		Since:           since,
		ActionContains:  "COMPLETE",
		DetailsContains: "LATE",
	})
	if err != nil {
		return 0, err
	}

	var n int64
	for _, row := range rows {
		if IsLateCompletion(row) {
			n++
		}
	}
	return n, nil
}

// IsLateCompletion applies the late-completion heuristic to a single row.
func IsLateCompletion(row models.ActivityLog) bool {
	if !strings.Contains(string(row.Action), "COMPLETE") {
		return false
	}
	raw, err := row.Details.Encode()
	if err != nil {
		return false
	}
	return strings.Contains(raw, "LATE")
}
