package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/okian/ecopoints/pkg/logger"
)

// verify polls every user until the service reports the expected session
// count, then compares points. Scoring is asynchronous, so a user still
// short on sessions is retried until the drain timeout.
func (r *Runner) verify(ctx context.Context, plan *Plan, stats *Stats) error {
	deadline := time.Now().Add(r.cfg.DrainTimeout)

	users := make([]string, 0, len(plan.Expected))
	for u := range plan.Expected {
		users = append(users, u)
	}
	sort.Strings(users)

	for _, u := range users {
		want := plan.Expected[u]
		got, err := r.waitForUser(ctx, u, want.Sessions, deadline)
		if err != nil {
			return err
		}
		stats.UsersFound++
		if got.Sessions != want.Sessions || got.Points != want.Points {
			stats.Mismatches++
			r.log.Error(ctx, "totals mismatch",
				logger.String("user_id", u),
				logger.Int("want_points", want.Points),
				logger.Int("got_points", got.Points),
				logger.Int("want_sessions", want.Sessions),
				logger.Int("got_sessions", got.Sessions))
		}
	}
	if stats.Mismatches > 0 {
		return fmt.Errorf("%d of %d users have unexpected totals", stats.Mismatches, len(users))
	}
	return nil
}

func (r *Runner) waitForUser(ctx context.Context, user string, sessions int, deadline time.Time) (Totals, error) {
	path := "/users/" + url.PathEscape(user)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var t Totals
		code, err := r.client.getJSON(ctx, path, &t)
		if err != nil {
			return t, fmt.Errorf("get user %s: %w", user, err)
		}
		switch {
		case code == http.StatusOK && t.Sessions >= sessions:
			return t, nil
		case code != http.StatusOK && code != http.StatusNotFound:
			return t, fmt.Errorf("get user %s: status %d", user, code)
		}
		if time.Now().After(deadline) {
			return t, fmt.Errorf("user %s: %d of %d sessions after drain timeout", user, t.Sessions, sessions)
		}
		select {
		case <-ctx.Done():
			return t, fmt.Errorf("get user %s: %w", user, ctx.Err())
		case <-ticker.C:
		}
	}
}

// checkOrdering reports whether entries are ranked by points descending
// with contiguous ranks starting at 1.
func checkOrdering(entries []Entry) error {
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("leaderboard entry %d has rank %d", i, e.Rank)
		}
		if i > 0 && entries[i-1].Points < e.Points {
			return fmt.Errorf("leaderboard not sorted at rank %d", e.Rank)
		}
	}
	return nil
}
