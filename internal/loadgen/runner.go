package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/pkg/logger"
)

const pollInterval = 100 * time.Millisecond

// Runner executes one load run against a service.
type Runner struct {
	cfg     *Config
	catalog *catalog.Catalog
	client  *client
	log     logger.Logger
}

// NewRunner creates a runner. A nil catalog means the default catalog;
// it must match the one the service scores with.
func NewRunner(cfg *Config, c *catalog.Catalog, log logger.Logger) *Runner {
	if c == nil {
		c = catalog.Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		cfg:     cfg,
		catalog: c,
		client:  newClient(cfg.BaseURL, cfg.Timeout),
		log:     log,
	}
}

// Run generates, submits and verifies. It returns the run statistics and
// an error when the service disagrees with the locally computed totals.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	defer func() { stats.Duration = time.Since(stats.StartTime) }()

	if err := r.checkHealth(ctx); err != nil {
		return stats, err
	}

	plan, err := Generate(ctx, r.cfg, r.catalog)
	if err != nil {
		return stats, err
	}
	stats.Generated = len(plan.Submissions)
	r.log.Info(ctx, "generated submissions",
		logger.Int("submissions", stats.Generated),
		logger.Int("users", len(plan.Expected)))

	if r.cfg.OutputFile != "" {
		if err := save(r.cfg.OutputFile, plan.Submissions); err != nil {
			return stats, err
		}
	}

	r.submit(ctx, plan.Submissions, stats)
	r.log.Info(ctx, "submitted",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))
	if stats.Failed > 0 {
		return stats, fmt.Errorf("%d submissions failed", stats.Failed)
	}

	if err := r.verify(ctx, plan, stats); err != nil {
		return stats, err
	}

	entries, err := r.leaderboard(ctx)
	if err != nil {
		return stats, err
	}
	stats.Leaderboard = len(entries)
	r.log.Info(ctx, "run complete",
		logger.Int("users_verified", stats.UsersFound),
		logger.Int("leaderboard_entries", stats.Leaderboard),
		logger.String("duration", time.Since(stats.StartTime).String()))
	return stats, nil
}

func (r *Runner) checkHealth(ctx context.Context) error {
	code, err := r.client.getJSON(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if code != http.StatusOK {
		return fmt.Errorf("health check: status %d", code)
	}
	return nil
}

// submit posts every submission through a fixed pool of workers.
func (r *Runner) submit(ctx context.Context, subs []Submission, stats *Stats) {
	var accepted, duplicate, failed int64
	jobs := make(chan Submission)

	var wg sync.WaitGroup
	for range max(r.cfg.Workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				var ack AckResponse
				code, err := r.client.postJSON(ctx, "/submissions", s, &ack)
				switch {
				case err != nil || code >= http.StatusBadRequest:
					atomic.AddInt64(&failed, 1)
					if r.cfg.Verbose {
						r.log.Warn(ctx, "submission failed",
							logger.String("submission_id", s.SubmissionID),
							logger.Int("status", code),
							logger.Error(err))
					}
				case ack.Duplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&accepted, 1)
				}
			}
		}()
	}

	for _, s := range subs {
		select {
		case jobs <- s:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	stats.Submitted = len(subs)
	stats.Accepted = int(accepted)
	stats.Duplicate = int(duplicate)
	stats.Failed = int(failed)
}

func (r *Runner) leaderboard(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	path := fmt.Sprintf("/leaderboard?limit=%d", max(r.cfg.TopN, 1))
	code, err := r.client.getJSON(ctx, path, &entries)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("leaderboard: status %d", code)
	}
	if err := checkOrdering(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func save(path string, subs []Submission) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal submissions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
