// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/ecopoints/internal/adapters/detector"
	"github.com/okian/ecopoints/internal/adapters/mq/queue"
	"github.com/okian/ecopoints/internal/adapters/mq/worker"
	"github.com/okian/ecopoints/internal/adapters/repository"
	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/internal/domain/dedupe"
	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/internal/domain/scoring"
	"github.com/okian/ecopoints/internal/domain/types"
	"github.com/okian/ecopoints/pkg/logger"
	"github.com/okian/ecopoints/pkg/metrics"
)

const (
	defaultQueueSize   = 10_000
	defaultDedupeSize  = 100_000
	defaultMaxOutcomes = 10_000
	drainTimeout       = 30 * time.Second
)

// Service implements the API dependencies: synchronous scoring, the
// asynchronous submission pipeline and the running-totals store.
type Service struct {
	mu sync.RWMutex

	catalog  *catalog.Catalog
	resolver *scoring.Resolver
	store    *repository.TallyStore
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	detector detector.Detector

	workerCount int
	queueSize   int
	dedupeSize  int
	maxOutcomes int

	started bool
	logger  logger.Logger
}

// New constructs a Service. Scoring and reads work immediately; submissions
// are accepted only after Start.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:     catalog.Default(),
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		maxOutcomes: defaultMaxOutcomes,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.resolver = scoring.NewResolver(s.catalog, scoring.WithLogger(s.logger.Named("resolver")))
	s.store = repository.NewTallyStore(repository.WithMaxOutcomes(s.maxOutcomes))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the submission queue and starts the worker pool. Workers
// outlive ctx; only Stop ends them, after the queue has drained.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.resolver, s.store, worker.WithLogger(s.logger))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "eco points service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("activities", s.catalog.Len()),
		logger.Bool("detector", s.detector != nil),
	)
	return nil
}

// Stop closes the queue and waits for the workers to drain it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "eco points service stopped")
}

// Catalog returns the active catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Detector returns the configured detector, or nil when detection is disabled.
func (s *Service) Detector() detector.Detector {
	return s.detector
}

// Resolve scores labels against the active catalog.
func (s *Service) Resolve(ctx context.Context, labels []string) scoring.Result {
	return s.resolver.Resolve(ctx, labels)
}

// Record folds an outcome into the user's running totals.
func (s *Service) Record(ctx context.Context, o model.Outcome) (types.Totals, error) {
	return s.store.Record(ctx, o)
}

// SeenAndRecord atomically checks if a submission id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a submission id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Enqueue submits a submission for asynchronous scoring.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if err := s.queue.Enqueue(ctx, sub); err != nil {
		return fmt.Errorf("enqueue %s: %w", sub.ID, err)
	}
	s.logger.Debug(ctx, "submission queued",
		logger.String("submission_id", sub.ID),
		logger.String("user_id", sub.UserID),
		logger.Int("labels", len(sub.Labels)),
	)
	return nil
}

// Outcome returns a scored submission.
func (s *Service) Outcome(ctx context.Context, submissionID string) (model.Outcome, error) {
	return s.store.Outcome(ctx, submissionID)
}

// Totals returns a user's running totals.
func (s *Service) Totals(ctx context.Context, userID string) (types.Totals, error) {
	return s.store.Totals(ctx, userID)
}

// Rank returns a user's leaderboard entry.
func (s *Service) Rank(ctx context.Context, userID string) (types.Entry, error) {
	return s.store.Rank(ctx, userID)
}

// TopN returns the top n users.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.store.TopN(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"worker_count":     s.workerCount,
		"queue_capacity":   s.queueSize,
		"dedupe_size":      s.deduper.Size(),
		"users":            s.store.Count(ctx),
		"activities":       s.catalog.Len(),
		"detector_enabled": s.detector != nil,
	}
	if s.started {
		n := s.queue.Len(ctx)
		stats["queue_length"] = n
		metrics.UpdateQueueSize(n)
	}
	return stats
}
