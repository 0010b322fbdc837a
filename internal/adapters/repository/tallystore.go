package repository

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/internal/domain/types"
	"github.com/okian/ecopoints/pkg/metrics"
)

// TallyStore is an in-memory Store. Totals only grow, so a user's treap node
// is re-keyed on every Record.
type TallyStore struct {
	mu     sync.RWMutex
	root   *node
	totals map[string]types.Totals

	outcomes     map[string]model.Outcome
	outcomeOrder *list.List
	maxOutcomes  int

	now func() time.Time
}

var _ Store = (*TallyStore)(nil)

// NewTallyStore constructs an empty store.
func NewTallyStore(opts ...Option) *TallyStore {
	s := &TallyStore{
		totals:       make(map[string]types.Totals),
		outcomes:     make(map[string]model.Outcome),
		outcomeOrder: list.New(),
		maxOutcomes:  defaultMaxOutcomes,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements Store.
func (s *TallyStore) Record(_ context.Context, o model.Outcome) (types.Totals, error) {
	if strings.TrimSpace(o.UserID) == "" {
		return types.Totals{}, ErrInvalidUser
	}
	if o.TotalPoints < 0 {
		return types.Totals{}, fmt.Errorf("record %s: negative points %d", o.SubmissionID, o.TotalPoints)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.totals[o.UserID]
	if exists {
		s.root = remove(s.root, o.UserID, t.Points)
	}
	t.UserID = o.UserID
	t.Sessions++
	t.Points += o.TotalPoints
	t.LastPoints = o.TotalPoints
	t.UpdatedAt = s.now()
	s.totals[o.UserID] = t
	s.root = insert(s.root, o.UserID, t.Points)

	if o.SubmissionID != "" {
		s.storeOutcome(o)
	}

	metrics.RecordSessionTotals(o.TotalPoints)
	metrics.UpdateUsersTracked(len(s.totals))
	return t, nil
}

// storeOutcome must be called with s.mu held.
func (s *TallyStore) storeOutcome(o model.Outcome) {
	if _, ok := s.outcomes[o.SubmissionID]; !ok {
		s.outcomeOrder.PushBack(o.SubmissionID)
	}
	s.outcomes[o.SubmissionID] = o
	for s.maxOutcomes > 0 && s.outcomeOrder.Len() > s.maxOutcomes {
		oldest := s.outcomeOrder.Front()
		s.outcomeOrder.Remove(oldest)
		delete(s.outcomes, oldest.Value.(string))
	}
}

// Totals implements Store.
func (s *TallyStore) Totals(_ context.Context, userID string) (types.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.totals[userID]
	if !ok {
		return types.Totals{}, fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}
	return t, nil
}

// Outcome implements Store.
func (s *TallyStore) Outcome(_ context.Context, submissionID string) (model.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.outcomes[submissionID]
	if !ok {
		return model.Outcome{}, fmt.Errorf("submission %q: %w", submissionID, ErrNotFound)
	}
	return o, nil
}

// Rank implements Store.
func (s *TallyStore) Rank(_ context.Context, userID string) (types.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.totals[userID]
	if !ok {
		return types.Entry{}, fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}
	return types.Entry{
		Rank:     rankOf(s.root, userID, t.Points),
		UserID:   userID,
		Points:   t.Points,
		Sessions: t.Sessions,
	}, nil
}

// TopN implements Store.
func (s *TallyStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.totals)))
	collect(s.root, n, &nodes)
	out := make([]types.Entry, len(nodes))
	for i, nd := range nodes {
		out[i] = types.Entry{
			Rank:     i + 1,
			UserID:   nd.id,
			Points:   nd.points,
			Sessions: s.totals[nd.id].Sessions,
		}
	}
	return out, nil
}

// Count implements Store.
func (s *TallyStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.totals)
}
