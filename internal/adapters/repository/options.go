package repository

import "time"

const defaultMaxOutcomes = 10_000

// Option applies a configuration option to the TallyStore.
type Option func(*TallyStore)

// WithMaxOutcomes bounds how many outcomes are kept; the oldest are dropped first.
// n <= 0 keeps every outcome.
func WithMaxOutcomes(n int) Option {
	return func(s *TallyStore) {
		s.maxOutcomes = n
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *TallyStore) {
		if now != nil {
			s.now = now
		}
	}
}
