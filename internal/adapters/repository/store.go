// Package repository keeps caller-owned running totals outside the scoring core.
package repository

import (
	"context"

	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/internal/domain/types"
)

// Store accumulates scored outcomes into per-user running totals.
type Store interface {
	// Record adds one session and its points to the user's totals and keeps the
	// outcome for lookup by submission id. It returns the updated totals.
	Record(ctx context.Context, o model.Outcome) (types.Totals, error)

	// Totals returns a user's running totals, or ErrNotFound.
	Totals(ctx context.Context, userID string) (types.Totals, error)

	// Outcome returns a stored outcome by submission id, or ErrNotFound.
	Outcome(ctx context.Context, submissionID string) (model.Outcome, error)

	// Rank returns a user's leaderboard position, or ErrNotFound.
	Rank(ctx context.Context, userID string) (types.Entry, error)

	// TopN returns the top-n users by points desc, then user id asc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of users with totals.
	Count(ctx context.Context) int
}
