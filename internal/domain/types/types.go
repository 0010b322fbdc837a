// Package types contains common types used across the application
package types

import (
	"errors"
	"time"
)

// ErrNotFound is shared by every lookup that can miss, so callers match it
// with errors.Is without importing the store.
var ErrNotFound = errors.New("not found")

// Entry represents a leaderboard entry
type Entry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Points   int    `json:"points"`
	Sessions int    `json:"sessions"`
}

// Totals are the running totals a caller keeps for one user across photos.
type Totals struct {
	UserID     string    `json:"user_id"`
	Sessions   int       `json:"sessions"`
	Points     int       `json:"points"`
	LastPoints int       `json:"last_points"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Average returns the mean points per session.
func (t Totals) Average() float64 {
	if t.Sessions == 0 {
		return 0
	}
	return float64(t.Points) / float64(t.Sessions)
}
