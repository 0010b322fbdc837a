// Package loadgen drives a running eco points service with random
// submissions and checks the resulting running totals.
package loadgen

import (
	"time"

	"github.com/okian/ecopoints/internal/domain/types"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL        string        // Base URL of the service
	NumSubmissions int           // Number of submissions to generate
	NumUsers       int           // Number of distinct users the submissions are spread over
	TopN           int           // Number of leaderboard entries to fetch
	Workers        int           // Number of concurrent HTTP workers
	Timeout        time.Duration // HTTP request timeout
	DrainTimeout   time.Duration // How long to wait for the queue to empty
	Labels         []string      // Label pool the generator draws from
	MaxLabels      int           // Upper bound on labels per submission
	Seed           uint64        // Generator seed; 0 picks one from the clock
	OutputFile     string        // Optional JSON dump of generated submissions
	Verbose        bool          // Log every failure
}

// Submission is the POST /submissions payload.
type Submission struct {
	SubmissionID string   `json:"submission_id"`
	UserID       string   `json:"user_id"`
	Labels       []string `json:"labels"`
	TS           string   `json:"ts"`
}

// Entry mirrors a leaderboard entry.
type Entry = types.Entry

// Totals mirrors the GET /users/{id} body fields checked here.
type Totals struct {
	UserID   string `json:"user_id"`
	Sessions int    `json:"sessions"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
}

// AckResponse represents the response from submission.
type AckResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	Generated   int
	Submitted   int
	Accepted    int
	Duplicate   int
	Failed      int
	UsersFound  int
	Mismatches  int
	Leaderboard int
	StartTime   time.Time
	Duration    time.Duration
}
