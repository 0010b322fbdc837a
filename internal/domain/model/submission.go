package model

import "time"

// Submission is a detection set queued for asynchronous scoring on behalf of a user.
type Submission struct {
	ID     string    // unique id for idempotency
	UserID string    // whose running totals the score is added to
	Labels []string  // normalized labels in detection order
	TS     time.Time // when the photo was taken or submitted
}

// Outcome is a scored submission.
type Outcome struct {
	SubmissionID   string    `json:"submission_id"`
	UserID         string    `json:"user_id"`
	TotalPoints    int       `json:"total_points"`
	Activities     []string  `json:"activities"`
	ConsumedLabels []string  `json:"consumed_labels"`
	ScoredAt       time.Time `json:"scored_at"`
}
