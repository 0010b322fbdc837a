package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ecopoints/internal/domain/dedupe"
	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/pkg/metrics"
)

// SubmissionDependencies defines what asynchronous submissions need.
type SubmissionDependencies interface {
	dedupe.Deduper

	// Enqueue pushes a submission for async scoring. Any error is reported
	// to the client as backpressure.
	Enqueue(ctx context.Context, s model.Submission) error

	// Outcome returns a scored submission; errors wrapping ErrNotFound map to 404.
	Outcome(ctx context.Context, submissionID string) (model.Outcome, error)
}

// submissionRequest mirrors the OpenAPI schema for POST /submissions.
type submissionRequest struct {
	labelsInput
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	TS           string `json:"ts"`
}

func (s submissionRequest) validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return errors.New("missing user_id")
	}
	if s.TS != "" {
		if _, err := time.Parse(time.RFC3339, s.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

type ackResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}

// SubmissionsHandler handles submission requests.
type SubmissionsHandler struct {
	deps          SubmissionDependencies
	minConfidence float64
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies, minConfidence float64) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps, minConfidence: minConfidence}
}

// HandlePostSubmission handles POST /submissions requests.
func (h *SubmissionsHandler) HandlePostSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_submission"
	var req submissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	labels, err := req.resolveLabels(h.minConfidence)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	sub := model.Submission{
		ID:     strings.TrimSpace(req.SubmissionID),
		UserID: strings.TrimSpace(req.UserID),
		Labels: labels,
		TS:     time.Now().UTC(),
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if req.TS != "" {
		sub.TS, _ = time.Parse(time.RFC3339, req.TS)
	}

	if h.deps.SeenAndRecord(r.Context(), sub.ID) {
		metrics.RecordSubmissionDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", SubmissionID: sub.ID, Duplicate: true})
		return
	}

	if err := h.deps.Enqueue(r.Context(), sub); err != nil {
		// Forget the id so the client can retry.
		h.deps.Unrecord(r.Context(), sub.ID)
		writeError(w, WrapKind(op, ErrBackpressure, err))
		return
	}
	metrics.RecordSubmissionAccepted()
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", SubmissionID: sub.ID})
}

// HandleGetSubmission handles GET /submissions/{id} requests.
func (h *SubmissionsHandler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_submission"
	id, ok := pathID(r)
	if !ok {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	o, err := h.deps.Outcome(r.Context(), id)
	if err != nil {
		writeError(w, lookupError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// lookupError maps upstream not-found errors onto ErrNotFound.
func lookupError(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return WrapKind(op, ErrNotFound, err)
	}
	return Wrap(op, err)
}
