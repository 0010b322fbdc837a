package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/internal/domain/scoring"
	"github.com/okian/ecopoints/internal/domain/types"
)

// ScoreDependencies resolve labels and optionally fold the result into a
// user's running totals.
type ScoreDependencies interface {
	Resolve(ctx context.Context, labels []string) scoring.Result
	Catalog() *catalog.Catalog
	Record(ctx context.Context, o model.Outcome) (types.Totals, error)
}

type scoreRequest struct {
	labelsInput
	UserID string `json:"user_id"`
}

type scoreResponse struct {
	SubmissionID   string            `json:"submission_id,omitempty"`
	TotalPoints    int               `json:"total_points"`
	Activities     []string          `json:"activities"`
	ConsumedLabels []string          `json:"consumed_labels"`
	Breakdown      []scoring.Credit  `json:"breakdown"`
	Impact         scoring.Impact    `json:"impact"`
	Detections     []model.Detection `json:"detections,omitempty"`
	Totals         *types.Totals     `json:"totals,omitempty"`
}

// ScoreHandler handles synchronous scoring.
type ScoreHandler struct {
	deps          ScoreDependencies
	minConfidence float64
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies, minConfidence float64) *ScoreHandler {
	return &ScoreHandler{deps: deps, minConfidence: minConfidence}
}

// HandleScore handles POST /score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	labels, err := req.resolveLabels(h.minConfidence)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	resp, err := scoreAndRecord(r.Context(), h.deps, labels, strings.TrimSpace(req.UserID))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// scoreAndRecord resolves labels and, when userID is set, records the outcome
// under a fresh submission id.
func scoreAndRecord(ctx context.Context, deps ScoreDependencies, labels []string, userID string) (scoreResponse, error) {
	res := deps.Resolve(ctx, labels)
	resp := scoreResponse{
		TotalPoints:    res.TotalPoints,
		Activities:     res.Activities,
		ConsumedLabels: res.ConsumedList(),
		Breakdown:      scoring.Breakdown(res, deps.Catalog()),
		Impact:         scoring.EstimateImpact(res.TotalPoints),
	}
	if userID == "" {
		return resp, nil
	}

	resp.SubmissionID = uuid.NewString()
	totals, err := deps.Record(ctx, model.Outcome{
		SubmissionID:   resp.SubmissionID,
		UserID:         userID,
		TotalPoints:    res.TotalPoints,
		Activities:     res.Activities,
		ConsumedLabels: resp.ConsumedLabels,
		ScoredAt:       time.Now().UTC(),
	})
	if err != nil {
		return scoreResponse{}, err
	}
	resp.Totals = &totals
	return resp, nil
}
