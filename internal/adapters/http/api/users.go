package api

import (
	"context"
	"net/http"

	"github.com/okian/ecopoints/internal/domain/scoring"
	"github.com/okian/ecopoints/internal/domain/types"
)

// UserDependencies expose a user's running totals and leaderboard position.
type UserDependencies interface {
	Totals(ctx context.Context, userID string) (types.Totals, error)
	Rank(ctx context.Context, userID string) (types.Entry, error)
}

type userResponse struct {
	types.Totals
	Rank          int            `json:"rank"`
	AveragePoints float64        `json:"average_points"`
	Impact        scoring.Impact `json:"impact"`
}

// UsersHandler handles user requests.
type UsersHandler struct {
	deps UserDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

// HandleGetUser handles GET /users/{id} requests.
func (h *UsersHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_user"
	id, ok := pathID(r)
	if !ok {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	totals, err := h.deps.Totals(r.Context(), id)
	if err != nil {
		writeError(w, lookupError(op, err))
		return
	}
	entry, err := h.deps.Rank(r.Context(), id)
	if err != nil {
		writeError(w, lookupError(op, err))
		return
	}
	writeJSON(w, http.StatusOK, userResponse{
		Totals:        totals,
		Rank:          entry.Rank,
		AveragePoints: totals.Average(),
		Impact:        scoring.EstimateImpact(totals.Points),
	})
}
