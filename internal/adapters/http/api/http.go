// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/pkg/logger"
)

const (
	defaultMaxLimit       = 100
	defaultMaxImageBytes  = 10 << 20
	defaultMaxRequestBody = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreDependencies
	SubmissionDependencies
	UserDependencies
	LeaderboardDependencies
	StatsProvider
}

// Option configures the Server.
type Option func(*options)

type options struct {
	maxLimit      int
	minConfidence float64
	maxImageBytes int64
	detector      Detector
	logger        logger.Logger
}

// WithMaxLeaderboardLimit caps GET /leaderboard?limit.
func WithMaxLeaderboardLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithMinConfidence drops detections below the threshold before scoring.
func WithMinConfidence(c float64) Option {
	return func(o *options) {
		if c > 0 {
			o.minConfidence = c
		}
	}
}

// WithMaxImageBytes caps POST /detect bodies.
func WithMaxImageBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxImageBytes = n
		}
	}
}

// WithDetector enables POST /detect.
func WithDetector(d Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoreHandler       *ScoreHandler
	detectHandler      *DetectHandler
	submissionsHandler *SubmissionsHandler
	usersHandler       *UsersHandler
	leaderboardHandler *LeaderboardHandler
	catalogHandler     *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := options{
		maxLimit:      defaultMaxLimit,
		maxImageBytes: defaultMaxImageBytes,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		scoreHandler:       NewScoreHandler(deps, o.minConfidence),
		detectHandler:      NewDetectHandler(o.detector, deps, o.minConfidence, o.maxImageBytes, o.logger),
		submissionsHandler: NewSubmissionsHandler(deps, o.minConfidence),
		usersHandler:       NewUsersHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, o.maxLimit),
		catalogHandler:     NewCatalogHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))
	mux.HandleFunc("POST /score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("POST /detect", MetricsMiddleware(s.detectHandler.HandleDetect, "detect"))
	mux.HandleFunc("POST /submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("GET /submissions/{id}", MetricsMiddleware(s.submissionsHandler.HandleGetSubmission, "submission"))
	mux.HandleFunc("GET /users/{id}", MetricsMiddleware(s.usersHandler.HandleGetUser, "users"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
}

// labelsInput is the shared labels-or-detections part of scoring requests.
type labelsInput struct {
	Labels     []string          `json:"labels"`
	Detections []model.Detection `json:"detections"`
}

// resolveLabels returns normalized labels in detection order. Detections take
// precedence over labels when both are given.
func (in labelsInput) resolveLabels(minConfidence float64) ([]string, error) {
	if in.Labels == nil && in.Detections == nil {
		return nil, errors.New("one of labels or detections is required")
	}
	if in.Detections != nil {
		return model.NormalizeLabels(model.Labels(model.FilterByConfidence(in.Detections, minConfidence))), nil
	}
	return model.NormalizeLabels(in.Labels), nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, defaultMaxRequestBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {code, message} with the status of its kind.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func pathID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	return id, id != ""
}
