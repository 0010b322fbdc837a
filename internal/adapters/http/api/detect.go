package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/pkg/logger"
)

// Detector turns an encoded image into detections.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]model.Detection, error)
}

// DetectHandler runs the detector on an uploaded photo and scores the result.
type DetectHandler struct {
	detector      Detector
	deps          ScoreDependencies
	minConfidence float64
	maxBytes      int64
	logger        logger.Logger
}

// NewDetectHandler creates a new detect handler. A nil detector disables the route.
func NewDetectHandler(d Detector, deps ScoreDependencies, minConfidence float64, maxBytes int64, l logger.Logger) *DetectHandler {
	if l == nil {
		l = logger.Nop()
	}
	return &DetectHandler{detector: d, deps: deps, minConfidence: minConfidence, maxBytes: maxBytes, logger: l}
}

// HandleDetect handles POST /detect requests. The body is either the raw image
// or a multipart form with an "image" file; ?user_id= records the result.
func (h *DetectHandler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	const op = "api.detect"
	if h.detector == nil {
		writeError(w, NewKind(op, ErrDetectorDisabled))
		return
	}

	img, err := h.readImage(w, r)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	dets, err := h.detector.Detect(r.Context(), img)
	if err != nil {
		h.logger.Error(r.Context(), "detection failed", logger.Error(err))
		writeError(w, WrapKind(op, ErrDetectorFailed, err))
		return
	}
	dets = model.FilterByConfidence(dets, h.minConfidence)

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	resp, err := scoreAndRecord(r.Context(), h.deps, model.NormalizeLabels(model.Labels(dets)), userID)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	resp.Detections = dets
	writeJSON(w, http.StatusOK, resp)
}

func (h *DetectHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("image")
		if err != nil {
			return nil, fmt.Errorf("image form file: %w", err)
		}
		defer f.Close()
		return readAll(f)
	}
	return readAll(r.Body)
}

func readAll(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(b) == 0 {
		return nil, errors.New("empty image")
	}
	return b, nil
}
