// Package detector is the object-detection boundary: it turns an image into
// labelled detections. The scoring core never calls it directly.
package detector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ollama/ollama/api"

	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/pkg/logger"
	"github.com/okian/ecopoints/pkg/metrics"
)

// Detector reports the objects found in an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]model.Detection, error)
}

// chatClient is the subset of the ollama client used here.
type chatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// DefaultLabels are the COCO class names the default catalog can score.
var DefaultLabels = []string{"person", "bicycle", "potted plant", "tree", "boat"}

// OllamaDetector asks a vision model served by Ollama to list objects.
type OllamaDetector struct {
	client  chatClient
	model   string
	maxDim  int
	timeout time.Duration
	labels  []string
	logger  logger.Logger
}

var _ Detector = (*OllamaDetector)(nil)

// NewOllamaDetector creates a detector talking to the Ollama server at rawURL.
func NewOllamaDetector(rawURL string, opts ...Option) (*OllamaDetector, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid detector url %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid detector url %q: missing scheme or host", rawURL)
	}
	base := &url.URL{Scheme: u.Scheme, Host: u.Host}
	return newOllamaDetector(api.NewClient(base, http.DefaultClient), opts...), nil
}

func newOllamaDetector(c chatClient, opts ...Option) *OllamaDetector {
	d := &OllamaDetector{
		client:  c,
		model:   defaultModel,
		maxDim:  defaultMaxDim,
		timeout: defaultTimeout,
		labels:  DefaultLabels,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect implements Detector.
func (d *OllamaDetector) Detect(ctx context.Context, image []byte) ([]model.Detection, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDetectorLatency(float64(time.Since(start).Milliseconds()))
	}()

	img, err := d.prepare(image)
	if err != nil {
		metrics.RecordDetectorError("image")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model: d.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: d.prompt(),
			Images:  []api.ImageData{img},
		}},
		Stream:  &stream,
		Format:  []byte(`"json"`),
		Options: map[string]any{"temperature": 0},
	}

	var reply strings.Builder
	err = d.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		metrics.RecordDetectorError("request")
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	if strings.TrimSpace(reply.String()) == "" {
		metrics.RecordDetectorError("empty")
		return nil, ErrEmptyResponse
	}

	dets, err := ParseDetections(reply.String())
	if err != nil {
		metrics.RecordDetectorError("parse")
		d.logger.Warn(ctx, "unparseable detector reply", logger.String("model", d.model), logger.Error(err))
		return nil, err
	}
	d.logger.Debug(ctx, "detected objects", logger.Int("count", len(dets)), logger.Strings("labels", model.Labels(dets)))
	return dets, nil
}

// prepare decodes the image, fits it inside maxDim and re-encodes it as JPEG.
func (d *OllamaDetector) prepare(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeImage, err)
	}
	b := img.Bounds()
	if b.Dx() > d.maxDim || b.Dy() > d.maxDim {
		img = imaging.Fit(img, d.maxDim, d.maxDim, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(defaultQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *OllamaDetector) prompt() string {
	return "List the objects visible in this photo. Only use these class names: " +
		strings.Join(d.labels, ", ") + ". " +
		`Reply with JSON only, in the form {"objects":[{"label":"person","confidence":0.9}]}. ` +
		"Report each distinct object once. Reply with an empty list if none are visible."
}
