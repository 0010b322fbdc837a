package detector

import (
	"time"

	"github.com/okian/ecopoints/pkg/logger"
)

const (
	defaultModel   = "llava"
	defaultMaxDim  = 1024
	defaultQuality = 85
	defaultTimeout = 60 * time.Second
)

// Option applies a configuration option to the OllamaDetector.
type Option func(*OllamaDetector)

// WithModel sets the vision model name.
func WithModel(model string) Option {
	return func(d *OllamaDetector) {
		if model != "" {
			d.model = model
		}
	}
}

// WithMaxDim bounds the long side of the image sent to the model.
func WithMaxDim(px int) Option {
	return func(d *OllamaDetector) {
		if px > 0 {
			d.maxDim = px
		}
	}
}

// WithTimeout bounds a single detection call.
func WithTimeout(t time.Duration) Option {
	return func(d *OllamaDetector) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithLabels restricts the class names the model is asked to report.
func WithLabels(labels ...string) Option {
	return func(d *OllamaDetector) {
		if len(labels) > 0 {
			d.labels = append([]string(nil), labels...)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *OllamaDetector) {
		if l != nil {
			d.logger = l
		}
	}
}
