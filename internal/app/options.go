package service

import (
	"github.com/okian/ecopoints/internal/adapters/detector"
	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxOutcomes bounds how many scored outcomes are retained.
func WithMaxOutcomes(n int) Option {
	return func(s *Service) {
		s.maxOutcomes = n
	}
}

// WithCatalog replaces the default activity catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithDetector enables image detection.
func WithDetector(d detector.Detector) Option {
	return func(s *Service) {
		s.detector = d
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
