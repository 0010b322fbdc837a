package scoring

import (
	"context"
	"time"

	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/pkg/logger"
	"github.com/okian/ecopoints/pkg/metrics"
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug traces.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver binds Resolve to a catalog and records metrics for each run.
// It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	catalog *catalog.Catalog
	logger  logger.Logger
}

// NewResolver creates a resolver over c.
func NewResolver(c *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{catalog: c, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog the resolver scores against.
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.catalog
}

// Resolve scores labels. ctx only carries logging context; resolution never blocks.
func (r *Resolver) Resolve(ctx context.Context, labels []string) Result {
	start := time.Now()
	res := Resolve(labels, r.catalog)
	metrics.RecordResolution(res.TotalPoints, float64(time.Since(start).Microseconds())/1000)

	for _, key := range res.Activities {
		kind := "simple"
		if def, ok := r.catalog.Lookup(key); ok && def.IsCompound() {
			kind = "compound"
		}
		metrics.RecordActivityCredited(key, kind)
	}
	metrics.RecordUnknownLabels(r.countUnknown(labels, res))

	r.logger.Debug(ctx, "resolved detections",
		logger.Int("labels", len(labels)),
		logger.Int("points", res.TotalPoints),
		logger.Strings("activities", res.Activities),
	)
	return res
}

// countUnknown counts distinct labels that are neither simple keys nor consumed components.
func (r *Resolver) countUnknown(labels []string, res Result) int {
	n := 0
	for _, l := range Distinct(labels) {
		if !r.catalog.IsSimple(l) && !res.Consumed(l) {
			n++
		}
	}
	return n
}
