package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/internal/loadgen"
	"github.com/okian/ecopoints/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumSubmissions = 10000
	defaultNumUsers       = 500
	defaultTopN           = 50
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultMaxLabels      = 5
	defaultTimeout        = 30 * time.Second
	defaultDrainTimeout   = 2 * time.Minute
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numSubs      = flag.Int("submissions", defaultNumSubmissions, "Number of submissions to generate and post")
		numUsers     = flag.Int("users", defaultNumUsers, "Number of distinct users")
		topN         = flag.Int("top", defaultTopN, "Number of leaderboard entries to fetch")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		maxLabels    = flag.Int("max-labels", defaultMaxLabels, "Maximum labels per submission")
		labels       = flag.String("labels", "", "Comma-separated label pool (default: the built-in catalog labels)")
		catalogFile  = flag.String("catalog", "", "Catalog file the service was started with")
		seed         = flag.Uint64("seed", 0, "Generator seed (default: time based)")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		drainTimeout = flag.Duration("drain-timeout", defaultDrainTimeout, "How long to wait for scoring to catch up")
		outputFile   = flag.String("output", "", "Write generated submissions to this JSON file")
		verbose      = flag.Bool("verbose", false, "Log every failed submission")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("eco-submit")

	c := catalog.Default()
	if *catalogFile != "" {
		var err error
		if c, err = catalog.LoadFile(*catalogFile); err != nil {
			os.Stderr.WriteString("Failed to load catalog: " + err.Error() + "\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:        strings.TrimRight(*baseURL, "/"),
		NumSubmissions: *numSubs,
		NumUsers:       *numUsers,
		TopN:           *topN,
		Workers:        *workers,
		Timeout:        *timeout,
		DrainTimeout:   *drainTimeout,
		Labels:         splitLabels(*labels),
		MaxLabels:      *maxLabels,
		Seed:           *seed,
		OutputFile:     *outputFile,
		Verbose:        *verbose,
	}

	if _, err := loadgen.NewRunner(cfg, c, log).Run(ctx); err != nil {
		log.Error(ctx, "load run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}

func splitLabels(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
