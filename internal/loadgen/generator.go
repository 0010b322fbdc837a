package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/internal/domain/scoring"
)

// DefaultLabels covers every default activity plus a label that scores nothing.
var DefaultLabels = []string{"person", "bicycle", "potted plant", "tree", "boat", "car"}

// Plan is a generated workload together with the totals it should produce.
type Plan struct {
	Submissions []Submission
	Expected    map[string]Totals
}

// Generate builds cfg.NumSubmissions random submissions spread over
// cfg.NumUsers users and precomputes each user's expected totals with c.
func Generate(ctx context.Context, cfg *Config, c *catalog.Catalog) (*Plan, error) {
	if cfg.NumSubmissions < 1 || cfg.NumUsers < 1 {
		return nil, fmt.Errorf("need at least one submission and one user")
	}
	labels := cfg.Labels
	if len(labels) == 0 {
		labels = DefaultLabels
	}
	maxLabels := max(cfg.MaxLabels, 1)
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))

	users := make([]string, cfg.NumUsers)
	for i := range users {
		users[i] = "user-" + uuid.NewString()[:8]
	}

	plan := &Plan{
		Submissions: make([]Submission, cfg.NumSubmissions),
		Expected:    make(map[string]Totals, len(users)),
	}
	ts := time.Now().UTC().Format(time.RFC3339)
	for i := range plan.Submissions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate: %w", err)
		}
		n := 1 + rng.IntN(maxLabels)
		set := make([]string, n)
		for j := range set {
			set[j] = labels[rng.IntN(len(labels))]
		}
		user := users[rng.IntN(len(users))]
		plan.Submissions[i] = Submission{
			SubmissionID: uuid.NewString(),
			UserID:       user,
			Labels:       set,
			TS:           ts,
		}

		exp := plan.Expected[user]
		exp.UserID = user
		exp.Sessions++
		exp.Points += scoring.Resolve(set, c).TotalPoints
		plan.Expected[user] = exp
	}
	return plan, nil
}
