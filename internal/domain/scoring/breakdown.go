package scoring

import "github.com/okian/ecopoints/internal/domain/catalog"

// Credit is one credited activity with its presentation data.
type Credit struct {
	Key         string `json:"key"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Compound    bool   `json:"compound"`
}

// Breakdown expands a result's activity keys with catalog data, in result order.
func Breakdown(res Result, c *catalog.Catalog) []Credit {
	out := make([]Credit, 0, len(res.Activities))
	for _, key := range res.Activities {
		def, ok := c.Lookup(key)
		if !ok {
			continue
		}
		out = append(out, Credit{
			Key:         def.Key,
			Points:      def.Points,
			Description: def.Description,
			Icon:        def.Icon,
			Compound:    def.IsCompound(),
		})
	}
	return out
}

// Rough conversion factors shown next to a score.
const (
	co2KgPerPoint = 0.5
	pointsPerTree = 10.0
)

// Impact is an indicative environmental estimate for a score.
type Impact struct {
	CO2SavedKg     float64 `json:"co2_saved_kg"`
	TreeEquivalent float64 `json:"tree_equivalent"`
}

// EstimateImpact converts points into the CO2 and tree-equivalent estimates.
func EstimateImpact(points int) Impact {
	if points <= 0 {
		return Impact{}
	}
	return Impact{
		CO2SavedKg:     float64(points) * co2KgPerPoint,
		TreeEquivalent: float64(points) / pointsPerTree,
	}
}
