// Package main provides an offline CLI for scoring label sets and images.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ecopoints/internal/adapters/detector"
	"github.com/okian/ecopoints/internal/domain/catalog"
	"github.com/okian/ecopoints/internal/domain/model"
	"github.com/okian/ecopoints/internal/domain/scoring"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultModel       = "llava"
	defaultDetectLimit = 2 * time.Minute
)

var (
	catalogPath string
	jsonOutput  bool

	ollamaURL     string
	ollamaModel   string
	minConfidence float64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ecoscore",
		Short:        "Score detected object labels as eco points",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (.yaml or .toml); built-in catalog when empty")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newDetectCmd())
	return rootCmd
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <label>...",
		Short: "Resolve labels in detection order to a score",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), args, scoring.Resolve(args, c), c)
		},
	}
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the activities of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, catalogView(c))
			}
			for _, d := range c.Definitions() {
				kind := "simple"
				if d.IsCompound() {
					kind = "compound(" + strings.Join(d.Components, "+") + ")"
				}
				fmt.Fprintf(out, "%-20s %3d  %-22s %s\n", d.Key, d.Points, kind, d.Description)
			}
			return nil
		},
	}
}

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect objects in an image with Ollama and score them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog()
			if err != nil {
				return err
			}
			img, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			d, err := detector.NewOllamaDetector(ollamaURL, detector.WithModel(ollamaModel), detector.WithTimeout(defaultDetectLimit))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultDetectLimit)
			defer cancel()
			dets, err := d.Detect(ctx, img)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}
			labels := model.Labels(model.FilterByConfidence(dets, minConfidence))
			return printResult(cmd.OutOrStdout(), labels, scoring.Resolve(labels, c), c)
		},
	}
	cmd.Flags().StringVar(&ollamaURL, "ollama-url", defaultOllamaURL, "Ollama base URL")
	cmd.Flags().StringVar(&ollamaModel, "model", defaultModel, "vision model name")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "drop detections below this confidence (0-1)")
	return cmd
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}

type activityOutput struct {
	Key         string   `json:"key"`
	Points      int      `json:"points"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Components  []string `json:"components,omitempty"`
}

func catalogView(c *catalog.Catalog) []activityOutput {
	defs := c.Definitions()
	out := make([]activityOutput, len(defs))
	for i, d := range defs {
		out[i] = activityOutput{Key: d.Key, Points: d.Points, Description: d.Description, Icon: d.Icon, Components: d.Components}
	}
	return out
}

type scoreOutput struct {
	Labels         []string         `json:"labels"`
	TotalPoints    int              `json:"total_points"`
	Activities     []scoring.Credit `json:"activities"`
	ConsumedLabels []string         `json:"consumed_labels"`
	Impact         scoring.Impact   `json:"impact"`
}

func printResult(w io.Writer, labels []string, res scoring.Result, c *catalog.Catalog) error {
	out := scoreOutput{
		Labels:         labels,
		TotalPoints:    res.TotalPoints,
		Activities:     scoring.Breakdown(res, c),
		ConsumedLabels: res.ConsumedList(),
		Impact:         scoring.EstimateImpact(res.TotalPoints),
	}
	if jsonOutput {
		return writeJSON(w, out)
	}
	fmt.Fprintf(w, "total: %d points\n", out.TotalPoints)
	for _, a := range out.Activities {
		fmt.Fprintf(w, "  %s %-20s +%d  %s\n", a.Icon, a.Key, a.Points, a.Description)
	}
	if len(out.ConsumedLabels) > 0 {
		fmt.Fprintf(w, "consumed: %s\n", strings.Join(out.ConsumedLabels, ", "))
	}
	fmt.Fprintf(w, "impact: %.1f kg CO2, %.1f trees\n", out.Impact.CO2SavedKg, out.Impact.TreeEquivalent)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
