package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/nichescope/internal/pipeline"
)

var (
	leadID         string
	query          string
	predictFormat  string
	predictOut     string
	predictTimeout time.Duration
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict market viability for a lead or a discovery query",
	Long: `Predict loads collected competitor observations from the store and scores
the niche.

With --lead the observations of a single lead are used. With --query every
lead discovered by that search query contributes its observations.

Example:
  nichescope predict --query "pizzeria in Passos, MG"
  nichescope predict --lead 2f1c7a4e-9a0b-4c6d-8e2f-1a3b5c7d9e0f --format json
  nichescope predict --query "gym in Campinas" --format yaml --out gym.yaml`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&leadID, "lead", "", "lead id to evaluate")
	predictCmd.Flags().StringVar(&query, "query", "", "discovery query to evaluate")
	predictCmd.Flags().StringVarP(&predictFormat, "format", "f", "", "output format: json, yaml, text (default from output.format)")
	predictCmd.Flags().StringVarP(&predictOut, "out", "o", "", "write result to file instead of stdout")
	predictCmd.Flags().DurationVar(&predictTimeout, "timeout", 30*time.Second, "timeout for store access")

	predictCmd.MarkFlagsMutuallyExclusive("lead", "query")
	predictCmd.MarkFlagsOneRequired("lead", "query")
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if predictFormat != "" {
		cfg.Output.Format = predictFormat
	}
	log := newLogger(cfg)

	renderer, err := pipeline.NewRenderer(cfg.Output.Format)
	if err != nil {
		return err
	}

	s, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	p, err := pipeline.NewPipeline(cfg, s, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), predictTimeout)
	defer cancel()

	var result *pipeline.PredictResult
	if leadID != "" {
		result, err = p.PredictForEntity(ctx, leadID)
	} else {
		result, err = p.PredictForQuery(ctx, query)
	}
	if err != nil {
		var nf *pipeline.NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return fmt.Errorf("predict failed: %w", err)
	}

	if predictOut != "" {
		if err := renderer.RenderFile(predictOut, result); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %s %q (index: %d/100) → %s\n", result.Target, result.Key, result.Prediction.ViabilityIndex, predictOut)
		return nil
	}

	return renderer.Render(cmd.OutOrStdout(), result)
}
