package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/nichescope/internal/pipeline"
)

var scoreFormat string

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <observations-file>",
	Short: "Score observations from a JSON or YAML file without a database",
	Long: `Score runs the viability engine directly on a file of competitor observations.

The file holds either a list of observations or an object with an
"observations" key. Each observation may carry sentiment (-1..1),
traffic_tier (low, medium, high, very_high) and ads_platform.
Missing fields fall back to neutral defaults.

Example:
  nichescope score observations.yaml
  nichescope score observations.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "", "output format: json, yaml, text (default from output.format)")
}

func runScore(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if scoreFormat != "" {
		cfg.Output.Format = scoreFormat
	}

	renderer, err := pipeline.NewRenderer(cfg.Output.Format)
	if err != nil {
		return err
	}

	observations, err := readObservations(path)
	if err != nil {
		return err
	}

	// The pipeline needs no source for caller-supplied observations
	p, err := pipeline.NewPipeline(cfg, nil, newLogger(cfg))
	if err != nil {
		return err
	}

	prediction, err := p.Predict(observations)
	if err != nil {
		return err
	}

	return renderer.Render(cmd.OutOrStdout(), &pipeline.PredictResult{
		Target:     "file",
		Key:        filepath.Base(path),
		Prediction: prediction,
	})
}
