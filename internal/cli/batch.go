package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/nichescope/internal/pipeline"
	"github.com/ppiankov/nichescope/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchFormat  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <targets-file>",
	Short: "Predict viability for many leads and queries in parallel",
	Long: `Batch evaluates every target listed in a file, one per line:

  lead:<uuid>      a single lead
  query:<text>     every lead discovered by a search query
  <text>           shorthand for query:<text>

Blank lines and lines starting with # are ignored. A failing target is
reported and does not stop the others.

Example:
  nichescope batch targets.txt
  nichescope batch targets.txt --concurrency 8 --output-dir ./predictions --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./nichescope-predictions", "output directory for results")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "json", "output format: json, yaml, text")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	log := newLogger(cfg)

	renderer, err := pipeline.NewRenderer(batchFormat)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  nichescope Batch Prediction\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
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

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize, log)
	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "⚙️  Evaluated %d targets with %d workers\n\n", len(outcomes), cfg.Concurrency.Workers)

	successCount := 0
	failureCount := 0

	for _, o := range outcomes {
		if o.Error != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", o.Target, o.Error)
			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("%03d-%s%s", o.Index+1, sanitizeFilename(o.Target.String()), renderer.Extension()))
		if err := renderer.RenderFile(path, o.Result); err != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", o.Target, err)
			continue
		}

		successCount++
		fmt.Fprintf(stderr, "✓ %s (index: %d/100, risk: %s)\n", o.Target, o.Result.Prediction.ViabilityIndex, o.Result.Prediction.RiskLevel)
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d targets\n", len(outcomes))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d targets failed", failureCount, len(outcomes))
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	",", "",
	" ", "-",
)

// sanitizeFilename makes a target usable as a file name
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))

	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}
