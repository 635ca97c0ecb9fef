package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/nichescope/internal/model"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <leads-file>",
	Short: "Import discovered businesses and competitor intel into the store",
	Long: `Import seeds the database from a JSON or YAML file:

  source_query: pizzeria in Passos, MG
  businesses:
    - name: Pizza Roma
      place_id: ChIJ...
      rating: 4.5
      intel:
        - competitor_name: Forno Bello
          sentiment: 0.4
          traffic_tier: low
          ads_platform: none detected

Businesses already present (same place id) are skipped along with their intel,
so importing the same file twice adds nothing.
The whole file is rejected if any observation is invalid.

Example:
  nichescope import leads.yaml --db ./nichescope.db`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	var file model.ImportFile
	if err := decodeFile(args[0], &file); err != nil {
		return err
	}

	s, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	summary, err := s.Import(cmd.Context(), file)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Imported %q into %s\n", file.SourceQuery, cfg.Store.Path)
	fmt.Fprintf(cmd.ErrOrStderr(), "  Leads inserted:  %d\n", summary.LeadsInserted)
	fmt.Fprintf(cmd.ErrOrStderr(), "  Leads skipped:   %d\n", summary.LeadsSkipped)
	fmt.Fprintf(cmd.ErrOrStderr(), "  Intel inserted:  %d\n", summary.IntelInserted)
	fmt.Fprintf(cmd.ErrOrStderr(), "  Intel skipped:   %d\n", summary.IntelSkipped)
	return nil
}
