package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/nichescope/internal/model"
	"github.com/ppiankov/nichescope/internal/store"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	dbPath  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nichescope",
	Short: "nichescope - market viability scoring for local business niches",
	Long: `nichescope estimates how attractive a local business niche is to enter.

It reads competitor observations (market sentiment, estimated traffic tier,
detected advertising platform), aggregates them, and produces a 0-100
viability index with a risk level and a plain-language recommendation.

The score is a fixed, deterministic heuristic. It is not a forecast.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command; cancelling ctx aborts in-flight work
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nichescope %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.nichescope/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides store.path)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".nichescope"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	registerDefaults(model.DefaultConfig())

	// NICHESCOPE_STORE_PATH, NICHESCOPE_LOG_LEVEL, ...
	viper.SetEnvPrefix("NICHESCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes scalar keys visible to AutomaticEnv
func registerDefaults(cfg *model.Config) {
	viper.SetDefault("store.path", cfg.Store.Path)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.ttl", cfg.Cache.TTL)
	viper.SetDefault("cache.cleanup_interval", cfg.Cache.CleanupInterval)
	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	viper.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
	viper.SetDefault("output.format", cfg.Output.Format)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("calibration.fallback_score", cfg.Calibration.FallbackScore)
	viper.SetDefault("calibration.tie_break", string(cfg.Calibration.TieBreak))
}

// loadConfig merges defaults, config file, env and flags, then validates the calibration
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Viper lowercases map keys, which would break ads labels like "Google Ads"
	cal, err := loadCalibration(viper.ConfigFileUsed())
	if err != nil {
		return nil, err
	}
	cal.TieBreak = model.TieBreak(viper.GetString("calibration.tie_break"))
	cal.FallbackScore = viper.GetInt("calibration.fallback_score")
	cfg.Calibration = cal

	if err := cfg.Calibration.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calibration: %w", err)
	}
	return cfg, nil
}

// loadCalibration overlays the calibration section of a YAML config file on the defaults.
// Table entries in the file are merged into the default tables.
func loadCalibration(path string) (model.Calibration, error) {
	cal := model.DefaultCalibration()
	if path == "" {
		return cal, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cal, fmt.Errorf("read config: %w", err)
	}

	wrapper := struct {
		Calibration *model.Calibration `yaml:"calibration"`
	}{Calibration: &cal}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return cal, fmt.Errorf("decode calibration: %w", err)
	}
	return cal, nil
}

// newLogger builds the console logger used by every command
func newLogger(cfg *model.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Output.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// openStore opens the configured database with the lead cache applied
func openStore(cfg *model.Config, log zerolog.Logger) (*store.Store, error) {
	s, err := store.Open(cfg.Store.Path, log)
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Enabled {
		s.EnableLeadCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}
	return s, nil
}
