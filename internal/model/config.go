package model

import (
	"fmt"
	"math"
	"time"
)

// Config is the complete nichescope configuration
type Config struct {
	Calibration  Calibration        `yaml:"calibration" mapstructure:"calibration"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// Calibration holds the weights and lookup tables used by the scorer.
// Swap it to recalibrate for another market without touching the algorithm.
type Calibration struct {
	Weights       Weights             `yaml:"weights" mapstructure:"weights"`
	TrafficScores map[TrafficTier]int `yaml:"traffic_scores" mapstructure:"traffic_scores"`
	AdsScores     map[string]int      `yaml:"ads_scores" mapstructure:"ads_scores"`
	FallbackScore int                 `yaml:"fallback_score" mapstructure:"fallback_score"` // Unknown tier or label
	TieBreak      TieBreak            `yaml:"tie_break" mapstructure:"tie_break"`
}

// TieBreak selects among values sharing the highest frequency
type TieBreak string

const (
	TieBreakFirstSeen TieBreak = "first_seen" // Earliest first occurrence in input order
	TieBreakLexical   TieBreak = "lexical"    // Lowest-sorted value
)

const weightTolerance = 1e-9

// DefaultCalibration returns the weights and tables tuned for small local-business niches
func DefaultCalibration() Calibration {
	return Calibration{
		Weights: Weights{
			Sentiment: 0.30,
			Traffic:   0.35,
			Ads:       0.35,
		},
		// Lower traffic means less saturation, so more opportunity
		TrafficScores: map[TrafficTier]int{
			TrafficLow:      85,
			TrafficMedium:   60,
			TrafficHigh:     35,
			TrafficVeryHigh: 15,
		},
		AdsScores: map[string]int{
			AdsNoneDetected: 90,
			AdsGoogle:       50,
			AdsMeta:         55,
			AdsLinkedIn:     60,
			AdsTikTok:       65,
			AdsGoogleMeta:   25,
		},
		FallbackScore: 50,
		TieBreak:      TieBreakFirstSeen,
	}
}

// Validate checks the weights sum to 1.0 and every score lies in [0, 100]
func (c Calibration) Validate() error {
	if err := Validator().Struct(c.Weights); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", sum)
	}
	for tier, s := range c.TrafficScores {
		if s < 0 || s > 100 {
			return fmt.Errorf("traffic score for %q out of range: %d", tier, s)
		}
	}
	for label, s := range c.AdsScores {
		if s < 0 || s > 100 {
			return fmt.Errorf("ads score for %q out of range: %d", label, s)
		}
	}
	if c.FallbackScore < 0 || c.FallbackScore > 100 {
		return fmt.Errorf("fallback score out of range: %d", c.FallbackScore)
	}
	switch c.TieBreak {
	case TieBreakFirstSeen, TieBreakLexical:
	default:
		return fmt.Errorf("unknown tie-break %q (supported: first_seen, lexical)", c.TieBreak)
	}
	return nil
}

// StoreConfig locates the observation database
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file
}

// CacheConfig controls lead metadata memoisation
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles store reads during batch runs
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls result rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // json, yaml, text
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Calibration: DefaultCalibration(),
		Store: StoreConfig{
			Path: "nichescope.db",
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             10 * time.Minute,
			CleanupInterval: 15 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 50,
			BurstSize:         10,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Clone returns a deep copy so lookup tables cannot be mutated through a shared map
func (c Calibration) Clone() Calibration {
	out := c
	out.TrafficScores = make(map[TrafficTier]int, len(c.TrafficScores))
	for k, v := range c.TrafficScores {
		out.TrafficScores[k] = v
	}
	out.AdsScores = make(map[string]int, len(c.AdsScores))
	for k, v := range c.AdsScores {
		out.AdsScores[k] = v
	}
	return out
}
