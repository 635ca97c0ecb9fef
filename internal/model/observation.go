package model

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Observation is one competitor-intelligence data point for a niche
type Observation struct {
	Sentiment   *float64    `json:"sentiment,omitempty" yaml:"sentiment,omitempty" validate:"omitempty,gte=-1,lte=1"`
	TrafficTier TrafficTier `json:"traffic_tier,omitempty" yaml:"traffic_tier,omitempty"`
	AdsPlatform string      `json:"ads_platform,omitempty" yaml:"ads_platform,omitempty"`
}

// TrafficTier is the estimated traffic level of a competitor
type TrafficTier string

const (
	TrafficLow      TrafficTier = "low"
	TrafficMedium   TrafficTier = "medium"
	TrafficHigh     TrafficTier = "high"
	TrafficVeryHigh TrafficTier = "very_high"
)

// KnownTrafficTiers lists the closed set of tiers in ascending order of traffic
var KnownTrafficTiers = []TrafficTier{TrafficLow, TrafficMedium, TrafficHigh, TrafficVeryHigh}

// IsKnown reports whether t is one of the closed tier values
func (t TrafficTier) IsKnown() bool {
	switch t {
	case TrafficLow, TrafficMedium, TrafficHigh, TrafficVeryHigh:
		return true
	default:
		return false
	}
}

// Advertising labels recorded by competitor collection
const (
	AdsNoneDetected = "none detected"        // No competitor advertising found
	AdsGoogle       = "Google Ads"           // Primary paid channel
	AdsMeta         = "Meta Ads"             // Secondary paid channel
	AdsLinkedIn     = "LinkedIn Ads"
	AdsTikTok       = "TikTok Ads"
	AdsGoogleMeta   = "Google Ads, Meta Ads" // Heavy multi-channel investment
)

// ResolvedTier returns the traffic tier, defaulting to medium when absent
func (o Observation) ResolvedTier() TrafficTier {
	if o.TrafficTier == "" {
		return TrafficMedium
	}
	return o.TrafficTier
}

// ResolvedAds returns the advertising label, defaulting to the none-detected sentinel
func (o Observation) ResolvedAds() string {
	if o.AdsPlatform == "" {
		return AdsNoneDetected
	}
	return o.AdsPlatform
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that a present sentiment lies in [-1, 1]
func (o Observation) Validate() error {
	if err := Validator().Struct(o); err != nil {
		return fmt.Errorf("invalid observation: %w", err)
	}
	return nil
}

// ValidateObservations validates every observation and reports the first offending index
func ValidateObservations(observations []Observation) error {
	for i, o := range observations {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}
	}
	return nil
}

// Float returns a pointer to v, for building observations with a sentiment
func Float(v float64) *float64 {
	return &v
}
