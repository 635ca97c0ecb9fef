package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/nichescope/internal/model"
)

// Scorer turns aggregated signals into a weighted viability index
type Scorer struct {
	calibration model.Calibration
}

// NewScorer creates a scorer for a validated calibration
func NewScorer(calibration model.Calibration) (*Scorer, error) {
	if err := calibration.Validate(); err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}
	return &Scorer{calibration: calibration.Clone()}, nil
}

// Calibration returns a copy of the calibration the scorer was built with
func (s *Scorer) Calibration() model.Calibration {
	return s.calibration.Clone()
}

// Scored is the numeric outcome of scoring one set of signals
type Scored struct {
	Index               int     // 0-100
	SentimentNormalized float64 // 0-100
	TrafficScore        int
	AdsScore            int
	Risk                model.RiskLevel
}

// Calculate computes the sub-scores, the weighted index and the risk level
func (s *Scorer) Calculate(signals Signals) Scored {
	sentimentNorm := NormalizeSentiment(signals.AvgSentiment)
	trafficScore := s.TrafficScore(signals.DominantTier)
	adsScore := s.AdsScore(signals.DominantAds)

	w := s.calibration.Weights
	raw := sentimentNorm*w.Sentiment +
		float64(trafficScore)*w.Traffic +
		float64(adsScore)*w.Ads

	index := clampIndex(raw)

	return Scored{
		Index:               index,
		SentimentNormalized: sentimentNorm,
		TrafficScore:        trafficScore,
		AdsScore:            adsScore,
		Risk:                model.RiskForIndex(index),
	}
}

// TrafficScore looks up the opportunity score for a tier
func (s *Scorer) TrafficScore(tier model.TrafficTier) int {
	if v, ok := s.calibration.TrafficScores[tier]; ok {
		return v
	}
	return s.calibration.FallbackScore
}

// AdsScore looks up the opportunity score for an advertising label
func (s *Scorer) AdsScore(label string) int {
	if v, ok := s.calibration.AdsScores[label]; ok {
		return v
	}
	return s.calibration.FallbackScore
}

// NormalizeSentiment maps a sentiment in [-1, 1] onto [0, 100]
func NormalizeSentiment(sentiment float64) float64 {
	return (sentiment + 1.0) / 2.0 * 100.0
}

// clampIndex rounds half away from zero and clamps to [0, 100]
func clampIndex(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	rounded := math.Round(raw)
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return int(rounded)
}

// roundTo rounds v to the given number of decimal places
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
