package score

import (
	"github.com/ppiankov/nichescope/internal/model"
)

// Engine runs aggregation, scoring and composition over one observation set.
// It holds only the read-only calibration and is safe for concurrent use.
type Engine struct {
	scorer *Scorer
}

// NewEngine creates an engine for the given calibration
func NewEngine(calibration model.Calibration) (*Engine, error) {
	scorer, err := NewScorer(calibration)
	if err != nil {
		return nil, err
	}
	return &Engine{scorer: scorer}, nil
}

// Predict produces a complete prediction, or ErrEmptyInput for zero observations
func (e *Engine) Predict(observations []model.Observation) (model.Prediction, error) {
	calibration := e.scorer.calibration

	signals, err := Aggregate(observations, calibration.TieBreak)
	if err != nil {
		return model.Prediction{}, err
	}

	scored := e.scorer.Calculate(signals)

	return model.Prediction{
		ViabilityIndex:      scored.Index,
		SentimentScore:      roundTo(signals.AvgSentiment, 2),
		TrafficTier:         signals.DominantTier,
		AdsStatus:           signals.DominantAds,
		RiskLevel:           scored.Risk,
		Recommendation:      Compose(scored.Index, signals.DominantTier, signals.DominantAds, signals.AvgSentiment),
		CompetitorsAnalyzed: signals.Count,
		Breakdown: model.Breakdown{
			SentimentRaw:        roundTo(signals.AvgSentiment, 3),
			SentimentNormalized: roundTo(scored.SentimentNormalized, 1),
			TrafficScore:        scored.TrafficScore,
			AdsScore:            scored.AdsScore,
			Weights:             calibration.Weights,
		},
	}, nil
}
