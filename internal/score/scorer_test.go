package score

import (
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/nichescope/internal/model"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	scorer, err := NewScorer(model.DefaultCalibration())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	return scorer
}

func TestDefaultCalibration_WeightsSumToOne(t *testing.T) {
	w := model.DefaultCalibration().Weights
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Errorf("Expected weights to sum to 1.0, got %f", w.Sum())
	}
	if err := model.DefaultCalibration().Validate(); err != nil {
		t.Errorf("Expected default calibration to validate, got %v", err)
	}
}

func TestNewScorer_RejectsInvalidCalibration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.Calibration)
		want   string
	}{
		{"weights do not sum", func(c *model.Calibration) { c.Weights.Ads = 0.5 }, "must sum to 1.0"},
		{"negative weight", func(c *model.Calibration) { c.Weights = model.Weights{Sentiment: -0.1, Traffic: 0.6, Ads: 0.5} }, "invalid weights"},
		{"traffic out of range", func(c *model.Calibration) { c.TrafficScores[model.TrafficLow] = 120 }, "traffic score"},
		{"ads out of range", func(c *model.Calibration) { c.AdsScores["Pinterest Ads"] = -1 }, "ads score"},
		{"fallback out of range", func(c *model.Calibration) { c.FallbackScore = 101 }, "fallback"},
		{"unknown tie-break", func(c *model.Calibration) { c.TieBreak = "random" }, "tie-break"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := model.DefaultCalibration()
			tt.mutate(&c)
			_, err := NewScorer(c)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestScorer_Lookups(t *testing.T) {
	scorer := newTestScorer(t)

	tiers := map[model.TrafficTier]int{
		model.TrafficLow:      85,
		model.TrafficMedium:   60,
		model.TrafficHigh:     35,
		model.TrafficVeryHigh: 15,
		"extreme":             50,
	}
	for tier, want := range tiers {
		if got := scorer.TrafficScore(tier); got != want {
			t.Errorf("TrafficScore(%s): expected %d, got %d", tier, want, got)
		}
	}

	ads := map[string]int{
		model.AdsNoneDetected: 90,
		model.AdsGoogle:       50,
		model.AdsMeta:         55,
		model.AdsLinkedIn:     60,
		model.AdsTikTok:       65,
		model.AdsGoogleMeta:   25,
		"Pinterest Ads":       50,
	}
	for label, want := range ads {
		if got := scorer.AdsScore(label); got != want {
			t.Errorf("AdsScore(%q): expected %d, got %d", label, want, got)
		}
	}
}

func TestNormalizeSentiment(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 50},
		{1, 100},
		{0.5, 75},
	}
	for _, tt := range tests {
		if got := NormalizeSentiment(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeSentiment(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestClampIndex(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{-3, 0},
		{0, 0},
		{14.49, 14},
		{14.5, 15},
		{91.25, 91},
		{100.0000001, 100},
		{104, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := clampIndex(tt.raw); got != tt.want {
			t.Errorf("clampIndex(%v): expected %d, got %d", tt.raw, tt.want, got)
		}
	}
}

func TestRiskForIndex_Boundaries(t *testing.T) {
	tests := []struct {
		index int
		want  model.RiskLevel
	}{
		{100, model.RiskLow},
		{70, model.RiskLow},
		{69, model.RiskMedium},
		{40, model.RiskMedium},
		{39, model.RiskHigh},
		{0, model.RiskHigh},
	}
	for _, tt := range tests {
		if got := model.RiskForIndex(tt.index); got != tt.want {
			t.Errorf("RiskForIndex(%d): expected %s, got %s", tt.index, tt.want, got)
		}
	}
}

func TestScorer_Calculate_ScenarioA(t *testing.T) {
	scorer := newTestScorer(t)

	scored := scorer.Calculate(Signals{
		AvgSentiment: 1.0,
		DominantTier: model.TrafficLow,
		DominantAds:  model.AdsNoneDetected,
		Count:        1,
	})

	// 100*0.30 + 85*0.35 + 90*0.35 = 91.25
	if scored.Index != 91 {
		t.Errorf("Expected index 91, got %d", scored.Index)
	}
	if scored.Risk != model.RiskLow {
		t.Errorf("Expected low risk, got %s", scored.Risk)
	}
	if scored.TrafficScore != 85 || scored.AdsScore != 90 {
		t.Errorf("Expected sub-scores 85/90, got %d/%d", scored.TrafficScore, scored.AdsScore)
	}
}

func TestScorer_Calculate_ScenarioB(t *testing.T) {
	scorer := newTestScorer(t)

	scored := scorer.Calculate(Signals{
		AvgSentiment: -1.0,
		DominantTier: model.TrafficVeryHigh,
		DominantAds:  model.AdsGoogleMeta,
		Count:        1,
	})

	// 0 + 15*0.35 + 25*0.35 = 14
	if scored.Index != 14 {
		t.Errorf("Expected index 14, got %d", scored.Index)
	}
	if scored.Risk != model.RiskHigh {
		t.Errorf("Expected high risk, got %s", scored.Risk)
	}
}

func TestScorer_Calculate_IndexAlwaysInRange(t *testing.T) {
	scorer := newTestScorer(t)

	for _, sentiment := range []float64{-1, -0.5, 0, 0.5, 1} {
		for _, tier := range append(model.KnownTrafficTiers, "unknown") {
			for label := range model.DefaultCalibration().AdsScores {
				scored := scorer.Calculate(Signals{AvgSentiment: sentiment, DominantTier: tier, DominantAds: label, Count: 1})
				if scored.Index < 0 || scored.Index > 100 {
					t.Fatalf("Index out of range: %d", scored.Index)
				}
				if scored.Risk != model.RiskForIndex(scored.Index) {
					t.Fatalf("Risk %s inconsistent with index %d", scored.Risk, scored.Index)
				}
			}
		}
	}
}

func TestScorer_CalibrationIsCopied(t *testing.T) {
	c := model.DefaultCalibration()
	scorer, err := NewScorer(c)
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	c.TrafficScores[model.TrafficLow] = 0
	if got := scorer.TrafficScore(model.TrafficLow); got != 85 {
		t.Errorf("Expected scorer table to be isolated from caller, got %d", got)
	}
}
