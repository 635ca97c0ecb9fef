package score

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/nichescope/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(model.DefaultCalibration())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestEngine_Predict_Empty(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Predict(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput, got %v", err)
	}
	if result.CompetitorsAnalyzed != 0 || result.Recommendation != "" {
		t.Errorf("Expected zero value result on error, got %+v", result)
	}
}

func TestEngine_Predict_ScenarioA(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Predict([]model.Observation{{
		Sentiment:   model.Float(1.0),
		TrafficTier: model.TrafficLow,
		AdsPlatform: model.AdsNoneDetected,
	}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.ViabilityIndex != 91 {
		t.Errorf("Expected index 91, got %d", result.ViabilityIndex)
	}
	if result.RiskLevel != model.RiskLow {
		t.Errorf("Expected low risk, got %s", result.RiskLevel)
	}
	if result.Breakdown.SentimentNormalized != 100 {
		t.Errorf("Expected normalized sentiment 100, got %v", result.Breakdown.SentimentNormalized)
	}
	if !strings.HasPrefix(result.Recommendation, "High opportunity") {
		t.Errorf("Expected high-opportunity clause first, got %q", result.Recommendation)
	}
	if !strings.Contains(result.Recommendation, "Low ad competition") {
		t.Errorf("Expected no-advertising clause, got %q", result.Recommendation)
	}
	if !strings.Contains(result.Recommendation, "Strong positive sentiment") {
		t.Errorf("Expected positive sentiment clause, got %q", result.Recommendation)
	}
	if result.CompetitorsAnalyzed != 1 {
		t.Errorf("Expected 1 competitor analyzed, got %d", result.CompetitorsAnalyzed)
	}
}

func TestEngine_Predict_ScenarioB(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Predict([]model.Observation{{
		Sentiment:   model.Float(-1.0),
		TrafficTier: model.TrafficVeryHigh,
		AdsPlatform: model.AdsGoogleMeta,
	}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.ViabilityIndex != 14 {
		t.Errorf("Expected index 14, got %d", result.ViabilityIndex)
	}
	if result.RiskLevel != model.RiskHigh {
		t.Errorf("Expected high risk, got %s", result.RiskLevel)
	}
	for _, fragment := range []string{"Saturated niche", "invest heavily", "established brands", "Negative market sentiment"} {
		if !strings.Contains(result.Recommendation, fragment) {
			t.Errorf("Expected %q in recommendation %q", fragment, result.Recommendation)
		}
	}
}

func TestEngine_Predict_ScenarioC(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Predict([]model.Observation{
		{TrafficTier: model.TrafficLow, AdsPlatform: model.AdsMeta},
		{TrafficTier: model.TrafficLow, AdsPlatform: model.AdsTikTok},
		{TrafficTier: model.TrafficHigh, AdsPlatform: model.AdsMeta},
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.TrafficTier != model.TrafficLow {
		t.Errorf("Expected dominant tier low, got %s", result.TrafficTier)
	}
	if result.AdsStatus != model.AdsMeta {
		t.Errorf("Expected dominant ads %q, got %q", model.AdsMeta, result.AdsStatus)
	}
	// No sentiment present: normalized 50, 50*0.30 + 85*0.35 + 55*0.35 = 64
	if result.ViabilityIndex != 64 {
		t.Errorf("Expected index 64, got %d", result.ViabilityIndex)
	}
	if result.SentimentScore != 0 {
		t.Errorf("Expected sentiment 0, got %v", result.SentimentScore)
	}
}

func TestEngine_Predict_Rounding(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Predict([]model.Observation{
		{Sentiment: model.Float(0.1234)},
		{Sentiment: model.Float(0.2)},
		{Sentiment: model.Float(0.3)},
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	// mean = 0.2078
	if result.SentimentScore != 0.21 {
		t.Errorf("Expected sentiment_score 0.21, got %v", result.SentimentScore)
	}
	if result.Breakdown.SentimentRaw != 0.208 {
		t.Errorf("Expected sentiment_raw 0.208, got %v", result.Breakdown.SentimentRaw)
	}
	if result.Breakdown.SentimentNormalized != 60.4 {
		t.Errorf("Expected sentiment_normalized 60.4, got %v", result.Breakdown.SentimentNormalized)
	}
}

func TestEngine_Predict_WeightsInBreakdown(t *testing.T) {
	calibration := model.DefaultCalibration()
	calibration.Weights = model.Weights{Sentiment: 0.5, Traffic: 0.25, Ads: 0.25}

	engine, err := NewEngine(calibration)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	inputs := [][]model.Observation{
		{{}},
		{{Sentiment: model.Float(-0.4), TrafficTier: model.TrafficHigh}},
		{{AdsPlatform: "Pinterest Ads"}, {AdsPlatform: "Pinterest Ads"}},
	}
	for _, in := range inputs {
		result, err := engine.Predict(in)
		if err != nil {
			t.Fatalf("Predict failed: %v", err)
		}
		if result.Breakdown.Weights != calibration.Weights {
			t.Errorf("Expected weights %+v, got %+v", calibration.Weights, result.Breakdown.Weights)
		}
	}
}

func TestEngine_Predict_Deterministic(t *testing.T) {
	engine := newTestEngine(t)

	observations := []model.Observation{
		{Sentiment: model.Float(0.4), TrafficTier: model.TrafficHigh, AdsPlatform: model.AdsGoogle},
		{Sentiment: model.Float(-0.3), TrafficTier: model.TrafficLow, AdsPlatform: model.AdsMeta},
		{TrafficTier: model.TrafficMedium},
	}

	first, err := engine.Predict(observations)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	firstJSON, _ := json.Marshal(first)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := engine.Predict(observations)
			if err != nil {
				t.Errorf("Predict failed: %v", err)
				return
			}
			againJSON, _ := json.Marshal(again)
			if string(againJSON) != string(firstJSON) {
				t.Errorf("Expected identical output, got %s vs %s", againJSON, firstJSON)
			}
		}()
	}
	wg.Wait()
}

func TestEngine_Predict_SentimentWithinRange(t *testing.T) {
	engine := newTestEngine(t)

	sets := [][]model.Observation{
		{{Sentiment: model.Float(-1)}, {Sentiment: model.Float(-1)}},
		{{Sentiment: model.Float(1)}, {}, {Sentiment: model.Float(1)}},
		{{Sentiment: model.Float(0.999)}, {Sentiment: model.Float(-0.999)}},
	}
	for _, set := range sets {
		result, err := engine.Predict(set)
		if err != nil {
			t.Fatalf("Predict failed: %v", err)
		}
		if result.SentimentScore < -1 || result.SentimentScore > 1 {
			t.Errorf("Sentiment out of range: %v", result.SentimentScore)
		}
		if result.ViabilityIndex < 0 || result.ViabilityIndex > 100 {
			t.Errorf("Index out of range: %d", result.ViabilityIndex)
		}
	}
}
