// Demo program that scores three reference niches with the default calibration.
// It prints each prediction so changes to the calibration can be eyeballed.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/nichescope/internal/model"
	"github.com/ppiankov/nichescope/internal/score"
)

type scenario struct {
	name         string
	observations []model.Observation
}

func main() {
	fmt.Println("=== Market Viability Demo ===")
	fmt.Println()

	engine, err := score.NewEngine(model.DefaultCalibration())
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}

	scenarios := []scenario{
		{
			name: "Untapped niche (quiet competitors, happy customers)",
			observations: []model.Observation{
				{Sentiment: model.Float(0.8), TrafficTier: model.TrafficLow, AdsPlatform: model.AdsNoneDetected},
				{Sentiment: model.Float(0.7), TrafficTier: model.TrafficLow, AdsPlatform: model.AdsNoneDetected},
				{Sentiment: model.Float(0.9), TrafficTier: model.TrafficMedium, AdsPlatform: model.AdsNoneDetected},
			},
		},
		{
			name: "Saturated niche (heavy ad spend, unhappy market)",
			observations: []model.Observation{
				{Sentiment: model.Float(-0.5), TrafficTier: model.TrafficVeryHigh, AdsPlatform: model.AdsGoogleMeta},
				{Sentiment: model.Float(-0.3), TrafficTier: model.TrafficVeryHigh, AdsPlatform: model.AdsGoogleMeta},
			},
		},
		{
			name: "Sparse data (no sentiment or tier collected)",
			observations: []model.Observation{
				{AdsPlatform: model.AdsGoogle},
				{},
			},
		},
	}

	for _, s := range scenarios {
		fmt.Println(s.name)
		fmt.Println(strings.Repeat("-", 60))

		p, err := engine.Predict(s.observations)
		if err != nil {
			fmt.Printf("  error: %v\n\n", err)
			continue
		}

		fmt.Printf("  Index:       %d/100 (%s risk)\n", p.ViabilityIndex, p.RiskLevel)
		fmt.Printf("  Sentiment:   %.2f\n", p.SentimentScore)
		fmt.Printf("  Traffic:     %s\n", p.TrafficTier)
		fmt.Printf("  Ads:         %s\n", p.AdsStatus)
		fmt.Printf("  Competitors: %d\n", p.CompetitorsAnalyzed)
		fmt.Printf("  %s\n\n", p.Recommendation)
	}
}
