package model

// Prediction is the market viability assessment for a niche.
// It carries the full breakdown so every number can be traced back to its inputs.
type Prediction struct {
	ViabilityIndex      int         `json:"viability_index" yaml:"viability_index"`             // 0-100
	SentimentScore      float64     `json:"sentiment_score" yaml:"sentiment_score"`             // Mean raw sentiment, 2 dp
	TrafficTier         TrafficTier `json:"traffic_tier" yaml:"traffic_tier"`                   // Dominant tier
	AdsStatus           string      `json:"ads_status" yaml:"ads_status"`                       // Dominant ads label
	RiskLevel           RiskLevel   `json:"risk_level" yaml:"risk_level"`                       // low, medium, high
	Recommendation      string      `json:"recommendation" yaml:"recommendation"`               // Composed advice
	CompetitorsAnalyzed int         `json:"competitors_analyzed" yaml:"competitors_analyzed"`   // Observations consumed
	Breakdown           Breakdown   `json:"breakdown" yaml:"breakdown"`
}

// Breakdown holds the sub-scores and weights behind a viability index
type Breakdown struct {
	SentimentRaw        float64 `json:"sentiment_raw" yaml:"sentiment_raw"`               // 3 dp
	SentimentNormalized float64 `json:"sentiment_normalized" yaml:"sentiment_normalized"` // 0-100, 1 dp
	TrafficScore        int     `json:"traffic_score" yaml:"traffic_score"`
	AdsScore            int     `json:"ads_score" yaml:"ads_score"`
	Weights             Weights `json:"weights" yaml:"weights"`
}

// Weights are the relative importance of each factor; they sum to 1.0
type Weights struct {
	Sentiment float64 `json:"sentiment" yaml:"sentiment" mapstructure:"sentiment" validate:"gte=0,lte=1"`
	Traffic   float64 `json:"traffic" yaml:"traffic" mapstructure:"traffic" validate:"gte=0,lte=1"`
	Ads       float64 `json:"ads" yaml:"ads" mapstructure:"ads" validate:"gte=0,lte=1"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Sentiment + w.Traffic + w.Ads
}

// RiskLevel classifies market entry risk
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskForIndex maps a viability index to its risk band.
// Each band includes its lower bound.
func RiskForIndex(index int) RiskLevel {
	switch {
	case index >= 70:
		return RiskLow
	case index >= 40:
		return RiskMedium
	default:
		return RiskHigh
	}
}
