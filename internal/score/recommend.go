package score

import (
	"fmt"
	"strings"

	"github.com/ppiankov/nichescope/internal/model"
)

// AdsChannel is the closed classification of a dominant advertising label
type AdsChannel int

const (
	AdsChannelOther     AdsChannel = iota // Any other detected channel
	AdsChannelNone                        // No competitor advertising
	AdsChannelHeavy                       // Both major paid channels
	AdsChannelPrimary                     // Google present
	AdsChannelSecondary                   // Meta present
)

func (c AdsChannel) String() string {
	switch c {
	case AdsChannelNone:
		return "none"
	case AdsChannelHeavy:
		return "heavy"
	case AdsChannelPrimary:
		return "primary"
	case AdsChannelSecondary:
		return "secondary"
	default:
		return "other"
	}
}

const (
	primaryPlatform   = "Google"
	secondaryPlatform = "Meta"
)

// ClassifyAds maps a label onto its channel; exact matches win over substring matches
func ClassifyAds(label string) AdsChannel {
	switch {
	case label == model.AdsNoneDetected:
		return AdsChannelNone
	case label == model.AdsGoogleMeta:
		return AdsChannelHeavy
	case strings.Contains(label, primaryPlatform):
		return AdsChannelPrimary
	case strings.Contains(label, secondaryPlatform):
		return AdsChannelSecondary
	default:
		return AdsChannelOther
	}
}

// Commentary thresholds are finer than the risk bands
const (
	highOpportunityMin     = 75
	moderateOpportunityMin = 55
	challengingNicheMin    = 35

	negativeSentimentMax = -0.1
	positiveSentimentMin = 0.6
)

// Compose assembles the advisory text: opportunity, ads, traffic, then sentiment.
// The opportunity and ads clauses are always present.
func Compose(index int, tier model.TrafficTier, ads string, avgSentiment float64) string {
	parts := []string{opportunityClause(index), adsClause(ads)}

	if clause := trafficClause(tier); clause != "" {
		parts = append(parts, clause)
	}
	if clause := sentimentClause(avgSentiment); clause != "" {
		parts = append(parts, clause)
	}

	return strings.Join(parts, " ")
}

func opportunityClause(index int) string {
	switch {
	case index >= highOpportunityMin:
		return "High opportunity: the market has significant room for entry."
	case index >= moderateOpportunityMin:
		return "Moderate opportunity: a competitive niche, but with exploitable gaps."
	case index >= challengingNicheMin:
		return "Challenging niche: relevant competition, clear differentiation required."
	default:
		return "Saturated niche: high entry barrier, focus on sub-niches."
	}
}

func adsClause(label string) string {
	switch ClassifyAds(label) {
	case AdsChannelNone:
		return "Low ad competition: an opening to dominate paid traffic."
	case AdsChannelHeavy:
		return "Competitors invest heavily in ads (Google + Meta): consider organic branding or alternative channels."
	case AdsChannelPrimary:
		return "Active Google Ads presence: evaluate Meta Ads or TikTok as an alternative."
	case AdsChannelSecondary:
		return "Active Meta Ads presence: Google Ads may be a less contested channel."
	default:
		return fmt.Sprintf("Competition on %s: explore untapped channels.", label)
	}
}

func trafficClause(tier model.TrafficTier) string {
	switch tier {
	case model.TrafficHigh, model.TrafficVeryHigh:
		return "High traffic points to established brands: focus on brand differentiation and a unique value proposition."
	case model.TrafficLow:
		return "Low traffic in the niche: a possible gap for fast market share capture."
	default:
		return ""
	}
}

func sentimentClause(sentiment float64) string {
	switch {
	case sentiment < negativeSentimentMax:
		return "Negative market sentiment may signal consumer dissatisfaction: an opportunity to offer a superior experience."
	case sentiment > positiveSentimentMin:
		return "Strong positive sentiment: a receptive market, ideal for awareness and direct conversion campaigns."
	default:
		return ""
	}
}
