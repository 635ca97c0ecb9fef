package score

import (
	"errors"
	"sort"

	"github.com/ppiankov/nichescope/internal/model"
)

// ErrEmptyInput is returned when there are no observations to aggregate
var ErrEmptyInput = errors.New("no observations to aggregate")

// Signals are the representative per-niche values reduced from a set of observations
type Signals struct {
	AvgSentiment float64           // Mean of present sentiments, 0 when none
	DominantTier model.TrafficTier // Most frequent tier after defaulting
	DominantAds  string            // Most frequent ads label after defaulting
	Count        int               // Observations consumed
}

// Aggregate reduces observations to mean sentiment, dominant tier and dominant ads label
func Aggregate(observations []model.Observation, tieBreak model.TieBreak) (Signals, error) {
	if len(observations) == 0 {
		return Signals{}, ErrEmptyInput
	}

	var sum float64
	present := 0
	tiers := newTally()
	ads := newTally()

	for _, o := range observations {
		if o.Sentiment != nil {
			sum += *o.Sentiment
			present++
		}
		tiers.add(string(o.ResolvedTier()))
		ads.add(o.ResolvedAds())
	}

	avg := 0.0
	if present > 0 {
		avg = sum / float64(present)
	}

	return Signals{
		AvgSentiment: avg,
		DominantTier: model.TrafficTier(tiers.dominant(tieBreak)),
		DominantAds:  ads.dominant(tieBreak),
		Count:        len(observations),
	}, nil
}

// tally counts values while remembering the order they were first seen
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(v string) {
	if _, ok := t.counts[v]; !ok {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

// dominant returns the most frequent value, resolving ties by policy
func (t *tally) dominant(policy model.TieBreak) string {
	candidates := t.order
	if policy == model.TieBreakLexical {
		candidates = append([]string(nil), t.order...)
		sort.Strings(candidates)
	}

	best := ""
	bestCount := 0
	for _, v := range candidates {
		if c := t.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}
