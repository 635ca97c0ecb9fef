package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ppiankov/nichescope/internal/model"
	"github.com/ppiankov/nichescope/internal/score"
)

// Source supplies leads and their competitor observations
type Source interface {
	Lead(ctx context.Context, id string) (model.Lead, bool, error)
	LeadsByQuery(ctx context.Context, query string) ([]model.Lead, error)
	ObservationsForLeads(ctx context.Context, leadIDs []string) ([]model.Observation, error)
}

// Pipeline fetches observations for a target and runs the viability engine on them
type Pipeline struct {
	source Source
	engine *score.Engine
	log    zerolog.Logger
}

// NewPipeline creates a pipeline over source using the configured calibration
func NewPipeline(cfg *model.Config, source Source, log zerolog.Logger) (*Pipeline, error) {
	engine, err := score.NewEngine(cfg.Calibration)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		source: source,
		engine: engine,
		log:    log.With().Str("component", "pipeline").Logger(),
	}, nil
}

// PredictResult pairs a prediction with the target it was computed for
type PredictResult struct {
	Target     string           `json:"target" yaml:"target"`
	Key        string           `json:"key" yaml:"key"`
	Leads      int              `json:"leads" yaml:"leads"`
	Prediction model.Prediction `json:"prediction" yaml:"prediction"`
}

// PredictForEntity predicts viability for one lead's niche
func (p *Pipeline) PredictForEntity(ctx context.Context, leadID string) (*PredictResult, error) {
	lead, found, err := p.source.Lead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("load lead: %w", err)
	}
	if !found {
		return nil, &NotFoundError{Kind: KindEntityNotFound, Target: targetLead, Key: leadID}
	}

	observations, err := p.source.ObservationsForLeads(ctx, []string{lead.ID})
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	if len(observations) == 0 {
		return nil, &NotFoundError{Kind: KindNoObservations, Target: targetLead, Key: leadID, Name: lead.Name}
	}

	return p.run(targetLead, leadID, 1, observations)
}

// PredictForQuery predicts viability across every lead sharing a discovery query
func (p *Pipeline) PredictForQuery(ctx context.Context, query string) (*PredictResult, error) {
	leads, err := p.source.LeadsByQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}
	if len(leads) == 0 {
		return nil, &NotFoundError{Kind: KindEntityNotFound, Target: targetQuery, Key: query}
	}

	ids := make([]string, len(leads))
	for i, l := range leads {
		ids[i] = l.ID
	}

	observations, err := p.source.ObservationsForLeads(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	if len(observations) == 0 {
		return nil, &NotFoundError{Kind: KindNoObservations, Target: targetQuery, Key: query}
	}

	return p.run(targetQuery, query, len(leads), observations)
}

// Predict runs the engine on caller-supplied observations after validating them
func (p *Pipeline) Predict(observations []model.Observation) (model.Prediction, error) {
	if err := model.ValidateObservations(observations); err != nil {
		return model.Prediction{}, err
	}
	return p.engine.Predict(observations)
}

func (p *Pipeline) run(target, key string, leads int, observations []model.Observation) (*PredictResult, error) {
	prediction, err := p.Predict(observations)
	if err != nil {
		return nil, fmt.Errorf("predict %s %q: %w", target, key, err)
	}

	p.log.Debug().
		Str("target", target).
		Str("key", key).
		Int("observations", prediction.CompetitorsAnalyzed).
		Int("viability_index", prediction.ViabilityIndex).
		Str("risk", string(prediction.RiskLevel)).
		Msg("prediction computed")

	return &PredictResult{
		Target:     target,
		Key:        key,
		Leads:      leads,
		Prediction: prediction,
	}, nil
}
