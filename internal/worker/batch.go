package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/nichescope/internal/pipeline"
)

// Predictor evaluates a single prediction target
type Predictor interface {
	PredictForEntity(ctx context.Context, leadID string) (*pipeline.PredictResult, error)
	PredictForQuery(ctx context.Context, query string) (*pipeline.PredictResult, error)
}

// Target kinds accepted in batch input
const (
	KindLead  = "lead"
	KindQuery = "query"
)

// Target identifies one batch entry
type Target struct {
	Kind string
	Key  string
}

func (t Target) String() string {
	return t.Kind + ":" + t.Key
}

// ParseTarget reads "lead:<id>" or "query:<text>"; anything else is treated as a query
func ParseTarget(line string) (Target, error) {
	line = strings.TrimSpace(line)
	kind, key, found := strings.Cut(line, ":")
	if found {
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case KindLead:
			key = strings.TrimSpace(key)
			if _, err := uuid.Parse(key); err != nil {
				return Target{}, fmt.Errorf("invalid lead id %q: %w", key, err)
			}
			return Target{Kind: KindLead, Key: key}, nil
		case KindQuery:
			line = strings.TrimSpace(key)
		}
	}
	if line == "" {
		return Target{}, errors.New("empty target")
	}
	return Target{Kind: KindQuery, Key: line}, nil
}

// PredictJob evaluates one target
type PredictJob struct {
	Index     int
	Target    Target
	Predictor Predictor
	Limiter   *Limiter
}

// Execute runs the prediction for the job's target
func (j *PredictJob) Execute(ctx context.Context) Result {
	out := &PredictOutcome{Index: j.Index, Target: j.Target}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Target.Kind); err != nil {
			out.Error = err
			return out
		}
	}

	if j.Target.Kind == KindLead {
		out.Result, out.Error = j.Predictor.PredictForEntity(ctx, j.Target.Key)
	} else {
		out.Result, out.Error = j.Predictor.PredictForQuery(ctx, j.Target.Key)
	}
	return out
}

// PredictOutcome is the result of a PredictJob
type PredictOutcome struct {
	Index  int
	Target Target
	Result *pipeline.PredictResult
	Error  error
}

// Position returns the submission index
func (o *PredictOutcome) Position() int { return o.Index }

// GetError returns the prediction error, if any
func (o *PredictOutcome) GetError() error { return o.Error }

// BatchProcessor evaluates many targets concurrently
type BatchProcessor struct {
	predictor   Predictor
	concurrency int
	limiter     *Limiter
	log         zerolog.Logger
}

// NewBatchProcessor creates a batch processor; rps <= 0 disables throttling
func NewBatchProcessor(predictor Predictor, concurrency int, rps float64, burst int, log zerolog.Logger) *BatchProcessor {
	return &BatchProcessor{
		predictor:   predictor,
		concurrency: concurrency,
		limiter:     NewLimiter(rps, burst),
		log:         log.With().Str("component", "batch").Logger(),
	}
}

// ProcessTargets evaluates targets and returns outcomes in input order.
// A failing target never aborts the others.
func (b *BatchProcessor) ProcessTargets(ctx context.Context, targets []Target) []*PredictOutcome {
	if len(targets) == 0 {
		return []*PredictOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, target := range targets {
		if !pool.Submit(&PredictJob{
			Index:     i,
			Target:    target,
			Predictor: b.predictor,
			Limiter:   b.limiter,
		}) {
			break
		}
	}

	results := pool.Wait()

	outcomes := make([]*PredictOutcome, len(targets))
	for _, r := range results {
		o := r.(*PredictOutcome)
		outcomes[o.Index] = o
	}

	failed := 0
	for i, o := range outcomes {
		if o == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			outcomes[i] = &PredictOutcome{Index: i, Target: targets[i], Error: err}
			o = outcomes[i]
		}
		if o.Error != nil {
			failed++
			b.log.Warn().Str("target", o.Target.String()).Err(o.Error).Msg("prediction failed")
		}
	}

	b.log.Info().Int("targets", len(targets)).Int("failed", failed).Msg("batch complete")
	return outcomes
}

// ProcessFile reads targets from a file and evaluates them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*PredictOutcome, error) {
	targets, err := ReadTargetsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	return b.ProcessTargets(ctx, targets), nil
}

// ReadTargetsFromFile reads one target per line, skipping blanks, comments and duplicates
func ReadTargetsFromFile(filePath string) ([]Target, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var targets []Target
	seen := make(map[Target]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		target, err := ParseTarget(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if !seen[target] {
			seen[target] = true
			targets = append(targets, target)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return targets, nil
}
