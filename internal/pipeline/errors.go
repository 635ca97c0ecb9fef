package pipeline

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError via errors.Is
var ErrNotFound = errors.New("not found")

// NotFoundKind tells callers which remediation applies
type NotFoundKind string

const (
	// KindEntityNotFound means the lead id or query matched nothing
	KindEntityNotFound NotFoundKind = "entity_not_found"
	// KindNoObservations means the target exists but has no collected competitor intel
	KindNoObservations NotFoundKind = "no_observations"
)

// NotFoundError reports a prediction target that could not be evaluated
type NotFoundError struct {
	Kind   NotFoundKind
	Target string // "lead" or "query"
	Key    string // Lead id or query text
	Name   string // Lead name, when known
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Kind == KindEntityNotFound && e.Target == targetQuery:
		return fmt.Sprintf("no leads found for query %q", e.Key)
	case e.Kind == KindEntityNotFound:
		return fmt.Sprintf("lead %s not found", e.Key)
	case e.Target == targetQuery:
		return fmt.Sprintf("no competitor analysis for query %q; run competitor collection on its leads first", e.Key)
	default:
		return fmt.Sprintf("no competitor analysis found for lead %q; run competitor collection first", e.Name)
	}
}

// Is makes errors.Is(err, ErrNotFound) hold for every kind
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

const (
	targetLead  = "lead"
	targetQuery = "query"
)
