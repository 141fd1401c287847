package emotion

import (
	"github.com/embergrove/murmur/internal/diagnostics"
	"github.com/embergrove/murmur/internal/expr"
)

// Trigger maps a context predicate to an emotion transition: when When
// evaluates true, the owner's PAD resonates toward Target's baseline with
// the given Intensity.
type Trigger struct {
	When      *expr.Expr
	Target    string
	Intensity float64
}

// NewTrigger compiles a trigger predicate. Predicates use the same closed
// grammar as internal/expr: arithmetic/comparison/boolean plus the fixed
// function set, resolved against a dotted-path triggerContext.
func NewTrigger(predicate, target string, intensity float64) (Trigger, error) {
	e, err := expr.Parse(predicate)
	if err != nil {
		return Trigger{}, err
	}
	return Trigger{When: e, Target: target, Intensity: intensity}, nil
}

// EvaluateTriggers checks each trigger against ctx in order and applies
// the PAD resonance of the first one that fires. A trigger referencing an
// unknown context key is treated as false and reported via diag each time
// it is evaluated; repeated evaluations are not deduplicated
// (spec.md §7: StateMachineViolation — predicate treated as false).
func EvaluateTriggers(p *PAD, triggers []Trigger, ctx expr.Context, path string, diag *diagnostics.Registry) {
	for _, tr := range triggers {
		fired, unevaluable := tr.When.Bool(ctx)
		if unevaluable {
			if diag != nil {
				diag.Warnf(diagnostics.StateMachineViolation, path, "trigger predicate %q referenced an unknown key", tr.When.String())
			}
			continue
		}
		if fired {
			p.Resonate(Baseline(tr.Target), tr.Intensity)
			return
		}
	}
}
