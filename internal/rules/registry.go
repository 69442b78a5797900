package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
)

// DefaultRuleRegistry is a simple, ordered, in-memory registry.
// Rules are evaluated in registration order.
// Register panics on duplicate rule IDs to catch wiring mistakes at startup.
type DefaultRuleRegistry struct {
	rules []Rule
	index map[string]struct{}
}

// NewDefaultRuleRegistry returns an empty registry ready for rule registration.
func NewDefaultRuleRegistry() *DefaultRuleRegistry {
	return &DefaultRuleRegistry{
		index: make(map[string]struct{}),
	}
}

// NewRegistryWith returns a registry with rs registered in order.
func NewRegistryWith(rs ...Rule) *DefaultRuleRegistry {
	r := NewDefaultRuleRegistry()
	for _, rule := range rs {
		r.Register(rule)
	}
	return r
}

// Register adds rule to the registry. Panics if the same ID is registered twice.
func (r *DefaultRuleRegistry) Register(rule Rule) {
	if _, exists := r.index[rule.ID()]; exists {
		panic(fmt.Sprintf("duplicate rule ID: %q", rule.ID()))
	}
	r.rules = append(r.rules, rule)
	r.index[rule.ID()] = struct{}{}
}

// All returns all registered rules in registration order.
func (r *DefaultRuleRegistry) All() []Rule {
	return r.rules
}

// EvaluateAll runs every enabled rule against ctx and returns the
// concatenated evaluations. Rules are called sequentially in registration
// order; rules disabled by ctx.Policy are skipped.
func (r *DefaultRuleRegistry) EvaluateAll(ctx RuleContext) []models.Evaluation {
	var evaluations []models.Evaluation
	for _, rule := range r.rules {
		if !policy.RuleEnabled(rule.ID(), ctx.Policy) {
			continue
		}
		evaluations = append(evaluations, rule.Evaluate(ctx)...)
	}
	return evaluations
}

// IDs returns the IDs of rs in order. Used to validate policy files.
func IDs(rs []Rule) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID())
	}
	return ids
}
