package rules

import (
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
)

// RuleContext carries all collected data for a single evaluation run.
// It is the sole input to Rule.Evaluate and must contain everything a rule
// needs; rules must never make network calls or read external state.
type RuleContext struct {
	// AccountID is the AWS account being evaluated. May be empty when the
	// caller did not resolve it.
	AccountID string

	// Images holds the AMIs owned by the account, in API order.
	Images []models.Image

	// Policy holds the active PolicyConfig. May be nil when no policy file
	// is loaded; rules must treat nil as "use defaults".
	Policy *policy.PolicyConfig
}

// Rule is a single deterministic compliance rule.
// Rules must be stateless and safe to call concurrently.
// They must never call the AWS SDK or any external service.
type Rule interface {
	// ID returns the unique, stable identifier for this rule. It doubles as
	// the AWS Config rule name (e.g. "AMI_EBS_ENCRYPTED").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Evaluate inspects the provided context and returns zero or more
	// evaluations, in a deterministic order.
	Evaluate(ctx RuleContext) []models.Evaluation
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) []models.Evaluation
}
