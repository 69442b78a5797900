// Package ami provides the AMI data-protection rule pack.
// It is the single place the CLI, the Lambda entrypoint and doctor obtain
// their rule set from.
package ami

import "github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rules"

// New returns the AMI rules in evaluation order.
func New() []rules.Rule {
	return []rules.Rule{
		rules.AMIEBSEncryptedRule{},
	}
}

// NewRegistry returns a registry with every rule of the pack registered.
func NewRegistry() *rules.DefaultRuleRegistry {
	return rules.NewRegistryWith(New()...)
}
