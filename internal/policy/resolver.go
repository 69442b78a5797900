package policy

import "strings"

// Granularity selects how many verdicts a rule emits per AMI.
type Granularity string

const (
	// GranularityMapping emits one verdict per block device mapping.
	GranularityMapping Granularity = "mapping"
	// GranularityImage emits one verdict per AMI.
	GranularityImage Granularity = "image"
)

// RuleEnabled reports whether ruleID should run. Rules are enabled unless
// the policy explicitly sets enabled: false. Safe to call with cfg == nil.
func RuleEnabled(ruleID string, cfg *PolicyConfig) bool {
	if cfg == nil {
		return true
	}
	rc, ok := cfg.Rules[ruleID]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}

// GetGranularity returns the configured granularity for ruleID, or
// GranularityMapping when none (or an unrecognised value) is set.
func GetGranularity(ruleID string, cfg *PolicyConfig) Granularity {
	if cfg == nil {
		return GranularityMapping
	}
	rc, ok := cfg.Rules[ruleID]
	if !ok {
		return GranularityMapping
	}
	if g := Granularity(strings.ToLower(rc.Granularity)); g == GranularityImage {
		return g
	}
	return GranularityMapping
}
