package policy

// PolicyConfig is the parsed form of a policy file (amicheck.yaml).
type PolicyConfig struct {
	Version     int                   `yaml:"version"`
	Rules       map[string]RuleConfig `yaml:"rules"`
	Enforcement EnforcementConfig     `yaml:"enforcement"`
}

// RuleConfig overrides the behaviour of a single rule.
type RuleConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`

	// Granularity selects how verdicts are reported: "mapping" (one per
	// block device mapping, the default) or "image" (one per AMI).
	Granularity string `yaml:"granularity,omitempty"`
}

// EnforcementConfig controls the CLI exit status.
type EnforcementConfig struct {
	// FailOnNonCompliant makes `amicheck evaluate` exit non-zero when any
	// evaluation is NON_COMPLIANT.
	FailOnNonCompliant bool `yaml:"fail_on_noncompliant"`
}
