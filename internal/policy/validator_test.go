package policy_test

import (
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
)

// knownRules is a fixed rule ID set used by all validator tests.
var knownRules = []string{"RULE_A", "RULE_B"}

func boolPtr(b bool) *bool { return &b }

// ── happy path ────────────────────────────────────────────────────────────────

func TestValidate_ValidMinimalConfig(t *testing.T) {
	cfg := &policy.PolicyConfig{Version: 1}
	errs := policy.Validate(cfg, knownRules)
	if len(errs) != 0 {
		t.Errorf("expected no errors; got %d: %v", len(errs), errs)
	}
}

func TestValidate_ValidFullConfig(t *testing.T) {
	cfg := &policy.PolicyConfig{
		Version: 1,
		Rules: map[string]policy.RuleConfig{
			"RULE_A": {Enabled: boolPtr(false)},
			"RULE_B": {Granularity: "Image"},
		},
		Enforcement: policy.EnforcementConfig{FailOnNonCompliant: true},
	}
	errs := policy.Validate(cfg, knownRules)
	if len(errs) != 0 {
		t.Errorf("expected no errors; got %d: %v", len(errs), errs)
	}
}

// ── version ───────────────────────────────────────────────────────────────────

func TestValidate_InvalidVersion(t *testing.T) {
	errs := policy.Validate(&policy.PolicyConfig{Version: 2}, knownRules)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error; got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "version") {
		t.Errorf("error should mention version; got %v", errs[0])
	}
}

func TestValidate_NilConfig(t *testing.T) {
	if errs := policy.Validate(nil, knownRules); len(errs) != 1 {
		t.Fatalf("nil config must yield exactly one error; got %v", errs)
	}
}

// ── rules ─────────────────────────────────────────────────────────────────────

func TestValidate_UnknownRuleID(t *testing.T) {
	cfg := &policy.PolicyConfig{
		Version: 1,
		Rules:   map[string]policy.RuleConfig{"RULE_Z": {}},
	}
	errs := policy.Validate(cfg, knownRules)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error; got %v", errs)
	}
}

func TestValidate_InvalidGranularity(t *testing.T) {
	cfg := &policy.PolicyConfig{
		Version: 1,
		Rules:   map[string]policy.RuleConfig{"RULE_A": {Granularity: "volume"}},
	}
	errs := policy.Validate(cfg, knownRules)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error; got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "granularity") {
		t.Errorf("error should mention granularity; got %v", errs[0])
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &policy.PolicyConfig{
		Version: 3,
		Rules: map[string]policy.RuleConfig{
			"RULE_Z": {Granularity: "bogus"},
		},
	}
	// version + unknown rule + bad granularity
	if errs := policy.Validate(cfg, knownRules); len(errs) != 3 {
		t.Errorf("expected 3 errors; got %d: %v", len(errs), errs)
	}
}
