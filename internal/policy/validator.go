package policy

import (
	"fmt"
	"strings"
)

// validGranularities is the set of accepted granularity values (lower-case).
var validGranularities = map[string]struct{}{
	string(GranularityMapping): {},
	string(GranularityImage):   {},
}

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - rule IDs must appear in availableRuleIDs
//   - rule granularity must be "mapping" or "image" if set
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *PolicyConfig, availableRuleIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	knownIDs := make(map[string]struct{}, len(availableRuleIDs))
	for _, id := range availableRuleIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	for ruleID, rcfg := range cfg.Rules {
		if _, ok := knownIDs[ruleID]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule ID", ruleID))
		}
		if rcfg.Granularity != "" {
			if _, ok := validGranularities[strings.ToLower(rcfg.Granularity)]; !ok {
				errs = append(errs, fmt.Errorf("rules.%s.granularity: invalid value %q; valid values: mapping, image", ruleID, rcfg.Granularity))
			}
		}
	}

	return errs
}
