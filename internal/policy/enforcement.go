package policy

import "github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"

// ShouldFail reports whether the run must be treated as failed under the
// enforcement block of cfg.
//
// It returns false when cfg is nil, when fail_on_noncompliant is unset, or
// when no evaluation is NON_COMPLIANT.
func ShouldFail(evaluations []models.Evaluation, cfg *PolicyConfig) bool {
	if cfg == nil || !cfg.Enforcement.FailOnNonCompliant {
		return false
	}
	for _, e := range evaluations {
		if e.ComplianceType == models.ComplianceNonCompliant {
			return true
		}
	}
	return false
}
