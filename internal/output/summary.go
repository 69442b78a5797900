package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

// WriteJSON writes v as indented JSON to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderHeader writes the one-line run header printed above the table.
func RenderHeader(w io.Writer, report *models.EvaluationReport) {
	s := report.Summary
	fmt.Fprintf(w,
		"Profile: %-16s  Account: %-14s  Region: %-14s  Images: %d  Non-compliant: %d\n",
		report.Profile,
		report.AccountID,
		report.Region,
		s.ImagesEvaluated,
		s.NonCompliantImages,
	)
}

// RenderSummary renders a compact summary view to w:
//   - account / profile / region header
//   - verdict counts
//   - the non-compliant images, in evaluation order
func RenderSummary(w io.Writer, report *models.EvaluationReport) {
	s := report.Summary

	fmt.Fprintf(w, "Rule:     %s\n", report.RuleName)
	fmt.Fprintf(w, "Account:  %s\n", report.AccountID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	fmt.Fprintf(w, "Region:   %s\n", report.Region)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Images Evaluated:      %d\n", s.ImagesEvaluated)
	fmt.Fprintf(w, "Non-compliant Images:  %d\n", s.NonCompliantImages)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Verdicts")
	fmt.Fprintf(w, "  %-14s  %d\n", models.ComplianceCompliant, s.CompliantEvaluations)
	fmt.Fprintf(w, "  %-14s  %d\n", models.ComplianceNonCompliant, s.NonCompliantEvaluations)
	if s.NotApplicable > 0 {
		fmt.Fprintf(w, "  %-14s  %d\n", models.ComplianceNotApplicable, s.NotApplicable)
	}

	bad := NonCompliantImageIDs(report.Evaluations)
	if len(bad) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Non-compliant Images")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 24))
	for _, id := range bad {
		fmt.Fprintf(w, "  %s\n", id)
	}
}

// NonCompliantImageIDs returns the distinct resource IDs with at least one
// NON_COMPLIANT evaluation, in first-seen order.
func NonCompliantImageIDs(evaluations []models.Evaluation) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range evaluations {
		if e.ComplianceType != models.ComplianceNonCompliant {
			continue
		}
		if _, ok := seen[e.ComplianceResourceID]; ok {
			continue
		}
		seen[e.ComplianceResourceID] = struct{}{}
		ids = append(ids, e.ComplianceResourceID)
	}
	return ids
}
