package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

// ReportMeta identifies the run a report describes.
type ReportMeta struct {
	RuleName  string
	Profile   string
	AccountID string
	Region    string
}

// BuildReport assembles the EvaluationReport for evaluations. The
// evaluation order is kept as-is.
func BuildReport(meta ReportMeta, evaluations []models.Evaluation) *models.EvaluationReport {
	if evaluations == nil {
		evaluations = []models.Evaluation{}
	}
	return &models.EvaluationReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		RuleName:    meta.RuleName,
		Profile:     meta.Profile,
		AccountID:   meta.AccountID,
		Region:      meta.Region,
		Summary:     computeSummary(evaluations),
		Evaluations: evaluations,
	}
}

// computeSummary aggregates verdict counts and distinct resource counts.
func computeSummary(evaluations []models.Evaluation) models.EvaluationSummary {
	var s models.EvaluationSummary
	s.TotalEvaluations = len(evaluations)

	images := make(map[string]struct{})
	badImages := make(map[string]struct{})
	for _, e := range evaluations {
		switch e.ComplianceType {
		case models.ComplianceCompliant:
			s.CompliantEvaluations++
		case models.ComplianceNonCompliant:
			s.NonCompliantEvaluations++
			badImages[e.ComplianceResourceID] = struct{}{}
		case models.ComplianceNotApplicable:
			s.NotApplicable++
			continue
		}
		images[e.ComplianceResourceID] = struct{}{}
	}
	s.ImagesEvaluated = len(images)
	s.NonCompliantImages = len(badImages)
	return s
}
