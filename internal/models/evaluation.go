package models

import (
	"time"
	"unicode/utf8"
)

// ComplianceType is the verdict reported to AWS Config for one resource.
type ComplianceType string

const (
	ComplianceCompliant     ComplianceType = "COMPLIANT"
	ComplianceNonCompliant  ComplianceType = "NON_COMPLIANT"
	ComplianceNotApplicable ComplianceType = "NOT_APPLICABLE"
)

// ResourceTypeAccount is the resource type every AMI evaluation is reported
// under. The rule is account-scoped, so AWS Config sees the AMI IDs as
// resource IDs of type AWS::::Account.
const ResourceTypeAccount = "AWS::::Account"

// MaxAnnotationLength is the longest annotation AWS Config accepts, in
// characters.
const MaxAnnotationLength = 256

// Evaluation is a single compliance verdict. It is the atomic output unit of
// the rule engine and maps one-to-one onto a configservice Evaluation.
type Evaluation struct {
	ComplianceType         ComplianceType `json:"compliance_type"`
	ComplianceResourceID   string         `json:"compliance_resource_id"`
	ComplianceResourceType string         `json:"compliance_resource_type"`

	// Annotation is an optional human-readable explanation.
	Annotation string `json:"annotation,omitempty"`

	// OrderingTimestamp is stamped by the Lambda handler from the
	// notification creation time. Zero for CLI runs.
	OrderingTimestamp time.Time `json:"ordering_timestamp,omitzero"`
}

// NewEvaluation returns an Evaluation for resourceID with the fixed
// AWS::::Account resource type. Long annotations are cut on a rune
// boundary.
func NewEvaluation(ct ComplianceType, resourceID, annotation string) Evaluation {
	if utf8.RuneCountInString(annotation) > MaxAnnotationLength {
		runes := []rune(annotation)
		annotation = string(runes[:MaxAnnotationLength-3]) + "..."
	}
	return Evaluation{
		ComplianceType:         ct,
		ComplianceResourceID:   resourceID,
		ComplianceResourceType: ResourceTypeAccount,
		Annotation:             annotation,
	}
}

// EvaluationSummary aggregates verdict counts for one run.
type EvaluationSummary struct {
	TotalEvaluations        int `json:"total_evaluations"`
	CompliantEvaluations    int `json:"compliant_evaluations"`
	NonCompliantEvaluations int `json:"non_compliant_evaluations"`
	NotApplicable           int `json:"not_applicable_evaluations"`

	// ImagesEvaluated counts distinct resource IDs, which differs from
	// TotalEvaluations when an AMI has several block device mappings.
	ImagesEvaluated int `json:"images_evaluated"`

	// NonCompliantImages counts distinct resource IDs with at least one
	// NON_COMPLIANT verdict.
	NonCompliantImages int `json:"non_compliant_images"`
}

// EvaluationReport is the top-level output of a CLI run and the document
// exported to S3 by the Lambda.
type EvaluationReport struct {
	ReportID    string            `json:"report_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	RuleName    string            `json:"rule_name"`
	Profile     string            `json:"profile,omitempty"`
	AccountID   string            `json:"account_id"`
	Region      string            `json:"region"`
	Summary     EvaluationSummary `json:"summary"`
	Evaluations []Evaluation      `json:"evaluations"`
}
