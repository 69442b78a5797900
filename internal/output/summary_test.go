package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/output"
)

func sampleReport() *models.EvaluationReport {
	return &models.EvaluationReport{
		RuleName:  "AMI_EBS_ENCRYPTED",
		Profile:   "audit",
		AccountID: "111122223333",
		Region:    "eu-west-1",
		Summary: models.EvaluationSummary{
			TotalEvaluations:        3,
			CompliantEvaluations:    1,
			NonCompliantEvaluations: 2,
			ImagesEvaluated:         2,
			NonCompliantImages:      1,
		},
		Evaluations: []models.Evaluation{
			models.NewEvaluation(models.ComplianceCompliant, "ami-good", ""),
			models.NewEvaluation(models.ComplianceNonCompliant, "ami-bad", ""),
			models.NewEvaluation(models.ComplianceNonCompliant, "ami-bad", ""),
		},
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	output.RenderSummary(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"AMI_EBS_ENCRYPTED", "111122223333", "audit", "eu-west-1",
		"Images Evaluated:      2", "Non-compliant Images:  1",
		"Non-compliant Images\n", "  ami-bad\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NOT_APPLICABLE") {
		t.Errorf("NOT_APPLICABLE line must be omitted when zero\ngot:\n%s", out)
	}
}

func TestRenderSummary_AllCompliant_NoImageList(t *testing.T) {
	r := sampleReport()
	r.Evaluations = r.Evaluations[:1]
	var buf bytes.Buffer
	output.RenderSummary(&buf, r)
	if strings.Contains(buf.String(), "Non-compliant Images\n") {
		t.Errorf("image list must be omitted when all compliant\ngot:\n%s", buf.String())
	}
}

func TestRenderHeader(t *testing.T) {
	var buf bytes.Buffer
	output.RenderHeader(&buf, sampleReport())
	if !strings.Contains(buf.String(), "Non-compliant: 1") {
		t.Errorf("header missing counts: %q", buf.String())
	}
}

func TestNonCompliantImageIDs_DistinctInOrder(t *testing.T) {
	evals := []models.Evaluation{
		models.NewEvaluation(models.ComplianceNonCompliant, "ami-2", ""),
		models.NewEvaluation(models.ComplianceCompliant, "ami-1", ""),
		models.NewEvaluation(models.ComplianceNonCompliant, "ami-1", ""),
		models.NewEvaluation(models.ComplianceNonCompliant, "ami-2", ""),
	}
	if diff := cmp.Diff([]string{"ami-2", "ami-1"}, output.NonCompliantImageIDs(evals)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	if err := output.WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"") {
		t.Errorf("expected indented JSON\ngot:\n%s", buf.String())
	}
	var back models.EvaluationReport
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.RuleName != "AMI_EBS_ENCRYPTED" {
		t.Errorf("RuleName = %q", back.RuleName)
	}
}
