package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func sampleReport() *models.EvaluationReport {
	return &models.EvaluationReport{
		RuleName:    "AMI_EBS_ENCRYPTED",
		GeneratedAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Summary: models.EvaluationSummary{
			CompliantEvaluations:    4,
			NonCompliantEvaluations: 2,
			ImagesEvaluated:         3,
			NonCompliantImages:      1,
		},
	}
}

func TestPublish_SendsAllCounts(t *testing.T) {
	client := &fakeCloudWatch{}
	if err := NewPublisher(client, "").Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("want 1 PutMetricData call, got %d", len(client.inputs))
	}
	in := client.inputs[0]
	if aws.ToString(in.Namespace) != DefaultNamespace {
		t.Errorf("Namespace = %q; want %q", aws.ToString(in.Namespace), DefaultNamespace)
	}

	want := map[string]float64{
		MetricCompliant:    4,
		MetricNonCompliant: 2,
		MetricImages:       3,
		MetricBadImages:    1,
	}
	if len(in.MetricData) != len(want) {
		t.Fatalf("want %d datums, got %d", len(want), len(in.MetricData))
	}
	for _, d := range in.MetricData {
		name := aws.ToString(d.MetricName)
		if aws.ToFloat64(d.Value) != want[name] {
			t.Errorf("%s = %v; want %v", name, aws.ToFloat64(d.Value), want[name])
		}
		if d.Unit != cwtypes.StandardUnitCount {
			t.Errorf("%s unit = %q", name, d.Unit)
		}
		if len(d.Dimensions) != 1 || aws.ToString(d.Dimensions[0].Value) != "AMI_EBS_ENCRYPTED" {
			t.Errorf("%s dimensions = %+v", name, d.Dimensions)
		}
	}
}

func TestPublish_CustomNamespace(t *testing.T) {
	client := &fakeCloudWatch{}
	if err := NewPublisher(client, "Acme/Compliance").Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := aws.ToString(client.inputs[0].Namespace); got != "Acme/Compliance" {
		t.Errorf("Namespace = %q", got)
	}
}

func TestPublish_Error(t *testing.T) {
	sentinel := errors.New("AccessDenied")
	err := NewPublisher(&fakeCloudWatch{err: sentinel}, "").Publish(context.Background(), sampleReport())
	if !errors.Is(err, sentinel) {
		t.Fatalf("want wrapped sentinel, got %v", err)
	}
}
