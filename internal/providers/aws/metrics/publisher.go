// Package metrics publishes evaluation counts to CloudWatch.
package metrics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "ConfigRules/AMIEBSEncrypted"

const (
	MetricCompliant    = "CompliantEvaluations"
	MetricNonCompliant = "NonCompliantEvaluations"
	MetricImages       = "ImagesEvaluated"
	MetricBadImages    = "NonCompliantImages"

	dimensionRuleName = "RuleName"
)

type cloudWatchClient interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher writes one datapoint per metric per evaluation run.
type Publisher struct {
	client    cloudWatchClient
	namespace string
}

// NewPublisher returns a Publisher writing to namespace (DefaultNamespace
// when empty).
func NewPublisher(client cloudWatchClient, namespace string) *Publisher {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Publisher{client: client, namespace: namespace}
}

// Publish sends the report's summary counts in a single PutMetricData call,
// timestamped with the report's generation time.
func (p *Publisher) Publish(ctx context.Context, report *models.EvaluationReport) error {
	dims := []cwtypes.Dimension{{
		Name:  aws.String(dimensionRuleName),
		Value: aws.String(report.RuleName),
	}}
	s := report.Summary

	datum := func(name string, v int) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Dimensions: dims,
			Value:      aws.Float64(float64(v)),
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  aws.Time(report.GeneratedAt),
		}
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []cwtypes.MetricDatum{
			datum(MetricCompliant, s.CompliantEvaluations),
			datum(MetricNonCompliant, s.NonCompliantEvaluations),
			datum(MetricImages, s.ImagesEvaluated),
			datum(MetricBadImages, s.NonCompliantImages),
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data to %s: %w", p.namespace, err)
	}
	return nil
}
