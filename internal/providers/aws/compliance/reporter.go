// Package compliance reports evaluations to AWS Config.
package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/log"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

const (
	// MaxBatchSize is the PutEvaluations limit on evaluations per call.
	MaxBatchSize = 100

	// TestModeResultToken is the result token AWS Config test invocations
	// carry. Evaluations sent with it are validated but not recorded.
	TestModeResultToken = "TESTMODE"

	// detailsPageLimit is the GetComplianceDetailsByConfigRule page size.
	detailsPageLimit = 100
)

// configServiceClient covers the AWS Config operations used by Reporter.
// It satisfies configservice.GetComplianceDetailsByConfigRuleAPIClient for
// the SDK v2 paginator.
type configServiceClient interface {
	PutEvaluations(
		ctx context.Context,
		params *configsvc.PutEvaluationsInput,
		optFns ...func(*configsvc.Options),
	) (*configsvc.PutEvaluationsOutput, error)

	GetComplianceDetailsByConfigRule(
		ctx context.Context,
		params *configsvc.GetComplianceDetailsByConfigRuleInput,
		optFns ...func(*configsvc.Options),
	) (*configsvc.GetComplianceDetailsByConfigRuleOutput, error)
}

// Reporter sends evaluations to AWS Config.
type Reporter struct {
	client configServiceClient
	now    func() time.Time
}

// NewReporter returns a Reporter backed by client, typically
// ProfileConfig.Clients.Config.
func NewReporter(client configServiceClient) *Reporter {
	return &Reporter{client: client, now: time.Now}
}

// Report sends evaluations with PutEvaluations in batches of MaxBatchSize,
// in order. The TESTMODE result token switches on TestMode. The first API
// error stops reporting and is returned; evaluations AWS Config rejects are
// logged and counted but do not fail the call.
//
// Report returns the number of evaluations AWS Config rejected.
func (r *Reporter) Report(ctx context.Context, resultToken string, evaluations []models.Evaluation) (int, error) {
	testMode := resultToken == TestModeResultToken
	failed := 0

	for start := 0; start < len(evaluations); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(evaluations))

		batch := make([]configtypes.Evaluation, 0, end-start)
		for _, e := range evaluations[start:end] {
			batch = append(batch, r.toConfigEvaluation(e))
		}

		out, err := r.client.PutEvaluations(ctx, &configsvc.PutEvaluationsInput{
			Evaluations: batch,
			ResultToken: aws.String(resultToken),
			TestMode:    testMode,
		})
		if err != nil {
			return failed, fmt.Errorf("put evaluations [%d:%d]: %w", start, end, err)
		}
		for _, fe := range out.FailedEvaluations {
			failed++
			log.Warn(ctx, "AWS Config rejected evaluation",
				"resource_id", aws.ToString(fe.ComplianceResourceId),
				"compliance_type", string(fe.ComplianceType))
		}
	}

	log.Debug(ctx, "reported evaluations", "count", len(evaluations), "failed", failed, "test_mode", testMode)
	return failed, nil
}

// StaleEvaluations returns a NOT_APPLICABLE evaluation for every resource
// AWS Config holds a COMPLIANT or NON_COMPLIANT result for under ruleName
// that does not appear in current. This retires verdicts for AMIs that were
// deregistered since the previous run. Results are ordered as AWS Config
// returned them and stamped with ts.
func (r *Reporter) StaleEvaluations(ctx context.Context, ruleName string, current []models.Evaluation, ts time.Time) ([]models.Evaluation, error) {
	seen := make(map[string]struct{}, len(current))
	for _, e := range current {
		seen[e.ComplianceResourceID] = struct{}{}
	}

	paginator := configsvc.NewGetComplianceDetailsByConfigRulePaginator(r.client, &configsvc.GetComplianceDetailsByConfigRuleInput{
		ConfigRuleName: aws.String(ruleName),
		ComplianceTypes: []configtypes.ComplianceType{
			configtypes.ComplianceTypeCompliant,
			configtypes.ComplianceTypeNonCompliant,
		},
	}, func(o *configsvc.GetComplianceDetailsByConfigRulePaginatorOptions) {
		o.Limit = detailsPageLimit
	})

	var stale []models.Evaluation
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("get compliance details for %s: %w", ruleName, err)
		}
		for _, res := range page.EvaluationResults {
			q := qualifier(res)
			if q == nil {
				continue
			}
			id := aws.ToString(q.ResourceId)
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			stale = append(stale, models.Evaluation{
				ComplianceType:         models.ComplianceNotApplicable,
				ComplianceResourceID:   id,
				ComplianceResourceType: resourceTypeOr(aws.ToString(q.ResourceType)),
				Annotation:             "The AMI is no longer owned by the account.",
				OrderingTimestamp:      ts,
			})
		}
	}
	return stale, nil
}

func (r *Reporter) toConfigEvaluation(e models.Evaluation) configtypes.Evaluation {
	ts := e.OrderingTimestamp
	if ts.IsZero() {
		ts = r.now()
	}
	ce := configtypes.Evaluation{
		ComplianceResourceId:   aws.String(e.ComplianceResourceID),
		ComplianceResourceType: aws.String(e.ComplianceResourceType),
		ComplianceType:         configtypes.ComplianceType(e.ComplianceType),
		OrderingTimestamp:      aws.Time(ts),
	}
	if e.Annotation != "" {
		ce.Annotation = aws.String(e.Annotation)
	}
	return ce
}

func qualifier(res configtypes.EvaluationResult) *configtypes.EvaluationResultQualifier {
	if res.EvaluationResultIdentifier == nil {
		return nil
	}
	return res.EvaluationResultIdentifier.EvaluationResultQualifier
}

func resourceTypeOr(rt string) string {
	if rt == "" {
		return models.ResourceTypeAccount
	}
	return rt
}
