package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/log"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rules"
)

// DefaultEvaluator is the production implementation of Evaluator.
// It never calls the AWS SDK or any external service directly.
type DefaultEvaluator struct {
	registry  rules.RuleRegistry
	policy    *policy.PolicyConfig
	accountID string
}

var _ Evaluator = (*DefaultEvaluator)(nil)

// NewDefaultEvaluator constructs a DefaultEvaluator wired to the supplied
// rule registry. policyCfg may be nil. accountID is informational and is
// passed through to the rules.
func NewDefaultEvaluator(registry rules.RuleRegistry, policyCfg *policy.PolicyConfig, accountID string) *DefaultEvaluator {
	return &DefaultEvaluator{
		registry:  registry,
		policy:    policyCfg,
		accountID: accountID,
	}
}

// EvaluatePeriodic implements Evaluator. It calls fetcher exactly once and
// evaluates every registered rule over the result. A fetch error is
// returned as-is, without wrapping, so callers see the upstream error
// unchanged. Evaluations are returned in image order, then mapping order.
func (e *DefaultEvaluator) EvaluatePeriodic(ctx context.Context, fetcher ImageFetcher) ([]models.Evaluation, error) {
	images, err := fetcher.FetchOwnedImages(ctx)
	if err != nil {
		return nil, err
	}

	for _, img := range images {
		if len(img.BlockDeviceMappings) == 0 {
			log.Debug(ctx, "image has no block device mappings; no evaluation emitted", "image_id", img.ImageID)
		}
	}

	evaluations := e.registry.EvaluateAll(rules.RuleContext{
		AccountID: e.accountID,
		Images:    images,
		Policy:    e.policy,
	})

	log.Info(ctx, "evaluated owned images",
		"images", len(images),
		"evaluations", len(evaluations))
	return evaluations, nil
}
