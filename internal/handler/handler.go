// Package handler is the AWS Config custom rule entrypoint: it turns a
// periodic Config event into evaluations and reports them back.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/engine"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/log"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/compliance"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/images"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/metrics"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/reportstore"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rules"
)

// ScheduledNotification is the only invoking event message type evaluated.
const ScheduledNotification = "ScheduledNotification"

var (
	ErrMissingInvokingEvent   = errors.New("config event has no invoking event")
	ErrMissingResultToken     = errors.New("config event has no result token")
	ErrUnsupportedMessageType = errors.New("unsupported invoking event message type")
)

// InvokingEvent is the subset of the Config invoking event the handler reads.
type InvokingEvent struct {
	MessageType              string    `json:"messageType"`
	NotificationCreationTime time.Time `json:"notificationCreationTime"`
	AccountID                string    `json:"awsAccountId"`
}

// Options switches the optional parts of the handler flow.
type Options struct {
	// AssumeRole assumes the event's ExecutionRoleArn before calling AWS.
	AssumeRole bool

	// CleanupStale retires verdicts of AMIs that are no longer owned.
	CleanupStale bool

	MetricsEnabled   bool
	MetricsNamespace string

	// ReportBucket enables S3 export when non-empty.
	ReportBucket string
	ReportPrefix string
}

// Handler evaluates owned AMIs for one Config rule invocation.
type Handler struct {
	provider common.AWSClientProvider
	registry rules.RuleRegistry
	policy   *policy.PolicyConfig
	opts     Options
}

// New returns a Handler. policyCfg may be nil.
func New(provider common.AWSClientProvider, registry rules.RuleRegistry, policyCfg *policy.PolicyConfig, opts Options) *Handler {
	return &Handler{provider: provider, registry: registry, policy: policyCfg, opts: opts}
}

// ParseInvokingEvent decodes the JSON invoking event carried by ev.
func ParseInvokingEvent(ev events.ConfigEvent) (*InvokingEvent, error) {
	if ev.InvokingEvent == "" {
		return nil, ErrMissingInvokingEvent
	}
	var ie InvokingEvent
	if err := json.Unmarshal([]byte(ev.InvokingEvent), &ie); err != nil {
		return nil, fmt.Errorf("decode invoking event: %w", err)
	}
	return &ie, nil
}

// Handle runs one evaluation and reports it to AWS Config. It returns the
// evaluations that were reported.
func (h *Handler) Handle(ctx context.Context, ev events.ConfigEvent) ([]models.Evaluation, error) {
	ie, err := ParseInvokingEvent(ev)
	if err != nil {
		return nil, err
	}
	if ev.ResultToken == "" {
		return nil, ErrMissingResultToken
	}
	if ie.MessageType != ScheduledNotification {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMessageType, ie.MessageType)
	}

	accountID := ie.AccountID
	if accountID == "" {
		accountID = ev.AccountID
	}
	ctx = log.With(ctx, "rule", ev.ConfigRuleName, "account_id", accountID)

	loadOpts := common.LoadOptions{AccountID: accountID}
	if h.opts.AssumeRole {
		loadOpts.RoleARN = ev.ExecutionRoleArn
	}
	profile, err := h.provider.LoadProfile(ctx, loadOpts)
	if err != nil {
		return nil, fmt.Errorf("load AWS clients: %w", err)
	}
	clients := profile.Clients

	evaluator := engine.NewDefaultEvaluator(h.registry, h.policy, profile.AccountID)
	evaluations, err := evaluator.EvaluatePeriodic(ctx, images.NewDefaultImageCollector(clients.EC2))
	if err != nil {
		logAPIError(ctx, "evaluation failed", err)
		return nil, fmt.Errorf("evaluate owned images: %w", err)
	}

	ts := ie.NotificationCreationTime
	for i := range evaluations {
		evaluations[i].OrderingTimestamp = ts
	}

	reporter := compliance.NewReporter(clients.Config)
	if h.opts.CleanupStale && ev.ConfigRuleName != "" {
		stale, err := reporter.StaleEvaluations(ctx, ev.ConfigRuleName, evaluations, ts)
		if err != nil {
			logAPIError(ctx, "stale evaluation lookup failed", err)
			return nil, fmt.Errorf("find stale evaluations: %w", err)
		}
		evaluations = append(evaluations, stale...)
	}

	if _, err := reporter.Report(ctx, ev.ResultToken, evaluations); err != nil {
		logAPIError(ctx, "reporting failed", err)
		return nil, fmt.Errorf("report evaluations: %w", err)
	}

	h.exportReport(ctx, profile, ev.ConfigRuleName, evaluations)
	return evaluations, nil
}

// exportReport feeds the optional CloudWatch and S3 sinks. Their failures
// are logged only.
func (h *Handler) exportReport(ctx context.Context, profile *common.ProfileConfig, ruleName string, evaluations []models.Evaluation) {
	if !h.opts.MetricsEnabled && h.opts.ReportBucket == "" {
		return
	}
	if ruleName == "" {
		ruleName = rules.AMIEBSEncryptedRuleID
	}
	report := engine.BuildReport(engine.ReportMeta{
		RuleName:  ruleName,
		AccountID: profile.AccountID,
		Region:    profile.Region,
	}, evaluations)

	if h.opts.MetricsEnabled {
		pub := metrics.NewPublisher(profile.Clients.CloudWatch, h.opts.MetricsNamespace)
		if err := pub.Publish(ctx, report); err != nil {
			logAPIError(ctx, "publishing metrics failed", err)
		}
	}
	if h.opts.ReportBucket != "" {
		store := reportstore.NewStore(profile.Clients.S3, h.opts.ReportBucket, h.opts.ReportPrefix)
		uri, err := store.Put(ctx, report)
		if err != nil {
			logAPIError(ctx, "exporting report failed", err)
			return
		}
		log.Info(ctx, "report exported", "uri", uri)
	}
}

func logAPIError(ctx context.Context, msg string, err error) {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		log.Error(ctx, msg, "error", err, "error_code", ae.ErrorCode(), "fault", ae.ErrorFault().String())
		return
	}
	log.Error(ctx, msg, "error", err)
}
