// Command lambda is the AWS Config custom rule function for
// AMI_EBS_ENCRYPTED.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/config"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/handler"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/log"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rulepacks/ami"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rules"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/version"
)

func main() {
	cfg, err := config.LoadLambda()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := log.WithHandler(context.Background(), slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: log.ParseLevel(cfg.LogLevel),
	}))

	h, err := newHandler(cfg)
	if err != nil {
		log.Error(ctx, "initialisation failed", "error", err)
		os.Exit(1)
	}
	log.Info(ctx, "starting", "version", version.Short())

	lambda.StartWithOptions(func(ictx context.Context, ev events.ConfigEvent) ([]models.Evaluation, error) {
		return h.Handle(log.With(ictx, "config_rule", ev.ConfigRuleName), ev)
	}, lambda.WithContext(ctx))
}

// newHandler builds the handler from cfg with the production AWS provider.
func newHandler(cfg *config.LambdaConfig) (*handler.Handler, error) {
	pack := ami.New()
	policyCfg, err := policy.LoadOptional(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	if policyCfg != nil {
		if errs := policy.Validate(policyCfg, rules.IDs(pack)); len(errs) > 0 {
			return nil, fmt.Errorf("invalid policy %s: %w", cfg.PolicyFile, errors.Join(errs...))
		}
	}

	return handler.New(
		common.NewDefaultAWSClientProvider(),
		rules.NewRegistryWith(pack...),
		policyCfg,
		handler.Options{
			AssumeRole:       cfg.AssumeRole,
			CleanupStale:     cfg.CleanupStaleEvaluations,
			MetricsEnabled:   cfg.MetricsEnabled,
			MetricsNamespace: cfg.MetricsNamespace,
			ReportBucket:     cfg.ReportBucket,
			ReportPrefix:     cfg.ReportPrefix,
		},
	), nil
}
