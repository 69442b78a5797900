package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/smithy-go"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/config"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/engine"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/log"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/output"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/images"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/reportstore"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rulepacks/ami"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rules"
)

// errNonCompliant is returned when policy enforcement fails the run.
var errNonCompliant = errors.New("non-compliant AMIs found")

// outputS3 selects the report bucket from the config file.
const outputS3 = "s3"

type evaluateOptions struct {
	profile    string
	region     string
	reportFmt  string
	summary    bool
	output     string
	policyPath string
	colored    bool
	failedOnly bool
	showType   bool
}

func newEvaluateCmd(a *app) *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate the AMIs owned by an AWS account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEvaluate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.profile, "profile", "", "AWS profile name (default: config file, then environment / default profile)")
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region to evaluate (default: config file, then profile region)")
	cmd.Flags().StringVar(&opts.reportFmt, "report", "table", "Output format: json or table")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print compact summary: verdict counts and non-compliant images")
	cmd.Flags().StringVar(&opts.output, "output", "", `Also write the JSON report to a file path, an s3://bucket/prefix URI, or "s3" for the configured bucket`)
	cmd.Flags().StringVar(&opts.policyPath, "policy", policy.DefaultPolicyFile, "Policy file (optional)")
	cmd.Flags().BoolVar(&opts.colored, "color", false, "Colour the STATUS column")
	cmd.Flags().BoolVar(&opts.failedOnly, "non-compliant-only", false, "Only list NON_COMPLIANT evaluations in the table")
	cmd.Flags().BoolVar(&opts.showType, "show-type", false, "Add the TYPE column (resource type) to the table")

	return cmd
}

func (a *app) runEvaluate(ctx context.Context, w io.Writer, opts evaluateOptions) error {
	if opts.reportFmt != "table" && opts.reportFmt != "json" {
		return fmt.Errorf("unsupported report format %q: want table or json", opts.reportFmt)
	}

	pack := ami.New()
	policyCfg, err := policy.LoadOptional(opts.policyPath)
	if err != nil {
		return err
	}
	if policyCfg != nil {
		if errs := policy.Validate(policyCfg, rules.IDs(pack)); len(errs) > 0 {
			return fmt.Errorf("invalid policy %s: %w", opts.policyPath, errors.Join(errs...))
		}
		log.Debug(ctx, "loaded policy", "path", opts.policyPath)
	}

	profileCfg, err := a.provider.LoadProfile(ctx, common.LoadOptions{
		Profile: config.Or(opts.profile, a.cfg.AWS.DefaultProfile),
		Region:  config.Or(opts.region, a.cfg.AWS.DefaultRegion),
	})
	if err != nil {
		return err
	}
	ctx = log.With(ctx, "account_id", profileCfg.AccountID, "region", profileCfg.Region)

	evaluator := engine.NewDefaultEvaluator(rules.NewRegistryWith(pack...), policyCfg, profileCfg.AccountID)
	evaluations, err := evaluator.EvaluatePeriodic(ctx, images.NewDefaultImageCollector(profileCfg.Clients.EC2))
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			log.Error(ctx, "AWS API call failed", "error_code", ae.ErrorCode())
		}
		return fmt.Errorf("evaluation failed: %w", err)
	}

	report := engine.BuildReport(engine.ReportMeta{
		RuleName:  rules.AMIEBSEncryptedRuleID,
		Profile:   profileCfg.ProfileName,
		AccountID: profileCfg.AccountID,
		Region:    profileCfg.Region,
	}, evaluations)

	if opts.output != "" {
		if err := a.writeReport(ctx, profileCfg, opts.output, report); err != nil {
			return err
		}
	}

	switch {
	case opts.summary:
		output.RenderSummary(w, report)
	case opts.reportFmt == "json":
		if err := output.WriteJSON(w, report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	default:
		output.RenderHeader(w, report)
		fmt.Fprintln(w)
		output.RenderTable(w, report.Evaluations, output.TableOptions{
			Colored:          opts.colored,
			IncludeType:      opts.showType,
			NonCompliantOnly: opts.failedOnly,
		})
	}

	if policy.ShouldFail(evaluations, policyCfg) {
		return errNonCompliant
	}
	return nil
}

// writeReport stores the JSON report at dest: a local path, an s3:// URI,
// or the configured bucket when dest is "s3".
func (a *app) writeReport(ctx context.Context, profileCfg *common.ProfileConfig, dest string, report *models.EvaluationReport) error {
	var bucket, prefix string
	switch {
	case dest == outputS3:
		if a.cfg.Report.Bucket == "" {
			return errors.New(`--output s3 needs report.bucket in the config file`)
		}
		bucket, prefix = a.cfg.Report.Bucket, a.cfg.Report.Prefix
	case reportstore.IsS3URI(dest):
		var err error
		if bucket, prefix, err = reportstore.ParseS3URI(dest); err != nil {
			return err
		}
	default:
		return writeReportToFile(dest, report)
	}

	uri, err := reportstore.NewStore(profileCfg.Clients.S3, bucket, prefix).Put(ctx, report)
	if err != nil {
		return err
	}
	log.Info(ctx, "report uploaded", "uri", uri)
	return nil
}

// writeReportToFile serialises report as indented JSON and writes it to path,
// creating or overwriting the file. It does not affect stdout output.
func writeReportToFile(path string, report *models.EvaluationReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	if err := output.WriteJSON(f, report); err != nil {
		f.Close()
		return fmt.Errorf("write report file %q: %w", path, err)
	}
	return f.Close()
}
