package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/config"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/access"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/images"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rulepacks/ami"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rules"
)

// errUnhealthy is returned by doctor when any check failed.
var errUnhealthy = errors.New("environment checks failed")

// DoctorResult is the structured output of amicheck doctor. It can be
// serialised to JSON via --format=json or rendered as a human-readable table
// (default).
type DoctorResult struct {
	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Region      string `json:"region,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		ImagesAPI   bool   `json:"images_api_ok"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Permissions struct {
		Checked   bool                  `json:"checked"`
		Principal string                `json:"principal,omitempty"`
		Actions   []access.ActionResult `json:"actions,omitempty"`
		Error     string                `json:"error,omitempty"`
	} `json:"permissions"`

	Policy struct {
		Path    string   `json:"path"`
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

type doctorOptions struct {
	format     string
	profile    string
	region     string
	policyPath string
}

func newDoctorCmd(a *app) *cobra.Command {
	var opts doctorOptions
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.profile = config.Or(opts.profile, a.cfg.AWS.DefaultProfile)
			opts.region = config.Or(opts.region, a.cfg.AWS.DefaultRegion)
			result, err := runDoctor(cmd.Context(), a.provider, cmd.OutOrStdout(), opts)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "table", `Output format: "table" or "json"`)
	cmd.Flags().StringVar(&opts.profile, "profile", "", "AWS profile to use (default: credential chain)")
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region to probe")
	cmd.Flags().StringVar(&opts.policyPath, "policy", policy.DefaultPolicyFile, "Policy file to validate")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures; callers inspect
// result.OverallHealthy for the verdict.
func runDoctor(ctx context.Context, provider common.AWSClientProvider, w io.Writer, opts doctorOptions) (DoctorResult, error) {
	result := collectDoctorResult(ctx, provider, opts)

	switch opts.format {
	case "json":
		if err := json.NewEncoder(w).Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}
	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
func collectDoctorResult(ctx context.Context, provider common.AWSClientProvider, opts doctorOptions) DoctorResult {
	var result DoctorResult
	result.AWS.Profile = opts.profile

	// AWS: credentials → STS account ID → owned-image listing.
	profileCfg, err := provider.LoadProfile(ctx, common.LoadOptions{Profile: opts.profile, Region: opts.region})
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID
		result.AWS.Region = profileCfg.Region

		if err := probeImages(ctx, profileCfg.Clients.EC2); err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.ImagesAPI = true
		}

		// Permissions: caller ARN → IAM policy simulation. A failure to run
		// the simulation is reported but does not fail the diagnostics.
		arn, err := common.CallerARN(ctx, profileCfg.Clients.STS)
		if err != nil {
			result.Permissions.Error = err.Error()
		} else {
			result.Permissions.Principal = arn
			actions, err := access.NewChecker(profileCfg.Clients.IAM).Check(ctx, arn)
			if err != nil {
				result.Permissions.Error = err.Error()
			} else {
				result.Permissions.Checked = true
				result.Permissions.Actions = actions
			}
		}
	}

	// Policy: stat → load → validate (file is optional).
	result.Policy.Path = opts.policyPath
	_, statErr := os.Stat(opts.policyPath)
	if statErr == nil {
		result.Policy.Present = true
		cfg, loadErr := policy.LoadPolicy(opts.policyPath)
		if loadErr != nil {
			result.Policy.Errors = []string{loadErr.Error()}
		} else {
			errs := policy.Validate(cfg, rules.IDs(ami.New()))
			if len(errs) == 0 {
				result.Policy.Valid = true
			}
			for _, e := range errs {
				result.Policy.Errors = append(result.Policy.Errors, e.Error())
			}
		}
	} else if !os.IsNotExist(statErr) {
		result.Policy.Present = true
		result.Policy.Errors = []string{statErr.Error()}
	}

	result.OverallHealthy = result.AWS.Credentials &&
		result.AWS.ImagesAPI &&
		(!result.Permissions.Checked || access.AllAllowed(result.Permissions.Actions)) &&
		(!result.Policy.Present || result.Policy.Valid)

	return result
}

// probeImages lists a single page of owned images.
func probeImages(ctx context.Context, client common.EC2ImagesClient) error {
	_, err := client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners:     []string{images.OwnerSelf},
		MaxResults: aws.Int32(5),
	})
	if err != nil {
		return fmt.Errorf("describe owned images: %w", err)
	}
	return nil
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		doctorPrint(w, "Images API", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.AWS.ImagesAPI {
			doctorPrint(w, "Images API", "OK", result.AWS.Region)
		} else {
			doctorPrint(w, "Images API", "FAIL", result.AWS.Error)
		}
	}

	fmt.Fprintln(w, "\nPermissions:")
	switch {
	case !result.AWS.Credentials:
		doctorPrint(w, "Simulation", "SKIPPED", "")
	case !result.Permissions.Checked:
		doctorPrint(w, "Simulation", "UNAVAILABLE", result.Permissions.Error)
	default:
		for _, a := range result.Permissions.Actions {
			status := "ALLOWED"
			if !a.Allowed {
				status = "DENIED"
			}
			doctorPrint(w, a.Action, status, "")
		}
	}

	fmt.Fprintln(w, "\nPolicy:")
	if !result.Policy.Present {
		doctorPrint(w, result.Policy.Path+" present", "Not found (optional)", "")
	} else {
		doctorPrint(w, result.Policy.Path+" present", "YES", "")
		if result.Policy.Valid {
			doctorPrint(w, "Policy valid", "OK", "")
		} else {
			for _, e := range result.Policy.Errors {
				doctorPrint(w, "Policy valid", "FAIL", e)
			}
		}
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
