package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// LambdaConfig is the Lambda function's configuration, read from the
// environment.
type LambdaConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// AssumeRole makes the handler assume the event's ExecutionRoleArn
	// before calling AWS.
	AssumeRole bool `envconfig:"ASSUME_ROLE" default:"false"`

	// CleanupStaleEvaluations retires verdicts for AMIs no longer owned.
	CleanupStaleEvaluations bool `envconfig:"CLEANUP_STALE_EVALUATIONS" default:"true"`

	MetricsEnabled   bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"ConfigRules/AMIEBSEncrypted"`

	// ReportBucket enables S3 export of each run's report when set.
	ReportBucket string `envconfig:"REPORT_BUCKET"`
	ReportPrefix string `envconfig:"REPORT_PREFIX" default:"ami-ebs-encrypted"`

	// PolicyFile is an optional policy YAML bundled with the function.
	PolicyFile string `envconfig:"POLICY_FILE"`
}

// LoadLambda reads LambdaConfig from the process environment.
func LoadLambda() (*LambdaConfig, error) {
	var cfg LambdaConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load lambda environment: %w", err)
	}
	return &cfg, nil
}
