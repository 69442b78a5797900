package common

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// RoleSessionName identifies sessions created when assuming an execution role.
const RoleSessionName = "ami-ebs-encrypted"

// fallbackRegion is used when neither the options, the profile nor the
// environment name a region.
const fallbackRegion = "us-east-1"

// configLoader matches awsconfig.LoadDefaultConfig; tests replace it to avoid
// touching the real credential chain.
type configLoader func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error)

// DefaultAWSClientProvider is the production implementation of AWSClientProvider.
// It resolves credentials through the standard AWS SDK v2 chain (environment,
// shared config files, Lambda execution role) and optionally assumes a role.
//
// Inject a custom ClientFactory via NewDefaultAWSClientProviderWithFactory to
// replace real SDK clients with mocks in unit tests.
type DefaultAWSClientProvider struct {
	factory    ClientFactory
	loadConfig configLoader
}

// NewDefaultAWSClientProvider returns a provider backed by the real AWS SDK.
func NewDefaultAWSClientProvider() *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: NewClientSet, loadConfig: awsconfig.LoadDefaultConfig}
}

// NewDefaultAWSClientProviderWithFactory returns a provider that uses f to
// create its ClientSet. Pass a mock factory in tests.
func NewDefaultAWSClientProviderWithFactory(f ClientFactory) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: f, loadConfig: awsconfig.LoadDefaultConfig}
}

// LoadProfile loads the AWS SDK config described by opts and returns a fully
// populated ProfileConfig including the resolved account ID and initialised
// service clients.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, opts LoadOptions) (*ProfileConfig, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := p.loadConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", profileDisplayName(opts.Profile), err)
	}

	// Fall back to us-east-1 when nothing configured a region so that all
	// SDK clients can be constructed successfully.
	if cfg.Region == "" {
		cfg.Region = fallbackRegion
	}

	if opts.RoleARN != "" {
		cfg = AssumeRole(cfg, opts.RoleARN)
	}

	clients := p.factory(cfg)

	accountID := opts.AccountID
	if accountID == "" {
		accountID, err = resolveAccountID(ctx, clients.STS)
		if err != nil {
			return nil, fmt.Errorf("resolve account ID for profile %q: %w", profileDisplayName(opts.Profile), err)
		}
	}

	return &ProfileConfig{
		ProfileName: profileDisplayName(opts.Profile),
		AccountID:   accountID,
		Region:      cfg.Region,
		RoleARN:     opts.RoleARN,
		Config:      cfg,
		Clients:     clients,
	}, nil
}

// AssumeRole returns a copy of cfg whose credentials come from assuming
// roleARN with the base credentials of cfg. Credentials are cached and
// refreshed by the SDK.
func AssumeRole(cfg aws.Config, roleARN string) aws.Config {
	provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleARN, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = RoleSessionName
	})
	assumed := cfg.Copy()
	assumed.Credentials = aws.NewCredentialsCache(provider)
	return assumed
}

// CallerARN returns the ARN of the identity behind stsClient.
func CallerARN(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	return aws.ToString(out.Arn), nil
}

// profileDisplayName returns a human-readable profile identifier. An empty
// string (the default profile) is shown as "default".
func profileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// resolveAccountID calls STS GetCallerIdentity to retrieve the numeric AWS
// account ID for the credentials currently loaded in stsClient.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}
