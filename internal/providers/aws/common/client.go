package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS identity with its SDK configuration and
// initialised service clients. It is the unit passed between provider
// functions, the CLI and the Lambda handler.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	ProfileName string

	// AccountID is the resolved AWS account ID (via STS, or taken from the
	// Config event when the handler already knows it).
	AccountID string

	// Region is the region every client in Clients is scoped to.
	Region string

	// RoleARN is the role assumed on top of the base credentials, if any.
	RoleARN string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds initialised service clients for Region.
	Clients *ClientSet
}

// LoadOptions selects the credentials and region LoadProfile resolves.
// The zero value loads the default credential chain and region.
type LoadOptions struct {
	// Profile is a shared-config profile name. Empty means default.
	Profile string

	// Region overrides the profile / environment region.
	Region string

	// RoleARN, when set, is assumed with STS on top of the base credentials.
	// The Lambda handler passes the Config event's ExecutionRoleArn here.
	RoleARN string

	// AccountID skips the STS GetCallerIdentity lookup when already known.
	AccountID string
}

// AWSClientProvider loads AWS configurations and builds service clients.
// It is the sole entry point for AWS credential and region management across
// the entire provider layer.
//
// Implementations must use the AWS SDK v2 only. Never call the aws CLI.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for opts.
	LoadProfile(ctx context.Context, opts LoadOptions) (*ProfileConfig, error)
}
