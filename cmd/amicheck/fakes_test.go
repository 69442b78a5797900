package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/common"
)

// ── AWS fakes ─────────────────────────────────────────────────────────────────

type fakeEC2 struct {
	images []ec2types.Image
	err    error
	inputs []*ec2.DescribeImagesInput
}

func (f *fakeEC2) DescribeImages(_ context.Context, in *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &ec2.DescribeImagesOutput{Images: f.images}, nil
}

type fakeSTS struct {
	arn string
	err error
}

func (f *fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Arn: aws.String(f.arn), Account: aws.String("111122223333")}, nil
}

type fakeIAM struct {
	deny map[string]bool
	err  error
}

func (f *fakeIAM) SimulatePrincipalPolicy(_ context.Context, in *iam.SimulatePrincipalPolicyInput, _ ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &iam.SimulatePrincipalPolicyOutput{}
	for _, a := range in.ActionNames {
		d := iamtypes.PolicyEvaluationDecisionTypeAllowed
		if f.deny[a] {
			d = iamtypes.PolicyEvaluationDecisionTypeImplicitDeny
		}
		out.EvaluationResults = append(out.EvaluationResults, iamtypes.EvaluationResult{
			EvalActionName: aws.String(a),
			EvalDecision:   d,
		})
	}
	return out, nil
}

type fakeS3 struct {
	buckets []string
	keys    []string
	bodies  [][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.buckets = append(f.buckets, aws.ToString(in.Bucket))
	f.keys = append(f.keys, aws.ToString(in.Key))
	body, _ := io.ReadAll(in.Body)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

type fakeProvider struct {
	clients *common.ClientSet
	err     error
	opts    []common.LoadOptions
}

func (p *fakeProvider) LoadProfile(_ context.Context, opts common.LoadOptions) (*common.ProfileConfig, error) {
	p.opts = append(p.opts, opts)
	if p.err != nil {
		return nil, p.err
	}
	name := opts.Profile
	if name == "" {
		name = "default"
	}
	return &common.ProfileConfig{
		ProfileName: name,
		AccountID:   "111122223333",
		Region:      "us-east-1",
		Clients:     p.clients,
	}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

type testEnv struct {
	ec2      *fakeEC2
	sts      *fakeSTS
	iam      *fakeIAM
	s3       *fakeS3
	provider *fakeProvider
	dir      string

	// app is the state of the last run.
	app *app
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ec2: &fakeEC2{images: []ec2types.Image{
			{
				ImageId: aws.String("ami-08d7261cad6c06507"),
				BlockDeviceMappings: []ec2types.BlockDeviceMapping{{
					DeviceName: aws.String("/dev/xvda"),
					Ebs:        &ec2types.EbsBlockDevice{Encrypted: aws.Bool(true)},
				}},
			},
			{
				ImageId: aws.String("ami-0112c52e7ca89ee2e"),
				BlockDeviceMappings: []ec2types.BlockDeviceMapping{
					{DeviceName: aws.String("/dev/xvda"), Ebs: &ec2types.EbsBlockDevice{Encrypted: aws.Bool(false)}},
					{DeviceName: aws.String("/dev/sdb"), VirtualName: aws.String("ephemeral0")},
				},
			},
		}},
		sts: &fakeSTS{arn: "arn:aws:sts::111122223333:assumed-role/Auditor/session"},
		iam: &fakeIAM{},
		s3:  &fakeS3{},
		dir: t.TempDir(),
	}
	env.provider = &fakeProvider{clients: &common.ClientSet{
		STS: env.sts,
		EC2: env.ec2,
		S3:  env.s3,
		IAM: env.iam,
	}}
	return env
}

func (env *testEnv) path(name string) string {
	return filepath.Join(env.dir, name)
}

// run executes the root command with args, isolated from the user's config
// and the working directory's policy file. It returns stdout and the error.
func (env *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root, a := newRootCmdWith(env.provider)
	env.app = a
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", env.path("config.yaml")}, args...))
	err := a.execute(context.Background(), root)
	return stdout.String(), err
}
