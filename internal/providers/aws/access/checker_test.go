package access

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

type fakeIAM struct {
	results []iamtypes.EvaluationResult
	err     error
	source  string
}

func (f *fakeIAM) SimulatePrincipalPolicy(_ context.Context, in *iam.SimulatePrincipalPolicyInput, _ ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error) {
	f.source = aws.ToString(in.PolicySourceArn)
	if f.err != nil {
		return nil, f.err
	}
	return &iam.SimulatePrincipalPolicyOutput{EvaluationResults: f.results}, nil
}

func TestPolicySourceARN(t *testing.T) {
	tests := map[string]string{
		"arn:aws:sts::111122223333:assumed-role/ConfigRuleRole/session-1": "arn:aws:iam::111122223333:role/ConfigRuleRole",
		"arn:aws-cn:sts::111122223333:assumed-role/R/s":                    "arn:aws-cn:iam::111122223333:role/R",
		"arn:aws:iam::111122223333:user/alice":                             "arn:aws:iam::111122223333:user/alice",
		"arn:aws:sts::111122223333:federated-user/bob":                     "arn:aws:sts::111122223333:federated-user/bob",
		"not-an-arn": "not-an-arn",
	}
	for in, want := range tests {
		if got := PolicySourceARN(in); got != want {
			t.Errorf("PolicySourceARN(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestCheck_MapsDecisions(t *testing.T) {
	client := &fakeIAM{results: []iamtypes.EvaluationResult{
		{EvalActionName: aws.String("ec2:DescribeImages"), EvalDecision: iamtypes.PolicyEvaluationDecisionTypeAllowed},
		{EvalActionName: aws.String("config:PutEvaluations"), EvalDecision: iamtypes.PolicyEvaluationDecisionTypeExplicitDeny},
	}}

	results, err := NewChecker(client).Check(context.Background(), "arn:aws:sts::1:assumed-role/R/s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.source != "arn:aws:iam::1:role/R" {
		t.Errorf("PolicySourceArn = %q", client.source)
	}
	if len(results) != len(RequiredActions) {
		t.Fatalf("want %d results, got %d", len(RequiredActions), len(results))
	}
	if !results[0].Allowed {
		t.Errorf("%s must be allowed", results[0].Action)
	}
	if results[1].Allowed || results[1].Decision != "explicitDeny" {
		t.Errorf("%s: got %+v", results[1].Action, results[1])
	}
	// Missing from the simulator output: treated as implicit deny.
	if results[2].Allowed || results[2].Decision != "implicitDeny" {
		t.Errorf("%s: got %+v", results[2].Action, results[2])
	}
	if AllAllowed(results) {
		t.Error("AllAllowed must be false with a denied action")
	}
}

func TestCheck_Error(t *testing.T) {
	sentinel := errors.New("AccessDenied")
	if _, err := NewChecker(&fakeIAM{err: sentinel}).Check(context.Background(), "arn:aws:iam::1:user/a"); !errors.Is(err, sentinel) {
		t.Fatalf("want wrapped sentinel, got %v", err)
	}
}

func TestAllAllowed(t *testing.T) {
	if AllAllowed(nil) {
		t.Error("no results must not count as allowed")
	}
	if !AllAllowed([]ActionResult{{Allowed: true}, {Allowed: true}}) {
		t.Error("all allowed must return true")
	}
}
