// Package access verifies that an identity holds the IAM permissions the
// rule needs, using the IAM policy simulator.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// RequiredActions are the API actions an evaluation run performs.
var RequiredActions = []string{
	"ec2:DescribeImages",
	"config:PutEvaluations",
	"config:GetComplianceDetailsByConfigRule",
}

type iamClient interface {
	SimulatePrincipalPolicy(
		ctx context.Context,
		params *iam.SimulatePrincipalPolicyInput,
		optFns ...func(*iam.Options),
	) (*iam.SimulatePrincipalPolicyOutput, error)
}

// ActionResult is the simulated decision for one action.
type ActionResult struct {
	Action   string `json:"action"`
	Allowed  bool   `json:"allowed"`
	Decision string `json:"decision"`
}

// Checker runs permission simulations.
type Checker struct {
	client iamClient
}

// NewChecker returns a Checker backed by client.
func NewChecker(client iamClient) *Checker {
	return &Checker{client: client}
}

// Check simulates RequiredActions for principalARN. STS assumed-role ARNs
// are converted to the underlying IAM role ARN first, since the simulator
// does not accept session ARNs. Results follow RequiredActions order.
func (c *Checker) Check(ctx context.Context, principalARN string) ([]ActionResult, error) {
	source := PolicySourceARN(principalARN)
	out, err := c.client.SimulatePrincipalPolicy(ctx, &iam.SimulatePrincipalPolicyInput{
		PolicySourceArn: aws.String(source),
		ActionNames:     RequiredActions,
	})
	if err != nil {
		return nil, fmt.Errorf("simulate principal policy for %s: %w", source, err)
	}

	decisions := make(map[string]iamtypes.PolicyEvaluationDecisionType, len(out.EvaluationResults))
	for _, r := range out.EvaluationResults {
		decisions[aws.ToString(r.EvalActionName)] = r.EvalDecision
	}

	results := make([]ActionResult, 0, len(RequiredActions))
	for _, action := range RequiredActions {
		d, ok := decisions[action]
		if !ok {
			d = iamtypes.PolicyEvaluationDecisionTypeImplicitDeny
		}
		results = append(results, ActionResult{
			Action:   action,
			Allowed:  d == iamtypes.PolicyEvaluationDecisionTypeAllowed,
			Decision: string(d),
		})
	}
	return results, nil
}

// PolicySourceARN maps arn:<p>:sts::<acct>:assumed-role/<role>/<session> to
// arn:<p>:iam::<acct>:role/<role>. Other ARNs are returned unchanged. Role
// paths are not recoverable from a session ARN, so roles with a path other
// than "/" must be checked by passing their IAM ARN directly.
func PolicySourceARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[2] != "sts" {
		return arn
	}
	resource := strings.Split(parts[5], "/")
	if len(resource) < 2 || resource[0] != "assumed-role" {
		return arn
	}
	return fmt.Sprintf("arn:%s:iam::%s:role/%s", parts[1], parts[4], resource[1])
}

// AllAllowed reports whether every result is allowed.
func AllAllowed(results []ActionResult) bool {
	for _, r := range results {
		if !r.Allowed {
			return false
		}
	}
	return len(results) > 0
}
