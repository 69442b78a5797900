package ami

import (
	"testing"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/rules"
)

func TestNew_ContainsAMIRule(t *testing.T) {
	ids := rules.IDs(New())
	if len(ids) != 1 || ids[0] != rules.AMIEBSEncryptedRuleID {
		t.Errorf("pack rule IDs = %v; want [%s]", ids, rules.AMIEBSEncryptedRuleID)
	}
}

func TestNewRegistry_RegistersPack(t *testing.T) {
	if got := len(NewRegistry().All()); got != len(New()) {
		t.Errorf("registry has %d rules; want %d", got, len(New()))
	}
}
