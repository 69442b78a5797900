package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/policy"
)

// AMIEBSEncryptedRuleID is the rule identifier and AWS Config rule name.
const AMIEBSEncryptedRuleID = "AMI_EBS_ENCRYPTED"

// AMIEBSEncryptedRule checks that EBS-backed AMIs only reference encrypted
// volumes. A mapping is COMPLIANT when it has an EBS device with Encrypted
// set; every other mapping, including instance-store devices, is
// NON_COMPLIANT.
type AMIEBSEncryptedRule struct{}

func (r AMIEBSEncryptedRule) ID() string   { return AMIEBSEncryptedRuleID }
func (r AMIEBSEncryptedRule) Name() string { return "AMI Backed By Unencrypted EBS Volume" }

// Evaluate returns one evaluation per (image, block device mapping) pair in
// traversal order, all carrying the image ID. With policy granularity
// "image" it returns one evaluation per image instead. Images with no
// mappings produce nothing in either mode.
func (r AMIEBSEncryptedRule) Evaluate(ctx RuleContext) []models.Evaluation {
	if policy.GetGranularity(r.ID(), ctx.Policy) == policy.GranularityImage {
		return r.evaluatePerImage(ctx.Images)
	}

	var evaluations []models.Evaluation
	for _, img := range ctx.Images {
		for _, m := range img.BlockDeviceMappings {
			evaluations = append(evaluations, evaluateMapping(img.ImageID, m))
		}
	}
	return evaluations
}

func (r AMIEBSEncryptedRule) evaluatePerImage(images []models.Image) []models.Evaluation {
	var evaluations []models.Evaluation
	for _, img := range images {
		if len(img.BlockDeviceMappings) == 0 {
			continue
		}
		var bad []string
		for _, m := range img.BlockDeviceMappings {
			if !m.IsEncryptedEBS() {
				bad = append(bad, deviceLabel(m))
			}
		}
		if len(bad) == 0 {
			evaluations = append(evaluations, models.NewEvaluation(
				models.ComplianceCompliant, img.ImageID,
				"All block device mappings are encrypted EBS volumes."))
			continue
		}
		evaluations = append(evaluations, models.NewEvaluation(
			models.ComplianceNonCompliant, img.ImageID,
			fmt.Sprintf("%d of %d block device mappings are not encrypted EBS volumes: %v",
				len(bad), len(img.BlockDeviceMappings), bad)))
	}
	return evaluations
}

// evaluateMapping is the per-mapping decision rule.
func evaluateMapping(imageID string, m models.BlockDeviceMapping) models.Evaluation {
	switch {
	case m.IsEncryptedEBS():
		return models.NewEvaluation(models.ComplianceCompliant, imageID,
			fmt.Sprintf("EBS block device %s is encrypted.", deviceLabel(m)))
	case m.EBS == nil:
		return models.NewEvaluation(models.ComplianceNonCompliant, imageID,
			fmt.Sprintf("Block device %s is not an EBS volume.", deviceLabel(m)))
	default:
		return models.NewEvaluation(models.ComplianceNonCompliant, imageID,
			fmt.Sprintf("EBS block device %s is not encrypted.", deviceLabel(m)))
	}
}

func deviceLabel(m models.BlockDeviceMapping) string {
	if m.DeviceName == "" {
		return "(unnamed)"
	}
	return m.DeviceName
}
