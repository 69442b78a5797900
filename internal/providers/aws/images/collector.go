// Package images collects the AMIs owned by the calling account.
package images

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

// OwnerSelf restricts DescribeImages to images owned by the caller.
const OwnerSelf = "self"

// ec2ImagesClient covers the EC2 operation required for AMI collection.
// It satisfies ec2.DescribeImagesAPIClient for the SDK v2 paginator.
type ec2ImagesClient interface {
	DescribeImages(
		ctx context.Context,
		params *ec2svc.DescribeImagesInput,
		optFns ...func(*ec2svc.Options),
	) (*ec2svc.DescribeImagesOutput, error)
}

// DefaultImageCollector lists owned AMIs through the EC2 API. It satisfies
// engine.ImageFetcher.
type DefaultImageCollector struct {
	client ec2ImagesClient
}

// NewDefaultImageCollector returns a collector backed by client, typically
// ProfileConfig.Clients.EC2.
func NewDefaultImageCollector(client ec2ImagesClient) *DefaultImageCollector {
	return &DefaultImageCollector{client: client}
}

// FetchOwnedImages pages through DescribeImages with Owners=["self"] and
// returns every image in API order. Any page error aborts collection.
func (c *DefaultImageCollector) FetchOwnedImages(ctx context.Context) ([]models.Image, error) {
	input := &ec2svc.DescribeImagesInput{
		Owners: []string{OwnerSelf},
	}

	paginator := ec2svc.NewDescribeImagesPaginator(c.client, input)

	var images []models.Image
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe owned images: %w", err)
		}
		for _, img := range page.Images {
			images = append(images, toImage(img))
		}
	}
	return images, nil
}

// toImage converts an SDK image to the internal model. Mapping order is kept.
func toImage(img ec2types.Image) models.Image {
	mappings := make([]models.BlockDeviceMapping, 0, len(img.BlockDeviceMappings))
	for _, bdm := range img.BlockDeviceMappings {
		mappings = append(mappings, toBlockDeviceMapping(bdm))
	}
	return models.Image{
		ImageID:             aws.ToString(img.ImageId),
		Name:                aws.ToString(img.Name),
		BlockDeviceMappings: mappings,
	}
}

func toBlockDeviceMapping(bdm ec2types.BlockDeviceMapping) models.BlockDeviceMapping {
	m := models.BlockDeviceMapping{DeviceName: aws.ToString(bdm.DeviceName)}
	if bdm.Ebs != nil {
		m.EBS = &models.EBSBlockDevice{
			Encrypted:  aws.ToBool(bdm.Ebs.Encrypted),
			SnapshotID: aws.ToString(bdm.Ebs.SnapshotId),
			VolumeType: string(bdm.Ebs.VolumeType),
			KMSKeyID:   aws.ToString(bdm.Ebs.KmsKeyId),
		}
	}
	return m
}
