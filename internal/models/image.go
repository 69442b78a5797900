package models

// Image is an AMI owned by the evaluated account, reduced to the fields the
// encryption rule and the reports need.
type Image struct {
	// ImageID is the AMI identifier (e.g. "ami-08d7261cad6c06507").
	ImageID string `json:"image_id"`

	// Name is the AMI name. Informational only.
	Name string `json:"name,omitempty"`

	// BlockDeviceMappings is kept in the order the EC2 API returned it.
	BlockDeviceMappings []BlockDeviceMapping `json:"block_device_mappings"`
}

// BlockDeviceMapping is one device entry of an AMI.
type BlockDeviceMapping struct {
	DeviceName string `json:"device_name,omitempty"`

	// EBS is nil for instance-store (ephemeral) and NoDevice mappings.
	EBS *EBSBlockDevice `json:"ebs,omitempty"`
}

// EBSBlockDevice holds the EBS parameters of a block device mapping.
type EBSBlockDevice struct {
	Encrypted  bool   `json:"encrypted"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	VolumeType string `json:"volume_type,omitempty"`
	KMSKeyID   string `json:"kms_key_id,omitempty"`
}

// IsEncryptedEBS reports whether the mapping is backed by an encrypted EBS
// volume. Mappings without an EBS device are never encrypted.
func (m BlockDeviceMapping) IsEncryptedEBS() bool {
	return m.EBS != nil && m.EBS.Encrypted
}
