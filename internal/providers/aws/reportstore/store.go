// Package reportstore exports evaluation reports to S3.
package reportstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/models"
)

// ErrInvalidS3URI is returned by ParseS3URI for anything but s3://bucket[/prefix].
var ErrInvalidS3URI = errors.New("invalid S3 URI; want s3://bucket[/prefix]")

type s3Client interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

// Store writes reports under bucket/prefix.
type Store struct {
	client s3Client
	bucket string
	prefix string
}

// NewStore returns a Store for bucket. prefix may be empty; surrounding
// slashes are ignored.
func NewStore(client s3Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key report is stored under:
// <prefix>/<yyyy>/<mm>/<dd>/<report-id>.json.
func (s *Store) Key(report *models.EvaluationReport) string {
	day := report.GeneratedAt.UTC().Format("2006/01/02")
	return path.Join(s.prefix, day, report.ReportID+".json")
}

// Put JSON-encodes report and uploads it. It returns the s3:// URI written.
func (s *Store) Put(ctx context.Context, report *models.EvaluationReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	key := s.Key(report)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put report s3://%s/%s: %w", s.bucket, key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// IsS3URI reports whether dest names an S3 location rather than a file.
func IsS3URI(dest string) bool {
	return strings.HasPrefix(dest, "s3://")
}

// ParseS3URI splits s3://bucket/some/prefix into bucket and prefix.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	if !IsS3URI(uri) {
		return "", "", ErrInvalidS3URI
	}
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", ErrInvalidS3URI
	}
	return bucket, strings.Trim(prefix, "/"), nil
}
