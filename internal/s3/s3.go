package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/windoze95/dishfinder-api/internal/config"
)

// uploader is the part of manager.Uploader the archive uses.
type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Archive keeps a copy of uploaded ingredient photos in S3.
type Archive struct {
	bucket   string
	uploader uploader
	now      func() time.Time
}

// newS3Client creates a new S3 client from the app config.
// When AWS access key and secret are provided, static credentials are used;
// otherwise the default credential chain is preserved (IAM role, instance
// profile, etc.) so ECS/EC2 task roles work without explicit keys.
func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.EnvVars.AWSRegion),
	}

	if cfg.EnvVars.AWSAccessKeyID != "" && cfg.EnvVars.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.EnvVars.AWSAccessKeyID,
			cfg.EnvVars.AWSSecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// NewArchive creates an Archive for the configured bucket. The S3 client is
// built once and shared by every upload.
func NewArchive(ctx context.Context, cfg *config.Config) (*Archive, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Archive{
		bucket:   cfg.EnvVars.S3Bucket,
		uploader: manager.NewUploader(client),
		now:      time.Now,
	}, nil
}

// StoreUpload uploads an ingredient photo and returns its location URL.
func (a *Archive) StoreUpload(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	key := UploadKey(a.now(), filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := a.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}
	return result.Location, nil
}

// UploadKey generates the S3 key for an uploaded photo, partitioned by day.
// The original extension is kept; the rest of the name is replaced so
// user-supplied names never reach the key.
func UploadKey(at time.Time, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("uploads/%s/%s%s", at.UTC().Format("2006/01/02"), uuid.NewString(), ext)
}
