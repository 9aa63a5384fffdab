package storage

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/goerrorkit"
)

const s3KeyPrefix = "profile_pics/"

// ObjectStore là phần của *s3.Client mà S3Storage dùng
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage lưu ảnh đại diện trên S3 hoặc storage tương thích S3 (MinIO)
type S3Storage struct {
	client    ObjectStore
	bucket    string
	publicURL string
}

// NewS3Storage creates an S3 client from config. Endpoint rỗng dùng AWS mặc định.
func NewS3Storage(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, goerrorkit.WrapWithMessage(err, "Failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		if cfg.S3Endpoint != "" {
			publicURL = joinURL(cfg.S3Endpoint, cfg.S3Bucket)
		} else {
			publicURL = "https://" + cfg.S3Bucket + ".s3." + cfg.S3Region + ".amazonaws.com"
		}
	}

	return NewS3StorageWithClient(client, cfg.S3Bucket, publicURL), nil
}

// NewS3StorageWithClient creates an S3 storage over an existing client
func NewS3StorageWithClient(client ObjectStore, bucket, publicURL string) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, publicURL: publicURL}
}

// Store implements core.AvatarStorage
func (s *S3Storage) Store(ctx context.Context, filename string, contentType string, data []byte) (string, error) {
	name, err := pictureName(filename)
	if err != nil {
		return "", goerrorkit.WrapWithMessage(err, "Failed to generate picture name")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + name),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", goerrorkit.WrapWithMessage(err, "Failed to upload avatar to S3").WithData(map[string]interface{}{
			"bucket": s.bucket,
			"key":    s3KeyPrefix + name,
		})
	}
	return name, nil
}

// Delete implements core.AvatarStorage. S3 không báo lỗi khi key không tồn tại.
func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + ref),
	})
	if err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to delete avatar from S3").WithData(map[string]interface{}{
			"bucket": s.bucket,
			"key":    s3KeyPrefix + ref,
		})
	}
	return nil
}

// URL implements core.AvatarStorage. Avatar mặc định nằm cùng prefix với ảnh upload.
func (s *S3Storage) URL(ref string) string {
	return joinURL(s.publicURL, s3KeyPrefix+ref)
}

var _ core.AvatarStorage = (*S3Storage)(nil)
