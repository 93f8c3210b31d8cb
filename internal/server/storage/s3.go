package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements ObjectStore over an S3-compatible backend (MinIO in
// development).
type S3Store struct {
	client   s3API
	bucket   string
	endpoint string
}

// Config holds the settings needed to reach the S3-compatible backend.
type Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// NewS3Store builds an S3-backed ObjectStore with static credentials and a
// custom base endpoint.
func NewS3Store(ctx context.Context, c Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.RootUser,     // MINIO_ROOT_USER
			c.RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: c.Bucket, endpoint: c.BaseEndpoint}, nil
}

// GetRandomStorageKey returns a date-prefixed unique object key.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("files/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// Put writes the blob under a fresh storage key and returns the key.
func (s *S3Store) Put(ctx context.Context, data []byte, name string) (string, error) {
	key := GetRandomStorageKey()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", name, err)
	}
	return key, nil
}

// Delete removes the blob with the given key. S3 DeleteObject succeeds on
// missing keys, which keeps the operation idempotent-tolerant.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// URL derives the public view URL for a key from the endpoint and bucket.
func (s *S3Store) URL(key string) string {
	return strings.TrimSuffix(s.endpoint, "/") + "/" + s.bucket + "/" + key
}
