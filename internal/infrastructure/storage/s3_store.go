// Package storage provides object storage implementations for invoice
// attachments and the per-module copies made when an invoice is accepted.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	infraconfig "github.com/farmops/backend/internal/infrastructure/config"
)

// Ensure S3FileStore implements FileStore
var _ appaccounting.FileStore = (*S3FileStore)(nil)

// S3FileStore implements FileStore using AWS S3 SDK v2.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.).
// Objects are keyed "<category>/<path>".
type S3FileStore struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// S3FileStoreOption is a functional option for configuring S3FileStore
type S3FileStoreOption func(*S3FileStore)

// WithLogger sets a custom logger for S3FileStore
func WithLogger(logger *zap.Logger) S3FileStoreOption {
	return func(s *S3FileStore) {
		s.logger = logger
	}
}

// NewS3FileStore creates a new S3FileStore from configuration
func NewS3FileStore(cfg *infraconfig.StorageConfig, opts ...S3FileStoreOption) (*S3FileStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			if _, err := url.Parse(endpoint); err == nil {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}
	})

	store := &S3FileStore{
		client: client,
		bucket: cfg.Bucket,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3FileStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" error (race condition)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put stores an object and returns its path within the category
func (s *S3FileStore) Put(ctx context.Context, category, path string, body []byte) (string, error) {
	key, err := objectKey(category, path)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/xml"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return path, nil
}

// Copy duplicates an object between categories and returns the destination path
func (s *S3FileStore) Copy(ctx context.Context, srcCategory, srcPath, dstCategory, dstPath string) (string, error) {
	srcKey, err := objectKey(srcCategory, srcPath)
	if err != nil {
		return "", err
	}
	dstKey, err := objectKey(dstCategory, dstPath)
	if err != nil {
		return "", err
	}

	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + srcKey),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy object: %w", err)
	}
	return dstPath, nil
}

// Get reads an object's contents
func (s *S3FileStore) Get(ctx context.Context, category, path string) ([]byte, error) {
	key, err := objectKey(category, path)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// GetBucket returns the bucket name
func (s *S3FileStore) GetBucket() string {
	return s.bucket
}

func objectKey(category, path string) (string, error) {
	if category == "" || path == "" {
		return "", errors.New("storage category and path are required")
	}
	return category + "/" + path, nil
}
