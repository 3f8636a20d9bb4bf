package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3PutAPI is the subset of the S3 client used by s3Store.
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements ObjectStore on top of AWS S3.
type s3Store struct {
	client  s3PutAPI
	bucket  string
	prefix  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store creates an S3-backed object store. Objects are stored under
// prefix and their URLs are built from the bucket's virtual-hosted endpoint.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (ObjectStore, error) {
	logger = logger.With().Str("component", "s3-store").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 store initialised")

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	return newS3Store(s3.NewFromConfig(cfg), bucket, prefix, baseURL, logger), nil
}

func newS3Store(client s3PutAPI, bucket, prefix, baseURL string, logger zerolog.Logger) *s3Store {
	return &s3Store{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Put uploads body to the bucket.
func (s *s3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	fullKey := s.prefix + cleaned

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(fullKey),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", fullKey).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, fullKey, err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("key", fullKey).
		Int("bytes", len(body)).
		Msg("object stored in S3")

	return joinURL(s.baseURL, fullKey), nil
}
