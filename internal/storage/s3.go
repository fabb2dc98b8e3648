package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"giveup-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads item images to an S3-compatible bucket
type S3Store struct {
	client *s3.Client
	bucket string
	urls   urlBuilder
}

// NewS3Store creates a blob store from configuration. Static credentials are
// used when an access key is configured, otherwise the default AWS chain.
func NewS3Store(ctx context.Context, cfg config.AWSConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client: client,
		bucket: cfg.S3Bucket,
		urls:   newURLBuilder(cfg),
	}, nil
}

// Upload stores data under key and returns the key as the blob reference
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return key, nil
}

// URL returns the retrievable URL for a blob reference
func (s *S3Store) URL(ref string) string {
	return s.urls.build(ref)
}

// Ping checks that the bucket is reachable
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("failed to reach bucket %s: %w", s.bucket, err)
	}
	return nil
}

type urlBuilder struct {
	base string
}

func newURLBuilder(cfg config.AWSConfig) urlBuilder {
	switch {
	case cfg.PublicBaseURL != "":
		return urlBuilder{base: strings.TrimRight(cfg.PublicBaseURL, "/")}
	case cfg.Endpoint != "" && cfg.UsePathStyle:
		return urlBuilder{base: strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.S3Bucket}
	case cfg.Endpoint != "":
		endpoint, err := url.Parse(cfg.Endpoint)
		if err != nil || endpoint.Host == "" {
			return urlBuilder{base: strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.S3Bucket}
		}
		return urlBuilder{base: fmt.Sprintf("%s://%s.%s", endpoint.Scheme, cfg.S3Bucket, endpoint.Host)}
	default:
		return urlBuilder{base: fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)}
	}
}

func (b urlBuilder) build(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return b.base + "/" + strings.Join(segments, "/")
}
