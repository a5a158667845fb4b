package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/eureka"
	"go.uber.org/zap"
)

// S3API is the subset of the S3 client used to read schema objects.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3SchemaSource loads schema documents stored under a bucket prefix.
type S3SchemaSource struct {
	client S3API
	bucket string
	prefix string
}

// NewS3SchemaSource creates a source for bucket/prefix.
func NewS3SchemaSource(client S3API, bucket, prefix string) *S3SchemaSource {
	return &S3SchemaSource{client: client, bucket: bucket, prefix: prefix}
}

// Load lists the prefix and decodes every schema object. Nested keys below
// the prefix are ignored.
func (s *S3SchemaSource) Load(ctx context.Context) ([]eureka.SchemaConfig, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	configs := make([]eureka.SchemaConfig, 0, len(keys))
	for _, key := range keys {
		data, err := s.read(ctx, key)
		if err != nil {
			return nil, err
		}
		cfg, err := ParseSchemaConfig(schemaNameFromFile(key), data)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	zap.S().Infow("loaded schema objects", "bucket", s.bucket, "prefix", s.prefix, "count", len(configs))
	return configs, nil
}

func (s *S3SchemaSource) listKeys(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.classify(err, "")
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rel := strings.TrimPrefix(strings.TrimPrefix(key, s.prefix), "/")
			if strings.Contains(rel, "/") || !isSchemaFile(rel) {
				continue
			}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *S3SchemaSource) read(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.classify(err, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

// classify maps missing buckets and keys to not-found errors and every other
// request failure to SOURCE_UNAVAILABLE.
func (s *S3SchemaSource) classify(err error, key string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "NoSuchKey", "NotFound":
			return (&eureka.EurekaError{
				Type:    eureka.ErrorTypeNotFound,
				Code:    eureka.ErrCodeSchemaNotFound,
				Message: fmt.Sprintf("s3://%s/%s: %s", s.bucket, key, apiErr.ErrorMessage()),
			}).WithCause(err).
				WithDetail("bucket", s.bucket).
				WithDetail("key", key).
				WithDetail("code", apiErr.ErrorCode())
		}
		return (&eureka.EurekaError{
			Type:    eureka.ErrorTypeInternal,
			Code:    eureka.ErrCodeSourceUnavailable,
			Message: fmt.Sprintf("s3 request for s3://%s/%s failed: %s", s.bucket, key, apiErr.ErrorCode()),
		}).WithCause(err).
			WithDetail("bucket", s.bucket).
			WithDetail("key", key).
			WithDetail("code", apiErr.ErrorCode())
	}
	return (&eureka.EurekaError{
		Type:    eureka.ErrorTypeInternal,
		Code:    eureka.ErrCodeSourceUnavailable,
		Message: fmt.Sprintf("s3 request for s3://%s/%s failed: %v", s.bucket, key, err),
	}).WithCause(err).
		WithDetail("bucket", s.bucket).
		WithDetail("key", key)
}
