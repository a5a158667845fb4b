package e2e_harness

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/eureka"
)

// Schemas is a small blog model with one single and one multi relation.
var Schemas = map[string]string{
	"post.yaml": `properties:
  title:
    type: string
    validations: [required]
  views: integer
  author: author
  comments:
    type: comment
    multi: true
`,
	"author.yaml": `name:
  type: string
  validations: [required]
`,
	"comment.json": `{"body": {"type": "string"}}`,
}

// Records seeds one post with an author and two comments.
var Records = []*eureka.DataRecord{
	{SchemaName: "author", RowID: "a1", Attributes: map[string]any{"name": "Ann"}},
	{SchemaName: "comment", RowID: "c1", Attributes: map[string]any{"body": "first"}},
	{SchemaName: "comment", RowID: "c2", Attributes: map[string]any{"body": "second"}},
	{SchemaName: "post", RowID: "p1", Attributes: map[string]any{
		"title":    "Hello",
		"views":    float64(3),
		"author":   map[string]any{"id": "a1", "type": "author"},
		"comments": []any{"c1", "c2"},
	}},
}

// EnsureBucket creates bucket unless it already exists.
func EnsureBucket(ctx context.Context, client *s3.Client, bucket string) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}
	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			code := apiErr.ErrorCode()
			if code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
				return nil
			}
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// UploadSchemas writes files under prefix in bucket.
func UploadSchemas(ctx context.Context, client *s3.Client, bucket, prefix string, files map[string]string) error {
	if err := EnsureBucket(ctx, client, bucket); err != nil {
		return err
	}
	uploader := manager.NewUploader(client)
	for name, body := range files {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(path.Join(prefix, name)),
			Body:   strings.NewReader(body),
		})
		if err != nil {
			return fmt.Errorf("s3 upload %s: %w", name, err)
		}
	}
	return nil
}

// SeedRecords saves every record through store.
func SeedRecords(ctx context.Context, store eureka.RecordWriter, records []*eureka.DataRecord) error {
	for _, record := range records {
		if _, err := store.Save(ctx, record); err != nil {
			return fmt.Errorf("seed %s/%s: %w", record.SchemaName, record.RowID, err)
		}
	}
	return nil
}
