package main

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lychee-technology/eureka/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPublishSchemasCmd(opts *cliOptions) *cobra.Command {
	src := &opts.config.Schemas
	return &cobra.Command{
		Use:   "publish-schemas",
		Short: "Upload the schema directory to the S3 schema bucket",
		Long: `Upload every schema file of --schema-dir to --s3-bucket under
--s3-prefix. The directory is checked first, so a broken schema set is
never published.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if src.S3Bucket == "" {
				return fmt.Errorf("--s3-bucket is required")
			}
			if _, err := factory.LoadSchemaDirectory(src.Directory); err != nil {
				return fmt.Errorf("check %s: %w", src.Directory, err)
			}
			files, err := schemaFiles(src.Directory)
			if err != nil {
				return err
			}

			client, err := factory.NewS3Client(ctx, *src)
			if err != nil {
				return err
			}
			uploader := manager.NewUploader(client)
			for _, file := range files {
				data, err := os.ReadFile(filepath.Join(src.Directory, file))
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				key := path.Join(src.S3Prefix, file)
				if _, err := uploader.Upload(ctx, &s3.PutObjectInput{
					Bucket: aws.String(src.S3Bucket),
					Key:    aws.String(key),
					Body:   bytes.NewReader(data),
				}); err != nil {
					return fmt.Errorf("upload %s: %w", key, err)
				}
				zap.S().Infow("schema published", "bucket", src.S3Bucket, "key", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published schemas, count: %d, bucket: %s\n", len(files), src.S3Bucket)
			return nil
		},
	}
}

// schemaFiles lists the schema file names directly under dir.
func schemaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema directory(%s): %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml", ".json":
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
