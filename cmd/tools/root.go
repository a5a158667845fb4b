package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/factory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliOptions carries the configuration shared by every subcommand.
type cliOptions struct {
	config *eureka.Config
	debug  bool
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{config: configFromEnv()}

	root := &cobra.Command{
		Use:   "eureka-tools",
		Short: "Operate on eureka schemas and records",
		Long: `eureka-tools loads record schemas from a directory or S3, validates
objects against them, generates fixtures and renders stored records as
JSON-API documents.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.config.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(opts.config.Logging, opts.debug)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}
			opts.logger = logger
			zap.ReplaceGlobals(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cfg := opts.config
	flags := root.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "enable development logging")
	flags.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "log level: debug, info, warn or error")
	flags.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "log encoding: json or console")
	flags.StringVar(&cfg.Schemas.Directory, "schema-dir", cfg.Schemas.Directory, "directory containing schema files")
	flags.StringVar(&cfg.Schemas.S3Bucket, "s3-bucket", cfg.Schemas.S3Bucket, "load schemas from this S3 bucket instead of a directory")
	flags.StringVar(&cfg.Schemas.S3Prefix, "s3-prefix", cfg.Schemas.S3Prefix, "key prefix of schema objects")
	flags.StringVar(&cfg.Schemas.S3Region, "s3-region", cfg.Schemas.S3Region, "S3 region")
	flags.StringVar(&cfg.Schemas.S3Endpoint, "s3-endpoint", cfg.Schemas.S3Endpoint, "custom S3 endpoint (MinIO, LocalStack)")

	root.AddCommand(
		newCheckCmd(opts),
		newFixtureCmd(opts),
		newValidateCmd(opts),
		newRenderCmd(opts),
		newJSONSchemaCmd(opts),
		newPublishSchemasCmd(opts),
		newInitDBCmd(opts),
	)
	return root
}

// configFromEnv layers environment variables over the defaults.
func configFromEnv() *eureka.Config {
	cfg := eureka.DefaultConfig()
	cfg.Database.Driver = getenvDefault("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getenvDefault("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getenvDefaultInt("DB_PORT", cfg.Database.Port)
	cfg.Database.Database = getenvDefault("DB_NAME", "eureka")
	cfg.Database.Username = getenvDefault("DB_USER", "postgres")
	cfg.Database.Password = getenvDefault("DB_PASSWORD", "")
	cfg.Database.SSLMode = getenvDefault("DB_SSL_MODE", cfg.Database.SSLMode)
	cfg.Database.UseIAMAuth = getenvDefault("DB_USE_IAM_AUTH", "") == "true"
	cfg.Database.Region = getenvDefault("AWS_REGION", "")
	cfg.Database.RecordTable = getenvDefault("RECORD_TABLE", cfg.Database.RecordTable)
	cfg.DuckDB.Enabled = getenvDefault("DUCKDB_ENABLED", "") == "true"
	cfg.DuckDB.DBPath = getenvDefault("DUCKDB_PATH", "")
	cfg.DuckDB.RecordTable = getenvDefault("RECORD_TABLE", cfg.DuckDB.RecordTable)
	cfg.Schemas.Directory = getenvDefault("SCHEMA_DIR", cfg.Schemas.Directory)
	cfg.Schemas.S3Bucket = getenvDefault("SCHEMA_S3_BUCKET", "")
	cfg.Schemas.S3Prefix = getenvDefault("SCHEMA_S3_PREFIX", "")
	cfg.Schemas.S3Region = getenvDefault("AWS_REGION", "")
	cfg.Schemas.S3Endpoint = getenvDefault("S3_ENDPOINT", "")
	cfg.Schemas.S3AccessKey = getenvDefault("S3_ACCESS_KEY", "")
	cfg.Schemas.S3SecretKey = getenvDefault("S3_SECRET_KEY", "")
	cfg.API.BaseURI = getenvDefault("API_BASE_URI", cfg.API.BaseURI)
	cfg.Logging.Level = getenvDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getenvDefault("LOG_FORMAT", cfg.Logging.Format)
	return cfg
}

// newLogger builds the process logger from the logging section. --debug
// switches to the development config at debug level.
func newLogger(cfg eureka.LoggingConfig, debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	zcfg.Encoding = cfg.Format
	return zcfg.Build()
}

func loadRegistry(ctx context.Context, opts *cliOptions) (eureka.SchemaRegistry, error) {
	registry, err := factory.LoadSchemas(ctx, opts.config)
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}
	return registry, nil
}

func lookupSchema(registry eureka.SchemaRegistry, name string) (eureka.ModelSchema, error) {
	schema, ok := registry.Schema(name)
	if !ok {
		return nil, eureka.NewSchemaNotFoundError(name)
	}
	return schema, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getenvDefaultInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}
