package factory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/internal"
	"go.uber.org/zap"
)

// NewRegistry registers the given schema declarations and checks that every
// relation target resolves.
//
// Usage:
//
//	import (
//	    "github.com/lychee-technology/eureka"
//	    "github.com/lychee-technology/eureka/factory"
//	)
//
//	registry, err := factory.NewRegistry([]eureka.SchemaConfig{postConfig, authorConfig})
//	if err != nil {
//	    // handle error
//	}
//	post, _ := registry.Schema("post")
//	value, err := post.Validate(input, nil)
func NewRegistry(configs []eureka.SchemaConfig) (eureka.SchemaRegistry, error) {
	registry, err := internal.LoadRegistry(configs)
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// LoadSchemaDirectory registers every *.yaml, *.yml and *.json schema file in
// dir. Each file is one schema named after the file.
func LoadSchemaDirectory(dir string) (eureka.SchemaRegistry, error) {
	configs, err := internal.LoadSchemaDir(dir)
	if err != nil {
		return nil, err
	}
	return NewRegistry(configs)
}

// LoadSchemasFromS3 registers every schema object under bucket/prefix.
func LoadSchemasFromS3(ctx context.Context, src eureka.SchemaConfigSrc) (eureka.SchemaRegistry, error) {
	client, err := NewS3Client(ctx, src)
	if err != nil {
		return nil, err
	}
	configs, err := internal.NewS3SchemaSource(client, src.S3Bucket, src.S3Prefix).Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewRegistry(configs)
}

// LoadSchemas picks the configured schema source. S3 wins when a bucket is
// set.
func LoadSchemas(ctx context.Context, config *eureka.Config) (eureka.SchemaRegistry, error) {
	if config.Schemas.S3Bucket != "" {
		return LoadSchemasFromS3(ctx, config.Schemas)
	}
	return LoadSchemaDirectory(config.Schemas.Directory)
}

// NewS3Client builds an S3 client for the schema source. Without static
// keys the default AWS credential chain is used. A custom endpoint (MinIO,
// LocalStack) switches to path-style addressing.
func NewS3Client(ctx context.Context, src eureka.SchemaConfigSrc) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if src.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(src.S3Region))
	}
	if src.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(src.S3AccessKey, src.S3SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if src.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(src.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewMemoryDatabase creates an in-process database over registry.
func NewMemoryDatabase(registry eureka.SchemaRegistry) eureka.RecordStore {
	return internal.NewMemoryDatabase(registry)
}

// NewPostgresDatabase creates a database reading the record table through a
// pgx pool.
func NewPostgresDatabase(registry eureka.SchemaRegistry, pool *pgxpool.Pool, table string) eureka.RecordStore {
	return internal.NewPostgresDatabase(registry, pool, table)
}

// InitRecordTable creates the record table read by NewPostgresDatabase.
func InitRecordTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	return internal.NewPostgresDatabase(nil, pool, table).EnsureRecordTable(ctx)
}

// NewSQLDatabase opens a database/sql handle for driver "postgres" (lib/pq)
// or "duckdb" and returns a database over it with its close function. The
// duckdb driver requires config.DuckDB.Enabled.
func NewSQLDatabase(ctx context.Context, registry eureka.SchemaRegistry, config *eureka.Config, driver string) (eureka.RecordStore, func() error, error) {
	var (
		dsn      string
		table    string
		maxConns int
	)
	switch driver {
	case "postgres":
		password, err := databasePassword(ctx, config.Database)
		if err != nil {
			return nil, nil, err
		}
		dsn = connectionString(config.Database, password)
		table = config.Database.RecordTable
		maxConns = config.Database.MaxConnections
	case "duckdb":
		if !config.DuckDB.Enabled {
			return nil, nil, &eureka.ConfigError{Field: "duckdb.enabled", Message: "duckdb store requested but disabled"}
		}
		dsn = config.DuckDB.DBPath
		table = config.DuckDB.RecordTable
		maxConns = config.DuckDB.MaxConnections
	default:
		return nil, nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := internal.OpenSQLDatabase(ctx, driver, dsn, maxConns)
	if err != nil {
		return nil, nil, err
	}
	database := internal.NewSQLDatabase(registry, db, driver, table)
	if driver == "duckdb" {
		if err := database.EnsureRecordTable(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return database, database.Close, nil
}

// OpenRecordStore opens the record store named by driver ("pgx", "postgres"
// or "duckdb"); an empty driver means config.StoreDriver(). The returned
// function releases the underlying connections.
func OpenRecordStore(ctx context.Context, registry eureka.SchemaRegistry, config *eureka.Config, driver string) (eureka.RecordStore, func() error, error) {
	if driver == "" {
		driver = config.StoreDriver()
	}
	switch driver {
	case "pgx":
		pool, err := NewPostgresPool(ctx, config.Database)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() error {
			pool.Close()
			return nil
		}
		return internal.NewPostgresDatabase(registry, pool, config.Database.RecordTable), closeFn, nil
	case "postgres", "duckdb":
		return NewSQLDatabase(ctx, registry, config, driver)
	default:
		return nil, nil, fmt.Errorf("unknown driver %q, want pgx, postgres or duckdb", driver)
	}
}

// InitRecordStore opens the record store like OpenRecordStore and creates
// its record table when missing.
func InitRecordStore(ctx context.Context, registry eureka.SchemaRegistry, config *eureka.Config, driver string) (eureka.RecordStore, func() error, error) {
	store, closeFn, err := OpenRecordStore(ctx, registry, config, driver)
	if err != nil {
		return nil, nil, err
	}
	var ensure error
	switch db := store.(type) {
	case *internal.PostgresDatabase:
		ensure = db.EnsureRecordTable(ctx)
	case *internal.SQLDatabase:
		ensure = db.EnsureRecordTable(ctx)
	}
	if ensure != nil {
		closeFn()
		return nil, nil, ensure
	}
	return store, closeFn, nil
}

// NewPostgresPool creates a pgx pool from config. With UseIAMAuth the
// password is replaced by an Aurora DSQL connect token.
func NewPostgresPool(ctx context.Context, config eureka.DatabaseConfig) (*pgxpool.Pool, error) {
	password, err := databasePassword(ctx, config)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(connectionString(config, password))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(config.MaxConnections)
	poolConfig.MinConns = int32(config.MaxIdleConns)
	poolConfig.MaxConnLifetime = config.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = config.ConnMaxIdleTime
	poolConfig.ConnConfig.ConnectTimeout = config.Timeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func databasePassword(ctx context.Context, config eureka.DatabaseConfig) (string, error) {
	if !config.UseIAMAuth {
		return config.Password, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}
	endpoint := config.Host + ":" + strconv.Itoa(config.Port)
	token, err := auth.GenerateDbConnectAuthToken(ctx, endpoint, awsCfg.Region, awsCfg.Credentials)
	if err != nil {
		return "", fmt.Errorf("generate dsql auth token: %w", err)
	}
	zap.S().Infow("generated IAM auth token for Postgres connection (dsql)", "host", config.Host)
	return token, nil
}

func connectionString(config eureka.DatabaseConfig, password string) string {
	var userInfo *url.Userinfo
	if password != "" {
		userInfo = url.UserPassword(config.Username, password)
	} else {
		userInfo = url.User(config.Username)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/" + config.Database,
	}

	q := url.Values{}
	if config.SSLMode != "" {
		q.Set("sslmode", config.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// NewJSONAPIBuilder creates a document builder. Preconditions are checked
// when a document is built.
func NewJSONAPIBuilder(database eureka.Database, baseURI string, include eureka.Include) eureka.DocumentBuilder {
	return internal.NewJSONAPIBuilder(database, baseURI, include)
}

// NewFixtureSource creates a fixture generator from config. Seed 0 draws
// from the global random source.
func NewFixtureSource(config eureka.FixtureConfig) eureka.FixtureSource {
	return internal.NewFixtureGenerator(config.Seed, config.MaxItems)
}

// ValidatePayload checks the shape of an inbound JSON-API document.
func ValidatePayload(payload any) error {
	return internal.ValidatePayload(payload)
}

// DecodePayload validates an inbound JSON-API document and flattens it into
// an object suitable for ModelSchema.Validate.
func DecodePayload(payload any) (map[string]any, error) {
	return internal.DecodePayload(payload)
}
