package eureka

import (
	"net/url"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config consolidates settings for schema loading, validation, serialization
// and the database collaborators.
type Config struct {
	Database   DatabaseConfig   `json:"database"`
	DuckDB     DuckDBConfig     `json:"duckdb"`
	Schemas    SchemaConfigSrc  `json:"schemas"`
	API        APIConfig        `json:"api"`
	Validation ValidationConfig `json:"validation"`
	Fixture    FixtureConfig    `json:"fixture"`
	Logging    LoggingConfig    `json:"logging"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Driver          string        `json:"driver"` // "pgx" (pool) or "postgres" (database/sql + lib/pq)
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Database        string        `json:"database"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"sslMode"`
	UseIAMAuth      bool          `json:"useIamAuth"`
	Region          string        `json:"region"`
	MaxConnections  int           `json:"maxConnections"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime"`
	Timeout         time.Duration `json:"timeout"`
	RecordTable     string        `json:"recordTable"`
}

// DuckDBConfig contains settings for the DuckDB record store. When enabled it
// replaces the Postgres database as the configured store.
type DuckDBConfig struct {
	Enabled        bool   `json:"enabled"`
	DBPath         string `json:"dbPath"` // empty means in-memory
	MaxConnections int    `json:"maxConnections"`
	RecordTable    string `json:"recordTable"`
}

// SchemaConfigSrc says where schema declarations are loaded from
type SchemaConfigSrc struct {
	Directory  string `json:"directory"`
	S3Bucket   string `json:"s3Bucket"`
	S3Prefix   string `json:"s3Prefix"`
	S3Region   string `json:"s3Region"`
	S3Endpoint string `json:"s3Endpoint"`
	// Static credentials; empty means the default AWS credential chain.
	S3AccessKey string `json:"s3AccessKey"`
	S3SecretKey string `json:"s3SecretKey"`
}

// APIConfig contains JSON-API serialization settings
type APIConfig struct {
	BaseURI string `json:"baseUri"`
	Include string `json:"include"` // default include option, see ParseInclude
}

// ValidationConfig holds the defaults used by ModelSchema.Validate
type ValidationConfig struct {
	AbortEarly   bool `json:"abortEarly"`
	Convert      bool `json:"convert"`
	AllowUnknown bool `json:"allowUnknown"`
}

// Options converts the config section into per-call options.
func (v ValidationConfig) Options() *ValidateOptions {
	return &ValidateOptions{
		AbortEarly:   v.AbortEarly,
		Convert:      v.Convert,
		AllowUnknown: v.AllowUnknown,
	}
}

// FixtureConfig controls synthetic data generation
type FixtureConfig struct {
	MaxItems int   `json:"maxItems"`
	Seed     int64 `json:"seed"` // 0 means random
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level"`  // zap level name: debug, info, warn, error, ...
	Format string `json:"format"` // "json" or "console"
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          "pgx",
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxConnections:  25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Timeout:         30 * time.Second,
			RecordTable:     "eureka_records",
		},
		DuckDB: DuckDBConfig{
			Enabled:        false,
			MaxConnections: 1,
			RecordTable:    "eureka_records",
		},
		Schemas: SchemaConfigSrc{
			Directory: "schemas",
		},
		API: APIConfig{
			BaseURI: "http://localhost:8080/api/v1",
		},
		Validation: ValidationConfig{
			AbortEarly:   false,
			Convert:      true,
			AllowUnknown: false,
		},
		Fixture: FixtureConfig{
			MaxItems: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return &ConfigError{Field: "database.driver", Message: "must be one of pgx, postgres"}
	}

	if c.Database.MaxConnections <= 0 {
		return &ConfigError{Field: "database.maxConnections", Message: "must be greater than 0"}
	}

	if c.Database.RecordTable == "" {
		return &ConfigError{Field: "database.recordTable", Message: "must not be empty"}
	}

	if c.DuckDB.Enabled && c.DuckDB.MaxConnections < 1 {
		return &ConfigError{Field: "duckdb.maxConnections", Message: "must be at least 1"}
	}

	if c.Schemas.Directory == "" && c.Schemas.S3Bucket == "" {
		return &ConfigError{Field: "schemas", Message: "either directory or s3Bucket must be set"}
	}

	if (c.Schemas.S3AccessKey == "") != (c.Schemas.S3SecretKey == "") {
		return &ConfigError{Field: "schemas.s3AccessKey", Message: "s3AccessKey and s3SecretKey must be set together"}
	}

	if c.API.BaseURI != "" {
		u, err := url.Parse(c.API.BaseURI)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ConfigError{Field: "api.baseUri", Message: "must be an absolute URI"}
		}
	}

	if c.Fixture.MaxItems < 1 {
		return &ConfigError{Field: "fixture.maxItems", Message: "must be at least 1"}
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error()}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be one of json, console"}
	}

	return nil
}

// StoreDriver names the record store the configuration selects: "duckdb"
// when DuckDB is enabled, otherwise the database driver.
func (c *Config) StoreDriver() string {
	if c.DuckDB.Enabled {
		return "duckdb"
	}
	return c.Database.Driver
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
