package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/lychee-technology/eureka"
	"go.uber.org/zap"
)

// SQLDatabase fetches records through database/sql. It serves the lib/pq
// "postgres" driver and the "duckdb" driver with the same record table
// layout as PostgresDatabase.
type SQLDatabase struct {
	eureka.SchemaRegistry
	db     *sql.DB
	driver string
	table  string
}

// NewSQLDatabase wraps an open handle. driver selects the DDL dialect.
func NewSQLDatabase(registry eureka.SchemaRegistry, db *sql.DB, driver, table string) *SQLDatabase {
	return &SQLDatabase{SchemaRegistry: registry, db: db, driver: driver, table: table}
}

// OpenSQLDatabase opens and pings a database/sql handle.
func OpenSQLDatabase(ctx context.Context, driver, dsn string, maxConns int) (*sql.DB, error) {
	switch driver {
	case "postgres", "duckdb":
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if driver == "duckdb" && dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	zap.S().Infow("sql database opened", "driver", driver, "maxConns", maxConns)
	return db, nil
}

// EnsureRecordTable creates the record table when it does not exist.
func (d *SQLDatabase) EnsureRecordTable(ctx context.Context) error {
	attrType := "JSONB"
	if d.driver == "duckdb" {
		attrType = "VARCHAR"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	schema_name VARCHAR NOT NULL,
	row_id VARCHAR NOT NULL,
	attributes %s NOT NULL,
	PRIMARY KEY (schema_name, row_id)
)`, sanitizeIdentifier(d.table), attrType)
	if _, err := d.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create record table %s: %w", d.table, err)
	}
	return nil
}

func (d *SQLDatabase) Fetch(ctx context.Context, typeName, id string) (eureka.Instance, error) {
	if _, ok := d.Schema(typeName); !ok {
		return nil, eureka.NewSchemaNotFoundError(typeName)
	}
	start := time.Now()
	query := fmt.Sprintf("SELECT attributes FROM %s WHERE schema_name = $1 AND row_id = $2", sanitizeIdentifier(d.table))

	var raw []byte
	err := d.db.QueryRowContext(ctx, query, typeName, id).Scan(&raw)
	EmitFetchLatency(ctx, "sql", typeName, time.Since(start).Milliseconds())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eureka.NewResourceNotFoundError(typeName, id)
		}
		zap.S().Errorw("failed to fetch record", "driver", d.driver, "type", typeName, "id", id, "error", err)
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", typeName, id, err)
	}
	return decodeRecord(typeName, id, raw)
}

// Save upserts record. An empty RowID is replaced by a new UUIDv7.
func (d *SQLDatabase) Save(ctx context.Context, record *eureka.DataRecord) (*eureka.DataRecord, error) {
	stored, err := prepareRecord(d, record)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(stored.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes of %s/%s: %w", stored.SchemaName, stored.RowID, err)
	}
	if _, err := d.db.ExecContext(ctx, upsertRecordSQL(d.table), stored.SchemaName, stored.RowID, string(raw)); err != nil {
		return nil, fmt.Errorf("failed to save %s/%s: %w", stored.SchemaName, stored.RowID, err)
	}
	return stored, nil
}

// Close closes the underlying handle.
func (d *SQLDatabase) Close() error {
	return d.db.Close()
}
