package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lychee-technology/eureka"
	"go.uber.org/zap"
)

type recordPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresDatabase fetches records from a single JSONB record table keyed by
// (schema_name, row_id) through a pgx pool.
type PostgresDatabase struct {
	eureka.SchemaRegistry
	pool  recordPool
	table string
}

// NewPostgresDatabase creates a database reading from table.
func NewPostgresDatabase(registry eureka.SchemaRegistry, pool recordPool, table string) *PostgresDatabase {
	return &PostgresDatabase{SchemaRegistry: registry, pool: pool, table: table}
}

// EnsureRecordTable creates the record table when it does not exist.
func (d *PostgresDatabase) EnsureRecordTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	schema_name TEXT NOT NULL,
	row_id TEXT NOT NULL,
	attributes JSONB NOT NULL DEFAULT '{}'::jsonb,
	PRIMARY KEY (schema_name, row_id)
)`, sanitizeIdentifier(d.table))
	if _, err := d.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create record table %s: %w", d.table, err)
	}
	return nil
}

func (d *PostgresDatabase) Fetch(ctx context.Context, typeName, id string) (eureka.Instance, error) {
	if _, ok := d.Schema(typeName); !ok {
		return nil, eureka.NewSchemaNotFoundError(typeName)
	}
	start := time.Now()
	query := fmt.Sprintf("SELECT attributes FROM %s WHERE schema_name = $1 AND row_id = $2", sanitizeIdentifier(d.table))

	var raw []byte
	err := d.pool.QueryRow(ctx, query, typeName, id).Scan(&raw)
	EmitFetchLatency(ctx, "pgx", typeName, time.Since(start).Milliseconds())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eureka.NewResourceNotFoundError(typeName, id)
		}
		zap.S().Errorw("failed to fetch record", "type", typeName, "id", id, "error", err)
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", typeName, id, err)
	}
	return decodeRecord(typeName, id, raw)
}

// Save upserts record. An empty RowID is replaced by a new UUIDv7.
func (d *PostgresDatabase) Save(ctx context.Context, record *eureka.DataRecord) (*eureka.DataRecord, error) {
	stored, err := prepareRecord(d, record)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(stored.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes of %s/%s: %w", stored.SchemaName, stored.RowID, err)
	}
	if _, err := d.pool.Exec(ctx, upsertRecordSQL(d.table), stored.SchemaName, stored.RowID, raw); err != nil {
		return nil, fmt.Errorf("failed to save %s/%s: %w", stored.SchemaName, stored.RowID, err)
	}
	return stored, nil
}

func upsertRecordSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (schema_name, row_id, attributes) VALUES ($1, $2, $3)
ON CONFLICT (schema_name, row_id) DO UPDATE SET attributes = EXCLUDED.attributes`, sanitizeIdentifier(table))
}

// decodeRecord builds a DataRecord from stored JSON attributes.
func decodeRecord(typeName, id string, raw []byte) (*eureka.DataRecord, error) {
	attrs := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &attrs); err != nil {
			return nil, eureka.NewInternalError(fmt.Sprintf("attributes of %s/%s are not a JSON object", typeName, id), err)
		}
	}
	return &eureka.DataRecord{SchemaName: typeName, RowID: id, Attributes: attrs}, nil
}
