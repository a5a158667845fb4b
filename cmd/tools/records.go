package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/factory"
)

// readRecords decodes a JSON array of records, the format written by the
// fixture command.
func readRecords(path string) ([]*eureka.DataRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", path, err)
	}
	var records []*eureka.DataRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records %s: %w", path, err)
	}
	return records, nil
}

func saveRecords(ctx context.Context, store eureka.RecordWriter, records []*eureka.DataRecord) (int, error) {
	for i, record := range records {
		if _, err := store.Save(ctx, record); err != nil {
			return i, fmt.Errorf("save record %d: %w", i, err)
		}
	}
	return len(records), nil
}

// openStore connects the record store named by driver: memory, pgx,
// postgres or duckdb. The returned close function is never nil.
func openStore(ctx context.Context, opts *cliOptions, registry eureka.SchemaRegistry, driver string) (eureka.RecordStore, func() error, error) {
	switch driver {
	case "memory":
		return factory.NewMemoryDatabase(registry), func() error { return nil }, nil
	case "pgx", "postgres", "duckdb":
		enableDriver(opts, driver)
		return factory.OpenRecordStore(ctx, registry, opts.config, driver)
	default:
		return nil, nil, fmt.Errorf("unknown driver %q, want memory, pgx, postgres or duckdb", driver)
	}
}

// enableDriver turns on the DuckDB section when it is chosen on the command
// line.
func enableDriver(opts *cliOptions, driver string) {
	if driver == "duckdb" {
		opts.config.DuckDB.Enabled = true
	}
}
