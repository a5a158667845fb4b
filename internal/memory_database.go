package internal

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lychee-technology/eureka"
)

// MemoryDatabase keeps records in process. It backs tests, fixtures and the
// CLI when no SQL database is configured.
type MemoryDatabase struct {
	eureka.SchemaRegistry
	mu      sync.RWMutex
	records map[string]map[string]*eureka.DataRecord
}

// NewMemoryDatabase creates an empty database over registry.
func NewMemoryDatabase(registry eureka.SchemaRegistry) *MemoryDatabase {
	return &MemoryDatabase{
		SchemaRegistry: registry,
		records:        make(map[string]map[string]*eureka.DataRecord),
	}
}

// Insert stores a copy of record and returns another copy. An empty RowID is
// replaced by a new UUIDv7. Existing records with the same id are
// overwritten.
func (d *MemoryDatabase) Insert(record *eureka.DataRecord) (*eureka.DataRecord, error) {
	stored, err := prepareRecord(d, record)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	byID, ok := d.records[stored.SchemaName]
	if !ok {
		byID = make(map[string]*eureka.DataRecord)
		d.records[stored.SchemaName] = byID
	}
	byID[stored.RowID] = stored
	return cloneRecord(stored), nil
}

// Save is Insert with the signature shared by the SQL-backed databases.
func (d *MemoryDatabase) Save(ctx context.Context, record *eureka.DataRecord) (*eureka.DataRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Insert(record)
}

// prepareRecord checks the schema of record and returns a copy with a row id.
func prepareRecord(registry eureka.SchemaRegistry, record *eureka.DataRecord) (*eureka.DataRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("record is nil")
	}
	if _, ok := registry.Schema(record.SchemaName); !ok {
		return nil, eureka.NewSchemaNotFoundError(record.SchemaName)
	}
	stored := cloneRecord(record)
	if stored.Attributes == nil {
		stored.Attributes = map[string]any{}
	}
	if stored.RowID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate record id: %w", err)
		}
		stored.RowID = id.String()
	}
	return stored, nil
}

// cloneRecord copies the top-level attributes of record. Callers never see
// the map held by the store.
func cloneRecord(record *eureka.DataRecord) *eureka.DataRecord {
	return &eureka.DataRecord{
		SchemaName: record.SchemaName,
		RowID:      record.RowID,
		Attributes: maps.Clone(record.Attributes),
	}
}

func (d *MemoryDatabase) Fetch(ctx context.Context, typeName, id string) (eureka.Instance, error) {
	start := time.Now()
	defer func() { EmitFetchLatency(ctx, "memory", typeName, time.Since(start).Milliseconds()) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := d.Schema(typeName); !ok {
		return nil, eureka.NewSchemaNotFoundError(typeName)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	record, ok := d.records[typeName][id]
	if !ok {
		return nil, eureka.NewResourceNotFoundError(typeName, id)
	}
	return cloneRecord(record), nil
}

// Len returns the number of stored records of typeName.
func (d *MemoryDatabase) Len(typeName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records[typeName])
}
