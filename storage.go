package eureka

import "context"

// Database is the collaborator consumed by serialization: a schema registry
// that can also fetch model instances.
type Database interface {
	SchemaRegistry
	Fetcher
}

// RecordStore is a Database that also accepts records.
type RecordStore interface {
	Database
	RecordWriter
}

// RecordWriter persists records. Every bundled database implements it.
type RecordWriter interface {
	// Save upserts record, assigning an id when RowID is empty, and returns
	// the stored copy.
	Save(ctx context.Context, record *DataRecord) (*DataRecord, error)
}
