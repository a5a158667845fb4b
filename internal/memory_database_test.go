package internal

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lychee-technology/eureka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDatabaseInsertAndFetch(t *testing.T) {
	db := NewMemoryDatabase(blogRegistry(t))
	attrs := map[string]any{"title": "Hello"}

	stored, err := db.Insert(&eureka.DataRecord{SchemaName: "post", RowID: "p1", Attributes: attrs})
	require.NoError(t, err)
	attrs["title"] = "changed"

	instance, err := db.Fetch(context.Background(), "post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", instance.ID())
	assert.Equal(t, "post", instance.Type())
	assert.Equal(t, "Hello", instance.Get("title"))
	assert.Equal(t, stored, instance)
	assert.Equal(t, 1, db.Len("post"))
	assert.Equal(t, 0, db.Len("author"))
}

func TestMemoryDatabaseReturnsCopies(t *testing.T) {
	db := NewMemoryDatabase(blogRegistry(t))
	ctx := context.Background()

	stored, err := db.Save(ctx, &eureka.DataRecord{SchemaName: "post", RowID: "p1", Attributes: map[string]any{"title": "Hello"}})
	require.NoError(t, err)
	stored.Attributes["title"] = "from save"

	instance, err := db.Fetch(ctx, "post", "p1")
	require.NoError(t, err)
	fetched, ok := instance.(*eureka.DataRecord)
	require.True(t, ok)
	fetched.Attributes["title"] = "from fetch"
	fetched.Attributes["views"] = 3

	again, err := db.Fetch(ctx, "post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", again.Get("title"))
	assert.Nil(t, again.Get("views"))
	assert.NotSame(t, instance, again)
}

func TestMemoryDatabaseInsertOverwrites(t *testing.T) {
	db := NewMemoryDatabase(blogRegistry(t))

	_, err := db.Insert(&eureka.DataRecord{SchemaName: "post", RowID: "p1", Attributes: map[string]any{"title": "v1"}})
	require.NoError(t, err)
	_, err = db.Insert(&eureka.DataRecord{SchemaName: "post", RowID: "p1", Attributes: map[string]any{"title": "v2"}})
	require.NoError(t, err)

	instance, err := db.Fetch(context.Background(), "post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "v2", instance.Get("title"))
	assert.Equal(t, 1, db.Len("post"))
}

func TestMemoryDatabaseGeneratesRowID(t *testing.T) {
	db := NewMemoryDatabase(blogRegistry(t))

	stored, err := db.Save(context.Background(), &eureka.DataRecord{SchemaName: "author"})
	require.NoError(t, err)

	id, err := uuid.Parse(stored.RowID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, map[string]any{}, stored.Attributes)
}

func TestMemoryDatabaseErrors(t *testing.T) {
	db := NewMemoryDatabase(blogRegistry(t))
	ctx := context.Background()

	_, err := db.Insert(nil)
	assert.Error(t, err)

	_, err = db.Insert(&eureka.DataRecord{SchemaName: "user", RowID: "u1"})
	require.Error(t, err)
	assert.True(t, eureka.IsNotFound(err))

	_, err = db.Fetch(ctx, "post", "missing")
	require.Error(t, err)
	var ee *eureka.EurekaError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, eureka.ErrCodeResourceNotFound, ee.Code)
	assert.Equal(t, &eureka.ResourceIdentifier{ID: "missing", Type: "post"}, ee.Resource)

	_, err = db.Fetch(ctx, "user", "u1")
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, eureka.ErrCodeSchemaNotFound, ee.Code)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = db.Fetch(canceled, "post", "p1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = db.Save(canceled, &eureka.DataRecord{SchemaName: "post", RowID: "p1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, db.Len("post"))
}

func TestMemoryDatabaseEmitsFetchLatency(t *testing.T) {
	var (
		mu      sync.Mutex
		sources []string
	)
	RegisterTelemetryEmitter(func(ctx context.Context, name string, labels map[string]string, value any) {
		if name != "eureka_fetch_latency_ms" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		sources = append(sources, labels["source"]+":"+labels["type"])
	})
	t.Cleanup(func() { RegisterTelemetryEmitter(nil) })

	db := NewMemoryDatabase(blogRegistry(t))
	_, _ = db.Fetch(context.Background(), "post", "p1")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"memory:post"}, sources)
}
