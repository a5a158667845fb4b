package e2e_harness

import (
	"context"
	"testing"
	"time"

	"github.com/lychee-technology/eureka"
	"github.com/lychee-technology/eureka/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2EHarnessSchemasFromS3RecordsFromPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E harness in -short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	h := &TestHarness{}

	// Start S3 and publish the schemas
	if _, err := h.StartS3(ctx); err != nil {
		t.Fatalf("start minio: %v", err)
	}
	defer h.StopS3(ctx)

	src := h.SchemaSource("schemas", "blog")
	client, err := factory.NewS3Client(ctx, src)
	require.NoError(t, err)
	require.NoError(t, UploadSchemas(ctx, client, src.S3Bucket, src.S3Prefix, Schemas))

	registry, err := factory.LoadSchemasFromS3(ctx, src)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"author", "comment", "post"}, registry.ListSchemas())

	// Start Postgres and seed the record table
	dbConfig, err := h.StartPostgres(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	defer h.StopPostgres(ctx)

	pool, err := factory.NewPostgresPool(ctx, dbConfig)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, factory.InitRecordTable(ctx, pool, dbConfig.RecordTable))

	store := factory.NewPostgresDatabase(registry, pool, dbConfig.RecordTable)
	require.NoError(t, SeedRecords(ctx, store, Records))

	post, err := store.Fetch(ctx, "post", "p1")
	require.NoError(t, err)

	builder := factory.NewJSONAPIBuilder(store, "https://api.example.com/v1", eureka.IncludeAll())
	doc, err := builder.Build(ctx, post)
	require.NoError(t, err)

	resource, ok := doc.Resource()
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com/v1/post/p1", resource.Links.Self)
	assert.Equal(t, map[string]any{"title": "Hello", "views": float64(3)}, resource.Attributes)

	included := make([]eureka.ResourceIdentifier, 0, len(doc.Included))
	for _, r := range doc.Included {
		included = append(included, r.Identifier())
	}
	assert.Equal(t, []eureka.ResourceIdentifier{
		{ID: "a1", Type: "author"},
		{ID: "c1", Type: "comment"},
		{ID: "c2", Type: "comment"},
	}, included)

	// The lib/pq path reads the same table
	config := eureka.DefaultConfig()
	config.Database = dbConfig
	sqlStore, closeStore, err := factory.NewSQLDatabase(ctx, registry, config, "postgres")
	require.NoError(t, err)
	defer closeStore()

	author, err := sqlStore.Fetch(ctx, "author", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", author.Get("name"))

	_, err = sqlStore.Fetch(ctx, "author", "missing")
	assert.True(t, eureka.IsNotFound(err))
}
