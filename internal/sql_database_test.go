package internal

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lychee-technology/eureka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T, driver string) (*SQLDatabase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLDatabase(blogRegistry(t), db, driver, "eureka_records"), mock
}

func TestSQLDatabaseFetch(t *testing.T) {
	db, mock := newSQLMock(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta(fetchRecordSQL)).
		WithArgs("author", "a1").
		WillReturnRows(sqlmock.NewRows([]string{"attributes"}).AddRow(`{"name":"Ann"}`))

	instance, err := db.Fetch(context.Background(), "author", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", instance.Get("name"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDatabaseFetchErrors(t *testing.T) {
	db, mock := newSQLMock(t, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta(fetchRecordSQL)).
		WithArgs("author", "missing").
		WillReturnError(sql.ErrNoRows)
	_, err := db.Fetch(context.Background(), "author", "missing")
	assert.True(t, eureka.IsNotFound(err))

	mock.ExpectQuery(regexp.QuoteMeta(fetchRecordSQL)).
		WithArgs("author", "a1").
		WillReturnError(errors.New("bad connection"))
	_, err = db.Fetch(context.Background(), "author", "a1")
	require.Error(t, err)
	assert.False(t, eureka.IsNotFound(err))
	assert.Contains(t, err.Error(), "bad connection")

	_, err = db.Fetch(context.Background(), "user", "u1")
	var ee *eureka.EurekaError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, eureka.ErrCodeSchemaNotFound, ee.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDatabaseSave(t *testing.T) {
	db, mock := newSQLMock(t, "postgres")

	mock.ExpectExec(regexp.QuoteMeta(upsertRecordSQL("eureka_records"))).
		WithArgs("comment", sqlmock.AnyArg(), `{"body":"Nice"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stored, err := db.Save(context.Background(), &eureka.DataRecord{SchemaName: "comment", Attributes: map[string]any{"body": "Nice"}})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.RowID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDatabaseEnsureRecordTableDialect(t *testing.T) {
	tests := []struct {
		driver   string
		wantType string
	}{
		{driver: "postgres", wantType: "attributes JSONB NOT NULL"},
		{driver: "duckdb", wantType: "attributes VARCHAR NOT NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			db, mock := newSQLMock(t, tt.driver)
			mock.ExpectExec(regexp.QuoteMeta(tt.wantType)).WillReturnResult(sqlmock.NewResult(0, 0))

			require.NoError(t, db.EnsureRecordTable(context.Background()))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOpenSQLDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQLDatabase(context.Background(), "mysql", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported sql driver "mysql"`)
}

func TestSQLDatabaseDuckDBRoundTrip(t *testing.T) {
	ctx := context.Background()
	handle, err := OpenSQLDatabase(ctx, "duckdb", "", 1)
	require.NoError(t, err)

	db := NewSQLDatabase(blogRegistry(t), handle, "duckdb", "eureka_records")
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureRecordTable(ctx))
	require.NoError(t, db.EnsureRecordTable(ctx))

	_, err = db.Save(ctx, &eureka.DataRecord{SchemaName: "post", RowID: "p1", Attributes: map[string]any{
		"title":  "Hello",
		"tags":   []any{"go", "sql"},
		"author": map[string]any{"id": "a1", "type": "author"},
	}})
	require.NoError(t, err)

	instance, err := db.Fetch(ctx, "post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", instance.Get("title"))
	assert.Equal(t, []any{"go", "sql"}, instance.Get("tags"))
	assert.Equal(t, map[string]any{"id": "a1", "type": "author"}, instance.Get("author"))

	_, err = db.Save(ctx, &eureka.DataRecord{SchemaName: "post", RowID: "p1", Attributes: map[string]any{"title": "Updated"}})
	require.NoError(t, err)
	instance, err = db.Fetch(ctx, "post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", instance.Get("title"))
	assert.Nil(t, instance.Get("tags"))

	_, err = db.Fetch(ctx, "post", "p2")
	assert.True(t, eureka.IsNotFound(err))
}
