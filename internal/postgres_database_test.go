package internal

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/eureka"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fetchRecordSQL = `SELECT attributes FROM "eureka_records" WHERE schema_name = $1 AND row_id = $2`

func newPostgresMock(t *testing.T) (*PostgresDatabase, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresDatabase(blogRegistry(t), mock, "eureka_records"), mock
}

func TestPostgresDatabaseFetch(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(fetchRecordSQL)).
		WithArgs("post", "p1").
		WillReturnRows(pgxmock.NewRows([]string{"attributes"}).AddRow([]byte(`{"title":"Hello","views":3}`)))

	instance, err := db.Fetch(context.Background(), "post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", instance.ID())
	assert.Equal(t, "post", instance.Type())
	assert.Equal(t, "Hello", instance.Get("title"))
	assert.Equal(t, float64(3), instance.Get("views"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDatabaseFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock pgxmock.PgxPoolIface)
		typeName string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "no rows",
			typeName: "post",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(fetchRecordSQL)).WithArgs("post", "p1").WillReturnError(pgx.ErrNoRows)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, eureka.IsNotFound(err))
			},
		},
		{
			name:     "query failure",
			typeName: "post",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(fetchRecordSQL)).WithArgs("post", "p1").WillReturnError(errors.New("connection reset"))
			},
			check: func(t *testing.T, err error) {
				assert.False(t, eureka.IsNotFound(err))
				assert.Contains(t, err.Error(), "post/p1")
				assert.Contains(t, err.Error(), "connection reset")
			},
		},
		{
			name:     "attributes not an object",
			typeName: "post",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(fetchRecordSQL)).WithArgs("post", "p1").
					WillReturnRows(pgxmock.NewRows([]string{"attributes"}).AddRow([]byte(`[1,2]`)))
			},
			check: func(t *testing.T, err error) {
				var ee *eureka.EurekaError
				require.ErrorAs(t, err, &ee)
				assert.Equal(t, eureka.ErrCodeInternalError, ee.Code)
			},
		},
		{
			name:     "unknown schema skips the query",
			typeName: "user",
			setup:    func(mock pgxmock.PgxPoolIface) {},
			check: func(t *testing.T, err error) {
				var ee *eureka.EurekaError
				require.ErrorAs(t, err, &ee)
				assert.Equal(t, eureka.ErrCodeSchemaNotFound, ee.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newPostgresMock(t)
			tt.setup(mock)

			_, err := db.Fetch(context.Background(), tt.typeName, "p1")
			require.Error(t, err)
			tt.check(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresDatabaseSave(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertRecordSQL("eureka_records"))).
		WithArgs("post", "p1", []byte(`{"title":"Hello"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	stored, err := db.Save(context.Background(), &eureka.DataRecord{SchemaName: "post", RowID: "p1", Attributes: map[string]any{"title": "Hello"}})
	require.NoError(t, err)
	assert.Equal(t, "p1", stored.RowID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDatabaseSaveErrors(t *testing.T) {
	db, mock := newPostgresMock(t)

	_, err := db.Save(context.Background(), &eureka.DataRecord{SchemaName: "user"})
	assert.True(t, eureka.IsNotFound(err))

	mock.ExpectExec("INSERT INTO").
		WithArgs("author", pgxmock.AnyArg(), []byte(`{}`)).
		WillReturnError(errors.New("disk full"))

	_, err = db.Save(context.Background(), &eureka.DataRecord{SchemaName: "author"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDatabaseEnsureRecordTable(t *testing.T) {
	db, mock := newPostgresMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "eureka_records"`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, db.EnsureRecordTable(context.Background()))

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	err := db.EnsureRecordTable(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eureka_records")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRecordSQL(t *testing.T) {
	assert.Equal(t, `INSERT INTO "public"."records" (schema_name, row_id, attributes) VALUES ($1, $2, $3)
ON CONFLICT (schema_name, row_id) DO UPDATE SET attributes = EXCLUDED.attributes`, upsertRecordSQL("public.records"))
}

func TestDecodeRecord(t *testing.T) {
	record, err := decodeRecord("post", "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, record.Attributes)

	record, err = decodeRecord("post", "p1", []byte(`{"tags":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, record.Get("tags"))

	_, err = decodeRecord("post", "p1", []byte(`not json`))
	assert.Error(t, err)
}
