package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/lychee-technology/eureka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const postSchema = `properties:
  title:
    type: string
    validations:
      - required
      - max: 20
  views: integer
  author: author
  tags:
    type: string
    multi: true
`

const authorSchema = `name:
  type: string
  validations: [required]
`

const records = `[
  {"schemaName": "author", "rowId": "a1", "attributes": {"name": "Ann"}},
  {"schemaName": "post", "rowId": "p1", "attributes": {"title": "Hello", "author": "a1", "tags": ["go"]}}
]`

func writeSchemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.yaml"), []byte(postSchema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "author.yml"), []byte(authorSchema), 0o644))
	return dir
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SCHEMA_S3_BUCKET", "")
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckCommand(t *testing.T) {
	dir := writeSchemaDir(t)

	out, _, err := runCLI(t, "check", "--schema-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "post: 4 properties, 1 relations")
	assert.Contains(t, out, "author: 1 properties, 0 relations")
	assert.Contains(t, out, "2 schemas ok")
}

func TestCheckCommandUnresolvedRelation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.yaml"), []byte(postSchema), 0o644))

	_, _, err := runCLI(t, "check", "--schema-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author")
}

func TestFixtureCommandIsReproducibleWithSeed(t *testing.T) {
	dir := writeSchemaDir(t)

	first, _, err := runCLI(t, "fixture", "post", "--schema-dir", dir, "--count", "3", "--seed", "42")
	require.NoError(t, err)
	second, _, err := runCLI(t, "fixture", "post", "--schema-dir", dir, "--count", "3", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var generated []map[string]any
	require.NoError(t, json.Unmarshal([]byte(first), &generated))
	require.Len(t, generated, 3)
	for _, record := range generated {
		assert.Equal(t, "post", record["schemaName"])
		attrs := record["attributes"].(map[string]any)
		assert.Contains(t, attrs, "title")
		assert.NotContains(t, attrs, "author")
	}
}

func TestFixtureCommandUnknownSchema(t *testing.T) {
	dir := writeSchemaDir(t)

	_, _, err := runCLI(t, "fixture", "comment", "--schema-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comment")
}

func TestValidateCommand(t *testing.T) {
	dir := writeSchemaDir(t)

	tests := []struct {
		name       string
		input      string
		args       []string
		wantErr    bool
		wantOut    string
		wantStderr string
	}{
		{
			name:    "converts numeric strings",
			input:   `{"title": "Hello", "views": "3"}`,
			wantOut: `"views": 3`,
		},
		{
			name:       "reports missing required field",
			input:      `{"views": 3}`,
			wantErr:    true,
			wantStderr: `"title" is required`,
		},
		{
			name:       "rejects unknown keys",
			input:      `{"title": "Hello", "color": "red"}`,
			wantErr:    true,
			wantStderr: `"color" is not allowed`,
		},
		{
			name:    "accepts unknown keys when allowed",
			input:   `{"title": "Hello", "color": "red"}`,
			args:    []string{"--allow-unknown"},
			wantOut: `"color": "red"`,
		},
		{
			name:       "no-convert keeps strict types",
			input:      `{"title": "Hello", "views": "3"}`,
			args:       []string{"--no-convert"},
			wantErr:    true,
			wantStderr: `"views" must be a number`,
		},
		{
			name:    "jsonapi payload",
			input:   `{"data": {"type": "post", "id": "p1", "attributes": {"title": "Hello"}, "relationships": {"author": {"data": {"type": "author", "id": "a1"}}}}}`,
			args:    []string{"--jsonapi"},
			wantOut: `"title": "Hello"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeFile(t, "input.json", tt.input)
			args := append([]string{"validate", "post", file, "--schema-dir", dir}, tt.args...)

			out, stderr, err := runCLI(t, args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, stderr, tt.wantStderr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestRenderCommandMemoryDriver(t *testing.T) {
	dir := writeSchemaDir(t)
	recordsFile := writeFile(t, "records.json", records)

	out, _, err := runCLI(t, "render", "post", "p1",
		"--schema-dir", dir,
		"--driver", "memory",
		"--records", recordsFile,
		"--include", "all",
		"--base-uri", "https://api.example.com/v1")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	data := doc["data"].(map[string]any)
	assert.Equal(t, "p1", data["id"])
	assert.Equal(t, "https://api.example.com/v1/post/p1", data["links"].(map[string]any)["self"])
	rel := data["relationships"].(map[string]any)["author"].(map[string]any)
	assert.Equal(t, map[string]any{"id": "a1", "type": "author"}, rel["data"])

	included := doc["included"].([]any)
	require.Len(t, included, 1)
	assert.Equal(t, "a1", included[0].(map[string]any)["id"])
}

func TestRenderCommandWithoutInclude(t *testing.T) {
	dir := writeSchemaDir(t)
	recordsFile := writeFile(t, "records.json", records)

	out, _, err := runCLI(t, "render", "post", "p1", "--schema-dir", dir, "--driver", "memory", "--records", recordsFile)
	require.NoError(t, err)
	assert.NotContains(t, out, `"included"`)
}

func TestRenderCommandUsesConfiguredDuckDB(t *testing.T) {
	dir := writeSchemaDir(t)
	recordsFile := writeFile(t, "records.json", records)
	t.Setenv("DUCKDB_ENABLED", "true")
	t.Setenv("DUCKDB_PATH", "")

	out, _, err := runCLI(t, "render", "author", "a1", "--schema-dir", dir, "--records", recordsFile)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	data := doc["data"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Ann"}, data["attributes"])
}

func TestInitDBCommandDuckDB(t *testing.T) {
	dir := writeSchemaDir(t)
	recordsFile := writeFile(t, "records.json", records)
	dbPath := filepath.Join(t.TempDir(), "records.duckdb")
	t.Setenv("DUCKDB_PATH", dbPath)

	out, _, err := runCLI(t, "init-db", "--driver", "duckdb", "--schema-dir", dir, "--records", recordsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Created record table: eureka_records (duckdb)")
	assert.Contains(t, out, "Seeded records, count: 2")

	out, _, err = runCLI(t, "render", "author", "a1", "--schema-dir", dir, "--driver", "duckdb")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Ann"`)
}

func TestRootCommandValidatesConfig(t *testing.T) {
	dir := writeSchemaDir(t)

	tests := []struct {
		name      string
		env       map[string]string
		args      []string
		wantField string
	}{
		{name: "relative base uri", env: map[string]string{"API_BASE_URI": "/api"}, wantField: "api.baseUri"},
		{name: "unknown database driver", env: map[string]string{"DB_DRIVER": "mysql"}, wantField: "database.driver"},
		{name: "unknown log level", args: []string{"--log-level", "loud"}, wantField: "logging.level"},
		{name: "unknown log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantField: "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := append([]string{"check", "--schema-dir", dir}, tt.args...)
			_, _, err := runCLI(t, args...)
			require.Error(t, err)
			var configErr *eureka.ConfigError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.wantField, configErr.Field)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(eureka.LoggingConfig{Level: "warn", Format: "console"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = newLogger(eureka.LoggingConfig{Level: "warn", Format: "json"}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(eureka.LoggingConfig{Level: "loud", Format: "json"}, false)
	assert.Error(t, err)
}

func TestRenderCommandErrors(t *testing.T) {
	dir := writeSchemaDir(t)
	recordsFile := writeFile(t, "records.json", records)

	_, _, err := runCLI(t, "render", "post", "missing", "--schema-dir", dir, "--driver", "memory", "--records", recordsFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post/missing")

	_, _, err = runCLI(t, "render", "post", "p1", "--schema-dir", dir, "--driver", "mongo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "mongo"`)
}

func TestJSONSchemaCommand(t *testing.T) {
	dir := writeSchemaDir(t)

	out, _, err := runCLI(t, "jsonschema", "post", "--schema-dir", dir)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc["type"])
	props := doc["properties"].(map[string]any)
	assert.Contains(t, props, "title")
	assert.Contains(t, props, "id")
	assert.Equal(t, []any{"title"}, doc["required"])
}

func TestPublishSchemasRequiresBucket(t *testing.T) {
	dir := writeSchemaDir(t)

	_, _, err := runCLI(t, "publish-schemas", "--schema-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--s3-bucket is required")
}

func TestSchemaFiles(t *testing.T) {
	dir := writeSchemaDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	files, err := schemaFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"author.yml", "post.yaml"}, files)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SCHEMA_DIR", "/etc/eureka/schemas")
	t.Setenv("API_BASE_URI", "https://api.example.com")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DUCKDB_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := configFromEnv()
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.DuckDB.Enabled)
	assert.Equal(t, "duckdb", cfg.StoreDriver())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "/etc/eureka/schemas", cfg.Schemas.Directory)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURI)
}

func TestGetenvDefaultInt(t *testing.T) {
	t.Setenv("EUREKA_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getenvDefaultInt("EUREKA_TEST_INT", 7))
	t.Setenv("EUREKA_TEST_INT", "12")
	assert.Equal(t, 12, getenvDefaultInt("EUREKA_TEST_INT", 7))
}
