package internal

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/lychee-technology/eureka"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var schemaFileExtensions = []string{".yaml", ".yml", ".json"}

// isSchemaFile reports whether name carries a schema file extension.
func isSchemaFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range schemaFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// schemaNameFromFile strips directories and the extension.
func schemaNameFromFile(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ParseSchemaConfig decodes one schema document. JSON is read through the
// YAML decoder so property order is preserved for both formats. A name
// declared in the document wins over fallbackName.
func ParseSchemaConfig(fallbackName string, data []byte) (eureka.SchemaConfig, error) {
	var cfg eureka.SchemaConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return eureka.SchemaConfig{}, fmt.Errorf("failed to parse schema %s: %w", fallbackName, err)
	}
	if cfg.Name == "" {
		cfg.Name = fallbackName
	}
	return cfg, nil
}

// LoadSchemaDir reads every schema file directly inside dir.
func LoadSchemaDir(dir string) ([]eureka.SchemaConfig, error) {
	return LoadSchemaFS(os.DirFS(dir), ".")
}

// LoadSchemaFS reads every schema file directly inside dir of fsys, sorted
// by file name.
func LoadSchemaFS(fsys fs.FS, dir string) ([]eureka.SchemaConfig, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && isSchemaFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	configs := make([]eureka.SchemaConfig, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, path.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", file, err)
		}
		cfg, err := ParseSchemaConfig(schemaNameFromFile(file), data)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	zap.S().Infow("loaded schema files", "dir", dir, "count", len(configs))
	return configs, nil
}

// LoadRegistry registers configs into a fresh registry and checks that all
// relation targets resolve.
func LoadRegistry(configs []eureka.SchemaConfig) (*Registry, error) {
	registry := NewRegistry()
	if err := registry.RegisterAll(configs); err != nil {
		return nil, err
	}
	if err := registry.Check(); err != nil {
		return nil, err
	}
	return registry, nil
}
