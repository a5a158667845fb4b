package internal

import (
	"fmt"
	"sync"

	"github.com/lychee-technology/eureka"
	"go.uber.org/zap"
)

// Registry is an append-only map from type name to schema. Schemas resolve
// relation targets through it by name, so registration order does not
// matter as long as Check passes before first use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*modelSchema
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*modelSchema)}
}

// Register builds and adds a schema. Names are unique and may not shadow a
// primitive type tag.
func (r *Registry) Register(config eureka.SchemaConfig) (eureka.ModelSchema, error) {
	if eureka.IsPrimitiveType(config.Name) {
		return nil, eureka.NewSchemaConfigError("name", fmt.Sprintf("schema name %q is a primitive type", config.Name))
	}
	schema, err := newModelSchema(config, r)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", config.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[config.Name]; exists {
		return nil, &eureka.EurekaError{
			Type:    eureka.ErrorTypeConfig,
			Code:    eureka.ErrCodeSchemaExists,
			Message: fmt.Sprintf("schema %q already registered", config.Name),
			Field:   "name",
		}
	}
	r.schemas[config.Name] = schema
	r.order = append(r.order, config.Name)
	zap.S().Debugw("registered schema", "schema", config.Name, "properties", len(config.Properties))
	return schema, nil
}

// RegisterAll registers configs in order and stops at the first failure.
func (r *Registry) RegisterAll(configs []eureka.SchemaConfig) error {
	for _, cfg := range configs {
		if _, err := r.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Schema(name string) (eureka.ModelSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	if !ok {
		return nil, false
	}
	return s, true
}

func (r *Registry) ListSchemas() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Check verifies every property type is primitive or registered and that
// every property's validator can be built.
func (r *Registry) Check() error {
	for _, name := range r.ListSchemas() {
		r.mu.RLock()
		schema := r.schemas[name]
		r.mu.RUnlock()
		for _, p := range schema.properties {
			if !eureka.IsPrimitiveType(p.Type()) && !p.IsRelation() {
				return fmt.Errorf("schema %s: %w", name, eureka.NewUnknownTypeError(p.Name(), p.Type()))
			}
			if _, err := p.Validator(); err != nil {
				return fmt.Errorf("schema %s: %w", name, err)
			}
		}
	}
	return nil
}
