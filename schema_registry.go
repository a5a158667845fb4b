package eureka

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// ModelSchemaProperty is one resolved property of a ModelSchema.
type ModelSchemaProperty interface {
	Name() string
	// Type is the raw type tag from the declaration.
	Type() string
	// IsRelation reports whether Type names another registered schema.
	IsRelation() bool
	// IsMulti reports whether the property holds a list of values.
	IsMulti() bool
	// Validations is the normalized constraint list, base type first.
	Validations() []Constraint
	// Config returns the declaration the property was built from.
	Config() PropertyConfig
	// Fixture generates a synthetic value. ok is false for relations.
	Fixture() (value any, ok bool)
}

// ModelSchema wraps a SchemaConfig with validation and path resolution.
type ModelSchema interface {
	Name() string
	// Property resolves a property path. Dotted paths traverse relations
	// into the related schema ("author.name").
	Property(path string) (ModelSchemaProperty, bool)
	HasProperty(path string) bool
	// Properties lists the direct properties in declaration order.
	Properties() []ModelSchemaProperty
	// Validate checks pojo and returns the converted copy. The returned error
	// is a *ValidationError for field failures.
	Validate(pojo map[string]any, opts *ValidateOptions) (map[string]any, error)
	// ValidateCallback delivers the Validate result through cb.
	ValidateCallback(pojo map[string]any, opts *ValidateOptions, cb func(err error, value map[string]any))
	// Fixture builds a synthetic record; relations are left out.
	Fixture() map[string]any
	// JSONSchema exports the schema as a JSON Schema document.
	JSONSchema() (*jsonschema.Schema, error)
}

// SchemaRegistry provides schema lookup operations.
// Implementations can load schemas from files, object storage, or code.
type SchemaRegistry interface {
	// Schema returns the schema registered under name.
	Schema(name string) (ModelSchema, bool)
	// ListSchemas returns registered schema names in registration order.
	ListSchemas() []string
}

// Fetcher loads model instances by type and id.
type Fetcher interface {
	// Fetch returns the instance or an error satisfying IsNotFound.
	Fetch(ctx context.Context, typeName, id string) (Instance, error)
}

// FixtureSource generates synthetic data for schemas and properties.
type FixtureSource interface {
	Schema(schema ModelSchema) map[string]any
	Property(property ModelSchemaProperty) (value any, ok bool)
}
