package internal

import (
	"context"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/lychee-technology/eureka"
)

// modelSchema implements eureka.ModelSchema. Relation targets are looked up
// by name through the registry on every call; schemas never hold each other.
type modelSchema struct {
	name       string
	config     eureka.SchemaConfig
	registry   eureka.SchemaRegistry
	properties []*modelSchemaProperty
	byName     map[string]*modelSchemaProperty
}

// NewModelSchema builds a schema and all of its properties eagerly.
func NewModelSchema(config eureka.SchemaConfig, registry eureka.SchemaRegistry) (eureka.ModelSchema, error) {
	s, err := newModelSchema(config, registry)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newModelSchema(config eureka.SchemaConfig, registry eureka.SchemaRegistry) (*modelSchema, error) {
	if config.Name == "" {
		return nil, eureka.NewSchemaConfigError("name", "schema has no name")
	}
	s := &modelSchema{
		name:       config.Name,
		config:     config,
		registry:   registry,
		properties: make([]*modelSchemaProperty, 0, len(config.Properties)),
		byName:     make(map[string]*modelSchemaProperty, len(config.Properties)),
	}
	for _, pc := range config.Properties {
		if _, dup := s.byName[pc.Name]; dup {
			return nil, eureka.NewSchemaConfigError(pc.Name, "duplicate property in schema "+config.Name)
		}
		prop, err := newModelSchemaProperty(s, pc)
		if err != nil {
			return nil, err
		}
		s.properties = append(s.properties, prop)
		s.byName[pc.Name] = prop
	}
	return s, nil
}

func (s *modelSchema) Name() string { return s.name }

// Property resolves a path. "author.name" looks up author, requires it to be
// a relation, and continues with name on the related schema.
func (s *modelSchema) Property(path string) (eureka.ModelSchemaProperty, bool) {
	head, rest, nested := strings.Cut(path, ".")
	prop, ok := s.byName[head]
	if !ok {
		return nil, false
	}
	if !nested {
		return prop, true
	}
	if !prop.IsRelation() {
		return nil, false
	}
	target, ok := s.registry.Schema(prop.Type())
	if !ok {
		return nil, false
	}
	return target.Property(rest)
}

func (s *modelSchema) HasProperty(path string) bool {
	_, ok := s.Property(path)
	return ok
}

func (s *modelSchema) Properties() []eureka.ModelSchemaProperty {
	out := make([]eureka.ModelSchemaProperty, len(s.properties))
	for i, p := range s.properties {
		out[i] = p
	}
	return out
}

// Validator builds the composite object validator: one key per property
// plus the reserved metadata fields.
func (s *modelSchema) Validator() (*Validator, error) {
	obj := NewObjectValidator("value")
	for _, p := range s.properties {
		v, err := p.Validator()
		if err != nil {
			return nil, err
		}
		obj.Key(p.name, v)
	}
	for _, field := range eureka.ReservedFields {
		if _, declared := s.byName[field]; declared {
			continue
		}
		obj.Key(field, &Validator{kind: kindString, kindSet: true})
	}
	return obj, nil
}

// Validate validates a copy of pojo. The returned map carries converted
// values even when validation fails.
func (s *modelSchema) Validate(pojo map[string]any, opts *eureka.ValidateOptions) (map[string]any, error) {
	v, err := s.Validator()
	if err != nil {
		return pojo, err
	}
	if pojo == nil {
		pojo = map[string]any{}
	}
	out, details := v.Validate(pojo, opts)
	value, _ := out.(map[string]any)
	if len(details) > 0 {
		EmitValidationFailures(context.Background(), s.name, len(details))
		return value, &eureka.ValidationError{Details: details}
	}
	return value, nil
}

func (s *modelSchema) ValidateCallback(pojo map[string]any, opts *eureka.ValidateOptions, cb func(err error, value map[string]any)) {
	value, err := s.Validate(pojo, opts)
	cb(err, value)
}

func (s *modelSchema) Fixture() map[string]any {
	return defaultFixtures.Schema(s)
}

// JSONSchema describes the schema's accepted input as JSON Schema.
// Relations become `{id, type}` objects; constraints without a JSON Schema
// counterpart are left out.
func (s *modelSchema) JSONSchema() (*jsonschema.Schema, error) {
	root := &jsonschema.Schema{
		Title:      s.name,
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(s.properties)+len(eureka.ReservedFields)),
	}
	for _, field := range eureka.ReservedFields {
		root.Properties[field] = &jsonschema.Schema{Type: "string"}
	}
	for _, p := range s.properties {
		v, err := p.Validator()
		if err != nil {
			return nil, err
		}
		root.Properties[p.name] = v.jsonSchema()
		if v.required {
			root.Required = append(root.Required, p.name)
		}
	}
	return root, nil
}
