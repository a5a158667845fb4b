package eureka

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PrimitiveType names a built-in property type tag.
type PrimitiveType string

const (
	PrimitiveString   PrimitiveType = "string"
	PrimitiveNumber   PrimitiveType = "number"
	PrimitiveInteger  PrimitiveType = "integer"
	PrimitiveFloat    PrimitiveType = "float"
	PrimitiveBoolean  PrimitiveType = "boolean"
	PrimitiveDate     PrimitiveType = "date"
	PrimitiveDateTime PrimitiveType = "datetime"
	PrimitiveArray    PrimitiveType = "array"
	PrimitiveObject   PrimitiveType = "object"
	PrimitiveAny      PrimitiveType = "any"
)

// IsPrimitiveType reports whether typeName is a built-in type tag rather than a
// reference to another schema.
func IsPrimitiveType(typeName string) bool {
	switch PrimitiveType(typeName) {
	case PrimitiveString, PrimitiveNumber, PrimitiveInteger, PrimitiveFloat,
		PrimitiveBoolean, PrimitiveDate, PrimitiveDateTime, PrimitiveArray,
		PrimitiveObject, PrimitiveAny:
		return true
	default:
		return false
	}
}

// Constraint is one declarative validation rule, e.g. `required` or `{min: 3}`.
type Constraint struct {
	Name   string `json:"name"`
	Params []any  `json:"params,omitempty"`
}

// C builds a Constraint in code.
func C(name string, params ...any) Constraint {
	return Constraint{Name: name, Params: params}
}

func (c Constraint) String() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	parts := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		parts = append(parts, fmt.Sprint(p))
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// UnmarshalYAML accepts a bare name or a mapping with exactly one key.
func (c *Constraint) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		c.Name = node.Value
		c.Params = nil
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return NewSchemaConfigError("", fmt.Sprintf("constraint at line %d must have exactly one parameter key, got %d", node.Line, len(node.Content)/2))
		}
		var param any
		if err := node.Content[1].Decode(&param); err != nil {
			return fmt.Errorf("decode constraint %q params: %w", node.Content[0].Value, err)
		}
		c.Name = node.Content[0].Value
		c.Params = []any{param}
		return nil
	default:
		return NewSchemaConfigError("", fmt.Sprintf("constraint at line %d must be a name or a single-key mapping", node.Line))
	}
}

// MultiConfig marks a property as holding a list of values. Validations apply
// to the list itself (e.g. `length: 3`), not to its elements.
type MultiConfig struct {
	Validations []Constraint `json:"validations,omitempty"`
}

// UnmarshalYAML accepts a boolean, a list of constraints, or a mapping of
// constraint name to parameter. PropertyConfig drops `multi: false` before
// this is reached.
func (m *MultiConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var flag bool
		if err := node.Decode(&flag); err != nil {
			return NewSchemaConfigError("", fmt.Sprintf("multi at line %d must be a boolean or constraint set", node.Line))
		}
		m.Validations = nil
		return nil
	case yaml.SequenceNode:
		var list []Constraint
		if err := node.Decode(&list); err != nil {
			return err
		}
		m.Validations = list
		return nil
	case yaml.MappingNode:
		list := make([]Constraint, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var param any
			if err := node.Content[i+1].Decode(&param); err != nil {
				return fmt.Errorf("decode multi constraint %q: %w", node.Content[i].Value, err)
			}
			list = append(list, Constraint{Name: node.Content[i].Value, Params: []any{param}})
		}
		m.Validations = list
		return nil
	default:
		return NewSchemaConfigError("", fmt.Sprintf("multi at line %d has unsupported shape", node.Line))
	}
}

// FixtureFunc produces one synthetic scalar value for a property.
type FixtureFunc func() any

// PropertyConfig is the declarative description of one schema property.
type PropertyConfig struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Validations []Constraint `json:"validations,omitempty"`
	Multi       *MultiConfig `json:"multi,omitempty"`
	Fixture     FixtureFunc  `json:"-"`
}

// UnmarshalYAML decodes a property body. The name comes from the enclosing
// mapping key and is set by the caller.
func (p *PropertyConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		// shorthand: `title: string`
		p.Type = node.Value
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return NewSchemaConfigError("", fmt.Sprintf("property at line %d must be a mapping", node.Line))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "type":
			p.Type = value.Value
		case "validations":
			var list []Constraint
			if err := value.Decode(&list); err != nil {
				return err
			}
			p.Validations = list
		case "multi":
			if value.Kind == yaml.ScalarNode {
				var flag bool
				if err := value.Decode(&flag); err != nil {
					return NewSchemaConfigError(key.Value, "multi must be a boolean or constraint set")
				}
				if !flag {
					p.Multi = nil
					continue
				}
			}
			multi := &MultiConfig{}
			if err := value.Decode(multi); err != nil {
				return err
			}
			p.Multi = multi
		default:
			return NewSchemaConfigError(key.Value, fmt.Sprintf("unknown property key at line %d", key.Line))
		}
	}
	if p.Type == "" {
		return NewSchemaConfigError("type", fmt.Sprintf("property at line %d has no type", node.Line))
	}
	return nil
}

// SchemaConfig is the declarative description of a record type.
type SchemaConfig struct {
	Name       string           `json:"name"`
	Properties []PropertyConfig `json:"properties"`
}

// UnmarshalYAML accepts either `{properties: {...}}` or the property mapping
// directly. Property order follows the document.
func (s *SchemaConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return NewSchemaConfigError("", "schema document must be a mapping")
	}
	props := node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "properties" && node.Content[i+1].Kind == yaml.MappingNode {
			props = node.Content[i+1]
		}
	}
	if props != node {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "name" {
				s.Name = node.Content[i+1].Value
			}
		}
	}
	if props.Kind != yaml.MappingNode {
		return NewSchemaConfigError("properties", "properties must be a mapping")
	}
	s.Properties = make([]PropertyConfig, 0, len(props.Content)/2)
	for i := 0; i+1 < len(props.Content); i += 2 {
		var prop PropertyConfig
		if err := props.Content[i+1].Decode(&prop); err != nil {
			var ee *EurekaError
			if errors.As(err, &ee) && ee.Field == "" {
				ee.Field = props.Content[i].Value
			}
			return fmt.Errorf("property %q: %w", props.Content[i].Value, err)
		}
		prop.Name = props.Content[i].Value
		s.Properties = append(s.Properties, prop)
	}
	return nil
}

// Property returns the declaration for name.
func (s SchemaConfig) Property(name string) (PropertyConfig, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyConfig{}, false
}

// Instance is a model instance produced by the database collaborator.
type Instance interface {
	ID() string
	Type() string
	// Get returns the value stored under a property name, or nil.
	Get(name string) any
}

// DataRecord is the Instance implementation returned by the bundled
// databases.
type DataRecord struct {
	SchemaName string         `json:"schemaName"`
	RowID      string         `json:"rowId"`
	Attributes map[string]any `json:"attributes"`
}

func (r *DataRecord) ID() string   { return r.RowID }
func (r *DataRecord) Type() string { return r.SchemaName }

func (r *DataRecord) Get(name string) any {
	if r.Attributes == nil {
		return nil
	}
	return r.Attributes[name]
}

// ValidateOptions tunes ModelSchema.Validate.
type ValidateOptions struct {
	// AbortEarly stops at the first failing field.
	AbortEarly bool `json:"abortEarly"`
	// Convert coerces compatible input (e.g. "3" for a number) instead of
	// rejecting it.
	Convert bool `json:"convert"`
	// AllowUnknown accepts keys that are neither properties nor reserved.
	AllowUnknown bool `json:"allowUnknown"`
}

// DefaultValidateOptions collects every error and converts compatible types.
func DefaultValidateOptions() *ValidateOptions {
	return &ValidateOptions{
		AbortEarly:   false,
		Convert:      true,
		AllowUnknown: false,
	}
}

// ReservedFields are accepted as strings on every schema.
var ReservedFields = []string{"id", "type", "_ref", "_class"}
