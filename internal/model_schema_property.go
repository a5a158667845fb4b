package internal

import (
	"fmt"

	"github.com/lychee-technology/eureka"
)

// modelSchemaProperty resolves one PropertyConfig against the registry of
// its owning schema.
type modelSchemaProperty struct {
	name   string
	config eureka.PropertyConfig
	schema *modelSchema
}

// newModelSchemaProperty checks constraint names and arities. The type tag
// is checked later because relation targets may be registered afterwards.
func newModelSchemaProperty(schema *modelSchema, config eureka.PropertyConfig) (*modelSchemaProperty, error) {
	if config.Name == "" {
		return nil, eureka.NewSchemaConfigError(schema.name, "property without a name")
	}
	if config.Type == "" {
		return nil, eureka.NewSchemaConfigError(config.Name, "property has no type")
	}
	p := &modelSchemaProperty{name: config.Name, config: config, schema: schema}

	declared := NormalizeValidations(config.Validations)
	if config.Multi != nil {
		declared = append(declared, config.Multi.Validations...)
	}
	for _, c := range declared {
		if err := CheckConstraint(config.Name, c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *modelSchemaProperty) Name() string { return p.name }

func (p *modelSchemaProperty) Type() string { return p.config.Type }

func (p *modelSchemaProperty) Config() eureka.PropertyConfig { return p.config }

// IsRelation reports whether the type tag names a registered schema.
func (p *modelSchemaProperty) IsRelation() bool {
	if eureka.IsPrimitiveType(p.config.Type) {
		return false
	}
	_, ok := p.schema.registry.Schema(p.config.Type)
	return ok
}

func (p *modelSchemaProperty) IsMulti() bool { return p.config.Multi != nil }

// Validations is the type tag followed by the declared constraints, with
// legacy aliases remapped.
func (p *modelSchemaProperty) Validations() []eureka.Constraint {
	list := make([]eureka.Constraint, 0, len(p.config.Validations)+1)
	list = append(list, eureka.C(p.config.Type))
	list = append(list, p.config.Validations...)
	return NormalizeValidations(list)
}

// Validator composes the constraint object for this property.
func (p *modelSchemaProperty) Validator() (*Validator, error) {
	var (
		v   *Validator
		err error
	)
	switch {
	case p.IsRelation():
		v = relationValidator(p.name)
		if err = v.Apply(NormalizeValidations(p.config.Validations)...); err != nil {
			return nil, err
		}
	case eureka.IsPrimitiveType(p.config.Type):
		if v, err = BuildValidator(p.name, p.Validations()); err != nil {
			return nil, err
		}
	default:
		return nil, eureka.NewUnknownTypeError(p.name, p.config.Type)
	}

	if !p.IsMulti() {
		return v, nil
	}

	// items are always present inside a list, so presence moves to the list
	list := NewArrayValidator(p.name, v)
	list.required = v.required
	v.required = false
	v.label = ""
	if err := list.Apply(p.config.Multi.Validations...); err != nil {
		return nil, err
	}
	return list, nil
}

// relationValidator accepts a `{id, type}` linkage object.
func relationValidator(label string) *Validator {
	obj := NewObjectValidator(label)
	obj.Key("id", &Validator{kind: kindString, kindSet: true, required: true})
	obj.Key("type", &Validator{kind: kindString, kindSet: true, required: true})
	return obj
}

// Fixture generates a value with the default generator.
func (p *modelSchemaProperty) Fixture() (any, bool) {
	return defaultFixtures.Property(p)
}

func (p *modelSchemaProperty) String() string {
	return fmt.Sprintf("%s.%s(%s)", p.schema.name, p.name, p.config.Type)
}
