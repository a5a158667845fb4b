package internal

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/lychee-technology/eureka"
)

// jsonSchema translates the applied constraints into JSON Schema keywords.
func (v *Validator) jsonSchema() *jsonschema.Schema {
	s := &jsonschema.Schema{}
	switch v.kind {
	case kindString:
		s.Type = "string"
	case kindNumber:
		s.Type = "number"
	case kindBoolean:
		s.Type = "boolean"
	case kindDate:
		s.Type = "string"
		s.Format = "date-time"
	case kindArray:
		s.Type = "array"
		if v.items != nil {
			s.Items = v.items.jsonSchema()
		}
	case kindObject:
		s.Type = "object"
		if len(v.keys) > 0 {
			s.Properties = make(map[string]*jsonschema.Schema, len(v.keys))
			for _, k := range v.keys {
				s.Properties[k.name] = k.validator.jsonSchema()
				if k.validator.required {
					s.Required = append(s.Required, k.name)
				}
			}
		}
	}

	for _, c := range v.applied {
		applyJSONSchemaKeyword(s, v.kind, c)
	}

	if s.Type != "" && containsValue(v.allowed, nil) {
		s.Types = []string{s.Type, "null"}
		s.Type = ""
	}
	return s
}

func applyJSONSchemaKeyword(s *jsonschema.Schema, kind valueKind, c eureka.Constraint) {
	intArg := func() *int {
		n, err := eureka.CastInteger(c.Params[0])
		if err != nil {
			return nil
		}
		i := int(n)
		return &i
	}
	floatArg := func() *float64 {
		f, ok := toFloat(c.Params[0])
		if !ok {
			return nil
		}
		return &f
	}

	switch ConstraintName(c.Name) {
	case ConstraintMin:
		switch kind {
		case kindString:
			s.MinLength = intArg()
		case kindArray:
			s.MinItems = intArg()
		case kindNumber:
			s.Minimum = floatArg()
		}
	case ConstraintMax:
		switch kind {
		case kindString:
			s.MaxLength = intArg()
		case kindArray:
			s.MaxItems = intArg()
		case kindNumber:
			s.Maximum = floatArg()
		}
	case ConstraintLength:
		if kind == kindString {
			s.MinLength, s.MaxLength = intArg(), intArg()
		} else {
			s.MinItems, s.MaxItems = intArg(), intArg()
		}
	case ConstraintGreater:
		if kind == kindNumber {
			s.ExclusiveMinimum = floatArg()
		}
	case ConstraintLess:
		if kind == kindNumber {
			s.ExclusiveMaximum = floatArg()
		}
	case ConstraintPositive:
		zero := 0.0
		s.ExclusiveMinimum = &zero
	case ConstraintNegative:
		zero := 0.0
		s.ExclusiveMaximum = &zero
	case ConstraintInteger:
		s.Type = "integer"
	case ConstraintEmail:
		s.Format = "email"
	case ConstraintURI:
		s.Format = "uri"
	case ConstraintUUID, ConstraintGUID:
		s.Format = "uuid"
	case ConstraintAlphanum:
		s.Pattern = alphanumPattern.String()
	case ConstraintRegex, ConstraintPattern:
		if p, ok := c.Params[0].(string); ok {
			s.Pattern = p
		}
	case ConstraintValid:
		s.Enum = append(s.Enum, c.Params...)
	case ConstraintUnique:
		s.UniqueItems = true
	}
}
