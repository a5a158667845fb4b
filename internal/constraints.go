package internal

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lychee-technology/eureka"
)

// ConstraintName is a key of the constraint table.
type ConstraintName string

const (
	ConstraintAny     ConstraintName = "any"
	ConstraintString  ConstraintName = "string"
	ConstraintNumber  ConstraintName = "number"
	ConstraintBoolean ConstraintName = "boolean"
	ConstraintDate    ConstraintName = "date"
	ConstraintArray   ConstraintName = "array"
	ConstraintObject  ConstraintName = "object"

	ConstraintRequired ConstraintName = "required"
	ConstraintOptional ConstraintName = "optional"
	ConstraintAllow    ConstraintName = "allow"
	ConstraintValid    ConstraintName = "valid"
	ConstraintInvalid  ConstraintName = "invalid"

	ConstraintMin      ConstraintName = "min"
	ConstraintMax      ConstraintName = "max"
	ConstraintLength   ConstraintName = "length"
	ConstraintGreater  ConstraintName = "greater"
	ConstraintLess     ConstraintName = "less"
	ConstraintInteger  ConstraintName = "integer"
	ConstraintPositive ConstraintName = "positive"
	ConstraintNegative ConstraintName = "negative"

	ConstraintEmail     ConstraintName = "email"
	ConstraintURI       ConstraintName = "uri"
	ConstraintUUID      ConstraintName = "uuid"
	ConstraintGUID      ConstraintName = "guid"
	ConstraintAlphanum  ConstraintName = "alphanum"
	ConstraintRegex     ConstraintName = "regex"
	ConstraintPattern   ConstraintName = "pattern"
	ConstraintLowercase ConstraintName = "lowercase"
	ConstraintUppercase ConstraintName = "uppercase"
	ConstraintTrim      ConstraintName = "trim"

	ConstraintUnique ConstraintName = "unique"
)

type valueKind int

const (
	kindAny valueKind = iota
	kindString
	kindNumber
	kindBoolean
	kindDate
	kindArray
	kindObject
)

func (k valueKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBoolean:
		return "boolean"
	case kindDate:
		return "date"
	case kindArray:
		return "array"
	case kindObject:
		return "object"
	default:
		return "any"
	}
}

const variadic = -1

// constraintSpec describes one table entry: how many positional params it
// takes, which value kinds it applies to, and how it modifies a validator.
type constraintSpec struct {
	minArgs int
	maxArgs int
	kinds   []valueKind // nil means every kind
	apply   func(v *Validator, args []any) error
}

var constraintTable map[ConstraintName]constraintSpec

func init() {
	base := func(k valueKind) constraintSpec {
		return constraintSpec{maxArgs: 0, apply: func(v *Validator, _ []any) error {
			if v.kindSet {
				return fmt.Errorf("base type %q must be the first constraint", k)
			}
			v.kind = k
			v.kindSet = true
			return nil
		}}
	}
	constraintTable = map[ConstraintName]constraintSpec{
		ConstraintAny:     base(kindAny),
		ConstraintString:  base(kindString),
		ConstraintNumber:  base(kindNumber),
		ConstraintBoolean: base(kindBoolean),
		ConstraintDate:    base(kindDate),
		ConstraintArray:   base(kindArray),
		ConstraintObject:  base(kindObject),

		ConstraintRequired: {apply: func(v *Validator, _ []any) error { v.required = true; return nil }},
		ConstraintOptional: {apply: func(v *Validator, _ []any) error { v.required = false; return nil }},
		ConstraintAllow: {minArgs: 1, maxArgs: variadic, apply: func(v *Validator, args []any) error {
			v.allowed = append(v.allowed, args...)
			return nil
		}},
		ConstraintValid: {minArgs: 1, maxArgs: variadic, apply: func(v *Validator, args []any) error {
			v.valids = append(v.valids, args...)
			return nil
		}},
		ConstraintInvalid: {minArgs: 1, maxArgs: variadic, apply: func(v *Validator, args []any) error {
			v.invalids = append(v.invalids, args...)
			return nil
		}},

		ConstraintMin:    {minArgs: 1, maxArgs: 1, kinds: []valueKind{kindString, kindNumber, kindArray, kindDate}, apply: applyBound(ConstraintMin)},
		ConstraintMax:    {minArgs: 1, maxArgs: 1, kinds: []valueKind{kindString, kindNumber, kindArray, kindDate}, apply: applyBound(ConstraintMax)},
		ConstraintLength: {minArgs: 1, maxArgs: 1, kinds: []valueKind{kindString, kindArray}, apply: applyBound(ConstraintLength)},
		ConstraintGreater: {minArgs: 1, maxArgs: 1, kinds: []valueKind{kindNumber, kindDate},
			apply: applyBound(ConstraintGreater)},
		ConstraintLess: {minArgs: 1, maxArgs: 1, kinds: []valueKind{kindNumber, kindDate},
			apply: applyBound(ConstraintLess)},
		ConstraintInteger: {kinds: []valueKind{kindNumber}, apply: addCheck("number.integer", func(value any, label string) (string, bool) {
			f := value.(float64)
			return fmt.Sprintf("%q must be an integer", label), f == math.Trunc(f)
		})},
		ConstraintPositive: {kinds: []valueKind{kindNumber}, apply: addCheck("number.positive", func(value any, label string) (string, bool) {
			return fmt.Sprintf("%q must be a positive number", label), value.(float64) > 0
		})},
		ConstraintNegative: {kinds: []valueKind{kindNumber}, apply: addCheck("number.negative", func(value any, label string) (string, bool) {
			return fmt.Sprintf("%q must be a negative number", label), value.(float64) < 0
		})},

		ConstraintEmail: {kinds: []valueKind{kindString}, apply: addCheck("string.email", func(value any, label string) (string, bool) {
			s := value.(string)
			addr, err := mail.ParseAddress(s)
			return fmt.Sprintf("%q must be a valid email", label), err == nil && addr.Address == s
		})},
		ConstraintURI: {kinds: []valueKind{kindString}, apply: addCheck("string.uri", func(value any, label string) (string, bool) {
			u, err := url.Parse(value.(string))
			return fmt.Sprintf("%q must be a valid uri", label), err == nil && u.Scheme != ""
		})},
		ConstraintUUID: {kinds: []valueKind{kindString}, apply: addCheck("string.guid", checkGUID)},
		ConstraintGUID: {kinds: []valueKind{kindString}, apply: addCheck("string.guid", checkGUID)},
		ConstraintAlphanum: {kinds: []valueKind{kindString}, apply: addCheck("string.alphanum", func(value any, label string) (string, bool) {
			return fmt.Sprintf("%q must only contain alpha-numeric characters", label), alphanumPattern.MatchString(value.(string))
		})},
		ConstraintRegex:   {minArgs: 1, maxArgs: 1, kinds: []valueKind{kindString}, apply: applyRegex},
		ConstraintPattern: {minArgs: 1, maxArgs: 1, kinds: []valueKind{kindString}, apply: applyRegex},
		ConstraintLowercase: {kinds: []valueKind{kindString}, apply: addTransform("string.lowercase", strings.ToLower, func(label string) string {
			return fmt.Sprintf("%q must only contain lowercase characters", label)
		})},
		ConstraintUppercase: {kinds: []valueKind{kindString}, apply: addTransform("string.uppercase", strings.ToUpper, func(label string) string {
			return fmt.Sprintf("%q must only contain uppercase characters", label)
		})},
		ConstraintTrim: {kinds: []valueKind{kindString}, apply: addTransform("string.trim", strings.TrimSpace, func(label string) string {
			return fmt.Sprintf("%q must not have leading or trailing whitespace", label)
		})},

		ConstraintUnique: {kinds: []valueKind{kindArray}, apply: func(v *Validator, _ []any) error {
			v.checks = append(v.checks, check{kind: "array.unique", fn: checkUnique})
			return nil
		}},
	}
}

var alphanumPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func checkGUID(value any, label string) (string, bool) {
	_, err := uuid.Parse(value.(string))
	return fmt.Sprintf("%q must be a valid GUID", label), err == nil
}

// LookupConstraint reports whether name is in the constraint table.
func LookupConstraint(name string) bool {
	_, ok := constraintTable[ConstraintName(name)]
	return ok
}

// CheckConstraint validates a constraint's name and arity without building
// anything.
func CheckConstraint(field string, c eureka.Constraint) error {
	spec, ok := constraintTable[ConstraintName(c.Name)]
	if !ok {
		return eureka.NewUnknownConstraintError(field, c.Name)
	}
	args := spreadParams(c.Params)
	if len(args) < spec.minArgs || (spec.maxArgs != variadic && len(args) > spec.maxArgs) {
		return &eureka.EurekaError{
			Type:    eureka.ErrorTypeConfig,
			Code:    eureka.ErrCodeConstraintArity,
			Message: fmt.Sprintf("constraint %q takes %s, got %d", c.Name, arityText(spec), len(args)),
			Field:   field,
		}
	}
	return nil
}

func arityText(spec constraintSpec) string {
	switch {
	case spec.maxArgs == variadic:
		return fmt.Sprintf("at least %d parameter(s)", spec.minArgs)
	case spec.minArgs == spec.maxArgs:
		return fmt.Sprintf("%d parameter(s)", spec.minArgs)
	default:
		return fmt.Sprintf("%d to %d parameters", spec.minArgs, spec.maxArgs)
	}
}

// spreadParams applies a single list parameter positionally, so
// `{valid: [a, b]}` behaves like valid(a, b).
func spreadParams(params []any) []any {
	if len(params) == 1 {
		if list, ok := params[0].([]any); ok {
			return list
		}
	}
	return params
}

// BuildValidator folds constraints left to right into a validator. The
// first constraint may be a base type; without one the validator accepts any
// value kind.
func BuildValidator(label string, constraints []eureka.Constraint) (*Validator, error) {
	v := &Validator{label: label}
	if err := v.Apply(constraints...); err != nil {
		return nil, err
	}
	return v, nil
}

// Apply folds additional constraints onto v.
func (v *Validator) Apply(constraints ...eureka.Constraint) error {
	for _, c := range constraints {
		if err := CheckConstraint(v.label, c); err != nil {
			return err
		}
		spec := constraintTable[ConstraintName(c.Name)]
		if spec.kinds != nil && !containsKind(spec.kinds, v.kind) {
			return &eureka.EurekaError{
				Type:    eureka.ErrorTypeConfig,
				Code:    eureka.ErrCodeUnknownConstraint,
				Message: fmt.Sprintf("constraint %q does not apply to %s values", c.Name, v.kind),
				Field:   v.label,
			}
		}
		args := spreadParams(c.Params)
		if err := spec.apply(v, args); err != nil {
			return eureka.NewSchemaConfigError(v.label, err.Error()).WithCause(err)
		}
		v.applied = append(v.applied, eureka.Constraint{Name: c.Name, Params: args})
	}
	return nil
}

func containsKind(kinds []valueKind, k valueKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Validator
// ---------------------------------------------------------------------------

type check struct {
	kind string
	// fn returns the failure message and whether the value passed.
	fn func(value any, label string) (string, bool)
}

type transform struct {
	check
	apply func(string) string
}

type keyValidator struct {
	name      string
	validator *Validator
}

// Validator is a composed constraint object produced from the constraint
// table. It is immutable once built and safe for concurrent use.
type Validator struct {
	label      string
	kind       valueKind
	kindSet    bool
	required   bool
	allowed    []any
	valids     []any
	invalids   []any
	checks     []check
	transforms []transform
	items      *Validator
	keys       []keyValidator
	applied    []eureka.Constraint
}

// Kind returns the base type name.
func (v *Validator) Kind() string { return v.kind.String() }

// Required reports whether a value must be present.
func (v *Validator) Required() bool { return v.required }

// NewArrayValidator wraps an element validator as a list validator.
func NewArrayValidator(label string, items *Validator) *Validator {
	return &Validator{label: label, kind: kindArray, kindSet: true, items: items}
}

// NewObjectValidator creates an object validator with no keys.
func NewObjectValidator(label string) *Validator {
	return &Validator{label: label, kind: kindObject, kindSet: true}
}

// Key adds a keyed child validator. Later keys with the same name replace
// earlier ones in place.
func (v *Validator) Key(name string, child *Validator) *Validator {
	for i := range v.keys {
		if v.keys[i].name == name {
			v.keys[i].validator = child
			return v
		}
	}
	v.keys = append(v.keys, keyValidator{name: name, validator: child})
	return v
}

// Validate runs the validator against value and returns the converted
// value together with every failure.
func (v *Validator) Validate(value any, opts *eureka.ValidateOptions) (any, []eureka.ValidationDetail) {
	if opts == nil {
		opts = eureka.DefaultValidateOptions()
	}
	r := &run{opts: opts}
	out := v.validate(value, true, nil, r)
	return out, r.details
}

type run struct {
	opts    *eureka.ValidateOptions
	details []eureka.ValidationDetail
}

func (r *run) stop() bool {
	return r.opts.AbortEarly && len(r.details) > 0
}

func (r *run) fail(path []string, kind, message string, ctx map[string]any) {
	r.details = append(r.details, eureka.ValidationDetail{
		Path:    strings.Join(path, "."),
		Message: message,
		Kind:    kind,
		Context: ctx,
	})
}

func (v *Validator) labelFor(path []string) string {
	if v.label != "" {
		return v.label
	}
	if len(path) > 0 {
		return path[len(path)-1]
	}
	return "value"
}

func (v *Validator) validate(value any, present bool, path []string, r *run) any {
	label := v.labelFor(path)

	if !present {
		if v.required {
			r.fail(path, "any.required", fmt.Sprintf("%q is required", label), nil)
		}
		return nil
	}
	if value == nil && (v.kind == kindAny || containsValue(v.allowed, nil)) {
		return nil
	}
	if value != nil && containsValue(v.allowed, value) {
		return value
	}

	out, ok := v.coerce(value, path, label, r)
	if !ok || r.stop() {
		return out
	}

	if len(v.valids) > 0 && !containsValue(v.valids, out) {
		r.fail(path, "any.allowOnly", fmt.Sprintf("%q must be one of [%s]", label, joinValues(v.valids)), map[string]any{"valids": v.valids})
		if r.stop() {
			return out
		}
	}
	if containsValue(v.invalids, out) {
		r.fail(path, "any.invalid", fmt.Sprintf("%q contains an invalid value", label), nil)
		if r.stop() {
			return out
		}
	}

	switch v.kind {
	case kindArray:
		out = v.validateItems(out.([]any), path, r)
	case kindObject:
		out = v.validateKeys(out.(map[string]any), path, r)
	}
	if r.stop() {
		return out
	}

	for _, c := range v.checks {
		if msg, passed := c.fn(out, label); !passed {
			r.fail(path, c.kind, msg, nil)
			if r.stop() {
				return out
			}
		}
	}
	return out
}

// coerce checks the base type and applies conversion. On failure it reports
// the error and returns the value the caller should surface: NaN for failed
// number conversions, the submitted value otherwise.
func (v *Validator) coerce(value any, path []string, label string, r *run) (any, bool) {
	convert := r.opts.Convert
	switch v.kind {
	case kindString:
		s, ok := value.(string)
		if !ok {
			r.fail(path, "string.base", fmt.Sprintf("%q must be a string", label), nil)
			return value, false
		}
		for _, t := range v.transforms {
			if convert {
				s = t.apply(s)
			} else if msg, passed := t.fn(s, label); !passed {
				r.fail(path, t.kind, msg, nil)
				return s, false
			}
		}
		if s == "" && !containsValue(v.allowed, "") {
			r.fail(path, "any.empty", fmt.Sprintf("%q is not allowed to be empty", label), nil)
			return s, false
		}
		return s, true

	case kindNumber:
		f, ok := toFloat(value)
		if !ok && convert {
			if s, isString := value.(string); isString {
				parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					r.fail(path, "number.base", fmt.Sprintf("%q must be a number", label), nil)
					return math.NaN(), false
				}
				f, ok = parsed, true
			}
		}
		if !ok || math.IsNaN(f) {
			r.fail(path, "number.base", fmt.Sprintf("%q must be a number", label), nil)
			return value, false
		}
		if math.IsInf(f, 0) {
			r.fail(path, "number.infinity", fmt.Sprintf("%q cannot be infinity", label), nil)
			return value, false
		}
		return f, true

	case kindBoolean:
		if b, ok := value.(bool); ok {
			return b, true
		}
		if convert {
			if s, isString := value.(string); isString {
				if b, err := eureka.CastBoolean(s); err == nil {
					return b, true
				}
			}
		}
		r.fail(path, "boolean.base", fmt.Sprintf("%q must be a boolean", label), nil)
		return value, false

	case kindDate:
		if t, ok := value.(time.Time); ok {
			return t, true
		}
		if convert {
			if t, ok := parseDate(value); ok {
				return t, true
			}
		}
		r.fail(path, "date.base", fmt.Sprintf("%q must be a number of milliseconds or valid date string", label), nil)
		return value, false

	case kindArray:
		if list, ok := value.([]any); ok {
			return list, true
		}
		rv := reflect.ValueOf(value)
		if value != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			list := make([]any, rv.Len())
			for i := range list {
				list[i] = rv.Index(i).Interface()
			}
			return list, true
		}
		r.fail(path, "array.base", fmt.Sprintf("%q must be an array", label), nil)
		return value, false

	case kindObject:
		if m, ok := value.(map[string]any); ok {
			return m, true
		}
		r.fail(path, "object.base", fmt.Sprintf("%q must be an object", label), nil)
		return value, false
	}
	return value, true
}

func (v *Validator) validateItems(list []any, path []string, r *run) []any {
	if v.items == nil {
		return list
	}
	out := make([]any, len(list))
	for i, item := range list {
		out[i] = v.items.validate(item, true, appendPath(path, strconv.Itoa(i)), r)
		if r.stop() {
			copy(out[i+1:], list[i+1:])
			return out
		}
	}
	return out
}

func (v *Validator) validateKeys(m map[string]any, path []string, r *run) map[string]any {
	out := make(map[string]any, len(m))
	known := make(map[string]struct{}, len(v.keys))
	for _, k := range v.keys {
		known[k.name] = struct{}{}
		value, present := m[k.name]
		converted := k.validator.validate(value, present, appendPath(path, k.name), r)
		if present {
			out[k.name] = converted
		}
		if r.stop() {
			copyMissing(out, m)
			return out
		}
	}
	if len(v.keys) == 0 {
		// object() without keys accepts any content
		copyMissing(out, m)
		return out
	}
	for _, key := range sortedKeys(m) {
		if _, ok := known[key]; ok {
			continue
		}
		out[key] = m[key]
		if !r.opts.AllowUnknown {
			r.fail(appendPath(path, key), "object.allowUnknown", fmt.Sprintf("%q is not allowed", key), nil)
			if r.stop() {
				copyMissing(out, m)
				return out
			}
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// constraint implementations
// ---------------------------------------------------------------------------

func addCheck(kind string, fn func(value any, label string) (string, bool)) func(*Validator, []any) error {
	return func(v *Validator, _ []any) error {
		v.checks = append(v.checks, check{kind: kind, fn: fn})
		return nil
	}
}

func addTransform(kind string, apply func(string) string, message func(label string) string) func(*Validator, []any) error {
	return func(v *Validator, _ []any) error {
		v.transforms = append(v.transforms, transform{
			check: check{kind: kind, fn: func(value any, label string) (string, bool) {
				s := value.(string)
				return message(label), apply(s) == s
			}},
			apply: apply,
		})
		return nil
	}
}

func applyRegex(v *Validator, args []any) error {
	pattern, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("regex parameter must be a string, got %T", args[0])
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	v.checks = append(v.checks, check{kind: "string.regex.base", fn: func(value any, label string) (string, bool) {
		s := value.(string)
		return fmt.Sprintf("%q with value %q fails to match the required pattern: /%s/", label, s, pattern), re.MatchString(s)
	}})
	return nil
}

func applyBound(name ConstraintName) func(*Validator, []any) error {
	return func(v *Validator, args []any) error {
		switch v.kind {
		case kindDate:
			limit, ok := parseDate(args[0])
			if !ok {
				return fmt.Errorf("%s parameter must be a date, got %v", name, args[0])
			}
			v.checks = append(v.checks, dateBound(name, limit))
			return nil
		case kindNumber:
			limit, ok := toFloat(args[0])
			if !ok {
				return fmt.Errorf("%s parameter must be a number, got %v", name, args[0])
			}
			v.checks = append(v.checks, numberBound(name, limit))
			return nil
		default:
			limit, err := eureka.CastInteger(args[0])
			if err != nil || limit < 0 {
				return fmt.Errorf("%s parameter must be a non-negative integer, got %v", name, args[0])
			}
			if v.kind == kindArray {
				v.checks = append(v.checks, arrayBound(name, int(limit)))
			} else {
				v.checks = append(v.checks, stringBound(name, int(limit)))
			}
			return nil
		}
	}
}

func numberBound(name ConstraintName, limit float64) check {
	kind := "number." + string(name)
	return check{kind: kind, fn: func(value any, label string) (string, bool) {
		f := value.(float64)
		switch name {
		case ConstraintMin:
			return fmt.Sprintf("%q must be larger than or equal to %v", label, limit), f >= limit
		case ConstraintMax:
			return fmt.Sprintf("%q must be less than or equal to %v", label, limit), f <= limit
		case ConstraintGreater:
			return fmt.Sprintf("%q must be greater than %v", label, limit), f > limit
		default:
			return fmt.Sprintf("%q must be less than %v", label, limit), f < limit
		}
	}}
}

func dateBound(name ConstraintName, limit time.Time) check {
	kind := "date." + string(name)
	stamp := limit.UTC().Format(time.RFC3339)
	return check{kind: kind, fn: func(value any, label string) (string, bool) {
		t := value.(time.Time)
		switch name {
		case ConstraintMin:
			return fmt.Sprintf("%q must be larger than or equal to %q", label, stamp), !t.Before(limit)
		case ConstraintMax:
			return fmt.Sprintf("%q must be less than or equal to %q", label, stamp), !t.After(limit)
		case ConstraintGreater:
			return fmt.Sprintf("%q must be greater than %q", label, stamp), t.After(limit)
		default:
			return fmt.Sprintf("%q must be less than %q", label, stamp), t.Before(limit)
		}
	}}
}

func stringBound(name ConstraintName, limit int) check {
	kind := "string." + string(name)
	return check{kind: kind, fn: func(value any, label string) (string, bool) {
		n := len([]rune(value.(string)))
		switch name {
		case ConstraintMin:
			return fmt.Sprintf("%q length must be at least %d characters long", label, limit), n >= limit
		case ConstraintMax:
			return fmt.Sprintf("%q length must be less than or equal to %d characters long", label, limit), n <= limit
		default:
			return fmt.Sprintf("%q length must be %d characters long", label, limit), n == limit
		}
	}}
}

func arrayBound(name ConstraintName, limit int) check {
	kind := "array." + string(name)
	return check{kind: kind, fn: func(value any, label string) (string, bool) {
		n := len(value.([]any))
		switch name {
		case ConstraintMin:
			return fmt.Sprintf("%q must contain at least %d items", label, limit), n >= limit
		case ConstraintMax:
			return fmt.Sprintf("%q must contain less than or equal to %d items", label, limit), n <= limit
		default:
			return fmt.Sprintf("%q must contain %d items", label, limit), n == limit
		}
	}}
}

func checkUnique(value any, label string) (string, bool) {
	list := value.([]any)
	for i := range list {
		for j := 0; j < i; j++ {
			if reflect.DeepEqual(list[i], list[j]) {
				return fmt.Sprintf("%q position %d contains a duplicate value", label, i), false
			}
		}
	}
	return "", true
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		return time.Time{}, false
	default:
		if f, ok := toFloat(value); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return time.UnixMilli(int64(f)).UTC(), true
		}
		return time.Time{}, false
	}
}

func containsValue(list []any, value any) bool {
	for _, item := range list {
		if valuesEqual(item, value) {
			return true
		}
	}
	return false
}

// valuesEqual compares declared params with input; numbers compare by value
// across Go numeric types.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func joinValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, eureka.CastString(v))
	}
	return strings.Join(parts, ", ")
}

func appendPath(path []string, segment string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = segment
	return out
}

func copyMissing(dst, src map[string]any) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
