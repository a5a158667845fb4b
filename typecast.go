package eureka

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	truthyTokens = map[string]bool{"true": true, "1": true, "on": true, "yes": true}
	falsyTokens  = map[string]bool{"false": true, "0": true, "off": true, "no": true}
)

// CastInteger passes numbers through (truncating fractions) and parses the
// leading base-10 integer of any other value's text form.
func CastInteger(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, NewTypeError(value, "integer")
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return uintToInteger(uint64(v), value)
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return uintToInteger(v, value)
	case float32:
		return floatToInteger(float64(v), value)
	case float64:
		return floatToInteger(v, value)
	}
	text := numericPrefix(CastString(value), false)
	if text == "" {
		return 0, NewTypeError(value, "integer")
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, NewTypeError(value, "integer").WithCause(err)
	}
	return n, nil
}

func uintToInteger(u uint64, original any) (int64, error) {
	if u > math.MaxInt64 {
		return 0, NewTypeError(original, "integer")
	}
	return int64(u), nil
}

// floatToInteger truncates f. Values outside [-2^63, 2^63) have no int64
// representation.
func floatToInteger(f float64, original any) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= 0x1p63 || f < -0x1p63 {
		return 0, NewTypeError(original, "integer")
	}
	return int64(f), nil
}

// CastFloat passes numbers through and parses the leading base-10 decimal of
// any other value's text form.
func CastFloat(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, NewTypeError(value, "float")
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, NewTypeError(value, "float")
		}
		return v, nil
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, NewTypeError(value, "float")
		}
		return f, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Convert(reflect.TypeOf(float64(0))).Float()), nil
	}
	text := numericPrefix(CastString(value), true)
	if text == "" {
		return 0, NewTypeError(value, "float")
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, NewTypeError(value, "float").WithCause(err)
	}
	return f, nil
}

// CastBoolean passes booleans through and maps the lower-cased text of any
// other value through the token table.
func CastBoolean(value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, NewTypeError(value, "boolean")
	case bool:
		return v, nil
	}
	token := strings.ToLower(strings.TrimSpace(CastString(value)))
	if truthyTokens[token] {
		return true, nil
	}
	if falsyTokens[token] {
		return false, nil
	}
	return false, NewTypeError(value, "boolean")
}

// CastString renders any value as text. It never fails.
func CastString(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, CastString(item))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CastArray passes sequences through unchanged. Strings are split on commas
// and every element is cast with the subtype caster ("string" when empty).
func CastArray(value any, subtype string) ([]any, error) {
	caster, ok := elementCasters[subtype]
	if !ok {
		return nil, NewTypeError(value, "array of "+subtype)
	}
	switch v := value.(type) {
	case nil:
		return nil, NewTypeError(value, "array")
	case []any:
		return v, nil
	case string:
		parts := strings.Split(v, ",")
		out := make([]any, 0, len(parts))
		for _, part := range parts {
			cast, err := caster(part)
			if err != nil {
				return nil, err
			}
			out = append(out, cast)
		}
		return out, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, NewTypeError(value, "array")
}

var elementCasters = map[string]func(any) (any, error){
	"": func(v any) (any, error) { return CastString(v), nil },
	"string": func(v any) (any, error) {
		return CastString(v), nil
	},
	"integer": func(v any) (any, error) {
		return CastInteger(v)
	},
	"float": func(v any) (any, error) {
		return CastFloat(v)
	},
	"number": func(v any) (any, error) {
		return CastFloat(v)
	},
	"boolean": func(v any) (any, error) {
		return CastBoolean(v)
	},
}

// numericPrefix returns the longest leading numeric literal of s after
// trimming whitespace, or "" when there is none.
func numericPrefix(s string, decimal bool) string {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intDigits := i - digitsStart
	if !decimal {
		if intDigits == 0 {
			return ""
		}
		return s[:i]
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		fracDigits = j - i - 1
		if intDigits > 0 || fracDigits > 0 {
			i = j
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	return s[:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
