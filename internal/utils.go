package internal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.Trim(part, " \"")
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}
	if len(clean) == 0 {
		clean = []string{name}
	}
	return pgx.Identifier(clean).Sanitize()
}

// kebab turns a type name into its URL path segment: "BlogPost" and
// "blog_post" both become "blog-post".
func kebab(typeName string) string {
	return inflect.Dasherize(typeName)
}

func toUUID(obj any) (uuid.UUID, bool) {
	switch v := obj.(type) {
	case uuid.UUID:
		return v, true
	case *uuid.UUID:
		return *v, true
	case [16]byte:
		return uuid.UUID(v), true
	case string:
		data, err := uuid.Parse(v)
		return data, err == nil
	case []byte:
		if len(v) == 16 {
			data, err := uuid.FromBytes(v)
			return data, err == nil
		}
		data, err := uuid.Parse(string(v))
		return data, err == nil
	default:
		return uuid.Nil, false
	}
}

// normalizeID renders an id of any scalar type as the string used for
// links and deduplication. Numeric 7 and "7" normalize to the same id.
func normalizeID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	case []byte, [16]byte, uuid.UUID, *uuid.UUID:
		if u, ok := toUUID(v); ok {
			return u.String()
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := MapKeys(m)
	sort.Strings(keys)
	return keys
}
