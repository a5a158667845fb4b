package internal

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/lychee-technology/eureka"
)

// payloadSchema is the shape every inbound JSON-API document must have:
// data.type is a required string; id, attributes and relationships are
// optional and loosely typed.
var payloadSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"data"},
	Properties: map[string]*jsonschema.Schema{
		"data": {
			Type:     "object",
			Required: []string{"type"},
			Properties: map[string]*jsonschema.Schema{
				"type":          {Type: "string"},
				"id":            {Types: []string{"string", "number"}},
				"attributes":    {Type: "object"},
				"relationships": {Type: "object"},
			},
		},
	},
}

var resolvedPayloadSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return payloadSchema.Resolve(&jsonschema.ResolveOptions{})
})

// ValidatePayload checks an inbound payload given as raw JSON ([]byte or
// string) or as an already decoded value.
func ValidatePayload(payload any) error {
	_, err := decodePayload(payload)
	return err
}

func decodePayload(payload any) (map[string]any, error) {
	var doc any
	switch p := payload.(type) {
	case nil:
		return nil, invalidPayload("payload is empty", nil)
	case []byte:
		if err := json.Unmarshal(p, &doc); err != nil {
			return nil, invalidPayload("payload is not valid JSON", err)
		}
	case string:
		if err := json.Unmarshal([]byte(p), &doc); err != nil {
			return nil, invalidPayload("payload is not valid JSON", err)
		}
	case map[string]any:
		doc = p
	default:
		// normalize structs and typed maps into plain JSON values
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, invalidPayload("payload cannot be encoded as JSON", err)
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, invalidPayload("payload is not valid JSON", err)
		}
	}

	resolved, err := resolvedPayloadSchema()
	if err != nil {
		return nil, eureka.NewInternalError("failed to resolve payload schema", err)
	}
	if err := resolved.Validate(doc); err != nil {
		return nil, invalidPayload(err.Error(), err)
	}
	return doc.(map[string]any), nil
}

// DecodePayload validates an inbound document and flattens its primary data
// into a plain object: id, type, every attribute, and each relationship's
// linkage as `{id, type}` (or a list of them).
func DecodePayload(payload any) (map[string]any, error) {
	doc, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	data := doc["data"].(map[string]any)

	out := make(map[string]any)
	if attrs, ok := data["attributes"].(map[string]any); ok {
		for k, v := range attrs {
			out[k] = v
		}
	}
	if rels, ok := data["relationships"].(map[string]any); ok {
		for name, raw := range rels {
			rel, ok := raw.(map[string]any)
			if !ok {
				return nil, invalidPayload(fmt.Sprintf("relationship %q must be an object", name), nil)
			}
			linkage, err := decodeLinkage(name, rel["data"])
			if err != nil {
				return nil, err
			}
			out[name] = linkage
		}
	}
	out["type"] = data["type"]
	if id, ok := data["id"]; ok && id != nil {
		out["id"] = normalizeID(id)
	}
	return out, nil
}

func decodeLinkage(name string, data any) (any, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return identifierObject(name, v)
	case []any:
		list := make([]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, invalidPayload(fmt.Sprintf("relationship %q contains a non-object identifier", name), nil)
			}
			obj, err := identifierObject(name, m)
			if err != nil {
				return nil, err
			}
			list = append(list, obj)
		}
		return list, nil
	default:
		return nil, invalidPayload(fmt.Sprintf("relationship %q data must be an object, a list or null", name), nil)
	}
}

func identifierObject(name string, m map[string]any) (map[string]any, error) {
	typeName, _ := m["type"].(string)
	id := normalizeID(m["id"])
	if typeName == "" || id == "" {
		return nil, invalidPayload(fmt.Sprintf("relationship %q identifier needs id and type", name), nil)
	}
	return map[string]any{"id": id, "type": typeName}, nil
}

func invalidPayload(message string, cause error) error {
	err := &eureka.EurekaError{
		Type:    eureka.ErrorTypeValidation,
		Code:    eureka.ErrCodeInvalidPayload,
		Message: message,
	}
	if cause != nil {
		err.Cause = cause
	}
	return err
}
