package eureka

import (
	"context"
	"strings"
)

// ResourceIdentifier is the `{id, type}` linkage used in relationships.
type ResourceIdentifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Key is the deduplication key used for compound documents.
func (r ResourceIdentifier) Key() string {
	return r.Type + "\x00" + r.ID
}

// ResourceLinks holds the links of a resource object.
type ResourceLinks struct {
	Self string `json:"self"`
}

// RelationshipLinks holds the links of a relationship object.
type RelationshipLinks struct {
	Self    string `json:"self"`
	Related string `json:"related"`
}

// Relationship is one entry of a resource's `relationships` member. Data is a
// ResourceIdentifier or a []ResourceIdentifier.
type Relationship struct {
	Data  any               `json:"data"`
	Links RelationshipLinks `json:"links"`
}

// Identifiers returns the linkage as a slice regardless of cardinality.
func (r *Relationship) Identifiers() []ResourceIdentifier {
	switch v := r.Data.(type) {
	case ResourceIdentifier:
		return []ResourceIdentifier{v}
	case []ResourceIdentifier:
		return v
	default:
		return nil
	}
}

// Resource is a JSON-API resource object.
type Resource struct {
	ID            string                   `json:"id"`
	Type          string                   `json:"type"`
	Attributes    map[string]any           `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
	Links         ResourceLinks            `json:"links"`
}

// Identifier returns the resource's `{id, type}` pair.
func (r *Resource) Identifier() ResourceIdentifier {
	return ResourceIdentifier{ID: r.ID, Type: r.Type}
}

// Document is a JSON-API top-level document. Data is a *Resource or a
// []*Resource.
type Document struct {
	Data     any         `json:"data"`
	Included []*Resource `json:"included,omitempty"`
}

// Resource returns the primary data when the document carries one resource.
func (d *Document) Resource() (*Resource, bool) {
	r, ok := d.Data.(*Resource)
	return r, ok
}

// Resources returns the primary data when the document carries a collection.
func (d *Document) Resources() ([]*Resource, bool) {
	r, ok := d.Data.([]*Resource)
	return r, ok
}

// Include selects which relations are side-loaded into `included`.
type Include struct {
	All      bool
	Relation string
}

// IncludeAll side-loads every relation.
func IncludeAll() Include { return Include{All: true} }

// IncludeRelation side-loads a single named relation.
func IncludeRelation(name string) Include { return Include{Relation: name} }

// ParseInclude reads the CLI/query form: "", "false", "true", "all" or a
// relation name.
func ParseInclude(raw string) Include {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "none":
		return Include{}
	case "true", "all", "*":
		return IncludeAll()
	default:
		return IncludeRelation(strings.TrimSpace(raw))
	}
}

// Enabled reports whether any inclusion was requested.
func (i Include) Enabled() bool {
	return i.All || i.Relation != ""
}

// Matches reports whether the relation named property should be side-loaded.
func (i Include) Matches(property string) bool {
	return i.All || (i.Relation != "" && i.Relation == property)
}

// DocumentBuilder serializes instances into JSON-API documents.
type DocumentBuilder interface {
	Build(ctx context.Context, instance Instance) (*Document, error)
	BuildMany(ctx context.Context, instances []Instance) (*Document, error)
	// Validate checks the shape of an inbound JSON-API payload.
	Validate(payload any) error
}
