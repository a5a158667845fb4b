package internal

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/lychee-technology/eureka"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// JSONAPIBuilder serializes model instances into JSON-API documents. It
// keeps no state between calls; the include queue lives in one Build call.
type JSONAPIBuilder struct {
	database eureka.Database
	baseURI  string
	include  eureka.Include
}

// NewJSONAPIBuilder creates a builder. Arguments are checked when a
// document is built, not here.
func NewJSONAPIBuilder(database eureka.Database, baseURI string, include eureka.Include) *JSONAPIBuilder {
	return &JSONAPIBuilder{database: database, baseURI: baseURI, include: include}
}

// WithInclude returns a copy of the builder using a different include option.
func (b *JSONAPIBuilder) WithInclude(include eureka.Include) *JSONAPIBuilder {
	clone := *b
	clone.include = include
	return &clone
}

// Build serializes a single instance.
func (b *JSONAPIBuilder) Build(ctx context.Context, instance eureka.Instance) (*eureka.Document, error) {
	if err := b.checkPreconditions(); err != nil {
		return nil, err
	}
	if isNil(instance) {
		return nil, eureka.NewPreconditionError(eureka.ErrCodeMissingInstance, "instance is required")
	}

	queue := newIncludeQueue()
	resource, err := b.buildData(instance, queue)
	if err != nil {
		return nil, err
	}
	doc := &eureka.Document{Data: resource}
	return b.attachIncluded(ctx, doc, queue, resource)
}

// BuildMany serializes a collection. A nil slice is a missing instance; an
// empty slice yields empty data.
func (b *JSONAPIBuilder) BuildMany(ctx context.Context, instances []eureka.Instance) (*eureka.Document, error) {
	if err := b.checkPreconditions(); err != nil {
		return nil, err
	}
	if instances == nil {
		return nil, eureka.NewPreconditionError(eureka.ErrCodeMissingInstance, "instance is required")
	}

	queue := newIncludeQueue()
	resources := make([]*eureka.Resource, 0, len(instances))
	for i, instance := range instances {
		if isNil(instance) {
			return nil, eureka.NewPreconditionError(eureka.ErrCodeInvalidInstance,
				fmt.Sprintf("instance at index %d is not a model instance", i))
		}
		resource, err := b.buildData(instance, queue)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	doc := &eureka.Document{Data: resources}
	return b.attachIncluded(ctx, doc, queue, resources...)
}

// Validate checks an inbound payload; see ValidatePayload.
func (b *JSONAPIBuilder) Validate(payload any) error {
	return ValidatePayload(payload)
}

// checkPreconditions runs the checks that do not depend on the instance, in
// order: database presence, database kind, base URI presence, base URI
// validity.
func (b *JSONAPIBuilder) checkPreconditions() error {
	if isNil(b.database) {
		return eureka.NewPreconditionError(eureka.ErrCodeMissingDatabase, "database is required")
	}
	if len(b.database.ListSchemas()) == 0 {
		return eureka.NewPreconditionError(eureka.ErrCodeInvalidDatabase, "database has no registered schemas")
	}
	if b.baseURI == "" {
		return eureka.NewPreconditionError(eureka.ErrCodeMissingBaseURI, "apiBaseUri is required")
	}
	u, err := url.Parse(b.baseURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		perr := eureka.NewPreconditionError(eureka.ErrCodeInvalidBaseURI,
			fmt.Sprintf("apiBaseUri %q is not an absolute URI", b.baseURI))
		if err != nil {
			perr.WithCause(err)
		}
		return perr
	}
	return nil
}

func (b *JSONAPIBuilder) selfLink(typeName, id string) string {
	return strings.TrimRight(b.baseURI, "/") + "/" + kebab(typeName) + "/" + url.PathEscape(id)
}

// buildData serializes one instance. Relation stubs selected by the include
// option are added to queue; a nil queue disables queueing.
func (b *JSONAPIBuilder) buildData(instance eureka.Instance, queue *includeQueue) (*eureka.Resource, error) {
	schema, ok := b.database.Schema(instance.Type())
	if !ok {
		return nil, eureka.NewPreconditionError(eureka.ErrCodeInvalidInstance,
			fmt.Sprintf("instance type %q is not a registered schema", instance.Type()))
	}

	self := b.selfLink(instance.Type(), instance.ID())
	resource := &eureka.Resource{
		ID:    instance.ID(),
		Type:  instance.Type(),
		Links: eureka.ResourceLinks{Self: self},
	}

	for _, p := range schema.Properties() {
		value := instance.Get(p.Name())

		if !p.IsRelation() {
			if value != nil {
				if resource.Attributes == nil {
					resource.Attributes = make(map[string]any)
				}
				resource.Attributes[p.Name()] = value
			}
			continue
		}

		var data any
		var stubs []eureka.ResourceIdentifier
		if p.IsMulti() {
			for _, item := range toList(value) {
				if stub, ok := relationStub(item, p.Type()); ok {
					stubs = append(stubs, stub)
				}
			}
			if len(stubs) > 0 {
				data = stubs
			}
		} else if stub, ok := relationStub(value, p.Type()); ok {
			stubs = append(stubs, stub)
			data = stub
		}
		if data == nil {
			continue
		}

		if queue != nil && b.include.Matches(p.Name()) {
			queue.Add(stubs...)
		}
		if resource.Relationships == nil {
			resource.Relationships = make(map[string]*eureka.Relationship)
		}
		resource.Relationships[p.Name()] = &eureka.Relationship{
			Data: data,
			Links: eureka.RelationshipLinks{
				Self:    self + "/relationships/" + p.Name(),
				Related: self + "/" + p.Name(),
			},
		}
	}
	return resource, nil
}

// attachIncluded resolves the queue when inclusion is enabled. Resources that
// are already primary data are not repeated.
func (b *JSONAPIBuilder) attachIncluded(ctx context.Context, doc *eureka.Document, queue *includeQueue, primary ...*eureka.Resource) (*eureka.Document, error) {
	if !b.include.Enabled() {
		return doc, nil
	}
	skip := NewSet[string]()
	for _, r := range primary {
		skip.Add(r.Identifier().Key())
	}
	pending := make([]eureka.ResourceIdentifier, 0, queue.Len())
	for _, stub := range queue.Items() {
		if !skip.Contains(stub.Key()) {
			pending = append(pending, stub)
		}
	}

	included, err := b.loadIncluded(ctx, pending)
	if err != nil {
		return nil, err
	}
	doc.Included = included
	EmitIncludedCount(ctx, len(included))
	return doc, nil
}

// loadIncluded fetches every stub concurrently and serializes the results in
// stub order. Fetched resources are not expanded further. The first failure
// cancels the remaining fetches and fails the whole step.
func (b *JSONAPIBuilder) loadIncluded(ctx context.Context, stubs []eureka.ResourceIdentifier) ([]*eureka.Resource, error) {
	results := make([]*eureka.Resource, len(stubs))
	g, gctx := errgroup.WithContext(ctx)
	for i, stub := range stubs {
		g.Go(func() error {
			instance, err := b.database.Fetch(gctx, stub.Type, stub.ID)
			if err != nil {
				return fmt.Errorf("failed to include %s/%s: %w", stub.Type, stub.ID, err)
			}
			if isNil(instance) {
				return eureka.NewResourceNotFoundError(stub.Type, stub.ID)
			}
			resource, err := b.buildData(instance, nil)
			if err != nil {
				return err
			}
			results[i] = resource
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zap.S().Warnw("inclusion failed", "stubs", len(stubs), "error", err)
		return nil, err
	}
	return results, nil
}

type includeQueue = OrderedSet[string, eureka.ResourceIdentifier]

func newIncludeQueue() *includeQueue {
	return NewOrderedSet(eureka.ResourceIdentifier.Key)
}

// relationStub reads a `{id, type}` linkage from a relation value. Accepted
// shapes: an Instance, a ResourceIdentifier, a map with "id" (and optionally
// "type"), or a bare id. The property's type is used when none is given.
func relationStub(value any, defaultType string) (eureka.ResourceIdentifier, bool) {
	switch v := value.(type) {
	case nil:
		return eureka.ResourceIdentifier{}, false
	case eureka.ResourceIdentifier:
		return v, v.ID != ""
	case *eureka.ResourceIdentifier:
		if v == nil {
			return eureka.ResourceIdentifier{}, false
		}
		return *v, v.ID != ""
	case eureka.Instance:
		if isNil(v) {
			return eureka.ResourceIdentifier{}, false
		}
		return eureka.ResourceIdentifier{ID: v.ID(), Type: v.Type()}, true
	case map[string]any:
		id := normalizeID(v["id"])
		if id == "" {
			return eureka.ResourceIdentifier{}, false
		}
		typeName, _ := v["type"].(string)
		if typeName == "" {
			typeName = defaultType
		}
		return eureka.ResourceIdentifier{ID: id, Type: typeName}, true
	default:
		id := normalizeID(v)
		return eureka.ResourceIdentifier{ID: id, Type: defaultType}, id != ""
	}
}

func toList(value any) []any {
	if value == nil {
		return nil
	}
	if list, ok := value.([]any); ok {
		return list
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// isNil reports nil interfaces and interfaces holding nil pointers.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
