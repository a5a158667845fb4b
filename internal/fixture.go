package internal

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/lychee-technology/eureka"
)

const loremText = `lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod
tempor incididunt ut labore et dolore magna aliqua ut enim ad minim veniam quis
nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat duis
aute irure dolor in reprehenderit in voluptate velit esse cillum dolore eu fugiat
nulla pariatur excepteur sint occaecat cupidatat non proident sunt in culpa qui
officia deserunt mollit anim id est laborum`

var loremWords = strings.Fields(loremText)

var (
	fixtureDateMin = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	fixtureDateMax = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
)

const (
	defaultFixtureMaxItems = 8
	fixtureNumberRange     = 1000
	fixtureMaxWords        = 6
)

// FixtureGenerator produces synthetic property values. A seeded generator
// is deterministic; the default one draws from the global source.
type FixtureGenerator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	maxItems int
}

var defaultFixtures = &FixtureGenerator{maxItems: defaultFixtureMaxItems}

// NewFixtureGenerator creates a generator. seed 0 uses the global random
// source; maxItems bounds multi-valued fixtures.
func NewFixtureGenerator(seed int64, maxItems int) *FixtureGenerator {
	if maxItems < 1 {
		maxItems = defaultFixtureMaxItems
	}
	g := &FixtureGenerator{maxItems: maxItems}
	if seed != 0 {
		g.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}
	return g
}

func (g *FixtureGenerator) intN(n int) int {
	if g.rng == nil {
		return rand.IntN(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

func (g *FixtureGenerator) int64N(n int64) int64 {
	if g.rng == nil {
		return rand.Int64N(n)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Int64N(n)
}

func (g *FixtureGenerator) float64() float64 {
	if g.rng == nil {
		return rand.Float64()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Schema builds a fixture object for every non-relation property.
func (g *FixtureGenerator) Schema(schema eureka.ModelSchema) map[string]any {
	out := make(map[string]any)
	for _, p := range schema.Properties() {
		if value, ok := g.Property(p); ok {
			out[p.Name()] = value
		}
	}
	return out
}

// Property generates a value for p. Relations yield no value.
func (g *FixtureGenerator) Property(p eureka.ModelSchemaProperty) (any, bool) {
	if p.IsRelation() {
		return nil, false
	}
	if !p.IsMulti() {
		return g.scalar(p), true
	}
	n := 1 + g.intN(g.maxItems)
	list := make([]any, n)
	for i := range list {
		list[i] = g.scalar(p)
	}
	return list, true
}

func (g *FixtureGenerator) scalar(p eureka.ModelSchemaProperty) any {
	if custom := p.Config().Fixture; custom != nil {
		return custom()
	}
	validations := p.Validations()
	integer := false
	for _, c := range validations {
		switch ConstraintName(c.Name) {
		case ConstraintValid:
			if args := spreadParams(c.Params); len(args) > 0 {
				return args[g.intN(len(args))]
			}
		case ConstraintInteger:
			integer = true
		}
	}

	switch ConstraintName(validations[0].Name) {
	case ConstraintString:
		return g.words(1 + g.intN(fixtureMaxWords))
	case ConstraintNumber:
		if integer {
			return float64(g.intN(fixtureNumberRange))
		}
		return g.float64() * fixtureNumberRange
	case ConstraintBoolean:
		return g.intN(2) == 1
	case ConstraintDate:
		span := fixtureDateMax.Sub(fixtureDateMin)
		return fixtureDateMin.Add(time.Duration(g.int64N(int64(span / time.Second))) * time.Second)
	case ConstraintArray:
		n := 1 + g.intN(g.maxItems)
		list := make([]any, n)
		for i := range list {
			list[i] = g.words(1)
		}
		return list
	case ConstraintObject:
		return map[string]any{}
	default:
		return g.words(1)
	}
}

// words returns n consecutive lorem words from a random offset.
func (g *FixtureGenerator) words(n int) string {
	start := g.intN(len(loremWords))
	out := make([]string, n)
	for i := range out {
		out[i] = loremWords[(start+i)%len(loremWords)]
	}
	return strings.Join(out, " ")
}
