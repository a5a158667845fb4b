package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/lychee-technology/eureka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := LoadRegistry([]eureka.SchemaConfig{
		{Name: "event", Properties: []eureka.PropertyConfig{
			{Name: "title", Type: "string", Validations: []eureka.Constraint{eureka.C("required")}},
			{Name: "seats", Type: "integer"},
			{Name: "price", Type: "float"},
			{Name: "public", Type: "boolean"},
			{Name: "startsAt", Type: "datetime"},
			{Name: "status", Type: "string", Validations: []eureka.Constraint{eureka.C("valid", []any{"draft", "live"})}},
			{Name: "labels", Type: "string", Multi: &eureka.MultiConfig{}},
			{Name: "meta", Type: "object"},
			{Name: "code", Type: "string", Fixture: func() any { return "EV-1" }},
			{Name: "venue", Type: "venue"},
		}},
		{Name: "venue", Properties: []eureka.PropertyConfig{{Name: "name", Type: "string"}}},
	})
	require.NoError(t, err)
	return registry
}

func TestFixtureGeneratorSeedIsDeterministic(t *testing.T) {
	event := mustSchema(t, fixtureRegistry(t), "event")

	first := NewFixtureGenerator(42, 4).Schema(event)
	second := NewFixtureGenerator(42, 4).Schema(event)
	assert.Equal(t, first, second)
}

func TestFixtureGeneratorValuesValidate(t *testing.T) {
	event := mustSchema(t, fixtureRegistry(t), "event")
	gen := NewFixtureGenerator(7, 5)

	for i := 0; i < 20; i++ {
		fixture := gen.Schema(event)
		_, err := event.Validate(fixture, nil)
		require.NoError(t, err, "fixture %v", fixture)

		assert.NotContains(t, fixture, "venue")
		assert.Equal(t, "EV-1", fixture["code"])
		assert.Contains(t, []any{"draft", "live"}, fixture["status"])
		assert.Equal(t, map[string]any{}, fixture["meta"])

		seats := fixture["seats"].(float64)
		assert.Equal(t, float64(int64(seats)), seats)

		startsAt := fixture["startsAt"].(time.Time)
		assert.False(t, startsAt.Before(fixtureDateMin))
		assert.True(t, startsAt.Before(fixtureDateMax))

		labels := fixture["labels"].([]any)
		assert.GreaterOrEqual(t, len(labels), 1)
		assert.LessOrEqual(t, len(labels), 5)
	}
}

func TestFixtureGeneratorProperty(t *testing.T) {
	event := mustSchema(t, fixtureRegistry(t), "event")
	gen := NewFixtureGenerator(1, 0)

	venue, _ := event.Property("venue")
	value, ok := gen.Property(venue)
	assert.False(t, ok)
	assert.Nil(t, value)

	public, _ := event.Property("public")
	value, ok = gen.Property(public)
	assert.True(t, ok)
	assert.IsType(t, true, value)

	title, _ := event.Property("title")
	value, ok = gen.Property(title)
	require.True(t, ok)
	assert.NotEmpty(t, value)
}

func TestFixtureGeneratorDefaultMaxItems(t *testing.T) {
	gen := NewFixtureGenerator(3, -1)
	assert.Equal(t, defaultFixtureMaxItems, gen.maxItems)
	assert.NotNil(t, gen.rng)

	unseeded := NewFixtureGenerator(0, 2)
	assert.Nil(t, unseeded.rng)
	assert.Equal(t, 2, unseeded.maxItems)
}

func TestFixtureWords(t *testing.T) {
	gen := NewFixtureGenerator(9, 1)
	assert.Len(t, strings.Fields(gen.words(4)), 4)
}
