package internal

import (
	"sort"
	"testing"

	"github.com/lychee-technology/eureka"
	"github.com/stretchr/testify/assert"
)

// TestSetAdd tests adding items to a set
func TestSetAdd(t *testing.T) {
	set := NewSet[int]()
	assert.True(t, set.Add(1))
	assert.True(t, set.Add(2))
	assert.True(t, set.Add(3))

	assert.Equal(t, 3, set.Size())
	assert.True(t, set.Contains(1))
	assert.True(t, set.Contains(3))
	assert.False(t, set.Contains(4))
}

// TestSetAddDuplicate tests that adding duplicate items doesn't increase size
func TestSetAddDuplicate(t *testing.T) {
	set := NewSet[string]()
	assert.True(t, set.Add("apple"))
	assert.False(t, set.Add("apple"))
	assert.False(t, set.Add("apple"))

	assert.Equal(t, 1, set.Size())
	assert.True(t, set.Contains("apple"))
}

func TestOrderedSetKeepsFirstOccurrence(t *testing.T) {
	queue := NewOrderedSet(func(r eureka.ResourceIdentifier) string { return r.Key() })
	queue.Add(
		eureka.ResourceIdentifier{Type: "author", ID: "a1"},
		eureka.ResourceIdentifier{Type: "comment", ID: "c1"},
	)
	queue.Add(
		eureka.ResourceIdentifier{Type: "author", ID: "a1"},
		eureka.ResourceIdentifier{Type: "comment", ID: "c2"},
		eureka.ResourceIdentifier{Type: "post", ID: "a1"},
	)

	assert.Equal(t, 4, queue.Len())
	assert.Equal(t, []eureka.ResourceIdentifier{
		{Type: "author", ID: "a1"},
		{Type: "comment", ID: "c1"},
		{Type: "comment", ID: "c2"},
		{Type: "post", ID: "a1"},
	}, queue.Items())
}

func TestOrderedSetEmpty(t *testing.T) {
	queue := NewOrderedSet(func(s string) string { return s })
	assert.Equal(t, 0, queue.Len())
	assert.Empty(t, queue.Items())
}

func TestMapKeys(t *testing.T) {
	keys := MapKeys(map[string]int{"b": 2, "a": 1, "c": 3})
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	assert.Equal(t, []string{}, MapKeys[string, int](nil))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, sortedKeys(map[string]bool{"gamma": true, "alpha": false, "beta": true}))
}
