package simpleitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-item/pkg/simpleitem"
)

func TestAliasedPropertiesResolution(t *testing.T) {
	data := simpleitem.NewPropertyMap()
	view := simpleitem.NewAliasedProperties(data, map[string]string{"headline": "title"})

	view.Set("headline", "Breaking News")

	// The alias and its canonical key address the same entry.
	value, err := view.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Breaking News", value)

	value, err = view.Get("headline")
	require.NoError(t, err)
	assert.Equal(t, "Breaking News", value)

	// The backing map only ever sees the canonical key.
	assert.True(t, data.Contains("title"))
	assert.False(t, data.Contains("headline"))
}

func TestAliasedPropertiesContains(t *testing.T) {
	data := simpleitem.NewPropertyMap()
	view := simpleitem.NewAliasedProperties(data, map[string]string{"headline": "title"})

	// A declared alias whose canonical key holds nothing is not contained.
	assert.False(t, view.Contains("headline"))
	assert.True(t, view.HasAlias("headline"))
	assert.False(t, view.HasAlias("title"))

	view.Set("title", "x")
	assert.True(t, view.Contains("headline"))
}

func TestAliasedPropertiesKeys(t *testing.T) {
	data := simpleitem.NewPropertyMap()
	data.Set("title", "x")
	data.Set("body", "y")
	view := simpleitem.NewAliasedProperties(data, map[string]string{
		"headline": "title",
		"author":   "creator",
	})

	// Keys is the union of alias names and stored keys. The alias
	// "author" is enumerated even though "creator" holds nothing, and
	// reading through it still fails.
	assert.Equal(t, []string{"author", "body", "headline", "title"}, view.Keys())

	_, err := view.Get("author")
	assert.ErrorIs(t, err, simpleitem.ErrPropertyNotFound)
}

func TestAliasedPropertiesTableCopied(t *testing.T) {
	table := map[string]string{"headline": "title"}
	view := simpleitem.NewAliasedProperties(simpleitem.NewPropertyMap(), table)

	table["late"] = "addition"
	assert.False(t, view.HasAlias("late"))
}

func TestCombinedPropertiesLookupOrder(t *testing.T) {
	first := simpleitem.NewPropertyMap()
	second := simpleitem.NewPropertyMap()
	combined := simpleitem.NewCombinedProperties(first, second)

	second.Set("shared", "from second")
	value, err := combined.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, "from second", value)

	// Once the first view holds the key it shadows the second.
	first.Set("shared", "from first")
	value, err = combined.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, "from first", value)

	values, err := combined.GetAll("shared")
	require.NoError(t, err)
	assert.Equal(t, []any{"from first"}, values)
}

func TestCombinedPropertiesWriteTarget(t *testing.T) {
	first := simpleitem.NewPropertyMap()
	second := simpleitem.NewPropertyMap()
	combined := simpleitem.NewCombinedProperties(first, second)

	// Unknown keys land in the last view.
	combined.Set("fresh", 1)
	assert.False(t, first.Contains("fresh"))
	assert.True(t, second.Contains("fresh"))

	// Keys already present are updated in place.
	first.Set("known", "old")
	combined.Set("known", "new")
	value, err := first.Get("known")
	require.NoError(t, err)
	assert.Equal(t, "new", value)
	assert.False(t, second.Contains("known"))
}

func TestCombinedPropertiesKeys(t *testing.T) {
	first := simpleitem.NewPropertyMap()
	second := simpleitem.NewPropertyMap()
	first.Set("b", 1)
	second.Set("a", 2)
	second.Set("b", 3)
	combined := simpleitem.NewCombinedProperties(first, second)

	assert.Equal(t, []string{"a", "b"}, combined.Keys())
	assert.True(t, combined.Contains("a"))
	assert.False(t, combined.Contains("c"))

	_, err := combined.Get("c")
	assert.ErrorIs(t, err, simpleitem.ErrPropertyNotFound)
}
