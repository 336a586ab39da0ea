package simpleitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-item/pkg/simpleitem"
)

func TestPropertyMapSingleValues(t *testing.T) {
	m := simpleitem.NewPropertyMap()

	m.Set("title", "Moby Dick")

	value, err := m.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Moby Dick", value)

	values, err := m.GetAll("title")
	require.NoError(t, err)
	assert.Equal(t, []any{"Moby Dick"}, values)

	// Set replaces whatever was stored before, multi-valued or not.
	m.SetAll("title", []any{"a", "b"})
	m.Set("title", "c")
	values, err = m.GetAll("title")
	require.NoError(t, err)
	assert.Equal(t, []any{"c"}, values)
}

func TestPropertyMapMultiValues(t *testing.T) {
	m := simpleitem.NewPropertyMap()

	m.SetAll("tags", []any{"classic", "novel", "sea"})

	value, err := m.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, "classic", value, "Get returns the first value")

	values, err := m.GetAll("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"classic", "novel", "sea"}, values)
}

func TestPropertyMapPut(t *testing.T) {
	m := simpleitem.NewPropertyMap()

	m.Put("single", 42)
	m.Put("many", []any{1, 2})
	m.Put("names", []string{"x", "y"})

	value, err := m.Get("single")
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	values, err := m.GetAll("many")
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, values)

	values, err = m.GetAll("names")
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, values)
}

func TestPropertyMapMissingKey(t *testing.T) {
	m := simpleitem.NewPropertyMap()

	_, err := m.Get("absent")
	assert.ErrorIs(t, err, simpleitem.ErrPropertyNotFound)

	_, err = m.GetAll("absent")
	assert.ErrorIs(t, err, simpleitem.ErrPropertyNotFound)

	assert.False(t, m.Contains("absent"))
}

func TestPropertyMapNilValue(t *testing.T) {
	m := simpleitem.NewPropertyMap()

	m.Set("placeholder", nil)

	// A stored nil is an entry; only Contains can tell it from absence.
	assert.True(t, m.Contains("placeholder"))
	value, err := m.Get("placeholder")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestPropertyMapKeysSorted(t *testing.T) {
	m := simpleitem.NewPropertyMap()
	m.Set("c", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())
}

func TestPropertyMapGetAllReturnsCopy(t *testing.T) {
	m := simpleitem.NewPropertyMap()
	m.SetAll("tags", []any{"one", "two"})

	values, err := m.GetAll("tags")
	require.NoError(t, err)
	values[0] = "mutated"

	again, err := m.GetAll("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"one", "two"}, again)
}

func TestNewPropertyMapFrom(t *testing.T) {
	m := simpleitem.NewPropertyMapFrom(map[string]any{
		"title": "Dune",
		"tags":  []string{"scifi", "desert"},
	})

	value, err := m.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Dune", value)

	values, err := m.GetAll("tags")
	require.NoError(t, err)
	assert.Equal(t, []any{"scifi", "desert"}, values)
}
