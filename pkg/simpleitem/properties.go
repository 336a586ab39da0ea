package simpleitem

import "sort"

// PropertyMap is a multi-valued key/value container. A key holds an
// ordered sequence of values; whether an entry is single or multi-valued
// is decided by what was written, not by schema. Key enumeration order
// carries no meaning and is sorted for determinism.
type PropertyMap struct {
	values map[string][]any
}

// NewPropertyMap returns an empty PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{values: make(map[string][]any)}
}

// NewPropertyMapFrom returns a PropertyMap seeded from seed. Slice values
// become multi-valued entries, everything else single values. The seed
// map is not retained.
func NewPropertyMapFrom(seed map[string]any) *PropertyMap {
	m := NewPropertyMap()
	for key, value := range seed {
		m.Put(key, value)
	}
	return m
}

// Get returns the first value stored under key.
func (m *PropertyMap) Get(key string) (any, error) {
	values, ok := m.values[key]
	if !ok || len(values) == 0 {
		return nil, ErrPropertyNotFound
	}
	return values[0], nil
}

// GetAll returns a copy of every value stored under key, in order.
func (m *PropertyMap) GetAll(key string) ([]any, error) {
	values, ok := m.values[key]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	out := make([]any, len(values))
	copy(out, values)
	return out, nil
}

// Set replaces the values under key with a single value. A nil value is
// a legal entry, distinguishable from absence only through Contains.
func (m *PropertyMap) Set(key string, value any) {
	m.values[key] = []any{value}
}

// SetAll replaces the values under key with a copy of values.
func (m *PropertyMap) SetAll(key string, values []any) {
	vs := make([]any, len(values))
	copy(vs, values)
	m.values[key] = vs
}

// Put stores value under key, treating []any and []string values as
// ordered sequences and everything else as a single value.
func (m *PropertyMap) Put(key string, value any) {
	switch v := value.(type) {
	case []any:
		m.SetAll(key, v)
	case []string:
		vs := make([]any, len(v))
		for i, s := range v {
			vs[i] = s
		}
		m.values[key] = vs
	default:
		m.Set(key, value)
	}
}

// Contains reports whether key holds an entry.
func (m *PropertyMap) Contains(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the stored keys, sorted.
func (m *PropertyMap) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
