package simpleitem

import "sort"

// AliasedProperties wraps a PropertyMap with a name-alias table. Every
// read and write resolves the name through the table (alias to canonical,
// identity when absent) before touching the backing map.
type AliasedProperties struct {
	data    *PropertyMap
	aliases map[string]string
}

// NewAliasedProperties returns a view over data using the given alias
// table. The table is copied; later caller mutation does not leak in.
func NewAliasedProperties(data *PropertyMap, aliases map[string]string) *AliasedProperties {
	table := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		table[alias] = canonical
	}
	return &AliasedProperties{data: data, aliases: table}
}

func (v *AliasedProperties) resolve(key string) string {
	if canonical, ok := v.aliases[key]; ok {
		return canonical
	}
	return key
}

// HasAlias reports whether key is a declared alias name.
func (v *AliasedProperties) HasAlias(key string) bool {
	_, ok := v.aliases[key]
	return ok
}

func (v *AliasedProperties) Get(key string) (any, error) {
	return v.data.Get(v.resolve(key))
}

func (v *AliasedProperties) GetAll(key string) ([]any, error) {
	return v.data.GetAll(v.resolve(key))
}

func (v *AliasedProperties) Set(key string, value any) {
	v.data.Set(v.resolve(key), value)
}

func (v *AliasedProperties) SetAll(key string, values []any) {
	v.data.SetAll(v.resolve(key), values)
}

// Put stores value under the resolved key with PropertyMap.Put semantics.
func (v *AliasedProperties) Put(key string, value any) {
	v.data.Put(v.resolve(key), value)
}

// Contains reports whether the resolved canonical key currently holds an
// entry. A declared alias whose canonical key holds nothing reports
// false.
func (v *AliasedProperties) Contains(key string) bool {
	return v.data.Contains(v.resolve(key))
}

// Keys returns the union of declared alias names and stored canonical
// keys, sorted. An alias name may be enumerated here yet still fail Get:
// the alias declares a name without guaranteeing a stored value.
func (v *AliasedProperties) Keys() []string {
	seen := make(map[string]struct{}, len(v.aliases))
	keys := make([]string, 0, len(v.aliases))
	for alias := range v.aliases {
		seen[alias] = struct{}{}
		keys = append(keys, alias)
	}
	for _, key := range v.data.Keys() {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// CombinedProperties presents an ordered sequence of views as one logical
// view. Lookups fall through to the first view containing the key; writes
// to an unknown key land in the last view.
type CombinedProperties struct {
	views []PropertyView
}

// NewCombinedProperties combines views in lookup order. At least one view
// is required.
func NewCombinedProperties(views ...PropertyView) *CombinedProperties {
	return &CombinedProperties{views: views}
}

func (c *CombinedProperties) Get(key string) (any, error) {
	for _, v := range c.views {
		if v.Contains(key) {
			return v.Get(key)
		}
	}
	return nil, ErrPropertyNotFound
}

func (c *CombinedProperties) GetAll(key string) ([]any, error) {
	for _, v := range c.views {
		if v.Contains(key) {
			return v.GetAll(key)
		}
	}
	return nil, ErrPropertyNotFound
}

func (c *CombinedProperties) Set(key string, value any) {
	c.target(key).Set(key, value)
}

func (c *CombinedProperties) SetAll(key string, values []any) {
	c.target(key).SetAll(key, values)
}

func (c *CombinedProperties) Contains(key string) bool {
	for _, v := range c.views {
		if v.Contains(key) {
			return true
		}
	}
	return false
}

// Keys returns the union of all views' keys, sorted.
func (c *CombinedProperties) Keys() []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	for _, v := range c.views {
		for _, key := range v.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (c *CombinedProperties) target(key string) PropertyView {
	for _, v := range c.views {
		if v.Contains(key) {
			return v
		}
	}
	return c.views[len(c.views)-1]
}
