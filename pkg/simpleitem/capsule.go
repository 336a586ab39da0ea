package simpleitem

// Capsule is the composite item variant: content is an ordered,
// change-tracked sequence of child items, materialized on first access.
// Capsule has no format tag of its own and is never registered directly;
// concrete composite formats embed it and supply hooks plus a
// SubitemLoader.
type Capsule struct {
	*BaseItem
	loader   SubitemLoader
	subitems *SubitemList
}

// NewCapsule constructs a Capsule over desc. hooks may be nil for a
// composite with raw property access only. loader materializes the child
// items on first Subitems call.
func NewCapsule(desc AccessDescriptor, stream StreamFactory, storage map[string]any, hooks FormatHooks, loader SubitemLoader) *Capsule {
	return &Capsule{
		BaseItem: NewBase(desc, stream, storage, hooks),
		loader:   loader,
	}
}

// Subitems returns the capsule's child items, invoking the loader on
// first call and memoizing the result. A loader failure is returned and
// the load retried on the next call.
//
// Calling Subitems on a capsule without a loader panics: a missing
// loader is a programming defect, not a runtime condition.
func (c *Capsule) Subitems() (*SubitemList, error) {
	if c.subitems != nil {
		return c.subitems, nil
	}
	if c.loader == nil {
		panic("simpleitem: capsule has no subitem loader")
	}
	items, err := c.loader.LoadSubitems()
	if err != nil {
		return nil, err
	}
	c.subitems = newSubitemList(items)
	return c.subitems, nil
}

// SubitemList is an ordered sequence of child items recording whether it
// has been mutated since it was loaded. Index arguments follow slice
// semantics: out-of-range indexes panic.
type SubitemList struct {
	items    []Item
	modified bool
}

func newSubitemList(items []Item) *SubitemList {
	out := make([]Item, len(items))
	copy(out, items)
	return &SubitemList{items: out}
}

// Len returns the number of items in the sequence.
func (l *SubitemList) Len() int { return len(l.items) }

// At returns the item at index i.
func (l *SubitemList) At(i int) Item { return l.items[i] }

// Items returns a copy of the sequence in order.
func (l *SubitemList) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Modified reports whether the sequence was mutated since it was loaded.
func (l *SubitemList) Modified() bool { return l.modified }

// Append adds item at the end of the sequence.
func (l *SubitemList) Append(item Item) {
	l.items = append(l.items, item)
	l.modified = true
}

// Insert places item at index i, shifting later items right.
func (l *SubitemList) Insert(i int, item Item) {
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = item
	l.modified = true
}

// Remove deletes and returns the item at index i.
func (l *SubitemList) Remove(i int) Item {
	item := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.modified = true
	return item
}

// Set replaces the item at index i.
func (l *SubitemList) Set(i int, item Item) {
	l.items[i] = item
	l.modified = true
}

// Move reorders the item at index from to index to, where to addresses
// the resulting sequence.
func (l *SubitemList) Move(from, to int) {
	if from == to {
		return
	}
	item := l.items[from]
	l.items = append(l.items[:from], l.items[from+1:]...)
	l.items = append(l.items, nil)
	copy(l.items[to+1:], l.items[to:])
	l.items[to] = item
	l.modified = true
}
