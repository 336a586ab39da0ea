package simpleitem

import (
	"context"
	"io"
)

// PropertyView is the capability interface shared by every property
// container: the multi-valued map, the aliased view over it, and the
// combined dual-namespace view.
type PropertyView interface {
	// Get returns the first value stored under key
	Get(key string) (any, error)

	// GetAll returns every value stored under key, in order
	GetAll(key string) ([]any, error)

	// Set replaces the values under key with a single value
	Set(key string, value any)

	// SetAll replaces the values under key with an ordered sequence
	SetAll(key string, values []any)

	// Contains reports whether key resolves to a stored entry
	Contains(key string) bool

	// Keys enumerates the names visible through this view
	Keys() []string
}

// AccessDescriptor describes how a backend exposes its items: which
// variant parses their content, how names map between the two property
// namespaces, and which storage properties the backend populates.
type AccessDescriptor interface {
	// FormatTag selects the item variant; empty means raw access only
	FormatTag() string

	// StorageAliases maps alias names to canonical storage keys
	StorageAliases() map[string]string

	// ParserAliases maps alias names to canonical parser keys
	ParserAliases() map[string]string

	// DefaultEncoding is the character encoding item content defaults to
	DefaultEncoding() string

	// StorageProperties lists the property names the backend populates
	StorageProperties() []string
}

// FilenameProvider is an optional AccessDescriptor capability reporting
// the file name backing an item. Purely informational; core logic never
// depends on it.
type FilenameProvider interface {
	FilenameFor(item Item) (string, bool)
}

// StreamFactory produces the raw content stream for an item. It is
// invoked at most once per item; the stream is cached until parsing
// completes and closes it.
type StreamFactory func() (io.ReadCloser, error)

// FormatHooks supplies the format-specific parse and serialize logic of
// an item variant.
type FormatHooks interface {
	// FormatTag returns the static tag this variant handles
	FormatTag() string

	// ParseContent reads the raw stream and extracts parser properties
	ParseContent(r io.Reader) (map[string]any, error)

	// SerializeContent turns the resolved property mapping back into bytes
	SerializeContent(props map[string]any) ([]byte, error)
}

// SubitemLoader materializes the child items of a capsule.
type SubitemLoader interface {
	LoadSubitems() ([]Item, error)
}

// SubitemLoaderFunc adapts a function to the SubitemLoader interface.
type SubitemLoaderFunc func() ([]Item, error)

func (f SubitemLoaderFunc) LoadSubitems() ([]Item, error) { return f() }

// Constructor builds a concrete item variant for a descriptor.
type Constructor func(desc AccessDescriptor, stream StreamFactory, storage map[string]any) (Item, error)

// Item is the public contract of a data item: a unified property view
// assembled from storage-origin and parser-origin namespaces, with
// content parsed lazily on first read.
//
// Implementations embed *BaseItem; the embedded methods carry the lazy
// load and routing behavior.
type Item interface {
	// Read returns the value under key, parsing content first if needed.
	// An absent key yields (nil, nil), never an error.
	Read(key string) (any, error)

	// ReadAll returns every value under key, parsing content first if
	// needed. An absent key yields (nil, nil).
	ReadAll(key string) ([]any, error)

	// Write stores value under key, routing it to the storage or parser
	// namespace. []any and []string values are stored multi-valued.
	// Writing never triggers a parse.
	Write(key string, value any)

	// Keys enumerates the names visible on the item without forcing a
	// parse.
	Keys() []string

	// Serialize parses content if needed, resolves every canonical key
	// and hands the mapping to the variant's serialize hook.
	Serialize() ([]byte, error)

	// Encoding returns the descriptor's default encoding.
	Encoding() string

	// FormatTag returns the variant tag, or "" for a raw-access item.
	FormatTag() string

	// Loaded reports whether content has been parsed.
	Loaded() bool

	// ContentModified reports whether any write landed in the storage
	// namespace.
	ContentModified() bool

	// ParserModified reports whether any write landed in the parser
	// namespace.
	ParserModified() bool

	// Filename reports the backing file name when the descriptor
	// provides one.
	Filename() (string, bool)

	// Descriptor returns the AccessDescriptor the item was built from.
	Descriptor() AccessDescriptor

	// StorageSnapshot returns the canonical storage-origin properties in
	// their written shape, for backends deciding what to persist.
	StorageSnapshot() map[string]any

	markLoaded()
}

// AccessPoint is implemented by storage backends. An access point
// describes its items (AccessDescriptor) and loads, saves, deletes and
// enumerates them by key.
type AccessPoint interface {
	AccessDescriptor

	// Load materializes the item stored under key
	Load(ctx context.Context, key string) (Item, error)

	// Save persists item under key, consulting the item's dirty flags
	Save(ctx context.Context, key string, item Item) error

	// Delete removes the item stored under key
	Delete(ctx context.Context, key string) error

	// List enumerates the keys of every stored item
	List(ctx context.Context) ([]string, error)
}
