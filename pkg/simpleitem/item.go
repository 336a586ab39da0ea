package simpleitem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

// BaseItem carries the shared item behavior: the dual property
// namespaces, the write routing rule and the lazy parse of raw content.
// Variants embed *BaseItem and supply FormatHooks; a BaseItem with nil
// hooks is a bare item exposing raw access only.
//
// A BaseItem is not safe for concurrent use. Callers reusing one item
// across goroutines must serialize access externally.
type BaseItem struct {
	descriptor AccessDescriptor
	hooks      FormatHooks

	streamFactory StreamFactory
	stream        io.ReadCloser

	loaded          bool
	contentModified bool
	parserModified  bool

	rawStorage *PropertyMap
	rawParser  *PropertyMap
	storage    *AliasedProperties
	parser     *AliasedProperties

	// combined resolves aliases and backs the public read surface;
	// rawCombined sees canonical keys only and backs Serialize.
	combined    *CombinedProperties
	rawCombined *CombinedProperties
}

// NewBase constructs an item over desc. storage seeds the storage-origin
// namespace (slice values become multi-valued). stream supplies raw
// content when the item was loaded from a backend; nil is legal for
// items that never parse. hooks selects the variant behavior; nil means
// raw access only. desc must be non-nil.
//
// The reserved ContentKey property is seeded to the empty value through
// the usual namespace routing, without marking a dirty flag.
func NewBase(desc AccessDescriptor, stream StreamFactory, storage map[string]any, hooks FormatHooks) *BaseItem {
	rawStorage := NewPropertyMapFrom(storage)
	rawParser := NewPropertyMap()
	storageView := NewAliasedProperties(rawStorage, desc.StorageAliases())
	parserView := NewAliasedProperties(rawParser, desc.ParserAliases())

	it := &BaseItem{
		descriptor:    desc,
		hooks:         hooks,
		streamFactory: stream,
		rawStorage:    rawStorage,
		rawParser:     rawParser,
		storage:       storageView,
		parser:        parserView,
		combined:      NewCombinedProperties(storageView, parserView),
		rawCombined:   NewCombinedProperties(rawStorage, rawParser),
	}
	it.write(ContentKey, "", false)
	return it
}

// Read returns the value under key, parsing content first if the item is
// not yet loaded. An absent key yields (nil, nil): absence and an
// explicit nil value are indistinguishable by contract. Stream and parse
// failures propagate unmodified.
func (it *BaseItem) Read(key string) (any, error) {
	if err := it.load(); err != nil {
		return nil, err
	}
	value, err := it.combined.Get(key)
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// ReadAll returns every value under key in order, parsing content first
// if needed. An absent key yields (nil, nil).
func (it *BaseItem) ReadAll(key string) ([]any, error) {
	if err := it.load(); err != nil {
		return nil, err
	}
	values, err := it.combined.GetAll(key)
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

// Write stores value under key and marks the receiving namespace dirty.
// The namespace is picked by precedence: declared storage alias, then
// declared parser alias, then canonical presence in the storage
// namespace; unrecognized keys land in the parser namespace. Writing
// never triggers a parse.
func (it *BaseItem) Write(key string, value any) {
	it.write(key, value, true)
}

func (it *BaseItem) write(key string, value any, mark bool) {
	target := it.parser
	if it.storage.HasAlias(key) || (!it.parser.HasAlias(key) && it.storage.Contains(key)) {
		target = it.storage
	}
	target.Put(key, value)
	if !mark {
		return
	}
	if target == it.storage {
		it.contentModified = true
	} else {
		it.parserModified = true
	}
}

// Keys enumerates the names visible on the item, including declared
// alias names, without forcing a parse.
func (it *BaseItem) Keys() []string {
	return it.combined.Keys()
}

// Serialize parses content if needed, resolves every canonical key of
// both namespaces to its current value and hands the mapping to the
// variant's serialize hook. A bare item serializes to empty bytes.
func (it *BaseItem) Serialize() ([]byte, error) {
	if err := it.load(); err != nil {
		return nil, err
	}
	if it.hooks == nil {
		return []byte{}, nil
	}
	props := make(map[string]any)
	for _, key := range it.rawCombined.Keys() {
		value, err := it.Read(key)
		if err != nil {
			return nil, err
		}
		props[key] = value
	}
	return it.hooks.SerializeContent(props)
}

// Encoding returns the descriptor's default encoding.
func (it *BaseItem) Encoding() string {
	return it.descriptor.DefaultEncoding()
}

// FormatTag returns the variant tag, or "" for a bare item.
func (it *BaseItem) FormatTag() string {
	if it.hooks == nil {
		return ""
	}
	return it.hooks.FormatTag()
}

// Loaded reports whether content has been parsed.
func (it *BaseItem) Loaded() bool { return it.loaded }

// ContentModified reports whether any write landed in the storage
// namespace.
func (it *BaseItem) ContentModified() bool { return it.contentModified }

// ParserModified reports whether any write landed in the parser
// namespace.
func (it *BaseItem) ParserModified() bool { return it.parserModified }

// Filename reports the backing file name when the descriptor implements
// FilenameProvider.
func (it *BaseItem) Filename() (string, bool) {
	if p, ok := it.descriptor.(FilenameProvider); ok {
		return p.FilenameFor(it)
	}
	return "", false
}

// Descriptor returns the AccessDescriptor the item was built from.
func (it *BaseItem) Descriptor() AccessDescriptor { return it.descriptor }

// StorageSnapshot returns the canonical storage-origin properties in
// their written shape: single-valued keys map to the value itself,
// multi-valued keys to an []any in order.
func (it *BaseItem) StorageSnapshot() map[string]any {
	keys := it.rawStorage.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		values, err := it.rawStorage.GetAll(key)
		if err != nil {
			continue
		}
		if len(values) == 1 {
			out[key] = values[0]
		} else {
			out[key] = values
		}
	}
	return out
}

func (it *BaseItem) markLoaded() { it.loaded = true }

// load drives the one-way Unloaded to Loaded transition. The stream
// factory is invoked at most once; its stream is cached across a failed
// parse (a retry reads whatever remains) and closed as soon as a parse
// succeeds. Extracted properties flow through Write, so parsing marks
// the parser namespace dirty just like a user write. Failures leave the
// item unloaded and propagate unmodified.
func (it *BaseItem) load() error {
	if it.loaded {
		return nil
	}
	if it.hooks == nil {
		it.loaded = true
		return nil
	}

	var r io.Reader = bytes.NewReader(nil)
	if it.stream != nil {
		r = it.stream
	} else if it.streamFactory != nil {
		stream, err := it.streamFactory()
		if err != nil {
			return err
		}
		it.stream = stream
		r = stream
	}

	extracted, err := it.hooks.ParseContent(r)
	if err != nil {
		return err
	}
	if it.stream != nil {
		it.stream.Close()
		it.stream = nil
	}

	keys := make([]string, 0, len(extracted))
	for key := range extracted {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		it.Write(key, extracted[key])
	}
	it.loaded = true
	return nil
}

// toBytes normalizes a content property value to raw bytes.
func toBytes(value any) []byte {
	switch v := value.(type) {
	case nil:
		return []byte{}
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return fmt.Appendf(nil, "%v", v)
	}
}
