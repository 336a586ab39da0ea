package simpleitem

import (
	"errors"
	"sort"
)

// Registry maps format tags to item variant constructors. Registries are
// populated at initialization; dispatch failures are configuration
// errors, never fallbacks. Once construction completes a Registry is
// safe for concurrent readers.
type Registry struct {
	formats map[string]Constructor
}

// RegistryOption configures a Registry under construction.
type RegistryOption func(*Registry) error

// WithFormat registers ctor under tag.
func WithFormat(tag string, ctor Constructor) RegistryOption {
	return func(r *Registry) error {
		return r.Register(tag, ctor)
	}
}

// NewRegistry builds a Registry and applies the given options.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	r := &Registry{formats: make(map[string]Constructor)}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a Registry carrying the built-in "binary" and
// "text" variants.
func DefaultRegistry() *Registry {
	return &Registry{formats: map[string]Constructor{
		FormatBinary: func(desc AccessDescriptor, stream StreamFactory, storage map[string]any) (Item, error) {
			return NewAtom(desc, stream, storage), nil
		},
		FormatText: func(desc AccessDescriptor, stream StreamFactory, storage map[string]any) (Item, error) {
			return NewText(desc, stream, storage), nil
		},
	}}
}

// Register adds ctor under tag. Registering the same tag twice reports
// ErrDuplicateFormat.
func (r *Registry) Register(tag string, ctor Constructor) error {
	if tag == "" {
		return &FormatError{Tag: tag, Op: "register", Err: errors.New("empty format tag")}
	}
	if ctor == nil {
		return &FormatError{Tag: tag, Op: "register", Err: errors.New("nil constructor")}
	}
	if _, ok := r.formats[tag]; ok {
		return &FormatError{Tag: tag, Op: "register", Err: ErrDuplicateFormat}
	}
	r.formats[tag] = ctor
	return nil
}

// Contains reports whether a constructor is registered under tag.
func (r *Registry) Contains(tag string) bool {
	_, ok := r.formats[tag]
	return ok
}

// Tags returns the registered format tags, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.formats))
	for tag := range r.formats {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Resolve returns the constructor registered under tag, reporting
// ErrParserNotAvailable for an unknown tag.
func (r *Registry) Resolve(tag string) (Constructor, error) {
	ctor, ok := r.formats[tag]
	if !ok {
		return nil, &FormatError{Tag: tag, Op: "resolve", Err: ErrParserNotAvailable}
	}
	return ctor, nil
}

// New builds an item for desc. An empty format tag yields a bare item
// with raw access and no parse hook; any other tag dispatches to the
// registered variant constructor.
func (r *Registry) New(desc AccessDescriptor, stream StreamFactory, storage map[string]any) (Item, error) {
	tag := desc.FormatTag()
	if tag == "" {
		return NewBase(desc, stream, storage, nil), nil
	}
	ctor, err := r.Resolve(tag)
	if err != nil {
		return nil, err
	}
	return ctor(desc, stream, storage)
}

// NewFresh builds a new, never-persisted item for desc. The storage
// namespace is pre-populated with a nil placeholder for every declared
// storage property, so caller writes route there by presence. The item
// is marked loaded (there is nothing to parse), ContentKey defaults to
// the empty value, and every entry of properties is written through the
// usual routing rule, marking dirty flags for the backend to persist.
func (r *Registry) NewFresh(desc AccessDescriptor, properties map[string]any) (Item, error) {
	declared := desc.StorageProperties()
	skeleton := make(map[string]any, len(declared))
	for _, name := range declared {
		skeleton[name] = nil
	}

	item, err := r.New(desc, nil, skeleton)
	if err != nil {
		return nil, err
	}
	item.markLoaded()

	props := make(map[string]any, len(properties)+1)
	for key, value := range properties {
		props[key] = value
	}
	if _, ok := props[ContentKey]; !ok {
		props[ContentKey] = ""
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		item.Write(key, props[key])
	}
	return item, nil
}
