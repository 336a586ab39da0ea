package simpleitem

import "io"

// Atom is the leaf item variant: content is an opaque blob, passed
// through parsing and serialization unchanged.
type Atom struct {
	*BaseItem
}

// NewAtom constructs an Atom over desc with the given stream factory and
// storage-origin properties.
func NewAtom(desc AccessDescriptor, stream StreamFactory, storage map[string]any) *Atom {
	a := &Atom{}
	a.BaseItem = NewBase(desc, stream, storage, a)
	return a
}

func (a *Atom) FormatTag() string { return FormatBinary }

// ParseContent reads the whole stream eagerly into the content property.
func (a *Atom) ParseContent(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return map[string]any{ContentKey: data}, nil
}

// SerializeContent returns the content property unchanged.
func (a *Atom) SerializeContent(props map[string]any) ([]byte, error) {
	return toBytes(props[ContentKey]), nil
}

// Content is shorthand for reading the content property.
func (a *Atom) Content() (any, error) {
	return a.Read(ContentKey)
}

// SetContent is shorthand for writing the content property.
func (a *Atom) SetContent(value any) {
	a.Write(ContentKey, value)
}
