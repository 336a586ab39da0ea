package simpleitem

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Text is the textual item variant: content is decoded from the
// descriptor's default encoding on parse and encoded back on serialize,
// so the content property always holds a UTF-8 string in memory.
type Text struct {
	*BaseItem
}

// NewText constructs a Text item over desc with the given stream factory
// and storage-origin properties.
func NewText(desc AccessDescriptor, stream StreamFactory, storage map[string]any) *Text {
	t := &Text{}
	t.BaseItem = NewBase(desc, stream, storage, t)
	return t
}

func (t *Text) FormatTag() string { return FormatText }

// ParseContent reads the whole stream and decodes it from the item's
// encoding into the content property.
func (t *Text) ParseContent(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(data, t.Encoding())
	if err != nil {
		return nil, err
	}
	return map[string]any{ContentKey: text}, nil
}

// SerializeContent encodes the content property back into the item's
// encoding.
func (t *Text) SerializeContent(props map[string]any) ([]byte, error) {
	return encodeText(string(toBytes(props[ContentKey])), t.Encoding())
}

// Content is shorthand for reading the content property.
func (t *Text) Content() (any, error) {
	return t.Read(ContentKey)
}

// SetContent is shorthand for writing the content property.
func (t *Text) SetContent(value any) {
	t.Write(ContentKey, value)
}

// decodeText converts raw bytes in the named charset to a UTF-8 string.
func decodeText(data []byte, name string) (string, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeText converts a UTF-8 string to raw bytes in the named charset.
func encodeText(text string, name string) ([]byte, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(text), nil
	}
	return enc.NewEncoder().Bytes([]byte(text))
}

// lookupEncoding resolves an IANA charset name. The empty name and UTF-8
// short-circuit to the identity transform (nil encoding).
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		// Registered name without an implementation in x/text.
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}
