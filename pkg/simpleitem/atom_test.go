package simpleitem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-item/pkg/simpleitem"
)

func TestAtomParsePassThrough(t *testing.T) {
	atom := simpleitem.NewAtom(simpleitem.Descriptor{Tag: simpleitem.FormatBinary}, streamOf("\x00\x01binary\xff"), nil)

	content, err := atom.Content()
	require.NoError(t, err)
	assert.Equal(t, []byte("\x00\x01binary\xff"), content)
	assert.True(t, atom.Loaded())
}

func TestAtomRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain text", "hello, world"},
		{"binary bytes", "\x00\xff\x10"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atom := simpleitem.NewAtom(simpleitem.Descriptor{Tag: simpleitem.FormatBinary}, streamOf(tt.content), nil)

			data, err := atom.Serialize()
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.content), data)
		})
	}
}

func TestAtomSetContent(t *testing.T) {
	atom := simpleitem.NewAtom(simpleitem.Descriptor{Tag: simpleitem.FormatBinary}, streamOf("before"), nil)

	// Load, then replace the content.
	_, err := atom.Content()
	require.NoError(t, err)
	atom.SetContent("after")

	data, err := atom.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte("after"), data)
	assert.True(t, atom.ParserModified())
}
