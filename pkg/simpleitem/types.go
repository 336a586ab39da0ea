package simpleitem

// Format tags of the built-in item variants.
const (
	// FormatBinary identifies the pass-through blob variant.
	FormatBinary = "binary"

	// FormatText identifies the charset-aware text variant.
	FormatText = "text"
)

// ContentKey is the reserved property holding an item's raw content.
// Every item carries it from construction on, defaulting to the empty
// value until content is parsed or written.
const ContentKey = "_content"

// Descriptor is a plain value implementation of AccessDescriptor for
// backends whose layout is known statically. The zero value describes a
// format-less item source with no aliases and no declared properties.
type Descriptor struct {
	// Tag selects the item variant; empty means raw access only.
	Tag string

	// StorageAliasTable maps alias names to canonical storage keys.
	StorageAliasTable map[string]string

	// ParserAliasTable maps alias names to canonical parser keys.
	ParserAliasTable map[string]string

	// Encoding is the default character encoding for item content.
	Encoding string

	// StorageProps lists the property names the backend populates.
	StorageProps []string
}

func (d Descriptor) FormatTag() string { return d.Tag }

func (d Descriptor) StorageAliases() map[string]string { return d.StorageAliasTable }

func (d Descriptor) ParserAliases() map[string]string { return d.ParserAliasTable }

func (d Descriptor) DefaultEncoding() string { return d.Encoding }

func (d Descriptor) StorageProperties() []string { return d.StorageProps }
