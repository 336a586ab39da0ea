package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-item/pkg/simpleitem"
)

// Config options for the in-memory access point.
type Config struct {
	Format         string            // item format tag (default: "binary")
	Encoding       string            // default content encoding (default: "utf-8")
	StorageAliases map[string]string // alias -> canonical storage key
	ParserAliases  map[string]string // alias -> canonical parser key
	Properties     []string          // storage property names carried by records
	Registry       *simpleitem.Registry
}

// record is one stored item: its storage properties plus serialized content.
type record struct {
	id      uuid.UUID
	props   map[string]any
	content []byte
}

// AccessPoint is an in-memory implementation of the simpleitem.AccessPoint
// interface, intended for tests and examples.
type AccessPoint struct {
	mu       sync.RWMutex
	cfg      Config
	registry *simpleitem.Registry
	records  map[string]*record
}

// New creates a new in-memory access point.
func New(cfg Config) *AccessPoint {
	if cfg.Format == "" {
		cfg.Format = simpleitem.FormatBinary
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "utf-8"
	}
	registry := cfg.Registry
	if registry == nil {
		registry = simpleitem.DefaultRegistry()
	}
	return &AccessPoint{
		cfg:      cfg,
		registry: registry,
		records:  make(map[string]*record),
	}
}

// AccessDescriptor implementation

func (p *AccessPoint) FormatTag() string { return p.cfg.Format }

func (p *AccessPoint) StorageAliases() map[string]string { return p.cfg.StorageAliases }

func (p *AccessPoint) ParserAliases() map[string]string { return p.cfg.ParserAliases }

func (p *AccessPoint) DefaultEncoding() string { return p.cfg.Encoding }

// StorageProperties lists the configured property names plus the
// backend-owned "id" and "size" properties populated on every load.
func (p *AccessPoint) StorageProperties() []string {
	names := make([]string, 0, len(p.cfg.Properties)+2)
	names = append(names, p.cfg.Properties...)
	return append(names, "id", "size")
}

// NewItem builds a new, never-stored item for this access point.
func (p *AccessPoint) NewItem(properties map[string]any) (simpleitem.Item, error) {
	return p.registry.NewFresh(p, properties)
}

// Load materializes the item stored under key. Content stays unread until
// the item first parses it.
func (p *AccessPoint) Load(ctx context.Context, key string) (simpleitem.Item, error) {
	p.mu.RLock()
	rec, exists := p.records[key]
	if !exists {
		p.mu.RUnlock()
		return nil, &simpleitem.StoreError{Backend: "memory", Key: key, Op: "load", Err: simpleitem.ErrItemNotFound}
	}
	props := make(map[string]any, len(rec.props)+2)
	for name, value := range rec.props {
		props[name] = value
	}
	props["id"] = rec.id.String()
	props["size"] = int64(len(rec.content))
	p.mu.RUnlock()

	stream := func() (io.ReadCloser, error) {
		p.mu.RLock()
		defer p.mu.RUnlock()
		rec, exists := p.records[key]
		if !exists {
			return nil, &simpleitem.StoreError{Backend: "memory", Key: key, Op: "open", Err: simpleitem.ErrItemNotFound}
		}
		data := make([]byte, len(rec.content))
		copy(data, rec.content)
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	item, err := p.registry.New(p, stream, props)
	if err != nil {
		return nil, &simpleitem.StoreError{Backend: "memory", Key: key, Op: "load", Err: err}
	}
	return item, nil
}

// Save persists item under key. The item's dirty flags decide the work: a
// clean, already-stored item is left untouched; a storage-dirty item has
// its property record rewritten; a parser-dirty item is serialized and its
// content replaced. New keys always store both parts.
func (p *AccessPoint) Save(ctx context.Context, key string, item simpleitem.Item) error {
	p.mu.RLock()
	existing := p.records[key]
	p.mu.RUnlock()

	isNew := existing == nil
	if !isNew && !item.ContentModified() && !item.ParserModified() {
		return nil
	}

	var content []byte
	if isNew || item.ParserModified() {
		// Serialize may trigger the item's lazy parse, which reads back
		// through this access point; keep the lock released until done.
		data, err := item.Serialize()
		if err != nil {
			return &simpleitem.StoreError{Backend: "memory", Key: key, Op: "save", Err: err}
		}
		content = data
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	rec, exists := p.records[key]
	if !exists {
		rec = &record{id: uuid.New()}
		p.records[key] = rec
	}
	if isNew || item.ContentModified() {
		rec.props = ownProperties(item)
	}
	if isNew || item.ParserModified() {
		rec.content = content
	}
	return nil
}

// Delete removes the item stored under key.
func (p *AccessPoint) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.records[key]; !exists {
		return &simpleitem.StoreError{Backend: "memory", Key: key, Op: "delete", Err: simpleitem.ErrItemNotFound}
	}
	delete(p.records, key)
	return nil
}

// List enumerates the keys of every stored item, sorted.
func (p *AccessPoint) List(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.records))
	for key := range p.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// ownProperties extracts the item's storage snapshot minus the
// backend-owned properties recomputed on every load.
func ownProperties(item simpleitem.Item) map[string]any {
	props := item.StorageSnapshot()
	delete(props, "id")
	delete(props, "size")
	return props
}
