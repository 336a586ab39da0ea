package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tendant/simple-item/pkg/simpleitem"
)

// Config options for the filesystem access point.
type Config struct {
	BaseDir        string            // base directory holding item files
	Format         string            // item format tag (default: "binary")
	Encoding       string            // default content encoding (default: "utf-8")
	StorageAliases map[string]string // alias -> canonical storage key
	ParserAliases  map[string]string // alias -> canonical parser key
	Registry       *simpleitem.Registry
}

// AccessPoint is a filesystem implementation of the simpleitem.AccessPoint
// interface. Item keys are slash-separated paths relative to the base
// directory; storage properties are derived from file metadata.
type AccessPoint struct {
	cfg      Config
	baseDir  string
	registry *simpleitem.Registry
}

// New creates a new filesystem access point, creating the base directory
// if it does not exist.
func New(cfg Config) (*AccessPoint, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
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
	return &AccessPoint{cfg: cfg, baseDir: cfg.BaseDir, registry: registry}, nil
}

// AccessDescriptor implementation

func (p *AccessPoint) FormatTag() string { return p.cfg.Format }

func (p *AccessPoint) StorageAliases() map[string]string { return p.cfg.StorageAliases }

func (p *AccessPoint) ParserAliases() map[string]string { return p.cfg.ParserAliases }

func (p *AccessPoint) DefaultEncoding() string { return p.cfg.Encoding }

// StorageProperties lists the file-metadata properties populated on load.
func (p *AccessPoint) StorageProperties() []string {
	return []string{"path", "filename", "size", "modified"}
}

// FilenameFor reports the absolute path backing item, read from the
// item's "path" storage property.
func (p *AccessPoint) FilenameFor(item simpleitem.Item) (string, bool) {
	value, ok := item.StorageSnapshot()["path"]
	if !ok {
		return "", false
	}
	rel, ok := value.(string)
	if !ok || rel == "" {
		return "", false
	}
	return filepath.Join(p.baseDir, filepath.FromSlash(rel)), true
}

// NewItem builds a new, never-stored item for this access point.
func (p *AccessPoint) NewItem(properties map[string]any) (simpleitem.Item, error) {
	return p.registry.NewFresh(p, properties)
}

// Load materializes the item stored under key. The backing file is opened
// lazily, on the item's first content read.
func (p *AccessPoint) Load(ctx context.Context, key string) (simpleitem.Item, error) {
	filePath := filepath.Join(p.baseDir, filepath.FromSlash(key))

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, &simpleitem.StoreError{Backend: "fs", Key: key, Op: "load", Err: simpleitem.ErrItemNotFound}
	} else if err != nil {
		return nil, &simpleitem.StoreError{Backend: "fs", Key: key, Op: "load", Err: err}
	}

	props := map[string]any{
		"path":     key,
		"filename": filepath.Base(filePath),
		"size":     info.Size(),
		"modified": info.ModTime(),
	}

	stream := func() (io.ReadCloser, error) {
		return os.Open(filePath)
	}

	item, err := p.registry.New(p, stream, props)
	if err != nil {
		return nil, &simpleitem.StoreError{Backend: "fs", Key: key, Op: "load", Err: err}
	}
	return item, nil
}

// Save persists item under key, writing the serialized content to the
// backing file. File metadata properties are derived on load, so only
// parser-dirty items require a rewrite; a clean item over an existing
// file is left untouched.
func (p *AccessPoint) Save(ctx context.Context, key string, item simpleitem.Item) error {
	filePath := filepath.Join(p.baseDir, filepath.FromSlash(key))

	if _, err := os.Stat(filePath); err == nil && !item.ContentModified() && !item.ParserModified() {
		return nil
	}

	data, err := item.Serialize()
	if err != nil {
		return &simpleitem.StoreError{Backend: "fs", Key: key, Op: "save", Err: err}
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &simpleitem.StoreError{Backend: "fs", Key: key, Op: "save", Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return &simpleitem.StoreError{Backend: "fs", Key: key, Op: "save", Err: fmt.Errorf("failed to create file: %w", err)}
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return &simpleitem.StoreError{Backend: "fs", Key: key, Op: "save", Err: fmt.Errorf("failed to write file: %w", err)}
	}
	return nil
}

// Delete removes the item stored under key and cleans up directories the
// removal leaves empty.
func (p *AccessPoint) Delete(ctx context.Context, key string) error {
	filePath := filepath.Join(p.baseDir, filepath.FromSlash(key))

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return &simpleitem.StoreError{Backend: "fs", Key: key, Op: "delete", Err: simpleitem.ErrItemNotFound}
	}

	if err := os.Remove(filePath); err != nil {
		return &simpleitem.StoreError{Backend: "fs", Key: key, Op: "delete", Err: err}
	}

	p.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// List enumerates the keys of every stored item, sorted.
func (p *AccessPoint) List(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(p.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.baseDir, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, &simpleitem.StoreError{Backend: "fs", Op: "list", Err: err}
	}
	sort.Strings(keys)
	return keys, nil
}

// cleanupEmptyDirectories recursively removes empty directories up to the
// base directory.
func (p *AccessPoint) cleanupEmptyDirectories(dir string) {
	if dir == p.baseDir {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			p.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
