package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tendant/simple-item/pkg/simpleitem"
)

func TestFSAccessPoint_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	point, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs access point: %v", err)
	}

	ctx := context.Background()
	key := "library/fiction/moby-dick.txt"
	text := "Call me Ishmael."

	// Save a fresh item
	item, err := point.NewItem(map[string]any{simpleitem.ContentKey: text})
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if err := point.Save(ctx, key, item); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The backing file exists under the base directory
	if _, err := os.Stat(filepath.Join(tmp, "library", "fiction", "moby-dick.txt")); err != nil {
		t.Fatalf("expected backing file, stat err=%v", err)
	}

	// Load and check the file-derived properties
	loaded, err := point.Load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	snapshot := loaded.StorageSnapshot()
	if snapshot["path"] != key {
		t.Fatalf("expected path %q, got %v", key, snapshot["path"])
	}
	if snapshot["filename"] != "moby-dick.txt" {
		t.Fatalf("expected filename moby-dick.txt, got %v", snapshot["filename"])
	}
	if size, ok := snapshot["size"].(int64); !ok || size != int64(len(text)) {
		t.Fatalf("expected size %d, got %v", len(text), snapshot["size"])
	}

	content, err := loaded.Read(simpleitem.ContentKey)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if got, ok := content.([]byte); !ok || string(got) != text {
		t.Fatalf("content mismatch: %v", content)
	}

	// Delete removes the file and the directories it leaves empty
	if err := point.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "library")); !os.IsNotExist(err) {
		t.Fatalf("expected empty directories removed, stat err=%v", err)
	}
}

func TestFSAccessPoint_CleanSave(t *testing.T) {
	tmp := t.TempDir()
	point, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs access point: %v", err)
	}
	ctx := context.Background()

	item, err := point.NewItem(map[string]any{simpleitem.ContentKey: "stable"})
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if err := point.Save(ctx, "stable.txt", item); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := point.Load(ctx, "stable.txt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := point.Save(ctx, "stable.txt", loaded); err != nil {
		t.Fatalf("clean save: %v", err)
	}
	if loaded.Loaded() {
		t.Fatalf("clean save should not force a parse")
	}
}

func TestFSAccessPoint_Filename(t *testing.T) {
	tmp := t.TempDir()
	point, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs access point: %v", err)
	}
	ctx := context.Background()

	item, err := point.NewItem(map[string]any{simpleitem.ContentKey: "x"})
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if err := point.Save(ctx, "notes/today.txt", item); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := point.Load(ctx, "notes/today.txt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	name, ok := loaded.Filename()
	if !ok {
		t.Fatalf("expected a filename")
	}
	if want := filepath.Join(tmp, "notes", "today.txt"); name != want {
		t.Fatalf("expected %q, got %q", want, name)
	}

	// A fresh, never-saved item has no path yet.
	fresh, err := point.NewItem(nil)
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if _, ok := fresh.Filename(); ok {
		t.Fatalf("expected no filename for a fresh item")
	}
}

func TestFSAccessPoint_List(t *testing.T) {
	tmp := t.TempDir()
	point, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs access point: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"b/two.txt", "a/one.txt", "root.txt"} {
		item, err := point.NewItem(map[string]any{simpleitem.ContentKey: key})
		if err != nil {
			t.Fatalf("new item: %v", err)
		}
		if err := point.Save(ctx, key, item); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}

	keys, err := point.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a/one.txt", "b/two.txt", "root.txt"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, keys)
		}
	}
}

func TestFSAccessPoint_TextFormat(t *testing.T) {
	tmp := t.TempDir()
	point, err := New(Config{BaseDir: tmp, Format: simpleitem.FormatText, Encoding: "ISO-8859-1"})
	if err != nil {
		t.Fatalf("new fs access point: %v", err)
	}
	ctx := context.Background()

	item, err := point.NewItem(map[string]any{simpleitem.ContentKey: "café"})
	if err != nil {
		t.Fatalf("new item: %v", err)
	}
	if err := point.Save(ctx, "cafe.txt", item); err != nil {
		t.Fatalf("save: %v", err)
	}

	// On disk the content is latin-1.
	raw, err := os.ReadFile(filepath.Join(tmp, "cafe.txt"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if len(raw) != 4 || raw[3] != 0xE9 {
		t.Fatalf("expected latin-1 bytes, got %v", raw)
	}

	loaded, err := point.Load(ctx, "cafe.txt")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	content, err := loaded.Read(simpleitem.ContentKey)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if content != "café" {
		t.Fatalf("expected café, got %v", content)
	}
}

func TestFSAccessPoint_Errors(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without base directory")
	}

	tmp := t.TempDir()
	point, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs access point: %v", err)
	}
	ctx := context.Background()

	if _, err := point.Load(ctx, "missing.txt"); !errors.Is(err, simpleitem.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := point.Delete(ctx, "missing.txt"); !errors.Is(err, simpleitem.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}
