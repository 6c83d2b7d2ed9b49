package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c := NewFileCache(filepath.Join(t.TempDir(), "cache"))

	// Miss on a cold cache.
	if _, ok, err := c.Get(ctx, "fortigate_fg1_managed_switches"); err != nil || ok {
		t.Fatalf("cold Get = ok=%v err=%v, want miss", ok, err)
	}

	payload := []byte(`[{"switch-id": "sw-a"}]`)
	if err := c.Set(ctx, "fortigate_fg1_managed_switches", payload); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, ok, err := c.Get(ctx, "fortigate_fg1_managed_switches")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v, want hit", ok, err)
	}
	if string(data) != string(payload) {
		t.Errorf("Get = %s, want stored payload", data)
	}
}

func TestFileCacheEntries(t *testing.T) {
	ctx := context.Background()
	c := NewFileCache(t.TempDir())

	for _, key := range []string{"netbox_device_7_interfaces", "fortigate_fg1_managed_switches"} {
		if err := c.Set(ctx, key, []byte("data")); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// Sorted by key.
	if entries[0].Key != "fortigate_fg1_managed_switches" || entries[1].Key != "netbox_device_7_interfaces" {
		t.Errorf("entries = %+v, want sorted keys", entries)
	}
	for _, e := range entries {
		if e.Size != 4 || e.Modified.IsZero() {
			t.Errorf("entry %s: size=%d modified=%v", e.Key, e.Size, e.Modified)
		}
	}
}

func TestFileCacheDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "b", []byte("2")); err != nil {
		t.Fatal(err)
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting an absent key is fine.
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("second Delete: %v", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries after clear = %+v, want none", entries)
	}

	// Entries and Clear tolerate a cache dir that never existed.
	missing := NewFileCache(filepath.Join(t.TempDir(), "missing"))
	if _, err := missing.Entries(ctx); err != nil {
		t.Errorf("Entries on missing dir: %v", err)
	}
	if err := missing.Clear(ctx); err != nil {
		t.Errorf("Clear on missing dir: %v", err)
	}
}
