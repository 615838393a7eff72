package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, ok, err := m.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := m.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("Get(k) = %q ok=%v err=%v, want v2", v, ok, err)
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("key survived Delete")
	}

	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("repeated Delete must be a no-op, got %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	f := NewFile(path)
	if err := f.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Set(ctx, "b", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := f.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// Новый экземпляр читает состояние с диска.
	reopened := NewFile(path)

	if _, ok, _ := reopened.Get(ctx, "a"); ok {
		t.Fatalf("deleted key survived reopen")
	}
	v, ok, err := reopened.Get(ctx, "b")
	if err != nil || !ok || v != "2" {
		t.Fatalf("Get(b) after reopen = %q ok=%v err=%v, want 2", v, ok, err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	f := NewFile(path)
	if _, ok, err := f.Get(ctx, "any"); err != nil || ok {
		t.Fatalf("corrupt file must open as empty store, got ok=%v err=%v", ok, err)
	}

	if err := f.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set after corrupt open: %v", err)
	}
	v, ok, _ := NewFile(path).Get(ctx, "k")
	if !ok || v != "v" {
		t.Fatalf("value not persisted over corrupt file: %q ok=%v", v, ok)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "does-not-exist.json"))

	if _, ok, err := f.Get(ctx, "any"); err != nil || ok {
		t.Fatalf("missing file must open as empty store, got ok=%v err=%v", ok, err)
	}
}
