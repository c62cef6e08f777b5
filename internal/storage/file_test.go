package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_SetAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "storage")
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	ctx := context.Background()

	if _, err := st.Get(ctx, "analytics_queue"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for missing key, got %v", err)
	}

	if err := st.Set(ctx, "analytics_queue", []byte(`[1,2]`)); err != nil {
		t.Fatalf("set1: %v", err)
	}
	if err := st.Set(ctx, "analytics_queue", []byte(`[3]`)); err != nil {
		t.Fatalf("set2: %v", err)
	}
	got, err := st.Get(ctx, "analytics_queue")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `[3]` {
		t.Fatalf("want overwritten value, got %s", got)
	}

	// ensure file exists and no temp file is left behind
	if _, err := os.Stat(filepath.Join(dir, "analytics_queue.json")); err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "analytics_queue.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		if err := st.Set(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestMemoryStore_CopySemantics(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	buf := []byte("hello")
	if err := st.Set(ctx, "k", buf); err != nil {
		t.Fatalf("set: %v", err)
	}
	buf[0] = 'j'
	got, _ := st.Get(ctx, "k")
	if string(got) != "hello" {
		t.Fatalf("internal state mutated via input slice: %s", got)
	}
	got[0] = 'y'
	again, _ := st.Get(ctx, "k")
	if string(again) != "hello" {
		t.Fatalf("internal state mutated via returned slice: %s", again)
	}
}
