package ingest

import (
	"testing"
	"time"
)

func TestDeduperReserveCommitRelease(t *testing.T) {
	d, err := NewDeduper(time.Minute)
	if err != nil {
		t.Fatalf("dedup: %v", err)
	}
	defer d.Close()

	if !d.Reserve("a") {
		t.Fatal("new key should be reserved")
	}
	if d.Reserve("a") {
		t.Fatal("key being stored must not be reserved twice")
	}
	d.Release([]string{"a"})
	if !d.Reserve("a") {
		t.Fatal("released key should be reservable again")
	}
	d.Commit([]string{"a"})
	if d.Reserve("a") {
		t.Fatal("committed key is a duplicate")
	}
}
