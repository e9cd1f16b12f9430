package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/gridlock/internal/merge"
)

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("doc-1", merge.DefaultOptions())
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Fatalf("expected the stored job back, got %v", got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_Cleanup(t *testing.T) {
	store := NewJobStore(time.Minute)

	stale := NewJob("old", merge.DefaultOptions())
	stale.updatedAt = time.Now().Add(-2 * time.Minute)
	fresh := NewJob("new", merge.DefaultOptions())
	store.Put(stale)
	store.Put(fresh)

	if n := store.Cleanup(); n != 1 {
		t.Errorf("expected 1 eviction, got %d", n)
	}
	if store.Get(stale.ID) != nil {
		t.Error("expected stale job to be evicted")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if n := NewJobStore(time.Hour).Cleanup(); n != 0 {
		t.Errorf("expected nothing to evict from an empty store, got %d", n)
	}
}
