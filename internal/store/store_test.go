package store

import (
	"sync"
	"testing"
	"time"

	"remindo/internal/task"
)

func sampleTask(title string) task.Task {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return task.Task{
		Title:     title,
		Details:   "details",
		StartTime: base,
		EndTime:   base.Add(30 * time.Minute),
	}
}

func TestAddAssignsIncreasingIDs(t *testing.T) {
	t.Parallel()
	s := New()

	id1 := s.Add(sampleTask("a"))
	id2 := s.Add(sampleTask("b"))
	if id1 == 0 || id2 == 0 {
		t.Fatal("0 is a placeholder, never a valid stored id")
	}
	if id2 <= id1 {
		t.Fatalf("ids not strictly increasing: %d then %d", id1, id2)
	}
}

func TestIDsNotReusedAfterRemove(t *testing.T) {
	t.Parallel()
	s := New()

	id1 := s.Add(sampleTask("a"))
	if _, ok := s.Remove(id1); !ok {
		t.Fatal("remove of a stored task should succeed")
	}
	id2 := s.Add(sampleTask("b"))
	if id2 <= id1 {
		t.Fatalf("id %d reused after removal of %d", id2, id1)
	}
}

func TestRemoveMissLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()
	s := New()
	s.Add(sampleTask("a"))

	if _, ok := s.Remove(999); ok {
		t.Fatal("remove of unknown id should report not found")
	}
	if s.Len() != 1 {
		t.Fatalf("store length changed by a remove miss: %d", s.Len())
	}
}

func TestListIsSortedSnapshot(t *testing.T) {
	t.Parallel()
	s := New()
	s.Add(sampleTask("a"))
	s.Add(sampleTask("b"))
	s.Add(sampleTask("c"))

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ID <= got[i-1].ID {
			t.Fatalf("list not sorted by id: %v", got)
		}
	}

	// Mutating the snapshot must not touch the store.
	got[0].Title = "mutated"
	if s.List()[0].Title == "mutated" {
		t.Fatal("List returned a live reference, not a snapshot")
	}
}

func TestConcurrentAddsGetDistinctIDs(t *testing.T) {
	t.Parallel()
	s := New()

	const n = 64
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = s.Add(sampleTask("t"))
		}(i)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d under concurrent adds", id)
		}
		seen[id] = true
	}
	if s.Len() != n {
		t.Fatalf("store length = %d, want %d", s.Len(), n)
	}
}
