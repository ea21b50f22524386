// Package store holds the canonical id -> task mapping.
//
// It is the only shared mutable state between the CLI, the reminder engine
// and the calendar sync job: one mutex covers id assignment and insertion as
// a single atomic step, and no operation holds it across a wait.
package store

import (
	"sort"
	"sync"

	"remindo/internal/task"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]task.Task
}

func New() *Store {
	return &Store{nextID: 1, tasks: map[int64]task.Task{}}
}

// Add assigns the next sequential id and stores the task under it.
// Ids are monotonic and never reused, even after Remove.
func (s *Store) Add(t task.Task) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	t.ID = id
	s.tasks[id] = t
	return id
}

// List returns a snapshot copy sorted by id for deterministic output.
func (s *Store) List() []task.Task {
	s.mu.Lock()
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remove deletes and returns the task if present. A miss is a normal
// outcome, not an error.
func (s *Store) Remove(id int64) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	return t, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
