package tasks

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Store is the client's cache of tasks, keyed by id and kept in server order.
// It is only ever fed payloads the server has confirmed and never does I/O.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Task
}

func NewStore() *Store {
	return &Store{byID: make(map[string]Task)}
}

// ReplaceAll swaps the whole content for tasks, after a full fetch. Later
// duplicates of an id overwrite earlier ones in place.
func (s *Store) ReplaceAll(tasks []Task) {
	order := make([]string, 0, len(tasks))
	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		if _, seen := byID[t.ID]; !seen {
			order = append(order, t.ID)
		}
		byID[t.ID] = t
	}

	s.mu.Lock()
	s.order = order
	s.byID = byID
	s.mu.Unlock()
}

// Insert adds a created task. An existing id is overwritten in place.
func (s *Store) Insert(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[task.ID]; !exists {
		s.order = append(s.order, task.ID)
	}
	s.byID[task.ID] = task
}

// Remove deletes id. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[id]; !exists {
		return
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// ReplaceOne overwrites the task with the same id. When there is none the
// store is left alone and false is returned: the update was lost locally.
func (s *Store) ReplaceOne(task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[task.ID]; !exists {
		log.Warn().Str("task_id", task.ID).Msg("Updated task is not in the local store")
		return false
	}
	s.byID[task.ID] = task
	return true
}

// All returns the tasks in order.
func (s *Store) All() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.byID[id])
	}
	return all
}

func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	return t, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear empties the store, e.g. on logout.
func (s *Store) Clear() {
	s.ReplaceAll(nil)
}
