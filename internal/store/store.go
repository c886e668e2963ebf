package store

import (
	"sort"
	"sync"
	"time"

	"tasknest/internal/model"
)

// Store owns every task record, keyed by EncodeKey(owner, id). All lookups
// and mutations go through the caller's own keys, so one owner can never
// observe or touch another owner's tasks. byOwner is an explicit id index
// that keeps owner-scoped reads proportional to that owner's task count.
//
// Absent or foreign ids come back as false/empty results, never errors.
type Store struct {
	mu      sync.RWMutex
	nextID  int
	records map[string]model.Task
	byOwner map[string]map[int]struct{}
}

func New() *Store {
	return &Store{
		nextID:  1,
		records: make(map[string]model.Task),
		byOwner: make(map[string]map[int]struct{}),
	}
}

// Add creates a task for owner and returns it. Ids come from a single
// counter shared by all owners, so they are globally unique and never
// reused, even after deletion.
func (s *Store) Add(owner, title, description string) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Task{
		ID:          s.nextID,
		Owner:       owner,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	s.nextID++

	s.records[EncodeKey(owner, t.ID)] = t
	s.indexLocked(owner, t.ID)
	return t
}

// List returns every task owned by owner, oldest first. An unknown owner
// gets an empty slice.
func (s *Store) List(owner string) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(owner, nil)
}

// ListByStatus returns owner's tasks whose Completed flag matches.
func (s *Store) ListByStatus(owner string, completed bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(owner, func(t model.Task) bool {
		return t.Completed == completed
	})
}

// Get returns the task only when it exists and belongs to owner.
func (s *Store) Get(owner string, id int) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.records[EncodeKey(owner, id)]
	return t, ok
}

// Toggle flips the completed flag. Returns false when the id is absent or
// owned by someone else.
func (s *Store) Toggle(owner string, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := EncodeKey(owner, id)
	t, ok := s.records[k]
	if !ok {
		return false
	}
	t.Completed = !t.Completed
	s.records[k] = t
	return true
}

// Delete removes the task. Returns false when the id is absent or owned by
// someone else.
func (s *Store) Delete(owner string, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(owner, id)
}

// Count reports how many tasks owner has.
func (s *Store) Count(owner string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byOwner[owner])
}

// ClearCompleted deletes every completed task owned by owner and reports how
// many were removed.
func (s *Store) ClearCompleted(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	done := []int{}
	for id := range s.byOwner[owner] {
		if s.records[EncodeKey(owner, id)].Completed {
			done = append(done, id)
		}
	}
	for _, id := range done {
		s.deleteLocked(owner, id)
	}
	return len(done)
}

// AddComment appends text to the task's comment list. Comments are
// append-only; nothing ever reorders or removes them.
func (s *Store) AddComment(owner string, id int, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := EncodeKey(owner, id)
	t, ok := s.records[k]
	if !ok {
		return false
	}
	t.Comments = append(t.Comments, text)
	s.records[k] = t
	return true
}

// Comments returns the task's comments in insertion order. Unknown or
// foreign ids get an empty slice.
func (s *Store) Comments(owner string, id int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.records[EncodeKey(owner, id)]
	if !ok {
		return []string{}
	}
	out := make([]string, len(t.Comments))
	copy(out, t.Comments)
	return out
}

func (s *Store) indexLocked(owner string, id int) {
	ids, ok := s.byOwner[owner]
	if !ok {
		ids = make(map[int]struct{})
		s.byOwner[owner] = ids
	}
	ids[id] = struct{}{}
}

func (s *Store) deleteLocked(owner string, id int) bool {
	k := EncodeKey(owner, id)
	if _, ok := s.records[k]; !ok {
		return false
	}
	delete(s.records, k)
	ids := s.byOwner[owner]
	delete(ids, id)
	if len(ids) == 0 {
		delete(s.byOwner, owner)
	}
	return true
}

func (s *Store) listLocked(owner string, keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(s.byOwner[owner]))
	for id := range s.byOwner[owner] {
		t := s.records[EncodeKey(owner, id)]
		if keep == nil || keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
