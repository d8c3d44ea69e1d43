package job

import (
	"fmt"
	"sort"
	"sync"
)

// Store is the registry of job records. Create fails on a duplicate id;
// Update replaces the whole record (last writer wins).
type Store interface {
	Create(r *Record) error
	Update(r *Record) error
	Get(id string) (*Record, error)
	List(limit int) []*Record
	Stats() (queued, running, complete, failed int)
}

type MemoryStore struct {
	mu    sync.RWMutex
	jobs  map[string]*Record
	order []string // creation order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:  make(map[string]*Record),
		order: make([]string, 0),
	}
}

func (s *MemoryStore) Create(r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[r.ID]; ok {
		return fmt.Errorf("job already exists: %s", r.ID)
	}
	s.jobs[r.ID] = r.Clone()
	s.order = append(s.order, r.ID)
	return nil
}

func (s *MemoryStore) Update(r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[r.ID]; !ok {
		return fmt.Errorf("job not found: %s", r.ID)
	}
	s.jobs[r.ID] = r.Clone()
	return nil
}

func (s *MemoryStore) Get(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", id)
	}
	return r.Clone(), nil
}

// List returns the most recently created records first.
func (s *MemoryStore) List(limit int) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Record, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, s.jobs[s.order[i]].Clone())
	}
	return result
}

func (s *MemoryStore) Stats() (queued, running, complete, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.jobs {
		switch r.Status {
		case StatusQueued:
			queued++
		case StatusRunning:
			running++
		case StatusComplete:
			complete++
		case StatusFailed:
			failed++
		}
	}
	return
}

// sortByRecency orders records most recent first, falling back to the
// lexically recency-sorted id when timestamps collide.
func sortByRecency(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
