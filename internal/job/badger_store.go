package job

import (
	"encoding/json"
	"fmt"

	"github.com/serverforge/orchestrator/internal/db"
)

const jobPrefix = "jobs/"

// BadgerStore persists job records through the shared badger store.
// It satisfies the same Store contract as MemoryStore.
type BadgerStore struct {
	dbStore *db.Store
}

func NewBadgerStore(dbStore *db.Store) *BadgerStore {
	return &BadgerStore{dbStore: dbStore}
}

func (s *BadgerStore) Create(r *Record) error {
	exists, err := s.dbStore.Has(jobPrefix, r.ID)
	if err != nil {
		return fmt.Errorf("check job: %w", err)
	}
	if exists {
		return fmt.Errorf("job already exists: %s", r.ID)
	}
	return s.put(r)
}

func (s *BadgerStore) Update(r *Record) error {
	exists, err := s.dbStore.Has(jobPrefix, r.ID)
	if err != nil {
		return fmt.Errorf("check job: %w", err)
	}
	if !exists {
		return fmt.Errorf("job not found: %s", r.ID)
	}
	return s.put(r)
}

func (s *BadgerStore) put(r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := s.dbStore.Set(jobPrefix, r.ID, data); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

func (s *BadgerStore) Get(id string) (*Record, error) {
	data, err := s.dbStore.Get(jobPrefix, id)
	if err != nil {
		return nil, fmt.Errorf("job not found: %s", id)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}

	return &r, nil
}

func (s *BadgerStore) List(limit int) []*Record {
	keys, err := s.dbStore.Keys(jobPrefix, 0)
	if err != nil {
		return []*Record{}
	}

	all := make([]*Record, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		r, err := s.Get(key)
		if err != nil {
			continue
		}
		all = append(all, r)
	}

	sortByRecency(all)

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

func (s *BadgerStore) Stats() (queued, running, complete, failed int) {
	for _, r := range s.List(0) {
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
