package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/serverforge/orchestrator/internal/db"
)

const serverPrefix = "servers/"

// BadgerRegistry is the durable Registry used in production, backed by
// the shared badger store.
type BadgerRegistry struct {
	dbStore *db.Store
}

func NewBadgerRegistry(dbStore *db.Store) *BadgerRegistry {
	return &BadgerRegistry{dbStore: dbStore}
}

func (b *BadgerRegistry) RegisterOrUpdate(r *Record) (*Outcome, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("record has no name")
	}

	now := time.Now().UTC()
	action := ActionCreated
	if existing, err := b.get(r.Name); err == nil {
		action = ActionUpdated
		r.RegisteredAt = existing.RegisteredAt
	} else {
		r.RegisteredAt = now
	}
	r.UpdatedAt = now

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if err := b.dbStore.Set(serverPrefix, r.Name, data); err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}

	return &Outcome{ID: r.Name, Action: action}, nil
}

func (b *BadgerRegistry) get(name string) (*Record, error) {
	data, err := b.dbStore.Get(serverPrefix, name)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &r, nil
}

func (b *BadgerRegistry) Find(name, version string) (*Record, error) {
	r, err := b.get(name)
	if err != nil {
		return nil, fmt.Errorf("server not found: %s", name)
	}
	if version != "" && r.Version != version {
		return nil, fmt.Errorf("server not found: %s@%s", name, version)
	}
	return r, nil
}

func (b *BadgerRegistry) Enumerate(filter Filter) ([]*Record, error) {
	keys, err := b.dbStore.Keys(serverPrefix, 0)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	result := make([]*Record, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		r, err := b.get(key)
		if err != nil {
			continue
		}
		if filter.matches(r) {
			result = append(result, r)
		}
	}
	sortRecords(result)
	return result, nil
}

func (b *BadgerRegistry) Remove(name string) (bool, error) {
	exists, err := b.dbStore.Has(serverPrefix, name)
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	if !exists {
		return false, nil
	}
	if err := b.dbStore.Delete(serverPrefix, name); err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	return true, nil
}
