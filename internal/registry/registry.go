package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Record is one registered server artifact, keyed by its unique name.
type Record struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Description  string    `json:"description,omitempty"`
	ArtifactPath string    `json:"artifact_path"`
	PackagePath  string    `json:"package_path,omitempty"`
	ImageRef     string    `json:"image_ref,omitempty"`
	Revision     string    `json:"revision,omitempty"`
	Tools        []string  `json:"tools,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Outcome reports whether an upsert created a new record or replaced an
// existing one.
type Outcome struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// Filter narrows Enumerate results. Empty fields match everything; Name
// matches as a substring.
type Filter struct {
	Name    string
	Version string
}

func (f Filter) matches(r *Record) bool {
	if f.Name != "" && !strings.Contains(r.Name, f.Name) {
		return false
	}
	if f.Version != "" && r.Version != f.Version {
		return false
	}
	return true
}

// Registry persists registered server artifacts with upsert semantics:
// a second registration of the same name updates in place.
type Registry interface {
	RegisterOrUpdate(r *Record) (*Outcome, error)
	Find(name, version string) (*Record, error)
	Enumerate(filter Filter) ([]*Record, error)
	Remove(name string) (bool, error)
}

type MemoryRegistry struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{records: make(map[string]*Record)}
}

func (m *MemoryRegistry) RegisterOrUpdate(r *Record) (*Outcome, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("record has no name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	action := ActionCreated
	if existing, ok := m.records[r.Name]; ok {
		action = ActionUpdated
		r.RegisteredAt = existing.RegisteredAt
	} else {
		r.RegisteredAt = now
	}
	r.UpdatedAt = now
	m.records[r.Name] = cloneRecord(r)

	return &Outcome{ID: r.Name, Action: action}, nil
}

func (m *MemoryRegistry) Find(name, version string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[name]
	if !ok {
		return nil, fmt.Errorf("server not found: %s", name)
	}
	if version != "" && r.Version != version {
		return nil, fmt.Errorf("server not found: %s@%s", name, version)
	}
	return cloneRecord(r), nil
}

func (m *MemoryRegistry) Enumerate(filter Filter) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Record, 0, len(m.records))
	for _, r := range m.records {
		if filter.matches(r) {
			result = append(result, cloneRecord(r))
		}
	}
	sortRecords(result)
	return result, nil
}

func (m *MemoryRegistry) Remove(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[name]; !ok {
		return false, nil
	}
	delete(m.records, name)
	return true, nil
}

func cloneRecord(r *Record) *Record {
	c := *r
	c.Tools = append([]string(nil), r.Tools...)
	return &c
}

func sortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
}
