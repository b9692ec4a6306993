package store

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-fixtures/internal/reflectutil"
)

// MemoryStore is the in-memory Store used by tests and examples. Records are
// deep-cloned on save and on read so callers never share mutable state with
// the store; that isolation is what makes proxy auto-refresh observable.
type MemoryStore struct {
	mu    sync.RWMutex
	kinds map[string]*memoryKind
}

type memoryKind struct {
	records map[Identity]any
	order   []Identity
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{kinds: map[string]*memoryKind{}}
}

// Save implements Store. New records receive a uuid identity and keep
// insertion order for deterministic FindBy results.
func (s *MemoryStore) Save(_ context.Context, kind string, id Identity, object any) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.kinds[kind]
	if bucket == nil {
		bucket = &memoryKind{records: map[Identity]any{}}
		s.kinds[kind] = bucket
	}
	if id == "" {
		id = Identity(uuid.NewString())
		bucket.order = append(bucket.order, id)
	} else if _, exists := bucket.records[id]; !exists {
		bucket.order = append(bucket.order, id)
	}
	bucket.records[id] = reflectutil.Clone(object)
	return id, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, kind string, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.kinds[kind]
	if bucket == nil {
		return NotFoundError{Kind: kind, Identity: id}
	}
	if _, ok := bucket.records[id]; !ok {
		return NotFoundError{Kind: kind, Identity: id}
	}
	delete(bucket.records, id)
	for i, existing := range bucket.order {
		if existing == id {
			bucket.order = append(bucket.order[:i], bucket.order[i+1:]...)
			break
		}
	}
	return nil
}

// Find implements Store, returning a detached copy of the stored object.
func (s *MemoryStore) Find(_ context.Context, kind string, id Identity) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.kinds[kind]
	if bucket == nil {
		return nil, false, nil
	}
	object, ok := bucket.records[id]
	if !ok {
		return nil, false, nil
	}
	return reflectutil.Clone(object), true, nil
}

// FindBy implements Store. Matching records come back in insertion order.
func (s *MemoryStore) FindBy(_ context.Context, kind string, c Criteria) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.kinds[kind]
	if bucket == nil {
		return nil, nil
	}
	var out []Record
	for _, id := range bucket.order {
		object := bucket.records[id]
		ok, err := matches(object, c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Record{Identity: id, Object: reflectutil.Clone(object)})
	}
	return out, nil
}

// CountBy implements Store.
func (s *MemoryStore) CountBy(ctx context.Context, kind string, c Criteria) (int, error) {
	records, err := s.FindBy(ctx, kind, c)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Truncate implements Store.
func (s *MemoryStore) Truncate(_ context.Context, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kinds, kind)
	return nil
}

// Reset clears every kind. Test lifecycles call this at epoch boundaries.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = map[string]*memoryKind{}
}

// Len reports the stored population for kind.
func (s *MemoryStore) Len(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.kinds[kind]
	if bucket == nil {
		return 0
	}
	return len(bucket.order)
}

func matches(object any, c Criteria) (bool, error) {
	if len(c.Fields) > 0 {
		snapshot := reflectutil.Snapshot(object)
		for key, want := range c.Fields {
			got, ok := snapshot[reflectutil.NormalizeKey(key)]
			if !ok || !reflect.DeepEqual(got, want) {
				return false, nil
			}
		}
	}
	if c.Predicate != nil {
		return c.Predicate(object)
	}
	return true, nil
}
