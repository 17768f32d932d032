package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps documents in process. Used by tests and local demos.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	now         func() time.Time

	// FailWith, when set, is returned by every read. Lets callers simulate an outage.
	FailWith error
	// Delay is slept (honouring ctx) before every read.
	Delay time.Duration
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		now:         time.Now,
	}
}

func (s *MemoryStore) beforeRead(ctx context.Context) error {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.FailWith
}

// GetDocument implements Store.
func (s *MemoryStore) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	if err := s.beforeRead(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, collection, id)
	}
	out := doc
	out.Data = cloneData(doc.Data)
	return &out, nil
}

// QueryDocuments implements Store.
func (s *MemoryStore) QueryDocuments(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	for _, f := range filters {
		if err := f.validate(); err != nil {
			return nil, err
		}
	}
	if err := s.beforeRead(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Document, 0)
	for _, doc := range s.collections[collection] {
		if matchesAll(doc.Data, filters) {
			d := doc
			d.Data = cloneData(doc.Data)
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetDocument implements Store.
func (s *MemoryStore) SetDocument(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("document id is required")
	}

	normalized, err := normalize(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Document)
		s.collections[collection] = coll
	}

	now := s.now()
	existing, exists := coll[id]
	if !exists {
		coll[id] = Document{Collection: collection, ID: id, Data: normalized, CreatedAt: now, UpdatedAt: now}
		return nil
	}

	if merge {
		for k, v := range normalized {
			existing.Data[k] = v
		}
	} else {
		existing.Data = normalized
	}
	existing.UpdatedAt = now
	coll[id] = existing
	return nil
}

// ListDocuments implements Store.
func (s *MemoryStore) ListDocuments(ctx context.Context, collection string, offset uint64, limit int) ([]Document, int64, error) {
	if err := s.beforeRead(ctx); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Document, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		d := doc
		d.Data = cloneData(doc.Data)
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset >= uint64(len(all)) {
		return []Document{}, total, nil
	}
	end := len(all)
	if limit > 0 && int(offset)+limit < end {
		end = int(offset) + limit
	}
	return all[offset:end], total, nil
}

// CountDocuments implements Store.
func (s *MemoryStore) CountDocuments(ctx context.Context, collection string) (int64, error) {
	if err := s.beforeRead(ctx); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.collections[collection])), nil
}

// normalize round-trips data through JSON so numbers compare the same way
// they would after a trip through Postgres.
func normalize(data map[string]interface{}) (map[string]interface{}, error) {
	if data == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	out, err := normalize(data)
	if err != nil {
		return map[string]interface{}{}
	}
	return out
}

func matchesAll(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		if !matches(data, f) {
			return false
		}
	}
	return true
}

func matches(data map[string]interface{}, f Filter) bool {
	value, ok := lookup(data, f.path())
	if !ok {
		// Missing fields only satisfy "!=".
		return f.Op == OpNotEqual
	}

	cmp, comparable := compare(value, f.Value)
	if !comparable {
		return f.Op == OpNotEqual
	}

	switch f.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpLess:
		return cmp < 0
	case OpLessOrEqual:
		return cmp <= 0
	case OpGreater:
		return cmp > 0
	case OpGreaterOrEqual:
		return cmp >= 0
	}
	return false
}

func lookup(data map[string]interface{}, path []string) (interface{}, bool) {
	var current interface{} = data
	for _, key := range path {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// compare orders a stored value against a filter value. Numbers compare
// numerically, strings lexically, bools only for equality.
func compare(stored, want interface{}) (int, bool) {
	if a, ok := toFloat(stored); ok {
		b, ok := toFloat(want)
		if !ok {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		}
		return 0, true
	}

	switch s := stored.(type) {
	case string:
		w, ok := want.(string)
		if !ok {
			return 0, false
		}
		switch {
		case s < w:
			return -1, true
		case s > w:
			return 1, true
		}
		return 0, true
	case bool:
		w, ok := want.(bool)
		if !ok {
			return 0, false
		}
		if s == w {
			return 0, true
		}
		return 1, true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
