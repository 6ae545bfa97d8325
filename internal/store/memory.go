package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps collections in process memory. It backs the test suites and the
// STORE_DRIVER=memory demo mode; identifiers have the same shape as MongoDB's.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// WithClock replaces the time source used for timestamps.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) collection(name string) map[string]Document {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]Document)
		m.collections[name] = c
	}
	return c
}

func (m *MemoryStore) FindByID(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *MemoryStore) FindOne(_ context.Context, collection string, filter map[string]any) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.sorted(collection) {
		if matchesEquals(doc, filter) {
			return doc.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Find(_ context.Context, collection string, q Query) ([]Document, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Document
	for _, doc := range m.sorted(collection) {
		if matchesEquals(doc, q.Equals) && matchesSearch(doc, q.Search, q.SearchFields) {
			matched = append(matched, doc)
		}
	}

	total := int64(len(matched))
	start := q.Skip
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && q.Limit < end-start {
		end = start + q.Limit
	}

	out := make([]Document, 0, end-start)
	for _, doc := range matched[start:end] {
		out = append(out, doc.Clone())
	}
	return out, total, nil
}

func (m *MemoryStore) Insert(_ context.Context, collection string, doc Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := doc.Clone()
	now := m.now()
	stored[IDField] = primitive.NewObjectID().Hex()
	stored[CreatedAtField] = now
	stored[UpdatedAtField] = now

	m.collection(collection)[stored.ID()] = stored
	return stored.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, set Document, unset []string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	for k, v := range set {
		if isImmutable(k) {
			continue
		}
		doc[k] = v
	}
	for _, k := range unset {
		if isImmutable(k) {
			continue
		}
		delete(doc, k)
	}
	doc[UpdatedAtField] = m.now()

	return doc.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

// sorted returns the collection ordered by createdAt desc, _id desc. Callers hold the lock.
func (m *MemoryStore) sorted(collection string) []Document {
	docs := make([]Document, 0, len(m.collections[collection]))
	for _, doc := range m.collections[collection] {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		ci, cj := docs[i].CreatedAt(), docs[j].CreatedAt()
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return docs[i].ID() > docs[j].ID()
	})
	return docs
}

func isImmutable(field string) bool {
	return field == IDField || field == CreatedAtField || field == UpdatedAtField
}

func matchesEquals(doc Document, equals map[string]any) bool {
	for field, want := range equals {
		if !valueMatches(doc[field], want) {
			return false
		}
	}
	return true
}

func valueMatches(got, want any) bool {
	switch g := got.(type) {
	case time.Time:
		w, ok := want.(time.Time)
		return ok && g.Equal(w)
	case []string:
		// array fields match when any element equals, like MongoDB
		if w, ok := want.(string); ok {
			for _, v := range g {
				if v == w {
					return true
				}
			}
			return false
		}
	}
	return reflect.DeepEqual(got, want)
}

func matchesSearch(doc Document, search string, fields []string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, field := range fields {
		if s, ok := doc[field].(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}
