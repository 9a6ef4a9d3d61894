package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps documents in process. Paths are "collection/id" with any
// number of nested sub-collections.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]map[string]any{}, now: time.Now}
}

// Seed writes data at docPath, replacing anything there.
func (m *MemoryStore) Seed(docPath string, data map[string]any) {
	_ = m.Set(context.Background(), docPath, data)
}

func (m *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	collection = strings.Trim(collection, "/")
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for p, data := range m.docs {
		if ParentCollection(p) != collection {
			continue
		}
		docs = append(docs, Document{ID: p[len(collection)+1:], Path: p, Data: copyMap(data)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *MemoryStore) Get(_ context.Context, docPath string) (Document, error) {
	docPath = strings.Trim(docPath, "/")
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[docPath]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: docPath[strings.LastIndex(docPath, "/")+1:], Path: docPath, Data: copyMap(data)}, nil
}

func (m *MemoryStore) Set(_ context.Context, docPath string, data map[string]any) error {
	docPath = strings.Trim(docPath, "/")
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[docPath] = m.resolve(data)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, docPath string, fields map[string]any) error {
	docPath = strings.Trim(docPath, "/")
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.docs[docPath]
	if !ok {
		return ErrNotFound
	}
	for k, v := range m.resolve(fields) {
		data[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, docPath string) error {
	docPath = strings.Trim(docPath, "/")
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, docPath)
	return nil
}

func (m *MemoryStore) resolve(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case serverTimestamp:
			out[k] = m.now()
		case map[string]any:
			out[k] = m.resolve(val)
		default:
			out[k] = v
		}
	}
	return out
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]any); ok {
			v = copyMap(nested)
		}
		out[k] = v
	}
	return out
}
