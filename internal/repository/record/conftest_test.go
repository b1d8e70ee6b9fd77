package record

import (
	"context"
	"sync"

	"github.com/kailas-cloud/strindex/internal/db"
)

// mockStore implements the consumer interface over an in-memory hash map.
// Function fields override the default behavior.
type mockStore struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	index  *db.IndexDefinition

	hcreateFn     func(ctx context.Context, key, guard string, fields map[string]string) (bool, error)
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	delFn         func(ctx context.Context, key string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchFn      func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)

	lastSearch *db.SearchQuery
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

// HCreate mirrors the server script: a hash holding guard is kept, anything
// else at key is replaced by fields.
func (m *mockStore) HCreate(ctx context.Context, key, guard string, fields map[string]string) (bool, error) {
	if m.hcreateFn != nil {
		return m.hcreateFn(ctx, key, guard, fields)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[key][guard]; ok {
		return false, nil
	}
	h := make(map[string]string, len(fields))
	for k, v := range fields {
		h[k] = v
	}
	m.hashes[key] = h
	return true, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.hashes[key]; !ok {
		return db.ErrKeyNotFound
	}
	delete(m.hashes, key)
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	m.index = def
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return m.index != nil && m.index.Name == name, nil
}

// Search returns every stored hash; filtering is covered by the driver tests.
func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	m.lastSearch = q
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	res := &db.SearchResult{}
	for k, h := range m.hashes {
		res.Entries = append(res.Entries, db.SearchEntry{Key: k, Fields: h})
	}
	res.Total = len(res.Entries)
	return res, nil
}
