package todo

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by service and handler tests.
type memStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]Todo
	err   error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{items: make(map[uuid.UUID]Todo)}
}

func (m *memStore) List(ctx context.Context, owner uuid.UUID) ([]Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	out := []Todo{}
	for _, t := range m.items {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Create(ctx context.Context, t *Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.items[t.ID] = *t
	return nil
}

func (m *memStore) Get(ctx context.Context, owner, id uuid.UUID) (*Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.items[id]
	if !ok || t.OwnerID != owner {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *memStore) Update(ctx context.Context, owner uuid.UUID, t *Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	cur, ok := m.items[t.ID]
	if !ok || cur.OwnerID != owner {
		return ErrNotFound
	}
	cur.Title, cur.Description, cur.Completed = t.Title, t.Description, t.Completed
	m.items[t.ID] = cur
	return nil
}

func (m *memStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	cur, ok := m.items[id]
	if !ok || cur.OwnerID != owner {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

var errTest = errors.New("connection to db refused")
