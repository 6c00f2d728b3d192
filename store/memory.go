// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sync"

	"github.com/danielhkuo/ward-admin/models"
)

// Memory is an in-process Store. Reads hand out copies so callers can
// never mutate stored state.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]models.Fields
}

func NewMemory() *Memory {
	return &Memory{collections: map[string]map[string]models.Fields{}}
}

// Load seeds a collection with records under caller-chosen IDs.
func (m *Memory) Load(collection string, records map[string]models.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(collection)
	for id, fields := range records {
		c[id] = fields.Clone()
	}
}

func (m *Memory) Get(ctx context.Context, collection string) (map[string]models.Fields, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.Fields, len(m.collections[collection]))
	for id, fields := range m.collections[collection] {
		out[id] = fields.Clone()
	}
	return out, nil
}

func (m *Memory) Push(ctx context.Context, collection string, fields models.Fields) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := NewID()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collection(collection)[id] = fields.Clone()
	return id, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields models.Fields) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		current[k] = v
	}
	return nil
}

func (m *Memory) Remove(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *Memory) InsertMany(ctx context.Context, collection string, records []models.Fields) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ids := make([]string, len(records))
	for i := range records {
		id, err := NewID()
		if err != nil {
			return 0, err
		}
		ids[i] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection)
	for i, fields := range records {
		c[ids[i]] = fields.Clone()
	}
	return len(records), nil
}

func (m *Memory) Close() error {
	return nil
}

// collection returns the named map, creating it. Caller holds the write lock.
func (m *Memory) collection(name string) map[string]models.Fields {
	c, ok := m.collections[name]
	if !ok {
		c = map[string]models.Fields{}
		m.collections[name] = c
	}
	return c
}
