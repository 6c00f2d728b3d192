// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danielhkuo/ward-admin/models"
)

// Snapshot is a full copy of one collection pushed to subscribers.
type Snapshot struct {
	Collection string
	Records    map[string]models.Fields
}

// Hub fans collection snapshots out to subscribers. Each subscriber holds at
// most one pending snapshot; a newer one replaces it.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Snapshot]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[chan Snapshot]struct{}{}}
}

// Subscribe registers for snapshots of a collection. The returned cancel
// func closes the channel and is safe to call more than once.
func (h *Hub) Subscribe(collection string) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = map[chan Snapshot]struct{}{}
	}
	h.subs[collection][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[collection], ch)
			if len(h.subs[collection]) == 0 {
				delete(h.subs, collection)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) HasSubscribers(collection string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection]) > 0
}

func (h *Hub) Publish(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[snap.Collection] {
		// Drop a stale pending snapshot so the latest always gets through.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cloneSnapshot(snap):
		default:
		}
	}
}

func cloneSnapshot(s Snapshot) Snapshot {
	records := make(map[string]models.Fields, len(s.Records))
	for id, f := range s.Records {
		records[id] = f.Clone()
	}
	return Snapshot{Collection: s.Collection, Records: records}
}

// Watched wraps a Store and publishes the collection to the hub after every
// successful write.
type Watched struct {
	Store
	hub *Hub
}

func Watch(s Store, hub *Hub) *Watched {
	return &Watched{Store: s, hub: hub}
}

func (w *Watched) Hub() *Hub {
	return w.hub
}

func (w *Watched) Push(ctx context.Context, collection string, fields models.Fields) (string, error) {
	id, err := w.Store.Push(ctx, collection, fields)
	if err == nil {
		w.publish(ctx, collection)
	}
	return id, err
}

func (w *Watched) Update(ctx context.Context, collection, id string, fields models.Fields) error {
	err := w.Store.Update(ctx, collection, id, fields)
	if err == nil {
		w.publish(ctx, collection)
	}
	return err
}

func (w *Watched) Remove(ctx context.Context, collection, id string) error {
	err := w.Store.Remove(ctx, collection, id)
	if err == nil {
		w.publish(ctx, collection)
	}
	return err
}

func (w *Watched) InsertMany(ctx context.Context, collection string, records []models.Fields) (int, error) {
	n, err := w.Store.InsertMany(ctx, collection, records)
	if err == nil && n > 0 {
		w.publish(ctx, collection)
	}
	return n, err
}

func (w *Watched) publish(ctx context.Context, collection string) {
	if !w.hub.HasSubscribers(collection) {
		return
	}
	records, err := w.Store.Get(ctx, collection)
	if err != nil {
		slog.Warn("failed to read collection for realtime push", "collection", collection, "error", err)
		return
	}
	w.hub.Publish(Snapshot{Collection: collection, Records: records})
}
