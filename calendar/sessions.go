// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package calendar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched table is kept
const DefaultSessionTTL = 2 * time.Hour

type session struct {
	table    *Table
	lastUsed time.Time
}

// Sessions holds tables between requests, keyed by random ID. A table not
// used for the TTL is dropped.
type Sessions struct {
	mu     sync.Mutex
	tables map[string]*session
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		tables: map[string]*session{},
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create stores a table and returns its ID.
func (s *Sessions) Create(t *Table) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[id] = &session{table: t, lastUsed: s.now()}
	return id
}

// Get returns a live table and refreshes its expiry.
func (s *Sessions) Get(id string) (*Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.tables[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastUsed) > s.ttl {
		delete(s.tables, id)
		return nil, false
	}
	sess.lastUsed = now
	return sess.table, true
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.tables[id]
	delete(s.tables, id)
	return ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables)
}

// Sweep drops expired tables and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.tables {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.tables, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on an interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired calendar tables", "count", n, "remaining", s.Len())
			}
		}
	}
}
