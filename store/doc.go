// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the document store behind every dashboard screen.

# Store Interface

Collections are addressed by name. Reads return the whole collection as an
ID to fields map; writes are keyed by record ID:

	id, err := s.Push(ctx, models.CollectionWards, models.Fields{"wardName": "North"})
	err = s.Update(ctx, models.CollectionWards, id, models.Fields{"wardNumber": "12"})
	records, err := s.Get(ctx, models.CollectionWards)

Update merges only the given keys. Update and Remove return ErrNotFound for
unknown IDs. Field values are limited to string, bool and float64.

# Record IDs

IDs are UUIDv7 strings assigned at creation. They never change and are never
reused, and sorting them descending gives newest first.

# Implementations

  - SQLStore: database/sql over the record table from package db. Runs on
    modernc.org/sqlite and lib/pq.
  - MongoStore: one MongoDB collection per collection name, keyed by _id.
  - Memory: process-local, for tests and DATABASE_TYPE=memory.

# Realtime Push

Watch wraps a Store so that each successful write publishes a fresh
Snapshot of the collection through a Hub:

	hub := store.NewHub()
	s := store.Watch(backing, hub)

	ch, cancel := hub.Subscribe(models.CollectionWards)
	defer cancel()
	for snap := range ch {
		// snap.Records is the whole collection after the write
	}

Each subscriber buffers one snapshot. A newer snapshot replaces an unread
one, so slow readers only ever see the latest state.
*/
package store
