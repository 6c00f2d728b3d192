// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the SQL-backed store.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same statements run on SQLite (modernc.org/sqlite) and PostgreSQL (lib/pq).

# Tables

The schema has a single table:

  - record: one row per record of every named collection

Each row stores the record's fields as a JSON object in the data column,
keyed by (collection, id). Collections are created implicitly by the first
insert and disappear when their last record is removed.

# Indexes

  - record.(collection, id) (primary key)
  - record.collection
*/
package db
