// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/ward-admin/models"
)

// SQLStore keeps every collection in the record table (see package db).
// It runs on both the sqlite and postgres drivers.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, collection string) (map[string]models.Fields, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data
		FROM record
		WHERE collection = $1
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string]models.Fields)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		fields, err := decodeFields(data)
		if err != nil {
			return nil, fmt.Errorf("record %s/%s: %w", collection, id, err)
		}
		out[id] = fields
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	return out, nil
}

func (s *SQLStore) Push(ctx context.Context, collection string, fields models.Fields) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}

	id, err := NewID()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}

	now := s.now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO record (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, collection, id, string(data), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}

	return id, nil
}

// Update merges fields into the stored record inside a transaction.
func (s *SQLStore) Update(ctx context.Context, collection, id string, fields models.Fields) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, `
		SELECT data FROM record WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load record: %w", err)
	}

	current, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("record %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		current[k] = v
	}
	merged, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE record
		SET data = $1, updated_at = $2
		WHERE collection = $3 AND id = $4
	`, string(merged), s.now().UTC(), collection, id)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM record WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) InsertMany(ctx context.Context, collection string, records []models.Fields) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	for i, fields := range records {
		id, err := NewID()
		if err != nil {
			return 0, err
		}
		data, err := json.Marshal(fields)
		if err != nil {
			return 0, fmt.Errorf("failed to encode record %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO record (collection, id, data, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, collection, id, string(data), now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return len(records), nil
}

// Close is a no-op; the caller owns the *sql.DB.
func (s *SQLStore) Close() error {
	return nil
}

func decodeFields(data string) (models.Fields, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var raw models.Fields
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode record data: %w", err)
	}
	if raw == nil {
		return nil, errors.New("record data is not an object")
	}
	return raw.Normalize()
}
