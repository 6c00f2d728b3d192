// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/ward-admin/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Store is the backing document store. Collections are addressed by name;
// reads return the whole collection, writes are keyed by record ID.
type Store interface {
	Get(ctx context.Context, collection string) (map[string]models.Fields, error)
	Push(ctx context.Context, collection string, fields models.Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields models.Fields) error
	Remove(ctx context.Context, collection, id string) error
	InsertMany(ctx context.Context, collection string, records []models.Fields) (int, error)
	Close() error
}

// NewID returns a store-assigned record ID. UUIDv7 strings sort by creation
// time, which the screens rely on for their newest-first order.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate record ID: %w", err)
	}
	return id.String(), nil
}

func checkCollection(name string) error {
	if name == "" {
		return ErrInvalidCollection
	}
	for _, r := range name {
		if r == '/' || r == '.' || r == '$' {
			return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
		}
	}
	return nil
}
