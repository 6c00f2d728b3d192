// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package screen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrMissingID          = errors.New("record ID is required")
	ErrReadOnly           = errors.New("screen is read-only")
	ErrNotEditing         = errors.New("no edit in progress")
	ErrArchiveUnsupported = errors.New("screen does not support archiving")
	ErrUnknownScreen      = errors.New("unknown screen")
)

// ValidationError carries field-level messages. It is returned before any
// store write is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StoreOperationError wraps a failed read or write against the backing store.
type StoreOperationError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreOperationError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreOperationError) Unwrap() error {
	return e.Err
}
