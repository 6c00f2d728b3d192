// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package calendar

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/ward-admin/models"
)

const (
	// PageSize is the number of events shown per table page
	PageSize = 10
	// MaxHistory bounds the undo stack
	MaxHistory = 50
)

var (
	ErrRowOutOfRange = errors.New("row index out of range")
	ErrUnknownColumn = errors.New("unknown column")
	ErrColumnExists  = errors.New("column already exists")
	ErrEmptyColumn   = errors.New("column name is empty")
)

type tableState struct {
	rows    []Row
	headers []string
	hidden  map[string]bool
}

func (s tableState) clone() tableState {
	out := tableState{
		rows:    make([]Row, len(s.rows)),
		headers: slices.Clone(s.headers),
		hidden:  make(map[string]bool, len(s.hidden)),
	}
	for i, r := range s.rows {
		out.rows[i] = r.clone()
	}
	for k, v := range s.hidden {
		out.hidden[k] = v
	}
	return out
}

// Table is an editable event table. Every mutation saves the previous
// rows, headers and visibility so Undo can restore them. Failed operations
// change nothing, history included. Safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	loc     *time.Location
	state   tableState
	history []tableState
}

// NewTable takes ownership of rows. All columns start visible.
func NewTable(rows []Row, loc *time.Location) *Table {
	if loc == nil {
		loc = time.Local
	}
	if rows == nil {
		rows = []Row{}
	}
	return &Table{
		loc: loc,
		state: tableState{
			rows:    rows,
			headers: Headers(rows),
			hidden:  map[string]bool{},
		},
	}
}

func (t *Table) Location() *time.Location {
	return t.loc
}

func (t *Table) Headers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.state.headers)
}

// Visible returns the shown columns in header order.
func (t *Table) Visible() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visibleLocked()
}

func (t *Table) visibleLocked() []string {
	out := make([]string, 0, len(t.state.headers))
	for _, h := range t.state.headers {
		if !t.state.hidden[h] {
			out = append(out, h)
		}
	}
	return out
}

// Rows returns a copy of every row.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clone().rows
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.state.rows)
}

// Page returns copies of the rows on a 1-based page.
func (t *Table) Page(page, size int) ([]Row, models.Pagination) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start, end, p := models.Paginate(len(t.state.rows), page, size)
	out := make([]Row, 0, end-start)
	for _, r := range t.state.rows[start:end] {
		out = append(out, r.clone())
	}
	return out, p
}

func (t *Table) TotalHours() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TotalHours(t.state.rows)
}

// Snapshot returns the visible columns, all rows and the total in one
// consistent read, for export.
func (t *Table) Snapshot() (visible []string, rows []Row, total float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visibleLocked(), t.state.clone().rows, TotalHours(t.state.rows)
}

// EditCell sets one cell. Editing a date or time cell re-derives the row's
// instants; an unreadable value clears them.
func (t *Table) EditCell(row int, column, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row < 0 || row >= len(t.state.rows) {
		return ErrRowOutOfRange
	}
	if !slices.Contains(t.state.headers, column) {
		return ErrUnknownColumn
	}

	t.save()
	r := &t.state.rows[row]
	if r.Cells == nil {
		r.Cells = map[string]string{}
	}
	r.Cells[column] = value
	if isTimeColumn(column) {
		r.derive(t.loc)
	}
	return nil
}

// AddRow appends an empty row and returns its index.
func (t *Table) AddRow() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.save()
	t.state.rows = append(t.state.rows, Row{Cells: map[string]string{}})
	return len(t.state.rows) - 1
}

func (t *Table) DeleteRow(row int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row < 0 || row >= len(t.state.rows) {
		return ErrRowOutOfRange
	}

	t.save()
	t.state.rows = slices.Delete(t.state.rows, row, row+1)
	return nil
}

// AddColumn appends a visible column after the existing ones.
func (t *Table) AddColumn(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyColumn
	}
	if slices.Contains(t.state.headers, name) {
		return ErrColumnExists
	}

	t.save()
	t.state.headers = append(t.state.headers, name)
	delete(t.state.hidden, name)
	return nil
}

// DeleteColumn drops a column and its cells from every row.
func (t *Table) DeleteColumn(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := slices.Index(t.state.headers, name)
	if i < 0 {
		return ErrUnknownColumn
	}

	t.save()
	t.state.headers = slices.Delete(t.state.headers, i, i+1)
	delete(t.state.hidden, name)
	for j := range t.state.rows {
		delete(t.state.rows[j].Cells, name)
		if isTimeColumn(name) {
			t.state.rows[j].derive(t.loc)
		}
	}
	return nil
}

// SetVisible shows exactly the given columns and hides the rest.
func (t *Table) SetVisible(columns []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range columns {
		if !slices.Contains(t.state.headers, c) {
			return ErrUnknownColumn
		}
	}

	t.save()
	hidden := make(map[string]bool, len(t.state.headers))
	for _, h := range t.state.headers {
		if !slices.Contains(columns, h) {
			hidden[h] = true
		}
	}
	t.state.hidden = hidden
	return nil
}

func (t *Table) Hide(column string) error {
	return t.setHidden(column, true)
}

func (t *Table) Show(column string) error {
	return t.setHidden(column, false)
}

func (t *Table) setHidden(column string, hidden bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !slices.Contains(t.state.headers, column) {
		return ErrUnknownColumn
	}

	t.save()
	if hidden {
		t.state.hidden[column] = true
	} else {
		delete(t.state.hidden, column)
	}
	return nil
}

// Undo restores the state before the last mutation. It reports false when
// there is nothing to undo.
func (t *Table) Undo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.history)
	if n == 0 {
		return false
	}
	t.state = t.history[n-1]
	t.history = t.history[:n-1]
	return true
}

func (t *Table) CanUndo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history) > 0
}

// save pushes a copy of the current state. Caller holds t.mu.
func (t *Table) save() {
	if len(t.history) == MaxHistory {
		t.history = slices.Delete(t.history, 0, 1)
	}
	t.history = append(t.history, t.state.clone())
}
