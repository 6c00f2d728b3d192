// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package screen

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/danielhkuo/ward-admin/models"
	"github.com/danielhkuo/ward-admin/store"
)

// Page size options offered by every screen
const (
	SmallPageSize   = 5
	DefaultPageSize = 10
)

// Mode is the edit state of a screen
type Mode int

const (
	ModeClosed Mode = iota
	ModeAdd
	ModeUpdate
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeUpdate:
		return "update"
	case ModeDelete:
		return "delete"
	default:
		return "closed"
	}
}

// State is a point-in-time copy of a screen's view state.
type State struct {
	Mode       Mode
	Form       models.Fields
	EditID     string
	Errors     map[string]string
	Notice     string
	Query      string
	Pagination models.Pagination
}

// Screen is the view model for one collection: a fetched snapshot, the
// search filter, the current page and the edit form. All transitions go
// through its methods; it is safe for concurrent use.
type Screen struct {
	spec  Spec
	store store.Store

	mu       sync.Mutex
	loaded   bool
	snapshot map[string]models.Fields
	visible  []models.Record // archive-filtered, newest first
	filtered []models.Record // visible narrowed by query
	query    string
	page     int
	size     int

	mode   Mode
	form   models.Fields
	editID string
	errors map[string]string
	notice string
}

func New(spec Spec, s store.Store) *Screen {
	return &Screen{
		spec:     spec,
		store:    s,
		snapshot: map[string]models.Fields{},
		page:     1,
		size:     DefaultPageSize,
		errors:   map[string]string{},
	}
}

func (s *Screen) Spec() Spec {
	return s.spec
}

// FetchPage reads the whole collection and returns one page of it, newest
// first, with the current search applied. A page past the end is clamped to
// the last page. On failure the previous snapshot is kept.
func (s *Screen) FetchPage(ctx context.Context, page, size int) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.Get(ctx, s.spec.Collection)
	if err != nil {
		s.notice = "Failed to fetch " + s.spec.Title
		return nil, &StoreOperationError{Op: "fetch", Collection: s.spec.Collection, Err: err}
	}

	s.setPaging(page, size)
	s.load(records)
	return s.pageLocked(), nil
}

// Page returns the current page without touching the store.
func (s *Screen) Page() []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLocked()
}

// Search filters the last fetched snapshot and resets to page 1. The query
// stays in effect for later fetches until cleared with "".
func (s *Screen) Search(query string) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	s.page = 1
	s.applyQuery()
	return s.pageLocked()
}

// ApplySnapshot replaces the snapshot with one pushed by the store, keeping
// the current page, page size and query.
func (s *Screen) ApplySnapshot(records map[string]models.Fields) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load(records)
	return s.pageLocked()
}

// Open starts an edit. Any form already open is replaced.
func (s *Screen) Open(mode Mode, rec models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec.ReadOnly && mode != ModeClosed {
		return ErrReadOnly
	}
	if (mode == ModeUpdate || mode == ModeDelete) && rec.ID == "" {
		return ErrMissingID
	}

	s.mode = mode
	s.form = rec.Fields.Clone()
	s.editID = rec.ID
	s.errors = map[string]string{}
	if mode == ModeAdd {
		s.editID = ""
	}
	return nil
}

func (s *Screen) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.close()
}

// Submit applies the open edit. Validation and uniqueness are checked
// against the last snapshot before any write; a screen that was never
// fetched loads one first. On success the form closes and the current page
// is re-fetched. On failure the form stays open with its errors. The
// returned ID is the new record's on add and the edited record's otherwise.
func (s *Screen) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeClosed {
		return "", ErrNotEditing
	}
	if !s.loaded {
		records, err := s.store.Get(ctx, s.spec.Collection)
		if err != nil {
			s.notice = "Failed to fetch " + s.spec.Title
			return "", &StoreOperationError{Op: "fetch", Collection: s.spec.Collection, Err: err}
		}
		s.load(records)
	}

	id, err := s.commit(ctx)
	if err != nil {
		return "", err
	}

	slog.Info("record saved", "screen", s.spec.Name, "action", s.mode.String(), "id", id)
	s.notice = strings.ToUpper(s.mode.String()[:1]) + s.mode.String()[1:] + " successful"
	s.close()
	s.refresh(ctx)
	return id, nil
}

func (s *Screen) commit(ctx context.Context) (string, error) {
	c := s.spec.Collection

	switch s.mode {
	case ModeAdd:
		form := s.spec.Defaults.Clone()
		for k, v := range s.form {
			form[k] = v
		}
		delete(form, "id")
		if errs := s.check(form, true, ""); len(errs) > 0 {
			return "", s.reject(errs)
		}
		id, err := s.store.Push(ctx, c, form)
		if err != nil {
			return "", s.fail("add", err)
		}
		return id, nil

	case ModeUpdate:
		if s.editID == "" {
			return "", ErrMissingID
		}
		delete(s.form, "id")
		if errs := s.check(s.form, false, s.editID); len(errs) > 0 {
			return "", s.reject(errs)
		}
		if err := s.store.Update(ctx, c, s.editID, s.form); err != nil {
			return "", s.fail("update", err)
		}
		return s.editID, nil

	case ModeDelete:
		if s.editID == "" {
			return "", ErrMissingID
		}
		if err := s.store.Remove(ctx, c, s.editID); err != nil {
			return "", s.fail("delete", err)
		}
		return s.editID, nil
	}

	return "", ErrNotEditing
}

func (s *Screen) check(form models.Fields, adding bool, selfID string) map[string]string {
	errs := s.spec.validate(form, adding)
	if adding || s.spec.UniqueOnUpdate {
		for field, msg := range s.spec.duplicates(form, s.snapshot, selfID) {
			if _, ok := errs[field]; !ok {
				errs[field] = msg
			}
		}
	}
	return errs
}

func (s *Screen) reject(errs map[string]string) error {
	s.errors = errs
	s.notice = "Please fix validation errors before submitting."
	return &ValidationError{Fields: errs}
}

func (s *Screen) fail(op string, err error) error {
	s.notice = "Failed to " + op + " record"
	slog.Error("failed to "+op+" record", "screen", s.spec.Name, "error", err)
	return &StoreOperationError{Op: op, Collection: s.spec.Collection, Err: err}
}

// Archive sets the archive flag on a record; it stays in the collection.
func (s *Screen) Archive(ctx context.Context, rec models.Record) error {
	return s.setArchived(ctx, rec, true)
}

// Restore clears the archive flag.
func (s *Screen) Restore(ctx context.Context, rec models.Record) error {
	return s.setArchived(ctx, rec, false)
}

func (s *Screen) setArchived(ctx context.Context, rec models.Record, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spec.Archive == ArchiveNone {
		return ErrArchiveUnsupported
	}
	if rec.ID == "" {
		return ErrMissingID
	}

	op := "restore"
	if archived {
		op = "archive"
	}
	if err := s.store.Update(ctx, s.spec.Collection, rec.ID, models.Fields{models.FieldArchived: archived}); err != nil {
		return s.fail(op, err)
	}

	slog.Info("record "+op+"d", "screen", s.spec.Name, "id", rec.ID)
	s.refresh(ctx)
	return nil
}

// State returns a copy of the current view state.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		errs[k] = v
	}
	var form models.Fields
	if s.form != nil {
		form = s.form.Clone()
	}
	return State{
		Mode:       s.mode,
		Form:       form,
		EditID:     s.editID,
		Errors:     errs,
		Notice:     s.notice,
		Query:      s.query,
		Pagination: s.paginationLocked(),
	}
}

// TakeNotice returns the pending notification and clears it.
func (s *Screen) TakeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = ""
	return n
}

func (s *Screen) Pagination() models.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paginationLocked()
}

// Internals below assume s.mu is held.

func (s *Screen) close() {
	s.mode = ModeClosed
	s.form = nil
	s.editID = ""
	s.errors = map[string]string{}
}

// refresh re-reads the collection after a write. A failed read leaves the
// old snapshot in place and only sets the notice.
func (s *Screen) refresh(ctx context.Context) {
	records, err := s.store.Get(ctx, s.spec.Collection)
	if err != nil {
		slog.Warn("failed to refresh screen", "screen", s.spec.Name, "error", err)
		s.notice = "Failed to fetch " + s.spec.Title
		return
	}
	s.load(records)
}

func (s *Screen) setPaging(page, size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	s.page = page
	s.size = size
}

func (s *Screen) load(records map[string]models.Fields) {
	s.snapshot = records
	s.loaded = true

	s.visible = s.visible[:0]
	for id, f := range records {
		if s.spec.shows(f) {
			s.visible = append(s.visible, models.Record{ID: id, Fields: f})
		}
	}
	sort.Slice(s.visible, func(i, j int) bool {
		return s.visible[i].ID > s.visible[j].ID
	})
	s.applyQuery()
}

func (s *Screen) applyQuery() {
	defer s.clampPage()

	if s.query == "" {
		s.filtered = s.visible
		return
	}
	q := strings.ToLower(s.query)
	s.filtered = make([]models.Record, 0, len(s.visible))
	for _, r := range s.visible {
		if s.spec.matches(r.Fields, q) {
			s.filtered = append(s.filtered, r)
		}
	}
}

// clampPage steps back to the last page when the filtered set shrinks
// below the current one, so the page held always matches what Page returns.
func (s *Screen) clampPage() {
	_, _, p := models.Paginate(len(s.filtered), s.page, s.size)
	s.page = p.CurrentPage
}

func (s *Screen) pageLocked() []models.Record {
	start, end, _ := models.Paginate(len(s.filtered), s.page, s.size)
	out := make([]models.Record, 0, end-start)
	for _, r := range s.filtered[start:end] {
		out = append(out, models.Record{ID: r.ID, Fields: r.Fields.Clone()})
	}
	return out
}

func (s *Screen) paginationLocked() models.Pagination {
	_, _, p := models.Paginate(len(s.filtered), s.page, s.size)
	return p
}
