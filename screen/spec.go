// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package screen

import (
	"strings"

	"github.com/danielhkuo/ward-admin/models"
)

// ArchiveFilter selects which records a screen shows by their archive flag.
type ArchiveFilter int

const (
	ArchiveNone ArchiveFilter = iota
	ArchiveActiveOnly
	ArchiveArchivedOnly
)

// Check validates a single field value, returning a message or "".
type Check func(value string) string

// UniqueRule rejects a value that already appears in another record.
type UniqueRule struct {
	Field           string
	CaseInsensitive bool
	Message         string
}

// Spec describes one admin screen.
type Spec struct {
	Name       string
	Title      string
	Collection string

	// SearchFields are matched by Search, case-insensitively.
	SearchFields []string
	Required     []string
	Checks       map[string]Check
	Unique       []UniqueRule
	// UniqueOnUpdate also applies Unique to updates, ignoring the record
	// being updated.
	UniqueOnUpdate bool

	// Defaults are merged under the form on Add.
	Defaults models.Fields
	Archive  ArchiveFilter
	ReadOnly bool
}

func (s Spec) Info() models.ScreenInfo {
	return models.ScreenInfo{
		Name:       s.Name,
		Title:      s.Title,
		Collection: s.Collection,
		ReadOnly:   s.ReadOnly,
	}
}

// shows reports whether a record belongs on this screen.
func (s Spec) shows(f models.Fields) bool {
	switch s.Archive {
	case ArchiveActiveOnly:
		return !f.Bool(models.FieldArchived)
	case ArchiveArchivedOnly:
		return f.Bool(models.FieldArchived)
	default:
		return true
	}
}

func (s Spec) matches(f models.Fields, lowerQuery string) bool {
	for _, field := range s.SearchFields {
		if strings.Contains(strings.ToLower(f.String(field)), lowerQuery) {
			return true
		}
	}
	return false
}

// validate checks form fields. On add every required field must be set;
// on update only the fields being changed are checked.
func (s Spec) validate(form models.Fields, adding bool) map[string]string {
	errs := map[string]string{}

	for _, field := range s.Required {
		v, present := form[field]
		if !adding && !present {
			continue
		}
		if v == nil || strings.TrimSpace(form.String(field)) == "" {
			errs[field] = "This field is required."
		}
	}

	for field, check := range s.Checks {
		if _, present := form[field]; !present {
			continue
		}
		if _, failed := errs[field]; failed {
			continue
		}
		if msg := check(form.String(field)); msg != "" {
			errs[field] = msg
		}
	}

	return errs
}

// duplicates checks the unique rules against a snapshot. selfID is skipped.
func (s Spec) duplicates(form models.Fields, snapshot map[string]models.Fields, selfID string) map[string]string {
	errs := map[string]string{}

	for _, rule := range s.Unique {
		if _, present := form[rule.Field]; !present {
			continue
		}
		want := strings.TrimSpace(form.String(rule.Field))
		if want == "" {
			continue
		}
		for id, rec := range snapshot {
			if id == selfID {
				continue
			}
			have := strings.TrimSpace(rec.String(rule.Field))
			if have == want || (rule.CaseInsensitive && strings.EqualFold(have, want)) {
				errs[rule.Field] = rule.Message
				break
			}
		}
	}

	return errs
}
