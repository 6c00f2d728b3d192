// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	gcal "google.golang.org/api/calendar/v3"
)

// SourceKind tells which variant of RawEvent is set.
type SourceKind int

const (
	SourceFile SourceKind = iota + 1
	SourceService
)

func (k SourceKind) String() string {
	switch k {
	case SourceFile:
		return "file"
	case SourceService:
		return "service"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// RawEvent is one event before flattening. Exactly one of File or Service
// is set, as named by Kind.
type RawEvent struct {
	Kind    SourceKind
	File    *FileEvent
	Service *ServiceEvent
}

// FileEvent is a VEVENT from an uploaded .ics file.
type FileEvent struct {
	VEvent *ics.VEvent
}

// ServiceEvent is an event fetched from the Google Calendar API.
type ServiceEvent struct {
	Event *gcal.Event
}

func FromFile(ev *ics.VEvent) RawEvent {
	return RawEvent{Kind: SourceFile, File: &FileEvent{VEvent: ev}}
}

func FromService(ev *gcal.Event) RawEvent {
	return RawEvent{Kind: SourceService, Service: &ServiceEvent{Event: ev}}
}

var ErrNotCalendar = errors.New("missing BEGIN:VCALENDAR")

// ParseError reports an uploaded file that could not be read as a calendar.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "invalid calendar file: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseICS reads every VEVENT of an iCalendar stream in file order.
func ParseICS(r io.Reader) ([]RawEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if !bytes.Contains(data, []byte("BEGIN:VCALENDAR")) {
		return nil, &ParseError{Err: ErrNotCalendar}
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	events := cal.Events()
	out := make([]RawEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, FromFile(ev))
	}
	return out, nil
}

// Services wraps fetched API events in file order.
func Services(events []*gcal.Event) []RawEvent {
	out := make([]RawEvent, 0, len(events))
	for _, ev := range events {
		if ev != nil {
			out = append(out, FromService(ev))
		}
	}
	return out
}

// Flatten projects an event onto display columns. Empty values are left out.
func Flatten(ev RawEvent, loc *time.Location) (Row, error) {
	if loc == nil {
		loc = time.Local
	}

	switch ev.Kind {
	case SourceFile:
		if ev.File == nil || ev.File.VEvent == nil {
			return Row{}, errors.New("file event is empty")
		}
		return flattenFile(ev.File.VEvent, loc), nil
	case SourceService:
		if ev.Service == nil || ev.Service.Event == nil {
			return Row{}, errors.New("service event is empty")
		}
		return flattenService(ev.Service.Event, loc), nil
	default:
		return Row{}, fmt.Errorf("unknown event source %v", ev.Kind)
	}
}

// FlattenAll flattens a batch of events, stopping at the first bad one.
func FlattenAll(events []RawEvent, loc *time.Location) ([]Row, error) {
	rows := make([]Row, 0, len(events))
	for i, ev := range events {
		row, err := Flatten(ev, loc)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func flattenFile(ev *ics.VEvent, loc *time.Location) Row {
	row := Row{Cells: map[string]string{}}

	row.set(ColSummary, icsText(ev, ics.ComponentPropertySummary))
	row.set(ColDescription, icsText(ev, ics.ComponentPropertyDescription))
	row.set(ColLocation, icsText(ev, ics.ComponentPropertyLocation))

	if t, allDay, ok := icsTime(ev, ics.ComponentPropertyDtStart, loc); ok {
		row.setStart(t, allDay)
	}
	if t, allDay, ok := icsTime(ev, ics.ComponentPropertyDtEnd, loc); ok {
		row.setEnd(t, allDay)
	}

	row.set(ColRecurrence, icsText(ev, ics.ComponentPropertyRrule))
	row.set(ColOrganizer, trimMailto(icsText(ev, ics.ComponentPropertyOrganizer)))
	row.set(ColStatus, icsText(ev, ics.ComponentPropertyStatus))

	if t, _, ok := icsTime(ev, ics.ComponentPropertyCreated, loc); ok {
		row.set(ColCreated, t.Format(StampLayout))
	}
	if t, err := ev.GetLastModifiedAt(); err == nil {
		row.set(ColUpdated, t.In(loc).Format(StampLayout))
	}

	var attendees []string
	for _, a := range ev.Attendees() {
		if email := a.Email(); email != "" {
			attendees = append(attendees, email)
		}
	}
	row.set(ColAttendees, strings.Join(attendees, ", "))

	return row
}

func icsText(ev *ics.VEvent, p ics.ComponentProperty) string {
	prop := ev.GetProperty(p)
	if prop == nil {
		return ""
	}
	return unescapeText(prop.Value)
}

var icsTextEscapes = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescapeText(s string) string {
	return icsTextEscapes.Replace(s)
}

// icsTime reads a DATE or DATE-TIME property. Date-only values are all-day
// and taken as midnight in loc.
func icsTime(ev *ics.VEvent, p ics.ComponentProperty, loc *time.Location) (time.Time, bool, bool) {
	prop := ev.GetProperty(p)
	if prop == nil || prop.Value == "" {
		return time.Time{}, false, false
	}

	if !strings.Contains(prop.Value, "T") {
		t, err := time.ParseInLocation("20060102", strings.TrimSuffix(prop.Value, "Z"), loc)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}

	var (
		t   time.Time
		err error
	)
	switch p {
	case ics.ComponentPropertyDtStart:
		t, err = ev.GetStartAt()
	case ics.ComponentPropertyDtEnd:
		t, err = ev.GetEndAt()
	default:
		t, err = parseICSStamp(prop.Value, loc)
	}
	if err != nil {
		return time.Time{}, false, false
	}
	return t.In(loc), false, true
}

func parseICSStamp(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	return time.ParseInLocation("20060102T150405", v, loc)
}

func trimMailto(s string) string {
	if len(s) >= 7 && strings.EqualFold(s[:7], "mailto:") {
		return s[7:]
	}
	return s
}

func flattenService(ev *gcal.Event, loc *time.Location) Row {
	row := Row{Cells: map[string]string{}}

	row.set(ColSummary, ev.Summary)
	row.set(ColDescription, ev.Description)
	row.set(ColLocation, ev.Location)

	if t, allDay, ok := serviceTime(ev.Start, loc); ok {
		row.setStart(t, allDay)
	}
	if t, allDay, ok := serviceTime(ev.End, loc); ok {
		row.setEnd(t, allDay)
	}

	row.set(ColRecurrence, strings.Join(ev.Recurrence, "; "))
	if ev.Organizer != nil {
		row.set(ColOrganizer, ev.Organizer.Email)
	}
	row.set(ColStatus, ev.Status)

	if t, err := time.Parse(time.RFC3339, ev.Created); err == nil {
		row.set(ColCreated, t.In(loc).Format(StampLayout))
	}
	if t, err := time.Parse(time.RFC3339, ev.Updated); err == nil {
		row.set(ColUpdated, t.In(loc).Format(StampLayout))
	}

	var attendees []string
	for _, a := range ev.Attendees {
		if a != nil && a.Email != "" {
			attendees = append(attendees, a.Email)
		}
	}
	row.set(ColAttendees, strings.Join(attendees, ", "))

	return row
}

func serviceTime(dt *gcal.EventDateTime, loc *time.Location) (time.Time, bool, bool) {
	if dt == nil {
		return time.Time{}, false, false
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return time.Time{}, false, false
		}
		return t.In(loc), false, true
	}
	if dt.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", dt.Date, loc)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	return time.Time{}, false, false
}
