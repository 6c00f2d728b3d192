// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package calendar

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Display layouts. Cells are always written and re-read with these, so the
// server's locale never changes how a row is interpreted.
const (
	DateLayout  = "1/2/2006"
	TimeLayout  = "3:04:05 PM"
	StampLayout = "1/2/2006, 3:04:05 PM"
)

// Column names produced by Flatten
const (
	ColSummary     = "summary"
	ColDescription = "description"
	ColLocation    = "location"
	ColStartDate   = "start date"
	ColStartTime   = "start time"
	ColEndDate     = "end date"
	ColEndTime     = "end time"
	ColRecurrence  = "recurrence"
	ColOrganizer   = "organizer"
	ColStatus      = "status"
	ColCreated     = "created at"
	ColUpdated     = "updated at"
	ColAttendees   = "attendees"
)

// standardColumns lead every header list in this order.
var standardColumns = []string{
	ColSummary,
	ColDescription,
	ColLocation,
	ColStartDate,
	ColStartTime,
	ColEndDate,
	ColEndTime,
}

// Row is one table row. Start and End hold the instants behind the four
// date/time cells; a zero value means the pair is missing or unreadable.
type Row struct {
	Cells map[string]string
	Start time.Time
	End   time.Time
}

// NewRow builds a row from plain cells, deriving Start and End from the
// date/time cells.
func NewRow(cells map[string]string, loc *time.Location) Row {
	r := Row{Cells: make(map[string]string, len(cells))}
	for k, v := range cells {
		r.Cells[k] = v
	}
	r.derive(loc)
	return r
}

func (r Row) Get(column string) string {
	return r.Cells[column]
}

// Hours is End minus Start, or 0 when either is unknown.
func (r Row) Hours() float64 {
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start).Hours()
}

func (r Row) clone() Row {
	out := Row{Cells: make(map[string]string, len(r.Cells)), Start: r.Start, End: r.End}
	for k, v := range r.Cells {
		out.Cells[k] = v
	}
	return out
}

func (r *Row) set(column, value string) {
	if value != "" {
		r.Cells[column] = value
	}
}

func (r *Row) setStart(t time.Time, allDay bool) {
	r.Start = t
	r.Cells[ColStartDate] = t.Format(DateLayout)
	r.Cells[ColStartTime] = displayTime(t, allDay)
}

func (r *Row) setEnd(t time.Time, allDay bool) {
	r.End = t
	r.Cells[ColEndDate] = t.Format(DateLayout)
	r.Cells[ColEndTime] = displayTime(t, allDay)
}

func displayTime(t time.Time, allDay bool) string {
	if allDay {
		return "12:00:00 AM"
	}
	return t.Format(TimeLayout)
}

// derive re-reads Start and End from the cells.
func (r *Row) derive(loc *time.Location) {
	r.Start = parseCells(r.Cells[ColStartDate], r.Cells[ColStartTime], loc)
	r.End = parseCells(r.Cells[ColEndDate], r.Cells[ColEndTime], loc)
}

func parseCells(date, clock string, loc *time.Location) time.Time {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isTimeColumn(column string) bool {
	switch column {
	case ColStartDate, ColStartTime, ColEndDate, ColEndTime:
		return true
	}
	return false
}

// Headers returns the union of all row columns: the standard columns first
// in fixed order, then the rest alphabetically.
func Headers(rows []Row) []string {
	seen := map[string]bool{}
	for _, r := range rows {
		for k := range r.Cells {
			seen[k] = true
		}
	}
	return orderColumns(seen)
}

func orderColumns(seen map[string]bool) []string {
	out := make([]string, 0, len(seen))
	for _, c := range standardColumns {
		if seen[c] {
			out = append(out, c)
		}
	}

	var rest []string
	for c := range seen {
		if standardRank(c) < 0 {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func standardRank(column string) int {
	for i, c := range standardColumns {
		if c == column {
			return i
		}
	}
	return -1
}

// TotalHours sums Hours over rows, rounded to two decimals.
func TotalHours(rows []Row) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Hours()
	}
	return math.Round(sum*100) / 100
}

// Label turns a column name into its export heading: each word capitalised,
// whitespace removed. "start date" becomes "StartDate".
func Label(column string) string {
	var b strings.Builder
	for _, word := range strings.Fields(column) {
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	return b.String()
}
