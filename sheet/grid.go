// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/ward-admin/calendar"
)

// Export names and fixed cell text
const (
	SheetName    = "Calendar Events"
	XLSXFilename = "calendar_events.xlsx"
	PDFFilename  = "calendar_events.pdf"
	Placeholder  = "-"
	TotalLabel   = "Total Hours"
)

var ErrNoColumns = errors.New("no visible columns to export")

// ExportError wraps a failure while writing an export format.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export %s: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Grid is a table ready to be written: labelled header, body cells with
// placeholders filled in, and the totals row.
type Grid struct {
	Header  []string
	Body    [][]string
	Summary []string
}

// NewGrid lays out the given columns of rows. Empty cells become "-". The
// summary row reads "Total Hours" in the first cell and the total in the
// last; a single column gets a two-cell summary row.
func NewGrid(columns []string, rows []calendar.Row, total float64) (Grid, error) {
	if len(columns) == 0 {
		return Grid{}, ErrNoColumns
	}

	g := Grid{
		Header: make([]string, len(columns)),
		Body:   make([][]string, len(rows)),
	}
	for i, c := range columns {
		g.Header[i] = calendar.Label(c)
	}
	for i, r := range rows {
		line := make([]string, len(columns))
		for j, c := range columns {
			if v := r.Get(c); v != "" {
				line[j] = v
			} else {
				line[j] = Placeholder
			}
		}
		g.Body[i] = line
	}

	totalText := fmt.Sprintf("%.2f", total)
	if len(columns) == 1 {
		g.Summary = []string{TotalLabel, totalText}
		return g, nil
	}
	g.Summary = make([]string, len(columns))
	for i := range g.Summary {
		g.Summary[i] = Placeholder
	}
	g.Summary[0] = TotalLabel
	g.Summary[len(columns)-1] = totalText
	return g, nil
}
