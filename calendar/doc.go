// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package calendar turns calendar events into an editable table.

# Sources

Events arrive from an uploaded .ics file or from the Google Calendar API.
RawEvent carries exactly one of the two, selected by Kind:

	events, err := calendar.ParseICS(file)       // SourceFile
	events := calendar.Services(apiEvents)      // SourceService

	rows, err := calendar.FlattenAll(events, loc)

ParseICS returns a *ParseError for anything that is not an iCalendar
stream.

# Rows

Flatten writes display strings for summary, description, location, the
start/end date and time, recurrence, organizer, status, created/updated
stamps and attendees. Empty values are left out, so the column set is
discovered from the data. Headers orders it: summary, description,
location, start date, start time, end date, end time, then the rest
alphabetically.

Dates and times use fixed layouts (1/2/2006 and 3:04:05 PM) in the
configured location. Each Row also keeps the Start and End instants, and
durations come from those. Editing a date or time cell re-reads the
instant from the cells; an unreadable value leaves it zero and the row
counts as 0 hours.

# Tables

Table holds rows, headers and the hidden column set. Every mutation saves
the previous state first, up to MaxHistory snapshots, and Undo restores
the latest one:

	tbl := calendar.NewTable(rows, loc)
	_ = tbl.DeleteRow(0)
	tbl.Undo()

Operations with a bad row index or column name return an error and change
nothing.

# Sessions

Sessions keeps tables between HTTP requests under random IDs and drops
tables left idle for longer than the TTL.
*/
package calendar
