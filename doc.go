// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ward-admin API server.

ward-admin backs a ward administration dashboard: paginated CRUD screens
over a document store (members, wards, complaint templates, centers,
mandis), bulk spreadsheet import, and a calendar import pipeline that turns
.ics files or Google Calendar events into an editable table with undo and
xlsx/pdf export.

# Starting the Server

With no subcommand the server starts:

	DATABASE_URL=ward.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first.

# Commands

  - serve: start the HTTP server (default)
  - hash-password: write the admin auth file
  - convert: turn an .ics file into xlsx or pdf offline
  - import: load CSV rows into a screen through its validation

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file, postgres DSN or mongo URI (not needed for memory)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres, mongo or memory (default: sqlite)
  - AUTH_FILE, SESSION_SECRET: enable admin login
  - TIME_ZONE (-tz): zone for calendar dates and times

See package cliparse for the full list.

# Architecture

  - commands: cobra command tree and server wiring
  - router: Route definitions using Go 1.22+ routing
  - handlers: HTTP request handlers (screens, excel, calendar, login)
  - middleware: logging, sessions, CORS, JSON helpers
  - screen: paginated collection view model with validation
  - store: document store over SQL, MongoDB or memory, plus change hub
  - calendar: event flattening, editable tables, table sessions
  - gcal: Google Calendar client
  - sheet: xlsx and pdf rendering, spreadsheet reading
  - auth: admin credentials and session tokens
  - models: Request/response and record types
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
