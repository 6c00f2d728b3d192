// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ward-admin API.

# Handler Types

Each handler is a struct holding its dependencies:

  - AuthHandler: Admin login, issues session tokens
  - ScreenHandler: Collection screens (list, add, update, delete, archive, stream)
  - ExcelHandler: Bulk spreadsheet import into excel_data
  - CalendarHandler: Google events, editable calendar tables and exports

Handlers are created via constructor functions:

	screenHandler := handlers.NewScreenHandler(s, hub, cfg)

# Screens

Every request builds a fresh screen.Screen over the store, so paging,
search and validation behave exactly like the dashboard's view model:

	GET  /screens/{screen}/records?page=2&limit=5&q=north
	POST /screens/{screen}/records          → 201 {"id": "..."}

View-model errors map to status codes:

	*screen.ValidationError      → 422 with per-field messages
	store.ErrNotFound            → 404
	screen.ErrReadOnly           → 403
	*screen.StoreOperationError  → 502

The stream endpoint subscribes to the store hub and sends one Server-Sent
Event per snapshot, re-rendering the requested page.

# Calendar Tables

Uploading an .ics file or importing Google events creates a table held in
calendar.Sessions. Each mutation returns the first page of the updated
table with the total hours and whether undo is available. Exports are
rendered in memory and sent as downloads named calendar_events.xlsx and
calendar_events.pdf.

Google requests carry the user's OAuth access token in X-Google-Token.

# Uploads

Uploads use the multipart field "file" and are capped at
Config.MaxUploadBytes (413 when exceeded).
*/
package handlers
