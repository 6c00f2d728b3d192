// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ward-admin API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{
		Store:    store.Watch(s, hub),
		Hub:      hub,
		Sessions: sessions,
		Creds:    creds,
		Issuer:   issuer,
	}, cfg)

Missing Sessions and Fetcher are created from cfg. With nil Creds the
session guard is off.

# Endpoints

Public:

	GET  /health - Liveness
	GET  /       - Banner
	POST /login  - Exchange admin credentials for a session token

Collection screens (Authorization: Bearer <token>):

	GET    /screens                                - Screen list
	GET    /screens/{screen}/records?page&limit&q  - One page of records
	POST   /screens/{screen}/records               - Add
	PATCH  /screens/{screen}/records/{id}          - Partial update
	DELETE /screens/{screen}/records/{id}          - Delete
	POST   /screens/{screen}/records/{id}/archive  - Set isArchived
	POST   /screens/{screen}/records/{id}/restore  - Clear isArchived
	GET    /screens/{screen}/stream                - Server-Sent Events

Spreadsheet import:

	POST /excel        - JSON {records: [...]} into excel_data
	POST /excel/upload - .xlsx upload, first sheet into excel_data

Calendar (X-Google-Token carries the user's Google access token):

	GET  /calendar/events?start&end - Google events as JSON
	POST /tables/ics                - New table from an uploaded .ics file
	POST /tables/google?start&end   - New table from Google events

Tables:

	GET    /tables/{id}?page              - One page of rows
	DELETE /tables/{id}                   - Discard
	PATCH  /tables/{id}/cells             - Edit a cell
	POST   /tables/{id}/rows              - Append an empty row
	DELETE /tables/{id}/rows/{index}      - Delete a row
	POST   /tables/{id}/columns           - Add a column
	DELETE /tables/{id}/columns/{name}    - Delete a column
	PUT    /tables/{id}/visible           - Choose visible columns
	POST   /tables/{id}/undo              - Undo the last change
	GET    /tables/{id}/export.xlsx       - Download spreadsheet
	GET    /tables/{id}/export.pdf        - Download PDF

# Middleware

All API routes are wrapped with WithLogging and RequireSession. /health is
not logged.
*/
package router
