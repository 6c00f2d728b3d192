// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package commands builds the ward-admin command tree.

# Commands

	ward-admin [serve] [-p port] [-t type] [-d url] ...
	ward-admin hash-password [-f auth.secret] [-u admin] [--overwrite]
	ward-admin convert events.ics [-o out.pdf] [--columns summary,"start date"] [--tz Asia/Kolkata]
	ward-admin import --screen wards --csv wards.csv

Every command loads .env before running. serve and the bare root command
share cliparse's flag set; import reads the same environment variables to
choose its store.

# Serve

serve opens the configured store, creates the schema for SQL backends,
wraps the store so writes are published to the change hub, starts the
calendar table sweeper and listens until SIGINT or SIGTERM.

# Import

import decodes rows with csvutil into the screen's typed record and
submits each through the screen's add form, so validation and uniqueness
match the dashboard. Invalid rows are skipped and logged.
*/
package commands
