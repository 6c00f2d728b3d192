// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadDotEnv reads a .env file first; variables already in the environment win.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite, postgres, mongo or memory (default: sqlite)
  - DatabaseURL: Connection string or sqlite file (required unless memory)
  - DatabaseName: Mongo database name (default: ward_admin)
  - AuthFile: Admin credential file; empty disables login
  - SessionSecret: Session token signing key (required with AuthFile)
  - SessionTTL: Session and import-table lifetime (default: 12h)
  - TimeZone: Zone for calendar dates (default: Local)
  - MaxUploadBytes: Upload size limit (default: 10MiB)
  - GoogleAPIEndpoint: Calendar API base URL override
  - PDFFontFile: UTF-8 .ttf for PDF export; default Helvetica covers cp1252 only

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-n                Database name
	--auth-file       Admin credential file
	--session-secret  Session secret
	--session-ttl     Session lifetime
	--tz              Time zone
	--max-upload      Upload size limit, e.g. 10MiB
	--google-endpoint Calendar API endpoint
	--pdf-font        PDF font file

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	DATABASE_NAME       → -n
	AUTH_FILE           → --auth-file
	SESSION_SECRET      → --session-secret
	SESSION_TTL         → --session-ttl
	TIME_ZONE           → --tz
	MAX_UPLOAD_BYTES    → --max-upload
	GOOGLE_API_ENDPOINT → --google-endpoint
	PDF_FONT_FILE       → --pdf-font

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - the database type is not supported
  - DATABASE_URL is missing for a persistent store
  - AUTH_FILE is set without SESSION_SECRET
  - a duration, size or time zone does not parse
*/
package cliparse
