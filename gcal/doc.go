// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package gcal fetches events from the Google Calendar API using an access
// token supplied by the caller. It reads the primary calendar with
// recurring events expanded, ordered by start time, following page tokens
// until the range is exhausted.
package gcal
