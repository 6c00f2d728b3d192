// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// PrimaryCalendar is the calendar read for the signed-in user
const PrimaryCalendar = "primary"

var (
	ErrNoToken      = errors.New("google access token is required")
	ErrInvalidRange = errors.New("invalid time range")
)

// Fetcher lists events from the Google Calendar API on behalf of a user
// whose OAuth access token is passed per call.
type Fetcher struct {
	endpoint   string
	httpClient *http.Client
}

// NewFetcher creates a Fetcher. An empty endpoint uses Google's default;
// tests point it at a local server.
func NewFetcher(endpoint string) *Fetcher {
	return &Fetcher{endpoint: endpoint, httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// Events returns the expanded single events of the primary calendar that
// overlap [start, end), ordered by start time.
func (f *Fetcher) Events(ctx context.Context, accessToken string, start, end time.Time) ([]*calendar.Event, error) {
	if accessToken == "" {
		return nil, ErrNoToken
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrInvalidRange)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, f.httpClient), src)

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	var events []*calendar.Event
	err = svc.Events.List(PrimaryCalendar).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *calendar.Events) error {
			events = append(events, page.Items...)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return events, nil
}

// ParseRange reads the start and end query values. Each may be RFC 3339 or
// a plain 2006-01-02 date in loc. A missing start means the first day of
// the current month; a missing end means one month after start.
func ParseRange(startStr, endStr string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	var start, end time.Time
	if startStr == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		t, err := parseInstant(startStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start: %v", ErrInvalidRange, err)
		}
		start = t
	}

	if endStr == "" {
		end = start.AddDate(0, 1, 0)
	} else {
		t, err := parseInstant(endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end: %v", ErrInvalidRange, err)
		}
		end = t
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end must be after start", ErrInvalidRange)
	}
	return start, end, nil
}

func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}
