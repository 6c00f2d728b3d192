// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ward-admin/cliparse"
	"github.com/danielhkuo/ward-admin/db"
	"github.com/danielhkuo/ward-admin/models"
	"github.com/danielhkuo/ward-admin/store"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// The pool is pinned to one connection so the in-memory database survives
// between queries.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration with auth disabled
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseType:   "memory",
		TimeZone:       "UTC",
		SessionTTL:     time.Hour,
		MaxUploadBytes: 1 << 20,
	}
}

// SeedRecords pushes records into a collection and returns their IDs in order
func SeedRecords(t *testing.T, s store.Store, collection string, records ...models.Fields) []string {
	t.Helper()

	ids := make([]string, 0, len(records))
	for _, fields := range records {
		id, err := s.Push(context.Background(), collection, fields)
		if err != nil {
			t.Fatalf("Failed to seed %s: %v", collection, err)
		}
		ids = append(ids, id)
	}
	return ids
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeUploadRequest creates a multipart request carrying one file
func MakeUploadRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// SampleICS is a two-event calendar used across packages
const SampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Ward Admin//Test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:one@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART:20240101T090000Z\r\n" +
	"DTEND:20240101T113000Z\r\n" +
	"SUMMARY:Ward meeting\r\n" +
	"DESCRIPTION:Monthly review\r\n" +
	"LOCATION:Hall 3\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:two@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART:20240102T140000Z\r\n" +
	"DTEND:20240102T150000Z\r\n" +
	"SUMMARY:Site visit\r\n" +
	"STATUS:CONFIRMED\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"
