// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/ward-admin/models"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that returns OK
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data":[]}`))
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	// Create test request and recorder
	req := httptest.NewRequest("GET", "/screens/centers/records?page=1", nil)
	w := httptest.NewRecorder()

	// Execute
	wrappedHandler(w, req)

	// Verify handler was called
	if !handlerCalled {
		t.Error("Expected handler to be called")
	}

	// Verify response was written correctly
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != `{"data":[]}` {
		t.Errorf("Expected page body, got '%s'", w.Body.String())
	}
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	// Test that logging doesn't interfere with various response codes
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, `{"message":"Update successful"}`},
		{"Created", http.StatusCreated, `{"id":"0192f3a4-ward"}`},
		{"Unprocessable", http.StatusUnprocessableEntity, `{"error":"Unprocessable Entity","fields":{"wardName":"required"}}`},
		{"NotFound", http.StatusNotFound, `{"error":"Not Found"}`},
		{"BadGateway", http.StatusBadGateway, `{"error":"Bad Gateway"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/screens/wards/records", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "records page",
			statusCode: http.StatusOK,
			data: models.PageResponse{
				Data: []models.Record{
					{ID: "w1", Fields: models.Fields{"wardName": "North", "wardNumber": 12}},
				},
				Pagination: models.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, Limit: 10},
			},
			expected: `{"data":[{"id":"w1","wardName":"North","wardNumber":12}],` +
				`"pagination":{"current_page":1,"total_pages":1,"total_items":1,"limit":10}}`,
		},
		{
			name:       "empty page keeps data array",
			statusCode: http.StatusOK,
			data: models.PageResponse{
				Data:       []models.Record{},
				Pagination: models.Pagination{CurrentPage: 1, TotalPages: 1, Limit: 10},
				Query:      "south",
			},
			expected: `{"data":[],"pagination":{"current_page":1,"total_pages":1,"total_items":0,"limit":10},"query":"south"}`,
		},
		{
			name:       "record added",
			statusCode: http.StatusCreated,
			data:       models.AddRecordResponse{ID: "0192f3a4-member"},
			expected:   `{"id":"0192f3a4-member"}`,
		},
		{
			name:       "update message",
			statusCode: http.StatusOK,
			data:       models.MessageResponse{Message: "Update successful"},
			expected:   `{"message":"Update successful"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			// Encode appends a newline
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		status  int
		message string
	}{
		{http.StatusBadRequest, "Invalid page number"},
		{http.StatusUnauthorized, "Session expired"},
		{http.StatusForbidden, "Screen is read-only"},
		{http.StatusNotFound, "Unknown screen: reports"},
		{http.StatusConflict, "Column already exists: Location"},
		{http.StatusBadGateway, "Google Calendar request failed"},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.status, tc.message)

			if w.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != http.StatusText(tc.status) {
				t.Errorf("Expected error '%s', got '%s'", http.StatusText(tc.status), resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
			if resp.Fields != nil {
				t.Errorf("Expected no field errors, got %v", resp.Fields)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("cell edit", func(t *testing.T) {
		body := `{"row":3,"column":"Location","value":"Ward 7 office"}`
		req := httptest.NewRequest("PATCH", "/tables/t1/cells", strings.NewReader(body))

		var edit models.CellEditRequest
		if err := ParseJSONBody(req, &edit); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if edit.Row != 3 || edit.Column != "Location" || edit.Value != "Ward 7 office" {
			t.Errorf("Unexpected edit: %+v", edit)
		}
	})

	t.Run("excel import keeps numbers as float64", func(t *testing.T) {
		body := `{"records":[{"Summary":"Ward sabha","Attendees":42},{"Summary":"Mandi visit"}]}`
		req := httptest.NewRequest("POST", "/excel-data/import", strings.NewReader(body))

		var imp models.ExcelImportRequest
		if err := ParseJSONBody(req, &imp); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(imp.Records) != 2 {
			t.Fatalf("Expected 2 records, got %d", len(imp.Records))
		}
		if imp.Records[0]["Attendees"] != float64(42) {
			t.Errorf("Expected Attendees 42, got %#v", imp.Records[0]["Attendees"])
		}
		if imp.Records[1]["Summary"] != "Mandi visit" {
			t.Errorf("Expected Summary 'Mandi visit', got %#v", imp.Records[1]["Summary"])
		}
	})

	t.Run("visible columns ignores unknown fields", func(t *testing.T) {
		body := `{"columns":["Summary","Start"],"persist":true}`
		req := httptest.NewRequest("PUT", "/tables/t1/columns/visible", strings.NewReader(body))

		var vis models.VisibleColumnsRequest
		if err := ParseJSONBody(req, &vis); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if strings.Join(vis.Columns, ",") != "Summary,Start" {
			t.Errorf("Unexpected columns: %v", vis.Columns)
		}
	})

	t.Run("wrong type for row", func(t *testing.T) {
		body := `{"row":"third","column":"Location","value":"x"}`
		req := httptest.NewRequest("PATCH", "/tables/t1/cells", strings.NewReader(body))

		var edit models.CellEditRequest
		if err := ParseJSONBody(req, &edit); err == nil {
			t.Error("Expected error for non-numeric row")
		}
	})

	t.Run("malformed and empty bodies", func(t *testing.T) {
		for _, body := range []string{`{"name":`, ""} {
			req := httptest.NewRequest("POST", "/tables/t1/columns", strings.NewReader(body))
			var col models.ColumnRequest
			if err := ParseJSONBody(req, &col); err == nil {
				t.Errorf("Expected error for body %q", body)
			}
		}
	})

	t.Run("null leaves pointer nil", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader("null"))

		var login *models.LoginRequest
		if err := ParseJSONBody(req, &login); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if login != nil {
			t.Error("Expected nil result for null JSON")
		}
	})

	t.Run("body is consumed", func(t *testing.T) {
		body := `{"user_id":"ward.admin","password":"secret"}`
		req := httptest.NewRequest("POST", "/auth/login", io.NopCloser(bytes.NewReader([]byte(body))))

		var login models.LoginRequest
		if err := ParseJSONBody(req, &login); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if login.UserID != "ward.admin" {
			t.Errorf("Expected user_id 'ward.admin', got '%s'", login.UserID)
		}
		if remaining, _ := io.ReadAll(req.Body); len(remaining) > 0 {
			t.Errorf("Expected body to be consumed, %d bytes left", len(remaining))
		}
	})
}

func TestCORS(t *testing.T) {
	nextCalled := 0
	corsHandler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled++
		w.Header().Set("Content-Disposition", `attachment; filename="calendar.xlsx"`)
		w.WriteHeader(http.StatusOK)
	}))

	const dashboard = "http://localhost:5173"

	t.Run("preflight for cell edit", func(t *testing.T) {
		nextCalled = 0
		req := httptest.NewRequest("OPTIONS", "/tables/t1/cells", nil)
		req.Header.Set("Origin", dashboard)
		req.Header.Set("Access-Control-Request-Method", "PATCH")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if nextCalled != 0 {
			t.Error("Expected preflight to stop before the handler")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != dashboard {
			t.Errorf("Expected origin %q, got %q", dashboard, got)
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Expected Access-Control-Allow-Credentials to be 'true'")
		}
		methods := w.Header().Get("Access-Control-Allow-Methods")
		for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
			if !strings.Contains(methods, m) {
				t.Errorf("Expected %s in allowed methods %q", m, methods)
			}
		}
	})

	t.Run("google import sends token header", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/calendar/google/import", nil)
		req.Header.Set("Origin", dashboard)
		req.Header.Set("Access-Control-Request-Headers", "authorization, x-google-token")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		allowed := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"Authorization", "X-Google-Token", "Content-Type"} {
			if !strings.Contains(allowed, h) {
				t.Errorf("Expected %s in allowed headers %q", h, allowed)
			}
		}
	})

	t.Run("export exposes filename and request id", func(t *testing.T) {
		nextCalled = 0
		req := httptest.NewRequest("GET", "/tables/t1/export.xlsx", nil)
		req.Header.Set("Origin", "https://ward-admin.example.org")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if nextCalled != 1 {
			t.Fatalf("Expected handler to run once, ran %d times", nextCalled)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ward-admin.example.org" {
			t.Errorf("Expected origin to be reflected, got %q", got)
		}
		exposed := w.Header().Get("Access-Control-Expose-Headers")
		if !strings.Contains(exposed, "Content-Disposition") || !strings.Contains(exposed, RequestIDHeader) {
			t.Errorf("Expected Content-Disposition and %s exposed, got %q", RequestIDHeader, exposed)
		}
	})

	t.Run("no origin falls back to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/screens/mandis/records?page=2", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "office proxy chain uses first hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.17, 10.20.0.4"},
			remoteAddr: "10.20.0.1:443",
			expectedIP: "203.0.113.17",
		},
		{
			name:       "forwarded for beats real ip",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.8", "X-Real-IP": "10.20.0.9"},
			remoteAddr: "10.20.0.1:443",
			expectedIP: "198.51.100.8",
		},
		{
			name:       "nginx real ip",
			headers:    map[string]string{"X-Real-IP": "198.51.100.23"},
			remoteAddr: "10.20.0.1:443",
			expectedIP: "198.51.100.23",
		},
		{
			name:       "direct dashboard connection",
			remoteAddr: "192.168.10.25:51012",
			expectedIP: "192.168.10.25",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.168.10.25",
			expectedIP: "192.168.10.25",
		},
		{
			name:       "ipv6 loopback keeps brackets",
			remoteAddr: "[::1]:8080",
			expectedIP: "[::1]",
		},
		{
			name:       "ipv6 forwarded",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::5"},
			remoteAddr: "127.0.0.1:8080",
			expectedIP: "2001:db8::5",
		},
		{
			name:       "blank forwarded header ignored",
			headers:    map[string]string{"X-Forwarded-For": ""},
			remoteAddr: "10.20.0.7:8080",
			expectedIP: "10.20.0.7",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}

func TestWithLogging_RequestID(t *testing.T) {
	var seen string
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if seen == "" {
		t.Fatal("Expected request id in context")
	}
	if got := w.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("Expected header %s to be %q, got %q", RequestIDHeader, seen, got)
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
}

func TestWithLogging_Flushes(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {}\n\n"))
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("Expected flush through the logging writer, got %v", err)
		}
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/screens/wards/stream", nil))

	if !w.Flushed {
		t.Error("Expected recorder to be flushed")
	}
}

type fakeParser map[string]string

func (f fakeParser) Parse(token string) (string, error) {
	if user, ok := f[token]; ok {
		return user, nil
	}
	return "", errors.New("bad token")
}

func TestRequireSession(t *testing.T) {
	parser := fakeParser{"good": "admin"}

	var gotUser string
	guarded := RequireSession(parser)(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "admin"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer forged", http.StatusUnauthorized, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest("GET", "/screens", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			guarded(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if gotUser != tc.wantUser {
				t.Errorf("Expected user %q, got %q", tc.wantUser, gotUser)
			}
		})
	}

	t.Run("nil parser disables the check", func(t *testing.T) {
		open := RequireSession(nil)(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		w := httptest.NewRecorder()
		open(w, httptest.NewRequest("GET", "/screens", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}

func TestValidationErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	ValidationErrorResponse(w, map[string]string{"wardName": "Ward name or number must be unique"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Fields["wardName"] != "Ward name or number must be unique" {
		t.Errorf("Unexpected fields: %v", resp.Fields)
	}
}
