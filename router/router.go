// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ward-admin/auth"
	"github.com/danielhkuo/ward-admin/calendar"
	"github.com/danielhkuo/ward-admin/cliparse"
	"github.com/danielhkuo/ward-admin/gcal"
	"github.com/danielhkuo/ward-admin/handlers"
	"github.com/danielhkuo/ward-admin/middleware"
	"github.com/danielhkuo/ward-admin/sheet"
	"github.com/danielhkuo/ward-admin/store"
)

// Services are the long-lived dependencies shared by the handlers. Only
// Store is required; Hub enables streaming, and Creds with Issuer enable
// login and the session guard.
type Services struct {
	Store    store.Store
	Hub      *store.Hub
	Sessions *calendar.Sessions
	Fetcher  *gcal.Fetcher
	Creds    *auth.Credentials
	Issuer   *auth.SessionIssuer
	PDFFont  *sheet.PDFFont
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	loc, err := cfg.Location()
	if err != nil {
		slog.Warn("falling back to UTC", "error", err)
		loc = time.UTC
	}
	if svc.Sessions == nil {
		svc.Sessions = calendar.NewSessions(cfg.SessionTTL)
	}
	if svc.Fetcher == nil {
		svc.Fetcher = gcal.NewFetcher(cfg.GoogleAPIEndpoint)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Creds, svc.Issuer)
	screenHandler := handlers.NewScreenHandler(svc.Store, svc.Hub, cfg)
	excelHandler := handlers.NewExcelHandler(svc.Store, cfg)
	calendarHandler := handlers.NewCalendarHandler(svc.Sessions, svc.Fetcher, loc, cfg)
	calendarHandler.SetPDFFont(svc.PDFFont)

	var parser middleware.TokenParser
	if svc.Creds != nil && svc.Issuer != nil {
		parser = svc.Issuer
	}
	protect := middleware.RequireSession(parser)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(protect(h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Login (public)
	mux.HandleFunc("POST /login", middleware.WithLogging(authHandler.Login))

	// Collection screens
	handle("GET /screens", screenHandler.ListScreens)
	handle("GET /screens/{screen}/records", screenHandler.ListRecords)
	handle("POST /screens/{screen}/records", screenHandler.AddRecord)
	handle("PATCH /screens/{screen}/records/{id}", screenHandler.UpdateRecord)
	handle("DELETE /screens/{screen}/records/{id}", screenHandler.DeleteRecord)
	handle("POST /screens/{screen}/records/{id}/archive", screenHandler.ArchiveRecord)
	handle("POST /screens/{screen}/records/{id}/restore", screenHandler.RestoreRecord)
	handle("GET /screens/{screen}/stream", screenHandler.Stream)

	// Spreadsheet bulk import
	handle("POST /excel", excelHandler.Import)
	handle("POST /excel/upload", excelHandler.Upload)

	// Calendar events and editable tables
	handle("GET /calendar/events", calendarHandler.ListEvents)
	handle("POST /tables/ics", calendarHandler.ImportICS)
	handle("POST /tables/google", calendarHandler.ImportGoogle)
	handle("GET /tables/{id}", calendarHandler.GetTable)
	handle("DELETE /tables/{id}", calendarHandler.DeleteTable)
	handle("PATCH /tables/{id}/cells", calendarHandler.EditCell)
	handle("POST /tables/{id}/rows", calendarHandler.AddRow)
	handle("DELETE /tables/{id}/rows/{index}", calendarHandler.DeleteRow)
	handle("POST /tables/{id}/columns", calendarHandler.AddColumn)
	handle("DELETE /tables/{id}/columns/{name}", calendarHandler.DeleteColumn)
	handle("PUT /tables/{id}/visible", calendarHandler.SetVisible)
	handle("POST /tables/{id}/undo", calendarHandler.Undo)
	handle("GET /tables/{id}/export.xlsx", calendarHandler.ExportXLSX)
	handle("GET /tables/{id}/export.pdf", calendarHandler.ExportPDF)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ward-admin API v1"))
	})

	return mux
}
