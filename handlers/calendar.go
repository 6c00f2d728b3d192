// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	gcalapi "google.golang.org/api/calendar/v3"

	"github.com/danielhkuo/ward-admin/calendar"
	"github.com/danielhkuo/ward-admin/cliparse"
	"github.com/danielhkuo/ward-admin/gcal"
	"github.com/danielhkuo/ward-admin/middleware"
	"github.com/danielhkuo/ward-admin/models"
	"github.com/danielhkuo/ward-admin/sheet"
)

// GoogleTokenHeader carries the user's Google OAuth access token
const GoogleTokenHeader = "X-Google-Token"

type CalendarHandler struct {
	sessions *calendar.Sessions
	fetcher  *gcal.Fetcher
	loc      *time.Location
	cfg      cliparse.Config
	now      func() time.Time
	pdfFont  *sheet.PDFFont
}

func NewCalendarHandler(sessions *calendar.Sessions, fetcher *gcal.Fetcher, loc *time.Location, cfg cliparse.Config) *CalendarHandler {
	return &CalendarHandler{sessions: sessions, fetcher: fetcher, loc: loc, cfg: cfg, now: time.Now}
}

// SetPDFFont switches PDF exports to a UTF-8 font. nil keeps Helvetica.
func (h *CalendarHandler) SetPDFFont(font *sheet.PDFFont) {
	h.pdfFont = font
}

// ListEvents handles GET /calendar/events
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	start, end, token, ok := h.googleParams(w, r)
	if !ok {
		return
	}

	events, err := h.fetcher.Events(r.Context(), token, start, end)
	if err != nil {
		slog.Error("failed to fetch calendar events", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to fetch calendar events")
		return
	}
	if events == nil {
		events = []*gcalapi.Event{}
	}

	middleware.JSONResponse(w, http.StatusOK, events)
}

// ImportICS handles POST /tables/ics
func (h *CalendarHandler) ImportICS(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := readUpload(w, r, h.cfg.MaxUploadBytes)
	if !ok {
		return
	}

	events, err := calendar.ParseICS(bytes.NewReader(data))
	if err != nil {
		slog.Warn("failed to parse calendar file", "filename", filename, "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to parse calendar file")
		return
	}

	h.createTable(w, r, events)
}

// ImportGoogle handles POST /tables/google
func (h *CalendarHandler) ImportGoogle(w http.ResponseWriter, r *http.Request) {
	start, end, token, ok := h.googleParams(w, r)
	if !ok {
		return
	}

	events, err := h.fetcher.Events(r.Context(), token, start, end)
	if err != nil {
		slog.Error("failed to fetch calendar events", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to fetch calendar events")
		return
	}

	h.createTable(w, r, calendar.Services(events))
}

func (h *CalendarHandler) createTable(w http.ResponseWriter, r *http.Request, events []calendar.RawEvent) {
	rows, err := calendar.FlattenAll(events, h.loc)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	t := calendar.NewTable(rows, h.loc)
	id := h.sessions.Create(t)
	slog.Info("table created", "table_id", id, "rows", len(rows))

	middleware.JSONResponse(w, http.StatusCreated, tableView(id, t, 1, calendar.PageSize))
}

// GetTable handles GET /tables/{id}
func (h *CalendarHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}

	page, size, err := pageParams(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("limit") == "" {
		size = calendar.PageSize
	}

	middleware.JSONResponse(w, http.StatusOK, tableView(id, t, page, size))
}

// DeleteTable handles DELETE /tables/{id}
func (h *CalendarHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(r.PathValue("id")) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Table not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditCell handles PATCH /tables/{id}/cells
func (h *CalendarHandler) EditCell(w http.ResponseWriter, r *http.Request) {
	var req models.CellEditRequest
	h.mutate(w, r, &req, func(t *calendar.Table) error {
		return t.EditCell(req.Row, req.Column, req.Value)
	})
}

// AddRow handles POST /tables/{id}/rows
func (h *CalendarHandler) AddRow(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, nil, func(t *calendar.Table) error {
		t.AddRow()
		return nil
	})
}

// DeleteRow handles DELETE /tables/{id}/rows/{index}
func (h *CalendarHandler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Row index must be a number")
		return
	}
	h.mutate(w, r, nil, func(t *calendar.Table) error {
		return t.DeleteRow(index)
	})
}

// AddColumn handles POST /tables/{id}/columns
func (h *CalendarHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	var req models.ColumnRequest
	h.mutate(w, r, &req, func(t *calendar.Table) error {
		return t.AddColumn(req.Name)
	})
}

// DeleteColumn handles DELETE /tables/{id}/columns/{name}
func (h *CalendarHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	h.mutate(w, r, nil, func(t *calendar.Table) error {
		return t.DeleteColumn(name)
	})
}

// SetVisible handles PUT /tables/{id}/visible
func (h *CalendarHandler) SetVisible(w http.ResponseWriter, r *http.Request) {
	var req models.VisibleColumnsRequest
	h.mutate(w, r, &req, func(t *calendar.Table) error {
		return t.SetVisible(req.Columns)
	})
}

// Undo handles POST /tables/{id}/undo
func (h *CalendarHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	if !t.Undo() {
		middleware.ErrorResponse(w, http.StatusConflict, "Nothing to undo")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, tableView(id, t, 1, calendar.PageSize))
}

// ExportXLSX handles GET /tables/{id}/export.xlsx
func (h *CalendarHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, sheet.XLSXFilename,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", sheet.WriteXLSX)
}

// ExportPDF handles GET /tables/{id}/export.pdf
func (h *CalendarHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, sheet.PDFFilename, "application/pdf", func(w io.Writer, g sheet.Grid) error {
		return sheet.WritePDFWithFont(w, g, h.pdfFont)
	})
}

func (h *CalendarHandler) export(w http.ResponseWriter, r *http.Request, filename, contentType string,
	write func(io.Writer, sheet.Grid) error) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}

	visible, rows, total := t.Snapshot()
	grid, err := sheet.NewGrid(visible, rows, total)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Render fully before writing headers so a failure still gets a JSON error
	var buf bytes.Buffer
	if err := write(&buf, grid); err != nil {
		slog.Error("export failed", "table_id", id, "file", filename, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export table")
		return
	}

	slog.Info("table exported", "table_id", id, "file", filename, "size", humanize.Bytes(uint64(buf.Len())))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// mutate decodes an optional JSON body, applies op and returns the first
// page of the updated table.
func (h *CalendarHandler) mutate(w http.ResponseWriter, r *http.Request, body any, op func(*calendar.Table) error) {
	id, t, ok := h.table(w, r)
	if !ok {
		return
	}
	if body != nil {
		if err := middleware.ParseJSONBody(r, body); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	if err := op(t); err != nil {
		writeTableError(w, err)
		return
	}

	page, size, err := pageParams(r)
	if err != nil || r.URL.Query().Get("limit") == "" {
		page, size = 1, calendar.PageSize
	}
	middleware.JSONResponse(w, http.StatusOK, tableView(id, t, page, size))
}

func (h *CalendarHandler) table(w http.ResponseWriter, r *http.Request) (string, *calendar.Table, bool) {
	id := r.PathValue("id")
	t, ok := h.sessions.Get(id)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Table not found")
		return "", nil, false
	}
	return id, t, true
}

func (h *CalendarHandler) googleParams(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, string, bool) {
	token := r.Header.Get(GoogleTokenHeader)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Missing Google access token")
		return time.Time{}, time.Time{}, "", false
	}

	q := r.URL.Query()
	start, end, err := gcal.ParseRange(q.Get("start"), q.Get("end"), h.now(), h.loc)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return time.Time{}, time.Time{}, "", false
	}
	return start, end, token, true
}

func writeTableError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrRowOutOfRange), errors.Is(err, calendar.ErrUnknownColumn):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, calendar.ErrColumnExists):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, calendar.ErrEmptyColumn):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("unexpected table error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

func tableView(id string, t *calendar.Table, page, size int) models.TableView {
	rows, p := t.Page(page, size)
	cells := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		c := make(map[string]string, len(row.Cells))
		for k, v := range row.Cells {
			c[k] = v
		}
		cells = append(cells, c)
	}
	return models.TableView{
		ID:         id,
		Headers:    t.Headers(),
		Visible:    t.Visible(),
		Rows:       cells,
		Pagination: p,
		TotalHours: t.TotalHours(),
		CanUndo:    t.CanUndo(),
	}
}
