// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/ward-admin/cliparse"
	"github.com/danielhkuo/ward-admin/middleware"
	"github.com/danielhkuo/ward-admin/models"
	"github.com/danielhkuo/ward-admin/screen"
	"github.com/danielhkuo/ward-admin/store"
)

type ScreenHandler struct {
	store store.Store
	hub   *store.Hub
	cfg   cliparse.Config
}

// NewScreenHandler serves the collection screens. hub may be nil, in which
// case streaming is unavailable.
func NewScreenHandler(s store.Store, hub *store.Hub, cfg cliparse.Config) *ScreenHandler {
	return &ScreenHandler{store: s, hub: hub, cfg: cfg}
}

// ListScreens handles GET /screens
func (h *ScreenHandler) ListScreens(w http.ResponseWriter, r *http.Request) {
	specs := screen.Specs()
	infos := make([]models.ScreenInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, spec.Info())
	}
	middleware.JSONResponse(w, http.StatusOK, infos)
}

// ListRecords handles GET /screens/{screen}/records
func (h *ScreenHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.open(w, r)
	if !ok {
		return
	}

	page, size, err := pageParams(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	query := r.URL.Query().Get("q")
	sc.Search(query)
	data, err := sc.FetchPage(r.Context(), page, size)
	if err != nil {
		writeScreenError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, pageResponse(sc, data))
}

// AddRecord handles POST /screens/{screen}/records
func (h *ScreenHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.open(w, r)
	if !ok {
		return
	}

	fields, ok := readFields(w, r)
	if !ok {
		return
	}

	if err := sc.Open(screen.ModeAdd, models.Record{Fields: fields}); err != nil {
		writeScreenError(w, err)
		return
	}
	id, err := sc.Submit(r.Context())
	if err != nil {
		writeScreenError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddRecordResponse{ID: id})
}

// UpdateRecord handles PATCH /screens/{screen}/records/{id}
func (h *ScreenHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.open(w, r)
	if !ok {
		return
	}

	fields, ok := readFields(w, r)
	if !ok {
		return
	}

	rec := models.Record{ID: r.PathValue("id"), Fields: fields}
	if err := sc.Open(screen.ModeUpdate, rec); err != nil {
		writeScreenError(w, err)
		return
	}
	if _, err := sc.Submit(r.Context()); err != nil {
		writeScreenError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: sc.TakeNotice()})
}

// DeleteRecord handles DELETE /screens/{screen}/records/{id}
func (h *ScreenHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.open(w, r)
	if !ok {
		return
	}

	if err := sc.Open(screen.ModeDelete, models.Record{ID: r.PathValue("id")}); err != nil {
		writeScreenError(w, err)
		return
	}
	if _, err := sc.Submit(r.Context()); err != nil {
		writeScreenError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: sc.TakeNotice()})
}

// ArchiveRecord handles POST /screens/{screen}/records/{id}/archive
func (h *ScreenHandler) ArchiveRecord(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// RestoreRecord handles POST /screens/{screen}/records/{id}/restore
func (h *ScreenHandler) RestoreRecord(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *ScreenHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	sc, ok := h.open(w, r)
	if !ok {
		return
	}

	rec := models.Record{ID: r.PathValue("id")}
	var err error
	if archived {
		err = sc.Archive(r.Context(), rec)
	} else {
		err = sc.Restore(r.Context(), rec)
	}
	if err != nil {
		writeScreenError(w, err)
		return
	}

	msg := "Record restored"
	if archived {
		msg = "Record archived"
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: msg})
}

// Stream handles GET /screens/{screen}/stream. It sends the requested page
// once, then again after every write to the screen's collection.
func (h *ScreenHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		middleware.ErrorResponse(w, http.StatusNotImplemented, "Realtime updates are not enabled")
		return
	}

	sc, ok := h.open(w, r)
	if !ok {
		return
	}

	page, size, err := pageParams(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Subscribe before the first read so no write slips between them
	updates, cancel := h.hub.Subscribe(sc.Spec().Collection)
	defer cancel()

	sc.Search(r.URL.Query().Get("q"))
	data, err := sc.FetchPage(r.Context(), page, size)
	if err != nil {
		writeScreenError(w, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(data []models.Record) bool {
		payload, err := json.Marshal(pageResponse(sc, data))
		if err != nil {
			slog.Error("failed to encode stream event", "error", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !send(data) {
		return
	}

	slog.Info("stream opened", "screen", sc.Spec().Name, "request_id", middleware.RequestID(r.Context()))
	defer slog.Info("stream closed", "screen", sc.Spec().Name, "request_id", middleware.RequestID(r.Context()))

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if !send(sc.ApplySnapshot(snap.Records)) {
				return
			}
		}
	}
}

// open resolves the {screen} path value to a fresh view model
func (h *ScreenHandler) open(w http.ResponseWriter, r *http.Request) (*screen.Screen, bool) {
	name := r.PathValue("screen")
	spec, ok := screen.Lookup(name)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown screen: "+name)
		return nil, false
	}
	return screen.New(spec, h.store), true
}

func readFields(w http.ResponseWriter, r *http.Request) (models.Fields, bool) {
	var raw models.Fields
	if err := middleware.ParseJSONBody(r, &raw); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	fields, err := raw.Normalize()
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return fields, true
}

func pageParams(r *http.Request) (page, size int, err error) {
	page, size = 1, screen.DefaultPageSize
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			return 0, 0, errors.New("page must be a number")
		}
	}
	if v := q.Get("limit"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			return 0, 0, errors.New("limit must be a number")
		}
		if size < 1 {
			size = screen.DefaultPageSize
		}
	}
	return page, size, nil
}

func pageResponse(sc *screen.Screen, data []models.Record) models.PageResponse {
	if data == nil {
		data = []models.Record{}
	}
	return models.PageResponse{
		Data:       data,
		Pagination: sc.Pagination(),
		Query:      sc.State().Query,
	}
}

// writeScreenError maps view-model errors to HTTP responses
func writeScreenError(w http.ResponseWriter, err error) {
	var verr *screen.ValidationError
	var serr *screen.StoreOperationError

	switch {
	case errors.As(err, &verr):
		middleware.ValidationErrorResponse(w, verr.Fields)
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, screen.ErrReadOnly):
		middleware.ErrorResponse(w, http.StatusForbidden, err.Error())
	case errors.Is(err, screen.ErrMissingID), errors.Is(err, screen.ErrArchiveUnsupported):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &serr):
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to "+serr.Op+" "+serr.Collection)
	default:
		slog.Error("unexpected screen error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}
