// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ward-admin/cliparse"
	"github.com/danielhkuo/ward-admin/middleware"
	"github.com/danielhkuo/ward-admin/models"
	"github.com/danielhkuo/ward-admin/sheet"
	"github.com/danielhkuo/ward-admin/store"
)

type ExcelHandler struct {
	store store.Store
	cfg   cliparse.Config
}

func NewExcelHandler(s store.Store, cfg cliparse.Config) *ExcelHandler {
	return &ExcelHandler{store: s, cfg: cfg}
}

// Import handles POST /excel
func (h *ExcelHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req models.ExcelImportRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Records == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid data format")
		return
	}

	records := make([]models.Fields, 0, len(req.Records))
	for i, raw := range req.Records {
		fields, err := raw.Normalize()
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("record %d: %v", i, err))
			return
		}
		records = append(records, fields)
	}

	h.insert(w, r, records)
}

// Upload handles POST /excel/upload with a .xlsx file; rows of its first
// sheet are inserted like Import.
func (h *ExcelHandler) Upload(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := readUpload(w, r, h.cfg.MaxUploadBytes)
	if !ok {
		return
	}

	records, err := sheet.ReadFirstSheet(bytes.NewReader(data))
	if err != nil {
		slog.Warn("failed to read workbook", "filename", filename, "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read spreadsheet")
		return
	}

	h.insert(w, r, records)
}

func (h *ExcelHandler) insert(w http.ResponseWriter, r *http.Request, records []models.Fields) {
	n, err := h.store.InsertMany(r.Context(), models.CollectionExcelData, records)
	if err != nil {
		slog.Error("failed to insert excel rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to insert data")
		return
	}

	slog.Info("excel rows inserted", "collection", models.CollectionExcelData, "count", n)
	middleware.JSONResponse(w, http.StatusCreated, models.MessageResponse{
		Message: fmt.Sprintf("Inserted %d records successfully", n),
	})
}
