// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ward-admin/middleware"
)

// UploadField is the multipart field carrying uploaded files
const UploadField = "file"

// readUpload reads the uploaded file into memory, enforcing limit on the
// whole request body. It writes the error response itself.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
				"Upload exceeds "+humanize.IBytes(uint64(limit)))
			return nil, "", false
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Expected a multipart form upload")
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing file field: "+UploadField)
		return nil, "", false
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		slog.Error("failed to read upload", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read upload")
		return nil, "", false
	}

	slog.Info("upload received",
		"request_id", middleware.RequestID(r.Context()),
		"filename", header.Filename,
		"size", humanize.Bytes(uint64(buf.Len())),
	)
	return buf.Bytes(), header.Filename, true
}
