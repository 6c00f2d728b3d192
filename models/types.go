// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Collection names used by the dashboard screens
const (
	CollectionMembers    = "memberLogin"
	CollectionWards      = "wardInfo"
	CollectionComplaints = "complaintTemplates"
	CollectionCenters    = "centers"
	CollectionMandis     = "mandis"
	CollectionExcelData  = "excel_data"
)

// FieldArchived is the soft-delete flag on member records
const FieldArchived = "isArchived"

// Timestamp fields maintained by the store on every write
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Request types

type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type ExcelImportRequest struct {
	Records []Fields `json:"records"`
}

type CellEditRequest struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

type ColumnRequest struct {
	Name string `json:"name"`
}

type VisibleColumnsRequest struct {
	Columns []string `json:"columns"`
}

// Response types

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AddRecordResponse struct {
	ID string `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ScreenInfo struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Collection string `json:"collection"`
	ReadOnly   bool   `json:"read_only"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	Limit       int `json:"limit"`
}

type PageResponse struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
	Query      string     `json:"query,omitempty"`
}

type TableView struct {
	ID         string              `json:"id"`
	Headers    []string            `json:"headers"`
	Visible    []string            `json:"visible"`
	Rows       []map[string]string `json:"rows"`
	Pagination Pagination          `json:"pagination"`
	TotalHours float64             `json:"total_hours"`
	CanUndo    bool                `json:"can_undo"`
}

// Domain types

// Fields is the field map of one record. Values are string, bool or float64.
type Fields map[string]any

// Record is one row of a named collection
type Record struct {
	ID     string
	Fields Fields
}

// MarshalJSON flattens the record into a single object with an "id" key
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	return json.Marshal(out)
}

// Clone returns a shallow copy; values are scalars so this is a full copy
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String renders a field for display and matching. Missing fields are "".
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Bool reports whether a field holds boolean true
func (f Fields) Bool(key string) bool {
	b, ok := f[key].(bool)
	return ok && b
}

// Normalize converts decoded values into the supported scalar set.
// Integers and json.Number become float64; nested values are rejected.
func (f Fields) Normalize() (Fields, error) {
	out := make(Fields, len(f))
	for k, v := range f {
		n, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func NormalizeValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return t, nil
	case json.Number:
		return t.Float64()
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// Error response

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
