// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and record types for the API.

# Records

A record is an ID plus a Fields map. Field values are string, bool or
float64; Normalize coerces decoded JSON into that shape. Record marshals
as a flat object with an "id" key.

Typed views (Member, Ward, ComplaintTemplate, Center, Mandi) carry csv
and json tags and convert to Fields for the CSV import.

# Request Types

  - LoginRequest: user_id, password
  - ExcelImportRequest: records
  - CellEditRequest: row, column, value
  - ColumnRequest: name
  - VisibleColumnsRequest: columns

# Response Types

  - LoginResponse: token, expires_at
  - AddRecordResponse: id
  - MessageResponse: message
  - ScreenInfo: name, title, collection, read_only
  - PageResponse: data, pagination, query
  - TableView: one page of a calendar table with headers and totals
  - ErrorResponse: error, message, fields

# Pagination

Paginate computes 1-based page bounds. Pages past the end are empty and
CurrentPage is clamped.

# Constants

Collections:

	CollectionMembers    = "memberLogin"
	CollectionWards      = "wardInfo"
	CollectionComplaints = "complaintTemplates"
	CollectionCenters    = "centers"
	CollectionMandis     = "mandis"
	CollectionExcelData  = "excel_data"

Store-maintained fields:

	FieldArchived  = "isArchived"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
*/
package models
