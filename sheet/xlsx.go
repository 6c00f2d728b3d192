// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/ward-admin/models"
)

// WriteXLSX writes the grid as a single-sheet workbook.
func WriteXLSX(w io.Writer, g Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, g); err != nil {
		return &ExportError{Format: "xlsx", Err: err}
	}
	if err := f.Write(w); err != nil {
		return &ExportError{Format: "xlsx", Err: err}
	}
	return nil
}

func writeSheet(f *excelize.File, g Grid) error {
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	lines := make([][]string, 0, len(g.Body)+2)
	lines = append(lines, g.Header)
	lines = append(lines, g.Body...)
	lines = append(lines, g.Summary)

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(line))
		for j, v := range line {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return err
	}
	return f.SetRowStyle(SheetName, len(lines), len(lines), bold)
}

// ReadFirstSheet reads the first worksheet as records keyed by the header
// row. Missing cells read as "", blank headers are named __EMPTY,
// __EMPTY_1 and so on, and blank rows are skipped. Numeric cells become
// float64 and boolean cells bool.
func ReadFirstSheet(r io.Reader) ([]models.Fields, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	name := sheets[0]

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return []models.Fields{}, nil
	}

	header := headerNames(rows[0])
	out := make([]models.Fields, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(models.Fields, len(header))
		for j, key := range header {
			if j >= len(row) {
				rec[key] = ""
				continue
			}
			rec[key] = cellValue(f, name, j+1, i+2, row[j])
		}
		out = append(out, rec)
	}
	return out, nil
}

func headerNames(cells []string) []string {
	out := make([]string, len(cells))
	empty := 0
	for i, c := range cells {
		if c != "" {
			out[i] = c
			continue
		}
		if empty == 0 {
			out[i] = "__EMPTY"
		} else {
			out[i] = "__EMPTY_" + strconv.Itoa(empty)
		}
		empty++
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func cellValue(f *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return ""
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE"
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}
