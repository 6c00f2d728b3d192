// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
)

const (
	pdfRowHeight = 7.0
	pdfBodyFont  = 8.0
)

// Header fill colour of the PDF table
var headerFill = [3]int{41, 128, 185}

var ErrNotTrueType = errors.New("not a TrueType font")

// PDFFont is a UTF-8 TrueType font used in place of the core Helvetica
// font, which only covers cp1252.
type PDFFont struct {
	Name string
	Data []byte
}

// LoadPDFFont reads a .ttf file. An empty path returns nil.
func LoadPDFFont(path string) (*PDFFont, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF font: %w", err)
	}
	if !isTrueType(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotTrueType)
	}
	return &PDFFont{Name: "body", Data: data}, nil
}

// isTrueType checks the sfnt version tag; OpenType CFF and collections
// are not supported by the PDF writer.
func isTrueType(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	tag := binary.BigEndian.Uint32(data)
	return tag == 0x00010000 || string(data[:4]) == "true"
}

// WritePDF writes the grid as a landscape A4 document titled like the sheet,
// using the core Helvetica font.
func WritePDF(w io.Writer, g Grid) error {
	return WritePDFWithFont(w, g, nil)
}

// WritePDFWithFont is WritePDF with an optional UTF-8 font. With a nil font
// text outside cp1252 cannot be rendered.
func WritePDFWithFont(w io.Writer, g Grid, font *PDFFont) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(SheetName, true)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if font != nil {
		family = font.Name
		pdf.AddUTF8FontFromBytes(family, "", font.Data)
		pdf.AddUTF8FontFromBytes(family, "B", font.Data)
		if err := pdf.Error(); err != nil {
			return &ExportError{Format: "pdf", Err: err}
		}
		tr = func(s string) string { return s }
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	tableW := pageW - left - right
	colW := tableW / float64(len(g.Header))

	header := func() {
		pdf.SetFont(family, "B", pdfBodyFont)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(255, 255, 255)
		for _, h := range g.Header {
			pdf.CellFormat(colW, pdfRowHeight, tr(fit(pdf, h, colW)), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(family, "", pdfBodyFont)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 14)
	pdf.CellFormat(0, 10, SheetName, "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	row := func(cells []string, style string) {
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		pdf.SetFont(family, style, pdfBodyFont)
		n := max(len(g.Header), len(cells))
		w := tableW / float64(n)
		for i := 0; i < n; i++ {
			text := ""
			if i < len(cells) {
				text = cells[i]
			}
			pdf.CellFormat(w, pdfRowHeight, tr(fit(pdf, text, w)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	for _, line := range g.Body {
		row(line, "")
	}
	row(g.Summary, "B")

	if err := pdf.Output(w); err != nil {
		return &ExportError{Format: "pdf", Err: err}
	}
	return nil
}

// fit truncates text to the cell width.
func fit(pdf *fpdf.Fpdf, text string, width float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(text) <= width-pad {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width-pad {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
