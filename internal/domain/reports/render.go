package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Table is the tabular content of a generated report.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Render encodes t in format. Excel output is CSV, which spreadsheet
// applications open directly.
func Render(t Table, format string) (data []byte, contentType, ext string, err error) {
	switch format {
	case FormatCSV, FormatExcel:
		data, err = RenderCSV(t)
		return data, "text/csv", "csv", err
	case FormatPDF, "":
		data, err = RenderPDF(t)
		return data, "application/pdf", "pdf", err
	default:
		return nil, "", "", fmt.Errorf("unsupported report format %q", format)
	}
}

func RenderCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func RenderPDF(t Table) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, t.Title)
	pdf.Ln(12)

	width := 270.0
	if len(t.Columns) > 0 {
		width = 270.0 / float64(len(t.Columns))
	}
	pdf.SetFont("Helvetica", "B", 10)
	for _, col := range t.Columns {
		pdf.CellFormat(width, 7, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range t.Rows {
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(width, 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
