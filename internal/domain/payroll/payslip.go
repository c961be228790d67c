package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PayslipHeader is the issuer block printed on every payslip.
type PayslipHeader struct {
	CompanyName string
	Address     string
	Email       string
	Currency    string
}

// RenderPayslip draws a single-page A4 payslip for rec.
func RenderPayslip(header PayslipHeader, rec Record) ([]byte, error) {
	currency := header.Currency
	if currency == "" {
		currency = "USD"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, header.CompanyName)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	if header.Address != "" {
		pdf.Cell(0, 6, header.Address)
		pdf.Ln(5)
	}
	if header.Email != "" {
		pdf.Cell(0, 6, header.Email)
		pdf.Ln(5)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", rec.EmployeeName, rec.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", Period{Month: rec.Month, Year: rec.Year}))
	pdf.Ln(10)

	lines := []struct {
		label  string
		amount float64
	}{
		{"Basic", rec.Basic},
		{"HRA", rec.HRA},
		{"Allowances", rec.Allowances},
		{"Deductions", -rec.Deductions},
	}
	for _, line := range lines {
		pdf.CellFormat(60, 8, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, fmt.Sprintf("%.2f %s", line.amount, currency), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(60, 8, "Net", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, fmt.Sprintf("%.2f %s", rec.NetSalary, currency), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
