package payroll

import "errors"

var (
	ErrRecordNotFound   = errors.New("payroll record not found")
	ErrAlreadyProcessed = errors.New("payroll period already processed")
	ErrNotPDF           = errors.New("payslip must be a PDF")
	ErrPayslipTooLarge  = errors.New("payslip exceeds 5MB")
)
