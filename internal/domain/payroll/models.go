package payroll

const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusPaid      = "paid"
)

// MaxPayslipBytes bounds an uploaded payslip.
const MaxPayslipBytes = 5 << 20

type Record struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	Month        string  `json:"month"`
	Year         string  `json:"year"`
	Basic        float64 `json:"basic"`
	HRA          float64 `json:"hra"`
	Allowances   float64 `json:"allowances"`
	Deductions   float64 `json:"deductions"`
	NetSalary    float64 `json:"netSalary"`
	Status       string  `json:"status"`
	PayslipURL   string  `json:"payslipUrl,omitempty"`
}

// Period identifies one payroll month. Month is "1".."12" (a leading zero
// is accepted) and Year is four digits.
type Period struct {
	Month string `json:"month"`
	Year  string `json:"year"`
}

type ProcessResult struct {
	Period
	Processed int      `json:"processed"`
	Records   []Record `json:"records"`
}

type EmailResult struct {
	Sent      bool   `json:"sent"`
	Recipient string `json:"recipient"`
}
