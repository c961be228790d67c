package reports

const (
	TypeAttendance = "attendance"
	TypeLeave      = "leave"
	TypePayroll    = "payroll"
	TypeEmployee   = "employee"
)

const (
	FormatPDF   = "pdf"
	FormatExcel = "excel"
	FormatCSV   = "csv"
)

const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

var (
	Types       = []string{TypeAttendance, TypeLeave, TypePayroll, TypeEmployee}
	Formats     = []string{FormatPDF, FormatExcel, FormatCSV}
	Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly}
)

type Report struct {
	ID          string `json:"id"`
	ReportType  string `json:"reportType"`
	Format      string `json:"format"`
	Month       string `json:"month,omitempty"`
	Year        string `json:"year,omitempty"`
	Department  string `json:"department,omitempty"`
	CreatedAt   string `json:"createdAt"`
	DownloadURL string `json:"downloadUrl"`
}

type GenerateInput struct {
	ReportType string `json:"reportType"`
	Month      string `json:"month,omitempty"`
	Year       string `json:"year,omitempty"`
	Department string `json:"department,omitempty"`
	Format     string `json:"format,omitempty"`
}

type Schedule struct {
	ID         string `json:"id"`
	ReportType string `json:"reportType"`
	Frequency  string `json:"frequency"`
	Day        *int   `json:"day,omitempty"`
	DayOfWeek  *int   `json:"dayOfWeek,omitempty"`
	Recipients string `json:"recipients"`
	CreatedAt  string `json:"createdAt"`
}

type ScheduleInput struct {
	ReportType string `json:"reportType"`
	Frequency  string `json:"frequency"`
	Day        *int   `json:"day,omitempty"`
	DayOfWeek  *int   `json:"dayOfWeek,omitempty"`
	Recipients string `json:"recipients"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalEmployees   int `json:"totalEmployees"`
	ActiveEmployees  int `json:"activeEmployees"`
	PresentToday     int `json:"presentToday"`
	OnLeaveToday     int `json:"onLeaveToday"`
	PendingLeaves    int `json:"pendingLeaves"`
	PayrollProcessed int `json:"payrollProcessed"`
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}
