package reports

import (
	"net/mail"
	"strings"
	"time"

	"hrmportal/internal/platform/validation"
)

func (in GenerateInput) Validate() error {
	v := validation.New()
	v.Required("reportType", in.ReportType, "is required")
	v.Enum("reportType", in.ReportType, Types, "must be one of attendance, leave, payroll, employee")
	v.Enum("format", in.Format, Formats, "must be one of pdf, excel, csv")
	if in.Month != "" {
		v.Range("month", atoi(in.Month), 1, 12, "must be between 1 and 12")
	}
	return v.Err()
}

// Normalized lower-cases the enums and defaults the format to pdf.
func (in GenerateInput) Normalized() GenerateInput {
	in.ReportType = strings.ToLower(strings.TrimSpace(in.ReportType))
	in.Format = strings.ToLower(strings.TrimSpace(in.Format))
	if in.Format == "" {
		in.Format = FormatPDF
	}
	return in
}

func (in ScheduleInput) Validate() error {
	v := validation.New()
	v.Required("reportType", in.ReportType, "is required")
	v.Enum("reportType", in.ReportType, Types, "must be one of attendance, leave, payroll, employee")
	v.Required("frequency", in.Frequency, "is required")
	v.Enum("frequency", in.Frequency, Frequencies, "must be one of daily, weekly, biweekly, monthly, quarterly")

	switch strings.ToLower(strings.TrimSpace(in.Frequency)) {
	case FrequencyWeekly, FrequencyBiweekly:
		if in.DayOfWeek == nil {
			v.Add("dayOfWeek", "is required for weekly schedules")
		} else {
			v.Range("dayOfWeek", *in.DayOfWeek, 0, 6, "must be between 0 and 6")
		}
	case FrequencyMonthly, FrequencyQuarterly:
		if in.Day == nil {
			v.Add("day", "is required for monthly schedules")
		} else {
			v.Range("day", *in.Day, 1, 31, "must be between 1 and 31")
		}
	}

	recipients := Recipients(in.Recipients)
	if len(recipients) == 0 {
		v.Add("recipients", "is required")
	}
	for _, r := range recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			v.Add("recipients", "contains an invalid address: "+r)
		}
	}
	return v.Err()
}

// DueOn reports whether the schedule fires on t's calendar day. Biweekly
// schedules fire on even ISO weeks; a monthly day past the end of a short
// month fires on its last day.
func (s Schedule) DueOn(t time.Time) bool {
	switch s.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly, FrequencyBiweekly:
		if s.DayOfWeek == nil || int(t.Weekday()) != *s.DayOfWeek {
			return false
		}
		if s.Frequency == FrequencyBiweekly {
			_, week := t.ISOWeek()
			return week%2 == 0
		}
		return true
	case FrequencyMonthly, FrequencyQuarterly:
		if s.Day == nil {
			return false
		}
		if s.Frequency == FrequencyQuarterly && (int(t.Month())-1)%3 != 0 {
			return false
		}
		last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
		return t.Day() == min(*s.Day, last)
	}
	return false
}

// Recipients splits a comma or semicolon separated address list.
func Recipients(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func atoi(s string) int {
	n := 0
	s = strings.TrimSpace(s)
	if s == "" {
		return -1
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}
