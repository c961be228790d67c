package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestGenerateInputValidate(t *testing.T) {
	if err := (GenerateInput{ReportType: "Payroll", Month: "3", Format: "CSV"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (GenerateInput{ReportType: "performance"}).Validate(); err == nil {
		t.Fatal("expected unknown type error")
	}
	if err := (GenerateInput{ReportType: "leave", Month: "13"}).Validate(); err == nil {
		t.Fatal("expected month error")
	}

	in := GenerateInput{ReportType: " Leave "}.Normalized()
	if in.ReportType != TypeLeave || in.Format != FormatPDF {
		t.Fatalf("unexpected normalized input %+v", in)
	}
}

func TestScheduleInputValidate(t *testing.T) {
	tests := []struct {
		name  string
		input ScheduleInput
		ok    bool
	}{
		{"daily", ScheduleInput{ReportType: "attendance", Frequency: "daily", Recipients: "hr@example.com"}, true},
		{"weekly", ScheduleInput{ReportType: "leave", Frequency: "weekly", DayOfWeek: intPtr(1), Recipients: "a@example.com; b@example.com"}, true},
		{"weekly without day", ScheduleInput{ReportType: "leave", Frequency: "weekly", Recipients: "a@example.com"}, false},
		{"monthly bad day", ScheduleInput{ReportType: "payroll", Frequency: "monthly", Day: intPtr(32), Recipients: "a@example.com"}, false},
		{"hourly", ScheduleInput{ReportType: "payroll", Frequency: "hourly", Recipients: "a@example.com"}, false},
		{"no recipients", ScheduleInput{ReportType: "payroll", Frequency: "daily"}, false},
		{"bad recipient", ScheduleInput{ReportType: "payroll", Frequency: "daily", Recipients: "not-an-email"}, false},
	}
	for _, tc := range tests {
		err := tc.input.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestRender(t *testing.T) {
	table := Table{
		Title:   "Leave Report",
		Columns: []string{"Employee", "Type", "Days"},
		Rows:    [][]string{{"Jane, Doe", "sick", "2"}},
	}

	data, contentType, ext, err := Render(table, FormatCSV)
	if err != nil {
		t.Fatalf("render csv: %v", err)
	}
	if contentType != "text/csv" || ext != "csv" {
		t.Fatalf("unexpected csv metadata %s %s", contentType, ext)
	}
	if !strings.Contains(string(data), `"Jane, Doe",sick,2`) {
		t.Fatalf("unexpected csv body %q", data)
	}

	data, contentType, _, err = Render(table, FormatPDF)
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if contentType != "application/pdf" || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("unexpected pdf output")
	}

	if _, _, _, err := Render(table, "docx"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestScheduleDueOn(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 9, 0, 0, 0, time.UTC) }
	tests := []struct {
		name  string
		sched Schedule
		on    time.Time
		want  bool
	}{
		{"daily", Schedule{Frequency: FrequencyDaily}, day(2026, 3, 10), true},
		{"weekly match", Schedule{Frequency: FrequencyWeekly, DayOfWeek: intPtr(2)}, day(2026, 3, 10), true},
		{"weekly other day", Schedule{Frequency: FrequencyWeekly, DayOfWeek: intPtr(1)}, day(2026, 3, 10), false},
		{"biweekly odd week", Schedule{Frequency: FrequencyBiweekly, DayOfWeek: intPtr(2)}, day(2026, 3, 10), false},
		{"biweekly even week", Schedule{Frequency: FrequencyBiweekly, DayOfWeek: intPtr(2)}, day(2026, 3, 3), true},
		{"monthly", Schedule{Frequency: FrequencyMonthly, Day: intPtr(10)}, day(2026, 3, 10), true},
		{"monthly clamps to month end", Schedule{Frequency: FrequencyMonthly, Day: intPtr(31)}, day(2026, 2, 28), true},
		{"quarterly off month", Schedule{Frequency: FrequencyQuarterly, Day: intPtr(10)}, day(2026, 3, 10), false},
		{"quarterly", Schedule{Frequency: FrequencyQuarterly, Day: intPtr(10)}, day(2026, 4, 10), true},
		{"monthly without day", Schedule{Frequency: FrequencyMonthly}, day(2026, 3, 10), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.sched.DueOn(tc.on); got != tc.want {
				t.Fatalf("DueOn(%s) = %v, want %v", tc.on.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}
