package payroll

import (
	"bytes"
	"errors"
	"testing"

	"hrmportal/internal/platform/validation"
)

func TestSplitAndNet(t *testing.T) {
	c := Split(120000)
	if c.Basic != 5000 {
		t.Fatalf("expected basic 5000, got %v", c.Basic)
	}
	if c.HRA != 2000 {
		t.Fatalf("expected hra 2000, got %v", c.HRA)
	}
	if c.Allowances != 3000 {
		t.Fatalf("expected allowances 3000, got %v", c.Allowances)
	}
	if c.Deductions != 1000 {
		t.Fatalf("expected deductions 1000, got %v", c.Deductions)
	}
	if net := NetSalary(c); net != 9000 {
		t.Fatalf("expected net 9000, got %v", net)
	}
}

func TestNetSalaryCanGoNegative(t *testing.T) {
	net := NetSalary(Components{Basic: 100, Deductions: 150})
	if net != -50 {
		t.Fatalf("expected net -50, got %v", net)
	}
}

func TestPeriodValidate(t *testing.T) {
	tests := []struct {
		period Period
		ok     bool
	}{
		{Period{Month: "3", Year: "2024"}, true},
		{Period{Month: "03", Year: "2024"}, true},
		{Period{Month: "12", Year: "2024"}, true},
		{Period{Month: "0", Year: "2024"}, false},
		{Period{Month: "13", Year: "2024"}, false},
		{Period{Month: "march", Year: "2024"}, false},
		{Period{Month: "3", Year: "24"}, false},
		{Period{Year: "2024"}, false},
	}
	for _, tc := range tests {
		err := tc.period.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%+v: unexpected error %v", tc.period, err)
		}
		if !tc.ok && !errors.Is(err, validation.ErrInvalid) {
			t.Fatalf("%+v: expected validation error, got %v", tc.period, err)
		}
	}
}

func TestPeriodNormalize(t *testing.T) {
	p := Period{Month: "03", Year: " 2024 "}.Normalize()
	if p.Month != "3" || p.Year != "2024" {
		t.Fatalf("unexpected period %+v", p)
	}
	if s := (Period{Month: "3", Year: "2024"}).String(); s != "2024-03" {
		t.Fatalf("unexpected period string %q", s)
	}
}

func TestPayslipUploadValidate(t *testing.T) {
	ok := PayslipUpload{EmployeeID: "e1", Period: Period{Month: "04", Year: "2024"}, Filename: "slip.PDF", Size: 1024, Content: bytes.NewReader([]byte("%PDF"))}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	bad := ok
	bad.Filename = "slip.docx"
	bad.Size = MaxPayslipBytes + 1
	bad.Period.Month = "13"
	err := bad.Validate()
	var vErr *validation.Error
	if !errors.As(err, &vErr) || len(vErr.Issues) != 3 {
		t.Fatalf("expected three issues, got %v", err)
	}
}
