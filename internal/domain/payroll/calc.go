package payroll

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"hrmportal/internal/platform/validation"
)

// Components is the monthly salary split used for a new record.
type Components struct {
	Basic      float64
	HRA        float64
	Allowances float64
	Deductions float64
}

// Split derives the monthly components from an annual salary: basic is half
// of the gross month, HRA 40% of basic, the rest allowances, and a flat 10%
// of gross withheld.
func Split(annualSalary float64) Components {
	gross := round2(annualSalary / 12)
	basic := round2(gross * 0.5)
	hra := round2(basic * 0.4)
	return Components{
		Basic:      basic,
		HRA:        hra,
		Allowances: round2(gross - basic - hra),
		Deductions: round2(gross * 0.1),
	}
}

func NetSalary(c Components) float64 {
	return round2(c.Basic + c.HRA + c.Allowances - c.Deductions)
}

func (p Period) Validate() error {
	v := validation.New()
	v.Required("month", p.Month, "is required")
	v.Required("year", p.Year, "is required")
	if p.Month != "" {
		m, err := strconv.Atoi(strings.TrimSpace(p.Month))
		if err != nil {
			v.Add("month", "must be a number")
		} else {
			v.Range("month", m, 1, 12, "must be between 1 and 12")
		}
	}
	if p.Year != "" {
		y, err := strconv.Atoi(strings.TrimSpace(p.Year))
		if err != nil || len(strings.TrimSpace(p.Year)) != 4 {
			v.Add("year", "must be a four digit year")
		} else {
			v.Range("year", y, 1970, 9999, "must be a four digit year")
		}
	}
	return v.Err()
}

// Normalize returns the canonical "M"/"YYYY" form. Call Validate first.
func (p Period) Normalize() Period {
	m, _ := strconv.Atoi(strings.TrimSpace(p.Month))
	return Period{Month: strconv.Itoa(m), Year: strings.TrimSpace(p.Year)}
}

func (p Period) String() string {
	m, _ := strconv.Atoi(strings.TrimSpace(p.Month))
	return fmt.Sprintf("%s-%02d", strings.TrimSpace(p.Year), m)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
