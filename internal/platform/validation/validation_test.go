package validation

import (
	"errors"
	"testing"
)

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := New()
	v.Required("name", " ", "is required")
	v.Enum("status", "archived", []string{"active", "inactive"}, "must be active or inactive")
	v.Required("email", "", "is required")

	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	if issues[0].Field != "email" || issues[2].Field != "status" {
		t.Fatalf("unexpected ordering: %+v", issues)
	}

	err := v.Err()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var verr *Error
	if !errors.As(err, &verr) || len(verr.Issues) != 3 {
		t.Fatalf("expected *Error with issues, got %#v", err)
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := New()
	start, ok := v.Date("startDate", "2025-03-10")
	if !ok {
		t.Fatal("expected start date to parse")
	}
	end, ok := v.Date("endDate", "2025-03-09")
	if !ok {
		t.Fatal("expected end date to parse")
	}
	v.DateOrder("startDate", start, "endDate", end)
	if !v.HasIssues() {
		t.Fatal("expected date order issue")
	}

	v = New()
	if _, ok := v.Date("startDate", "10/03/2025"); ok {
		t.Fatal("expected invalid date format to fail")
	}
}

func TestEmptyValidatorHasNoError(t *testing.T) {
	if err := New().Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestMergeFoldsIssues(t *testing.T) {
	inner := New()
	inner.Required("month", "", "is required")

	outer := New()
	outer.Merge(inner.Err())
	outer.Merge(nil)
	outer.Merge(errors.New("file is required"))

	issues := outer.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
	if issues[0].Field != "" || issues[1].Field != "month" {
		t.Fatalf("unexpected issues %+v", issues)
	}
}
