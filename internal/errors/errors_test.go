package errors

import (
	"fmt"
	"testing"
)

func TestReportError_Error(t *testing.T) {
	err := &ReportError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "report not found",
	}

	expected := "NOT_FOUND: report not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewParse(t *testing.T) {
	err := NewParse("wrong number of fields", 4)

	if err.Code != ErrParse {
		t.Errorf("Code = %q, want %q", err.Code, ErrParse)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "line 4: wrong number of fields" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["line"] != 4 {
		t.Errorf("Details[line] = %v, want 4", err.Details["line"])
	}
}

func TestNewParse_NoLine(t *testing.T) {
	err := NewParse("empty input", 0)

	if err.Message != "empty input" {
		t.Errorf("Message = %q, want %q", err.Message, "empty input")
	}
	if err.Details != nil {
		t.Errorf("Details = %v, want nil", err.Details)
	}
}

func TestNewNotNumeric(t *testing.T) {
	err := NewNotNumeric("active_minutes", 3, "lots")

	if err.Code != ErrParse {
		t.Errorf("Code = %q, want %q", err.Code, ErrParse)
	}
	if err.Details["column"] != "active_minutes" || err.Details["row"] != 3 || err.Details["value"] != "lots" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestNewDateFormat(t *testing.T) {
	err := NewDateFormat(2, "yesterday")

	if err.Code != ErrDateFormat {
		t.Errorf("Code = %q, want %q", err.Code, ErrDateFormat)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Details["value"] != "yesterday" {
		t.Errorf("Details[value] = %v, want %q", err.Details["value"], "yesterday")
	}
}

func TestNewMissingColumn(t *testing.T) {
	err := NewMissingColumn("active_minutes", "activity")

	if err.Code != ErrMissingColumn {
		t.Errorf("Code = %q, want %q", err.Code, ErrMissingColumn)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	expected := `activity table is missing required column "active_minutes"`
	if err.Message != expected {
		t.Errorf("Message = %q, want %q", err.Message, expected)
	}
}

func TestNewMissingValue(t *testing.T) {
	err := NewMissingValue("sleep_minutes", 5)

	if err.Code != ErrMissingColumn {
		t.Errorf("Code = %q, want %q", err.Code, ErrMissingColumn)
	}
	if err.Details["row"] != 5 {
		t.Errorf("Details[row] = %v, want 5", err.Details["row"])
	}
}

func TestNewDuplicateDate(t *testing.T) {
	err := NewDuplicateDate("2024-03-01")

	if err.Code != ErrDuplicateDate {
		t.Errorf("Code = %q, want %q", err.Code, ErrDuplicateDate)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
}

func TestNewRender(t *testing.T) {
	err := NewRender("calories_burned is absent")

	if err.Code != ErrRender {
		t.Errorf("Code = %q, want %q", err.Code, ErrRender)
	}
	if err.Message != "calories_burned is absent" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01HX")

	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != "01HX" {
		t.Errorf("Details[id] = %v, want %q", err.Details["id"], "01HX")
	}
}

func TestNewUploadTooLarge(t *testing.T) {
	err := NewUploadTooLarge(1024)

	if err.Code != ErrUploadTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrUploadTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_bytes"] != int64(1024) {
		t.Errorf("Details[max_bytes] = %v, want 1024", err.Details["max_bytes"])
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewRender("x"), ErrRender, true},
		{"different code", NewRender("x"), ErrParse, false},
		{"wrapped", fmt.Errorf("chart: %w", NewRender("x")), ErrRender, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	orig := NewMissingColumn("date", "activity")
	if got := As(fmt.Errorf("load: %w", orig)); got != orig {
		t.Errorf("As() did not unwrap the original error")
	}

	got := As(fmt.Errorf("boom"))
	if got.Code != ErrInternal || got.Message != "boom" {
		t.Errorf("As() = %+v, want INTERNAL boom", got)
	}
}
