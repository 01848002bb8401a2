package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a report pipeline error code.
type ErrorCode string

const (
	ErrParse          ErrorCode = "PARSE_ERROR"      // 400
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"        // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrUploadTooLarge ErrorCode = "UPLOAD_TOO_LARGE" // 413
	ErrDateFormat     ErrorCode = "DATE_FORMAT"      // 422
	ErrMissingColumn  ErrorCode = "MISSING_COLUMN"   // 422
	ErrDuplicateDate  ErrorCode = "DUPLICATE_DATE"   // 422
	ErrRender         ErrorCode = "RENDER_ERROR"     // 422
	ErrInternal       ErrorCode = "INTERNAL"         // 500
)

// ReportError represents a structured error with code, status, and details.
type ReportError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ReportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewParse creates a 400 error for input that is not valid delimited text.
// line is 1-based; 0 means the position is unknown.
func NewParse(msg string, line int) *ReportError {
	e := &ReportError{
		Code:    ErrParse,
		Status:  400,
		Message: msg,
	}
	if line > 0 {
		e.Message = fmt.Sprintf("line %d: %s", line, msg)
		e.Details = map[string]any{"line": line}
	}
	return e
}

// NewNotNumeric creates a 400 parse error for a cell that should hold a number.
func NewNotNumeric(column string, row int, value string) *ReportError {
	return &ReportError{
		Code:    ErrParse,
		Status:  400,
		Message: fmt.Sprintf("row %d: column %q is not numeric: %q", row, column, value),
		Details: map[string]any{"column": column, "row": row, "value": value},
	}
}

// NewDateFormat creates a 422 error for a date cell that cannot be parsed.
func NewDateFormat(row int, value string) *ReportError {
	return &ReportError{
		Code:    ErrDateFormat,
		Status:  422,
		Message: fmt.Sprintf("row %d: cannot parse date %q", row, value),
		Details: map[string]any{"row": row, "value": value},
	}
}

// NewMissingColumn creates a 422 error when a required column is absent from a table.
func NewMissingColumn(column, table string) *ReportError {
	return &ReportError{
		Code:    ErrMissingColumn,
		Status:  422,
		Message: fmt.Sprintf("%s table is missing required column %q", table, column),
		Details: map[string]any{"column": column, "table": table},
	}
}

// NewMissingValue creates a 422 error when a required column has an empty cell.
func NewMissingValue(column string, row int) *ReportError {
	return &ReportError{
		Code:    ErrMissingColumn,
		Status:  422,
		Message: fmt.Sprintf("row %d: required column %q is empty", row, column),
		Details: map[string]any{"column": column, "row": row},
	}
}

// NewDuplicateDate creates a 422 error when the nutrition table repeats a date
// and the merge policy rejects duplicates.
func NewDuplicateDate(date string) *ReportError {
	return &ReportError{
		Code:    ErrDuplicateDate,
		Status:  422,
		Message: fmt.Sprintf("nutrition table contains duplicate date %s", date),
		Details: map[string]any{"date": date},
	}
}

// NewRender creates a 422 error when chart data is unusable.
func NewRender(msg string) *ReportError {
	return &ReportError{
		Code:    ErrRender,
		Status:  422,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ReportError {
	return &ReportError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a stored report cannot be found.
func NewNotFound(id string) *ReportError {
	return &ReportError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("report not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing input file.
func NewFileNotFound(path string) *ReportError {
	return &ReportError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewUploadTooLarge creates a 413 error when an upload exceeds the configured limit.
func NewUploadTooLarge(max int64) *ReportError {
	return &ReportError{
		Code:    ErrUploadTooLarge,
		Status:  413,
		Message: fmt.Sprintf("upload exceeds maximum size of %d bytes", max),
		Details: map[string]any{"max_bytes": max},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ReportError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ReportError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err (or anything it wraps) is a ReportError with the given code.
func Is(err error, code ErrorCode) bool {
	var rErr *ReportError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}

// As returns err as a ReportError, converting unknown errors to INTERNAL.
func As(err error) *ReportError {
	var rErr *ReportError
	if stderrors.As(err, &rErr) {
		return rErr
	}
	return NewInternal(err)
}
