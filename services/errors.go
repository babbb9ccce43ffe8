package services

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput means a file has fewer than two lines.
	ErrEmptyInput = errors.New("file is empty or has no data rows")
	// ErrUnrecognizedSchema means the column set matches no known export.
	ErrUnrecognizedSchema = errors.New("unrecognized export format")
	// ErrMalformedSchema means the export was recognized but no usable rows survived.
	ErrMalformedSchema = errors.New("no usable rows in export")
	// ErrInvalidTimeWindow means the requested window is not one of 7d, 30d, 90d, all.
	ErrInvalidTimeWindow = errors.New("invalid time window")
	// ErrNothingImported means every file in a batch failed.
	ErrNothingImported = errors.New("no files imported")
)

// FileError reports which uploaded file failed and why.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("import %q: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Reason returns a short machine-readable failure category.
func (e *FileError) Reason() string {
	return failureReason(e.Err)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrUnrecognizedSchema):
		return "unrecognized_schema"
	case errors.Is(err, ErrMalformedSchema):
		return "malformed_schema"
	default:
		return "other"
	}
}
