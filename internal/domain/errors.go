package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies domain errors.
type ErrorCode string

const (
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeDuplicate     ErrorCode = "DUPLICATE"
	CodeInvalidStatus ErrorCode = "INVALID_STATUS"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeUnavailable   ErrorCode = "UNAVAILABLE"
	CodeInternal      ErrorCode = "INTERNAL"
)

// Error is the error contract shared by services and stores.
type Error struct {
	Code    ErrorCode
	Op      string // operation name, ex: "PipelineService.Transition"
	Message string // safe message
	Err     error  // wrapped error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return strings.ToLower(string(e.Code))
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.
func E(code ErrorCode, op, msg string, err error) error {
	return &Error{Code: code, Op: op, Message: msg, Err: err}
}

// NotFound reports a missing entity.
func NotFound(op, entity string, id uint) error {
	return E(CodeNotFound, op, fmt.Sprintf("%s %d not found", entity, id), nil)
}

// Duplicate reports an application that already exists for a job/candidate pair.
func Duplicate(op string, jobID, candidateID uint) error {
	return E(CodeDuplicate, op, fmt.Sprintf("candidate %d already applied to job %d", candidateID, jobID), nil)
}

// InvalidStatus reports an unrecognized pipeline stage.
func InvalidStatus(op, raw string) error {
	return E(CodeInvalidStatus, op, fmt.Sprintf("unknown pipeline stage %q", raw), nil)
}

// Internal wraps an unexpected failure.
func Internal(op, msg string, err error) error {
	return E(CodeInternal, op, msg, err)
}

// IsCode reports whether err carries the given code. Validation errors match CodeValidation.
func IsCode(err error, code ErrorCode) bool {
	var ve *ValidationError
	if code == CodeValidation && errors.As(err, &ve) {
		return true
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldError is one failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint, not only the first one.
type ValidationError struct {
	Fields []FieldError
}

// Add records a violation.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field failed validation.
func (v *ValidationError) Has(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// OrNil returns v as an error, or nil when nothing failed.
func (v *ValidationError) OrNil() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
