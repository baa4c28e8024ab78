package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Internal returns a generic internal error.
func Internal(message string) *Error {
	return New(CommonInternal, message, nil)
}

// NotFound returns a generic not-found error.
func NotFound(message string) *Error {
	return New(CommonNotFound, message, nil)
}

// Validation returns a generic validation error.
func Validation(message string) *Error {
	return New(CommonValidation, message, nil)
}

// Conflict returns a generic conflict error.
func Conflict(message string) *Error {
	return New(CommonConflict, message, nil)
}

// As reports whether err is (or wraps) an *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

// GetCode returns the stable code string for err, or "" if err is not an *Error.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code.String()
	}
	return ""
}

// FormatForLog renders err (and its context) as a single log-friendly line.
func FormatForLog(err error) string {
	e, ok := err.(*Error)
	if !ok {
		return err.Error()
	}

	parts := []string{fmt.Sprintf("code=%s", e.Code), fmt.Sprintf("msg=%s", e.Message)}
	if keys := e.GetContextKeys(); len(keys) > 0 {
		var ctx []string
		for _, k := range keys {
			ctx = append(ctx, fmt.Sprintf("%s=%v", k, e.GetContext(k)))
		}
		parts = append(parts, strings.Join(ctx, " "))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}
	return strings.Join(parts, " | ")
}
