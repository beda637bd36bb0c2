// Package script runs user-supplied Tengo scripts that implement trigger
// conditions and actions. Scripts ship embedded with the binary and can be
// overridden by external files, which hot-reload on change.
package script

import (
	"time"
)

// Source indicates where a script was loaded from.
type Source string

const (
	SourceEmbedded Source = "embedded"
	SourceExternal Source = "external"
)

// ErrorType categorizes script failures.
type ErrorType string

const (
	ErrorTypeCompilation ErrorType = "compilation"
	ErrorTypeExecution   ErrorType = "execution"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeNotFound    ErrorType = "not_found"
)

// Script is one rule script with metadata.
type Script struct {
	Name         string
	Content      string
	Source       Source
	LastModified time.Time
}

// Error is a script failure with enough context to log usefully.
type Error struct {
	Type      ErrorType
	Script    string
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error stamped with the current time.
func NewError(errorType ErrorType, script, message string, cause error) *Error {
	return &Error{
		Type:      errorType,
		Script:    script,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
