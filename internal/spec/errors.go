package spec

import (
	"fmt"
	"regexp"
	"strconv"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
)

// SpecLoadError is returned when a document cannot be read, parsed or fails
// validation. Line and Column are 1-based and zero when unknown.
type SpecLoadError struct {
	Code        ErrorCode
	Message     string
	File        string
	Line        int
	Column      int
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecLoadError) Error() string {
	if loc := e.Location(); loc != "" {
		return fmt.Sprintf("%s: %s", loc, e.Message)
	}
	return e.Message
}

func (e *SpecLoadError) Unwrap() error { return e.Cause }

// Location renders file:line:column, omitting unknown parts.
func (e *SpecLoadError) Location() string {
	if e.File == "" {
		return ""
	}
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d", e.File, e.Line)
	default:
		return e.File
	}
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// yamlParseError converts a yaml.v3 decode error, which only carries the line
// in its message.
func yamlParseError(err error, file string) *SpecLoadError {
	se := &SpecLoadError{Code: ParseError, Message: fmt.Sprintf("parse yaml: %v", err), File: file, Cause: err}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		se.Line, _ = strconv.Atoi(m[1])
	}
	return se
}
