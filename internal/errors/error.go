package errors

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryReconcile Category = "reconcile"
	CategoryRender    Category = "render"
	CategoryScheduler Category = "scheduler"
	CategoryConfig    Category = "config"
	CategorySnapshot  Category = "snapshot"
	CategoryCLI       Category = "cli"
)

// Location represents a source location.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// WeftError is a structured error with a code, category and optional hints.
type WeftError struct {
	// Code is a unique identifier (e.g., "W001").
	Code string

	// Category is the subsystem that raised the error.
	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Location is the file position the error refers to, if any.
	Location *Location

	// Context contains surrounding lines of the file at Location.
	Context []string

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *WeftError) Error() string {
	msg := e.Message
	if e.Detail != "" && e.Wrapped == nil && e.Code == "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *WeftError) Unwrap() error {
	return e.Wrapped
}

// LogValue implements slog.LogValuer.
func (e *WeftError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("code", e.Code),
		slog.String("category", string(e.Category)),
		slog.String("message", e.Message),
	}
	if e.Wrapped != nil {
		attrs = append(attrs, slog.String("cause", e.Wrapped.Error()))
	}
	if e.Location != nil {
		attrs = append(attrs, slog.String("location", e.Location.String()))
	}
	return slog.GroupValue(attrs...)
}

// WithLocation adds a file location and reads the surrounding lines.
func (e *WeftError) WithLocation(file string, line, column int) *WeftError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion.
func (e *WeftError) WithSuggestion(s string) *WeftError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation.
func (e *WeftError) WithDetail(d string) *WeftError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *WeftError) Wrap(err error) *WeftError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a WeftError from a registered code.
func New(code string) *WeftError {
	template, ok := registry[code]
	if !ok {
		return &WeftError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &WeftError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a WeftError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *WeftError {
	return &WeftError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a WeftError with the given code.
// A *WeftError is returned unchanged.
func FromError(err error, code string) *WeftError {
	if err == nil {
		return nil
	}
	if we, ok := err.(*WeftError); ok {
		return we
	}
	return New(code).Wrap(err)
}

// IsDiagnostic reports whether code is a recoverable diagnostic (W-prefixed).
func IsDiagnostic(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}
