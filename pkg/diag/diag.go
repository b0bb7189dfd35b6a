// Package diag carries errors that can be attributed to a byte range of a
// command.
package diag

import (
	"bytes"
	"fmt"
	"strings"
)

// Span is a half-open byte range [Begin, End) within a command.
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Begin, s.End)
}

// Error is one diagnostic. Err, when set, is the underlying cause and is
// what errors.Is and errors.As see.
type Error struct {
	Span    Span   `json:"span"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// NewError creates an Error for the given range.
func NewError(begin, end int, msg string) *Error {
	return &Error{Span: Span{Begin: begin, End: end}, Message: msg}
}

// Wrap attributes err to the given range.
func Wrap(err error, begin, end int) *Error {
	return &Error{Span: Span{Begin: begin, End: end}, Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorList holds one or more diagnostics for the same command.
type ErrorList struct {
	Entries []*Error
}

// Add appends a diagnostic.
func (l *ErrorList) Add(e *Error) {
	l.Entries = append(l.Entries, e)
}

// Len returns the number of diagnostics.
func (l *ErrorList) Len() int {
	return len(l.Entries)
}

// Err returns l as an error, or nil when it holds no diagnostics.
func (l *ErrorList) Err() error {
	if l == nil || len(l.Entries) == 0 {
		return nil
	}
	return l
}

func (l *ErrorList) Error() string {
	switch len(l.Entries) {
	case 0:
		return "no error"
	case 1:
		return l.Entries[0].Error()
	default:
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "%d errors: ", len(l.Entries))
		for i, e := range l.Entries {
			if i > 0 {
				buf.WriteString("; ")
			}
			buf.WriteString(e.Error())
		}
		return buf.String()
	}
}

// Unwrap exposes every entry to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	errs := make([]error, len(l.Entries))
	for i, e := range l.Entries {
		errs[i] = e
	}
	return errs
}

// Show renders e against the command it came from, underlining the culprit
// with carets:
//
//	1 m + 2 sec
//	      ^^^^^
func Show(src string, e *Error) string {
	begin, end := clamp(e.Span.Begin, len(src)), clamp(e.Span.End, len(src))
	if end < begin {
		end = begin
	}
	width := end - begin
	if width == 0 {
		width = 1
	}
	return src + "\n" + strings.Repeat(" ", begin) + strings.Repeat("^", width) + " " + e.Message
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
