package unhtml

import (
	"errors"
	"fmt"
	"strings"
)

// Application error codes.
const (
	ESOURCEEMPTY  = "source_empty"
	EATTRNOTFOUND = "attr_not_found"
	ETEXTPARSE    = "text_parse"
	ESELECTOR     = "selector_syntax"
	EINVALID      = "invalid"
	EINTERNAL     = "internal"
)

// ErrSourceEmpty is returned when a scope expected to hold at least one
// element holds none. Compare with errors.Is; it must not be modified.
var ErrSourceEmpty = &Error{Code: ESOURCEEMPTY, Message: "source is empty"}

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("unhtml error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// AttrNotFoundError is returned when a matched element lacks the requested attribute.
type AttrNotFoundError struct {
	Attr    string
	Element string
}

func (e *AttrNotFoundError) Error() string {
	return fmt.Sprintf("attribute %q not found in %s", e.Attr, e.Element)
}

// TextParseError is returned when sourced text fails the target type's parser.
type TextParseError struct {
	Text string
	Type string
	Err  error
}

func (e *TextParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Text, e.Type, e.Err)
}

func (e *TextParseError) Unwrap() error { return e.Err }

// SelectorError is returned for a malformed CSS selector.
type SelectorError struct {
	Selector string
	Err      error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid css selector %q: %v", e.Selector, e.Err)
}

func (e *SelectorError) Unwrap() error { return e.Err }

// FieldError records the path of the field whose resolution failed.
// Path elements are field names and list indexes, e.g. "links[2].href".
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v", e.Path, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// fieldError prefixes err's path with elem.
func fieldError(elem string, err error) error {
	if fe, ok := err.(*FieldError); ok {
		if strings.HasPrefix(fe.Path, "[") {
			return &FieldError{Path: elem + fe.Path, Err: fe.Err}
		}
		return &FieldError{Path: elem + "." + fe.Path, Err: fe.Err}
	}
	return &FieldError{Path: elem, Err: err}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var (
		e  *Error
		ae *AttrNotFoundError
		te *TextParseError
		se *SelectorError
	)
	switch {
	case errors.As(err, &ae):
		return EATTRNOTFOUND
	case errors.As(err, &te):
		return ETEXTPARSE
	case errors.As(err, &se):
		return ESELECTOR
	case errors.As(err, &e):
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if ErrorCode(err) != EINTERNAL {
		return err.Error()
	}
	return "Internal error."
}
