package ply

import (
	"errors"
	"fmt"
)

// ---- Error kinds: match with errors.Is ----
var (
	ErrFormat = errors.New("ply: malformed header")
	ErrSchema = errors.New("ply: invalid request")
	ErrDecode = errors.New("ply: cannot decode body")
	ErrEncode = errors.New("ply: cannot encode body")
)

// ---- Causes wrapped by DecodeError / EncodeError ----
var (
	ErrBadToken        = errors.New("ply: token does not parse as declared type")
	ErrListTooLong     = errors.New("ply: list count exceeds ceiling")
	ErrNegativeCount   = errors.New("ply: negative list count")
	ErrLossyConversion = errors.New("ply: value not representable in target type")
	ErrNonFinite       = errors.New("ply: non-finite float value")
	ErrAlreadyDecoded  = errors.New("ply: body already decoded")
)

// FormatError reports a malformed header line. Line is 1-based, 0 when the
// problem is not tied to one line (e.g. a missing end_header).
type FormatError struct {
	Line int
	Text string
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return "ply: header: " + e.Msg
	}
	return fmt.Sprintf("ply: header line %d %q: %s", e.Line, e.Text, e.Msg)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// SchemaError reports a request or declaration that does not fit the schema.
type SchemaError struct {
	Element  string
	Property string
	Msg      string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Property != "":
		return fmt.Sprintf("ply: element %q property %q: %s", e.Element, e.Property, e.Msg)
	case e.Element != "":
		return fmt.Sprintf("ply: element %q: %s", e.Element, e.Msg)
	}
	return "ply: " + e.Msg
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// DecodeError locates a body failure. Offset is the absolute byte offset in
// the stream (header included) where the failing read started.
type DecodeError struct {
	Element  string
	Property string
	Instance int
	Offset   int64
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ply: decode %s[%d].%s at byte %d: %v",
		e.Element, e.Instance, e.Property, e.Offset, e.Err)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
func (e *DecodeError) Unwrap() error        { return e.Err }

// EncodeError locates a value the encoder refused to write.
type EncodeError struct {
	Element  string
	Property string
	Instance int
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ply: encode %s[%d].%s: %v", e.Element, e.Instance, e.Property, e.Err)
}

func (e *EncodeError) Is(target error) bool { return target == ErrEncode }
func (e *EncodeError) Unwrap() error        { return e.Err }

func schemaErr(element, property, format string, args ...any) error {
	return &SchemaError{Element: element, Property: property, Msg: fmt.Sprintf(format, args...)}
}
