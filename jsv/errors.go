package jsv

import (
	"errors"
	"fmt"
	"reflect"
)

// Codec errors
var (
	ErrMaxDepth     = errors.New("jsv: maximum nesting depth exceeded")
	ErrNilTarget    = errors.New("jsv: target must be a non-nil pointer")
	ErrUnsupported  = errors.New("jsv: unsupported type")
	ErrMissingHint  = errors.New("jsv: interface target requires a type hint")
	ErrTooManyItems = errors.New("jsv: too many elements for array")
	ErrTypeMismatch = errors.New("jsv: value does not match declared type")
)

// SyntaxError reports malformed map or list grammar.
type SyntaxError struct {
	Msg    string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jsv: %s at offset %d", e.Msg, e.Offset)
}

func syntaxErrorf(offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}

// ScalarError reports a scalar value that could not be parsed into its type.
// It is never swallowed: overflow and format violations are contract errors.
type ScalarError struct {
	Type  reflect.Type
	Value string
	Err   error
}

func (e *ScalarError) Error() string {
	return fmt.Sprintf("jsv: cannot parse %q as %s: %v", e.Value, e.Type, e.Err)
}

func (e *ScalarError) Unwrap() error { return e.Err }

// MemberError reports a value that could not be assigned to a struct member.
// It is logged and skipped unless Config.ThrowOnError is set.
type MemberError struct {
	Type   reflect.Type
	Member string
	Err    error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("jsv: %s.%s: %v", e.Type, e.Member, e.Err)
}

func (e *MemberError) Unwrap() error { return e.Err }

// TypeResolutionError reports a type hint that did not resolve to an allowed,
// assignable type.
type TypeResolutionError struct {
	Hint   string
	Target reflect.Type
	Reason string
}

func (e *TypeResolutionError) Error() string {
	return fmt.Sprintf("jsv: type hint %q for %s: %s", e.Hint, e.Target, e.Reason)
}

// isFatal reports whether err must abort the whole deserialization instead of
// being logged against a single member.
func isFatal(err error) bool {
	var se *ScalarError
	if errors.As(err, &se) {
		return true
	}
	return errors.Is(err, ErrMaxDepth)
}
