package signature

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature matches every *InvalidSignatureError via errors.Is.
	ErrInvalidSignature = errors.New("invalid type signature")
	// ErrDuplicateField matches every *DuplicateFieldError via errors.Is.
	ErrDuplicateField = errors.New("duplicate field")
)

// InvalidSignatureError reports a structural defect in a signature string.
type InvalidSignatureError struct {
	// Input is the signature handed to Parse.
	Input string
	// Reason describes the defect.
	Reason string
	// Offset is the byte offset into Input where the defect was detected,
	// or -1 when the defect has no single position.
	Offset int
}

// Error returns the printable representation of the parse failure.
func (e *InvalidSignatureError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Reason == "" {
		return fmt.Sprintf("bad type signature: '%s'", e.Input)
	}
	return fmt.Sprintf("bad type signature: '%s': %s", e.Input, e.Reason)
}

// Is reports whether target is ErrInvalidSignature.
func (e *InvalidSignatureError) Is(target error) bool {
	return target == ErrInvalidSignature
}

// DuplicateFieldError reports a row signature with two fields of the same name.
type DuplicateFieldError struct {
	Field string
}

// Error returns the printable representation of the duplicate field.
func (e *DuplicateFieldError) Error() string {
	return "duplicate field: " + e.Field
}

// Is reports whether target is ErrDuplicateField.
func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

// AssertionError reports a broken internal invariant. It is never expected
// for any input; seeing one is a bug in this package or in its caller.
type AssertionError struct {
	Message string
}

// Error returns the assertion message.
func (e *AssertionError) Error() string {
	return "assertion failed: " + e.Message
}

func invalidf(input string, offset int, format string, args ...any) *InvalidSignatureError {
	return &InvalidSignatureError{
		Input:  input,
		Reason: fmt.Sprintf(format, args...),
		Offset: offset,
	}
}

// rebase re-anchors an error raised while parsing a nested span of outer,
// starting at byte shift, so that it reports against outer.
func rebase(err error, outer string, shift int) error {
	var invalid *InvalidSignatureError
	if !errors.As(err, &invalid) {
		return err
	}
	offset := invalid.Offset
	if offset >= 0 {
		offset += shift
	}
	return &InvalidSignatureError{
		Input:  outer,
		Reason: invalid.Reason,
		Offset: offset,
	}
}
