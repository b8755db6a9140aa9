package diagnostics

import (
	"errors"
	"strings"

	"github.com/electwix/typesig/signature"
)

// FromError converts a parse failure of the signature on line of path.
// Positional errors get a column and a caret snippet under the offending
// byte.
func FromError(path string, line int, err error) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  err.Error(),
		Code:     CodeUnclassified,
		Location: Location{Path: path, Line: line},
	}

	var (
		invalid   *signature.InvalidSignatureError
		duplicate *signature.DuplicateFieldError
		assertion *signature.AssertionError
	)
	switch {
	case errors.As(err, &duplicate):
		d.Code = CodeDuplicateField
		d.Message = duplicate.Error()
	case errors.As(err, &invalid):
		d.Code = CodeInvalidSignature
		d.Message = "bad type signature"
		if invalid.Reason != "" {
			d.Message += ": " + invalid.Reason
		}
		if invalid.Offset >= 0 && invalid.Offset <= len(invalid.Input) {
			d.Location.Column = invalid.Offset + 1
			d.Context = Caret(invalid.Input, invalid.Offset)
		} else {
			d.Context = invalid.Input
		}
	case errors.As(err, &assertion):
		d.Code = CodeInternal
		d.Message = assertion.Error()
		d.Notes = append(d.Notes, "this is a parser defect; please report the input")
	}
	return d
}

// Caret renders input followed by a line with a caret under byte offset.
// Offsets past the end point just after the last rune.
func Caret(input string, offset int) string {
	offset = max(0, min(offset, len(input)))
	var pad strings.Builder
	for _, r := range input[:offset] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteByte(' ')
	}
	return input + "\n" + pad.String() + "^"
}
