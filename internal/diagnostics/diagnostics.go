// Package diagnostics turns signature errors and CLI problems into
// positioned, printable diagnostics.
package diagnostics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Severity indicates the seriousness of a diagnostic.
type Severity int

const (
	// SeverityInfo indicates an informational message.
	SeverityInfo Severity = iota
	// SeverityWarning indicates a problem that does not fail the run.
	SeverityWarning
	// SeverityError indicates a rejected input or a failed run.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Location is a position in an input. Line and Column are 1-based; zero
// means unknown.
type Location struct {
	Path   string `json:"path"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (l Location) String() string {
	var b strings.Builder
	b.WriteString(l.Path)
	if l.Line > 0 {
		fmt.Fprintf(&b, ":%d", l.Line)
		if l.Column > 0 {
			fmt.Fprintf(&b, ":%d", l.Column)
		}
	}
	return b.String()
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string

	Location Location

	// Context is a snippet of the offending input, possibly several lines.
	Context string
	Notes   []string
}

// HasLocation returns true if the diagnostic names an input.
func (d Diagnostic) HasLocation() bool {
	return d.Location.Path != ""
}

// IsError returns true if the diagnostic is an error.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	var b strings.Builder
	if d.HasLocation() {
		fmt.Fprintf(&b, "%s: ", d.Location)
	}
	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}
	fmt.Fprintf(&b, "%s: %s", d.Severity, d.Message)
	return b.String()
}

// Builder provides a fluent API for constructing diagnostics.
type Builder struct {
	diag Diagnostic
}

// NewBuilder creates a builder with the given severity and message.
func NewBuilder(severity Severity, message string) *Builder {
	return &Builder{diag: Diagnostic{Severity: severity, Message: message}}
}

// Error creates a builder for an error-level diagnostic.
func Error(message string) *Builder {
	return NewBuilder(SeverityError, message)
}

// Warning creates a builder for a warning-level diagnostic.
func Warning(message string) *Builder {
	return NewBuilder(SeverityWarning, message)
}

// WithCode sets the code.
func (b *Builder) WithCode(code string) *Builder {
	b.diag.Code = code
	return b
}

// At sets the location.
func (b *Builder) At(path string, line, column int) *Builder {
	b.diag.Location = Location{Path: path, Line: line, Column: column}
	return b
}

// WithContext sets the snippet.
func (b *Builder) WithContext(context string) *Builder {
	b.diag.Context = context
	return b
}

// WithNote adds a note.
func (b *Builder) WithNote(note string) *Builder {
	b.diag.Notes = append(b.diag.Notes, note)
	return b
}

// Build returns the constructed diagnostic.
func (b *Builder) Build() Diagnostic {
	return b.diag
}

// Collection holds the diagnostics of one run.
type Collection struct {
	diagnostics []Diagnostic
}

// NewCollection creates a new empty diagnostic collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add adds a diagnostic to the collection.
func (c *Collection) Add(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// HasErrors returns true if the collection contains any errors.
func (c *Collection) HasErrors() bool {
	return slices.ContainsFunc(c.diagnostics, Diagnostic.IsError)
}

// All returns all diagnostics.
func (c *Collection) All() []Diagnostic {
	return slices.Clone(c.diagnostics)
}

// Len returns the number of diagnostics.
func (c *Collection) Len() int {
	return len(c.diagnostics)
}

// ByCode returns diagnostics with a specific code.
func (c *Collection) ByCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.diagnostics {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// SortByLocation orders diagnostics by path, line and column, keeping the
// insertion order of ties.
func (c *Collection) SortByLocation() {
	slices.SortStableFunc(c.diagnostics, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Location.Path, b.Location.Path),
			cmp.Compare(a.Location.Line, b.Location.Line),
			cmp.Compare(a.Location.Column, b.Location.Column),
		)
	})
}

// Summary counts diagnostics per severity.
type Summary struct {
	Total    int
	Errors   int
	Warnings int
	Infos    int
}

// Summary returns a summary of the collection.
func (c *Collection) Summary() Summary {
	s := Summary{Total: len(c.diagnostics)}
	for _, d := range c.diagnostics {
		switch d.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Infos++
		}
	}
	return s
}

// Diagnostic codes.
const (
	CodeUnclassified     = "S000"
	CodeInvalidSignature = "S001"
	CodeDuplicateField   = "S002"
	CodeInternal         = "S999"

	CodeConfigWarning = "C001"
	CodeInputError    = "C002"
	CodeConfigError   = "C003"
)

var codeDescriptions = map[string]string{
	CodeUnclassified:     "Unclassified failure",
	CodeInvalidSignature: "Malformed type signature",
	CodeDuplicateField:   "Duplicate row field name",
	CodeInternal:         "Internal parser assertion",
	CodeConfigWarning:    "Configuration warning",
	CodeInputError:       "Input could not be read",
	CodeConfigError:      "Configuration could not be loaded",
}

// CodeDescription returns a human-readable description for a code.
func CodeDescription(code string) string {
	if desc, ok := codeDescriptions[code]; ok {
		return desc
	}
	return "Unknown code"
}
