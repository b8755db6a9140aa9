package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter renders diagnostics as human-readable text.
type Formatter struct {
	// ShowContext controls whether to display input snippets.
	ShowContext bool
	// ShowNotes controls whether to display notes.
	ShowNotes bool
	// ShowCode controls whether to display codes.
	ShowCode bool
	// ShowCodeDescription appends the description of the code.
	ShowCodeDescription bool
	// Colorize controls whether to use ANSI color codes.
	Colorize bool
}

// NewFormatter creates a new formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowContext: true,
		ShowNotes:   true,
		ShowCode:    true,
	}
}

// NewVerboseFormatter creates a formatter with every section enabled.
func NewVerboseFormatter() *Formatter {
	return &Formatter{
		ShowContext:         true,
		ShowNotes:           true,
		ShowCode:            true,
		ShowCodeDescription: true,
		Colorize:            true,
	}
}

// Format formats a single diagnostic.
func (f *Formatter) Format(d Diagnostic) string {
	var b strings.Builder
	f.formatDiagnostic(&b, d)
	return b.String()
}

// Write writes a single diagnostic to w.
func (f *Formatter) Write(w io.Writer, d Diagnostic) error {
	_, err := io.WriteString(w, f.Format(d))
	return err
}

// WriteAll writes every diagnostic of c to w.
func (f *Formatter) WriteAll(w io.Writer, c *Collection) error {
	for _, d := range c.All() {
		if err := f.Write(w, d); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary prints a one-line count of the collection, or nothing when
// it is empty.
func (f *Formatter) PrintSummary(w io.Writer, c *Collection) {
	summary := c.Summary()
	if summary.Total == 0 {
		return
	}

	parts := make([]string, 0, 3)
	if summary.Errors > 0 {
		parts = append(parts, f.colorize(fmt.Sprintf("%d error(s)", summary.Errors), colorRed))
	}
	if summary.Warnings > 0 {
		parts = append(parts, f.colorize(fmt.Sprintf("%d warning(s)", summary.Warnings), colorYellow))
	}
	if summary.Infos > 0 {
		parts = append(parts, f.colorize(fmt.Sprintf("%d info(s)", summary.Infos), colorBlue))
	}
	_, _ = fmt.Fprintln(w, strings.Join(parts, ", "))
}

func (f *Formatter) formatDiagnostic(b *strings.Builder, d Diagnostic) {
	if d.HasLocation() {
		fmt.Fprintf(b, "%s: ", f.colorize(d.Location.String(), colorCyan))
	}

	severity := f.colorize(d.Severity.String(), f.severityColor(d.Severity))
	fmt.Fprintf(b, "%s: %s", severity, d.Message)

	if f.ShowCode && d.Code != "" {
		fmt.Fprintf(b, " %s", f.colorize("["+d.Code+"]", colorMagenta))
		if f.ShowCodeDescription {
			if desc, ok := codeDescriptions[d.Code]; ok {
				fmt.Fprintf(b, " (%s)", desc)
			}
		}
	}
	b.WriteString("\n")

	if f.ShowContext && d.Context != "" {
		for _, line := range strings.Split(d.Context, "\n") {
			fmt.Fprintf(b, "  %s %s\n", f.colorize("|", colorBlue), line)
		}
	}

	if f.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(b, "  %s %s\n", f.colorize("note:", colorBlue), note)
		}
	}
}

func (f *Formatter) severityColor(s Severity) string {
	switch s {
	case SeverityError:
		return colorRed
	case SeverityWarning:
		return colorYellow
	case SeverityInfo:
		return colorBlue
	default:
		return colorReset
	}
}

func (f *Formatter) colorize(s, color string) string {
	if !f.Colorize {
		return s
	}
	return color + s + colorReset
}

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// JSONFormatter formats diagnostics as JSON.
type JSONFormatter struct {
	Indent bool
}

type jsonDiagnostic struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Code     string    `json:"code,omitempty"`
	Location *Location `json:"location,omitempty"`
	Context  string    `json:"context,omitempty"`
	Notes    []string  `json:"notes,omitempty"`
}

func toJSON(d Diagnostic) jsonDiagnostic {
	out := jsonDiagnostic{
		Severity: d.Severity,
		Message:  d.Message,
		Code:     d.Code,
		Context:  d.Context,
		Notes:    d.Notes,
	}
	if d.HasLocation() {
		loc := d.Location
		out.Location = &loc
	}
	return out
}

// Format formats a diagnostic as a JSON object.
func (f *JSONFormatter) Format(d Diagnostic) (string, error) {
	return f.marshal(toJSON(d))
}

// FormatCollection formats an entire collection as a JSON array.
func (f *JSONFormatter) FormatCollection(c *Collection) (string, error) {
	all := c.All()
	out := make([]jsonDiagnostic, 0, len(all))
	for _, d := range all {
		out = append(out, toJSON(d))
	}
	return f.marshal(out)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("encode diagnostics: %w", err)
	}
	return string(data), nil
}
