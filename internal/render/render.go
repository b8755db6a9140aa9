// Package render writes parsed signatures in the CLI's output formats.
//
// Renderers are streaming: Write is called once per signature and Close
// flushes whatever the format buffers. The text format writes as it goes;
// json, yaml and table emit a single document on Close.
package render

import (
	"fmt"
	"io"

	"github.com/electwix/typesig/signature"
)

// Record is one rendered signature together with the text it came from.
type Record struct {
	Input     string
	Signature *signature.Signature
}

// Renderer writes records in one output format.
type Renderer interface {
	Write(rec Record) error
	Close() error
}

// Formats lists the accepted format names.
var Formats = []string{"text", "json", "yaml", "table"}

// New returns the renderer for format writing to w.
func New(format string, w io.Writer) (Renderer, error) {
	switch format {
	case "", "text":
		return NewTextRenderer(w), nil
	case "json":
		return NewJSONRenderer(w), nil
	case "yaml":
		return NewYAMLRenderer(w), nil
	case "table":
		return NewTableRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TextRenderer writes one canonical signature per line.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a TextRenderer writing to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

// Write prints the canonical form of rec followed by a newline.
func (t *TextRenderer) Write(rec Record) error {
	_, err := fmt.Fprintln(t.w, rec.Signature.String())
	return err
}

// Close is a no-op; text output is not buffered.
func (t *TextRenderer) Close() error {
	return nil
}
