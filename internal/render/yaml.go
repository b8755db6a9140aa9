package render

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLRenderer writes all records as one YAML sequence.
type YAMLRenderer struct {
	w    io.Writer
	docs []Document
}

// NewYAMLRenderer returns a YAMLRenderer writing to w.
func NewYAMLRenderer(w io.Writer) *YAMLRenderer {
	return &YAMLRenderer{w: w}
}

// Write queues rec for the sequence emitted on Close.
func (r *YAMLRenderer) Write(rec Record) error {
	r.docs = append(r.docs, Describe(rec))
	return nil
}

// Close encodes the queued records. With none queued it writes an empty
// sequence.
func (r *YAMLRenderer) Close() error {
	docs := r.docs
	if docs == nil {
		docs = []Document{}
	}
	r.docs = nil

	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
