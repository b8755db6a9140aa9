package render

import (
	"io"

	"github.com/valyala/fastjson"
)

// JSONRenderer writes all records as one JSON array.
type JSONRenderer struct {
	w     io.Writer
	arena fastjson.Arena
	items *fastjson.Value
	n     int
	buf   []byte
}

// NewJSONRenderer returns a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	r := &JSONRenderer{w: w, buf: make([]byte, 0, 1024)}
	r.items = r.arena.NewArray()
	return r
}

// Write appends rec to the pending array.
func (r *JSONRenderer) Write(rec Record) error {
	r.items.SetArrayItem(r.n, r.document(Describe(rec)))
	r.n++
	return nil
}

func (r *JSONRenderer) document(doc Document) *fastjson.Value {
	a := &r.arena
	obj := a.NewObject()
	obj.Set("input", a.NewString(doc.Input))
	obj.Set("signature", a.NewString(doc.Signature.String()))
	obj.Set("base", a.NewString(doc.Base))
	if doc.Calculated {
		obj.Set("calculated", a.NewTrue())
	} else {
		obj.Set("calculated", a.NewFalse())
	}

	params := a.NewArray()
	for i, p := range doc.Parameters {
		item := a.NewObject()
		item.Set("kind", a.NewString(p.Kind))
		if p.Name != "" {
			item.Set("name", a.NewString(p.Name))
		}
		item.Set("value", a.NewString(p.Value))
		params.SetArrayItem(i, item)
	}
	obj.Set("parameters", params)
	return obj
}

// Close writes the pending array as a single line and empties it, so the
// renderer can be reused.
func (r *JSONRenderer) Close() error {
	r.buf = r.items.MarshalTo(r.buf[:0])
	r.buf = append(r.buf, '\n')
	_, err := r.w.Write(r.buf)
	r.arena.Reset()
	r.items = r.arena.NewArray()
	r.n = 0
	return err
}
