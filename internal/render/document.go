package render

import (
	"strconv"

	"github.com/electwix/typesig/signature"
)

// Document is the structured description of a record shared by the json,
// yaml and table formats.
type Document struct {
	Input      string               `yaml:"input"`
	Signature  *signature.Signature `yaml:"signature"`
	Base       string               `yaml:"base"`
	Calculated bool                 `yaml:"calculated"`
	Parameters []ParameterDoc       `yaml:"parameters,omitempty"`
}

// ParameterDoc describes one parameter. Name is set for named row fields
// and for enum and distinct payloads, which carry a type name.
type ParameterDoc struct {
	Kind  string `yaml:"kind"`
	Name  string `yaml:"name,omitempty"`
	Value string `yaml:"value"`
}

// Describe builds the document for rec.
func Describe(rec Record) Document {
	sig := rec.Signature
	doc := Document{
		Input:      rec.Input,
		Signature:  sig,
		Base:       sig.Base(),
		Calculated: sig.Calculated(),
	}
	for _, p := range sig.Parameters() {
		doc.Parameters = append(doc.Parameters, describeParameter(p))
	}
	return doc
}

func describeParameter(p signature.Parameter) ParameterDoc {
	doc := ParameterDoc{Kind: p.Kind().String(), Value: p.String()}
	switch p.Kind() {
	case signature.KindNamedType:
		field, _ := p.NamedField()
		if name, ok := field.Name(); ok {
			doc.Name = name
		}
		doc.Value = field.Type().String()
	case signature.KindLongLiteral:
		v, _ := p.LongLiteral()
		doc.Value = strconv.FormatInt(v, 10)
	case signature.KindLongEnum:
		m, _ := p.LongEnumMap()
		doc.Name = m.TypeName()
	case signature.KindVarcharEnum:
		m, _ := p.VarcharEnumMap()
		doc.Name = m.TypeName()
	case signature.KindDistinctType:
		info, _ := p.DistinctTypeInfo()
		doc.Name = info.Name().String()
	}
	return doc
}
