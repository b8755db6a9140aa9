package signature

import (
	"strconv"
	"strings"
)

// ParameterKind tags the payload carried by a Parameter.
type ParameterKind int

const (
	// KindType is a nested signature.
	KindType ParameterKind = iota
	// KindNamedType is a row field: an optional name and a signature.
	KindNamedType
	// KindLongLiteral is a numeric literal such as a precision.
	KindLongLiteral
	// KindVariable is a symbolic length or precision.
	KindVariable
	// KindLongEnum is the map of a bigint enum.
	KindLongEnum
	// KindVarcharEnum is the map of a varchar enum.
	KindVarcharEnum
	// KindDistinctType is a distinct-type definition.
	KindDistinctType
)

// String returns the kind name.
func (k ParameterKind) String() string {
	switch k {
	case KindType:
		return "TYPE"
	case KindNamedType:
		return "NAMED_TYPE"
	case KindLongLiteral:
		return "LONG_LITERAL"
	case KindVariable:
		return "VARIABLE"
	case KindLongEnum:
		return "LONG_ENUM"
	case KindVarcharEnum:
		return "VARCHAR_ENUM"
	case KindDistinctType:
		return "DISTINCT_TYPE"
	default:
		return "ParameterKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Parameter is one entry of a signature's parameter list. Exactly one
// payload, selected by Kind, is meaningful.
type Parameter struct {
	kind        ParameterKind
	signature   *Signature
	field       NamedField
	long        int64
	variable    string
	longEnum    *LongEnumMap
	varcharEnum *VarcharEnumMap
	distinct    *DistinctTypeInfo
}

// TypeParameter wraps a nested signature.
func TypeParameter(sig *Signature) Parameter {
	return Parameter{kind: KindType, signature: sig}
}

// NamedTypeParameter wraps a row field.
func NamedTypeParameter(field NamedField) Parameter {
	return Parameter{kind: KindNamedType, field: field}
}

// LongLiteralParameter wraps a numeric literal.
func LongLiteralParameter(value int64) Parameter {
	return Parameter{kind: KindLongLiteral, long: value}
}

// VariableParameter wraps a symbolic length or precision.
func VariableParameter(name string) Parameter {
	return Parameter{kind: KindVariable, variable: name}
}

// LongEnumParameter wraps a bigint enum map.
func LongEnumParameter(m *LongEnumMap) Parameter {
	return Parameter{kind: KindLongEnum, longEnum: m}
}

// VarcharEnumParameter wraps a varchar enum map.
func VarcharEnumParameter(m *VarcharEnumMap) Parameter {
	return Parameter{kind: KindVarcharEnum, varcharEnum: m}
}

// DistinctTypeParameter wraps a distinct-type definition.
func DistinctTypeParameter(info *DistinctTypeInfo) Parameter {
	return Parameter{kind: KindDistinctType, distinct: info}
}

// Kind returns the payload tag.
func (p Parameter) Kind() ParameterKind {
	return p.kind
}

// TypeSignature returns the nested signature of a TYPE parameter.
func (p Parameter) TypeSignature() (*Signature, bool) {
	return p.signature, p.kind == KindType
}

// NamedField returns the field of a NAMED_TYPE parameter.
func (p Parameter) NamedField() (NamedField, bool) {
	return p.field, p.kind == KindNamedType
}

// LongLiteral returns the value of a LONG_LITERAL parameter.
func (p Parameter) LongLiteral() (int64, bool) {
	return p.long, p.kind == KindLongLiteral
}

// Variable returns the identifier of a VARIABLE parameter.
func (p Parameter) Variable() (string, bool) {
	return p.variable, p.kind == KindVariable
}

// LongEnumMap returns the map of a LONG_ENUM parameter.
func (p Parameter) LongEnumMap() (*LongEnumMap, bool) {
	return p.longEnum, p.kind == KindLongEnum
}

// VarcharEnumMap returns the map of a VARCHAR_ENUM parameter.
func (p Parameter) VarcharEnumMap() (*VarcharEnumMap, bool) {
	return p.varcharEnum, p.kind == KindVarcharEnum
}

// DistinctTypeInfo returns the definition of a DISTINCT_TYPE parameter.
func (p Parameter) DistinctTypeInfo() (*DistinctTypeInfo, bool) {
	return p.distinct, p.kind == KindDistinctType
}

// IsCalculated reports whether the parameter is a variable or nests a
// calculated signature.
func (p Parameter) IsCalculated() bool {
	switch p.kind {
	case KindVariable:
		return true
	case KindType:
		return p.signature.Calculated()
	case KindNamedType:
		return p.field.typ.Calculated()
	default:
		return false
	}
}

// Equal reports structural equality.
func (p Parameter) Equal(other Parameter) bool {
	if p.kind != other.kind {
		return false
	}
	switch p.kind {
	case KindType:
		return p.signature.Equal(other.signature)
	case KindNamedType:
		return p.field.Equal(other.field)
	case KindLongLiteral:
		return p.long == other.long
	case KindVariable:
		return p.variable == other.variable
	case KindLongEnum:
		return p.longEnum.Equal(other.longEnum)
	case KindVarcharEnum:
		return p.varcharEnum.Equal(other.varcharEnum)
	case KindDistinctType:
		return p.distinct.Equal(other.distinct)
	default:
		return false
	}
}

// String returns the canonical text of the parameter.
func (p Parameter) String() string {
	var b strings.Builder
	p.writeTo(&b)
	return b.String()
}

func (p Parameter) writeTo(b *strings.Builder) {
	switch p.kind {
	case KindType:
		p.signature.writeTo(b)
	case KindNamedType:
		p.field.writeTo(b)
	case KindLongLiteral:
		b.WriteString(strconv.FormatInt(p.long, 10))
	case KindVariable:
		b.WriteString(p.variable)
	case KindLongEnum:
		p.longEnum.writeTo(b)
	case KindVarcharEnum:
		p.varcharEnum.writeTo(b)
	case KindDistinctType:
		p.distinct.writeTo(b)
	}
}

// NamedField is a row field: an optional name and the field type.
type NamedField struct {
	name      string
	named     bool
	delimited bool
	typ       *Signature
}

// NewNamedField returns a field called name. A delimited name was quoted in
// the source and is quoted again when printed.
func NewNamedField(name string, delimited bool, typ *Signature) NamedField {
	return NamedField{name: name, named: true, delimited: delimited, typ: typ}
}

// NewAnonymousField returns a field without a name.
func NewAnonymousField(typ *Signature) NamedField {
	return NamedField{typ: typ}
}

// Name returns the field name, if the field has one.
func (f NamedField) Name() (string, bool) {
	return f.name, f.named
}

// Delimited reports whether the name is printed quoted.
func (f NamedField) Delimited() bool {
	return f.delimited
}

// Type returns the field type.
func (f NamedField) Type() *Signature {
	return f.typ
}

// Equal reports structural equality.
func (f NamedField) Equal(other NamedField) bool {
	return f.named == other.named &&
		f.name == other.name &&
		f.delimited == other.delimited &&
		f.typ.Equal(other.typ)
}

// String returns the canonical text of the field.
func (f NamedField) String() string {
	var b strings.Builder
	f.writeTo(&b)
	return b.String()
}

func (f NamedField) writeTo(b *strings.Builder) {
	if f.named {
		if f.delimited {
			writeQuoted(b, f.name)
		} else {
			b.WriteString(f.name)
		}
		b.WriteByte(' ')
	}
	f.typ.writeTo(b)
}

// writeQuoted writes s in double quotes, doubling embedded quotes.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
}
