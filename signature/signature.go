package signature

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Signature is the parsed form of a type signature. Values are immutable
// once constructed and may be shared between goroutines.
type Signature struct {
	base       BaseName
	parameters []Parameter
	calculated bool
}

// New returns a signature with a plain base name. A bare varchar receives
// the unbounded length parameter, matching what the parser produces.
func New(base string, params ...Parameter) *Signature {
	return NewWithBase(PlainBase(base), params...)
}

// NewWithBase returns a signature over an already classified base.
func NewWithBase(base BaseName, params ...Parameter) *Signature {
	if base.kind == BasePlain && base.standard == StandardVarchar && len(params) == 0 {
		params = []Parameter{LongLiteralParameter(UnboundedLength)}
	}
	sig := &Signature{
		base:       base,
		parameters: slices.Clone(params),
	}
	for _, p := range sig.parameters {
		if p.IsCalculated() {
			sig.calculated = true
			break
		}
	}
	return sig
}

// NewQualified returns the signature of an unresolved user-defined type.
func NewQualified(name QualifiedName) *Signature {
	return NewWithBase(QualifiedBase(name))
}

// NewResolved returns the signature of a user-defined type resolved to a
// standard base, adopting the parameters of the underlying type.
func NewResolved(name QualifiedName, standard string, params ...Parameter) *Signature {
	return NewWithBase(ResolvedBase(name, standard), params...)
}

// NewDistinctType returns the signature of a distinct type.
func NewDistinctType(info *DistinctTypeInfo) *Signature {
	return NewWithBase(DistinctTypeBase(info.Name()), DistinctTypeParameter(info))
}

// NewUnboundedVarchar returns varchar without an explicit length.
func NewUnboundedVarchar() *Signature {
	return New(StandardVarchar, LongLiteralParameter(UnboundedLength))
}

// Base returns the canonical base name.
func (s *Signature) Base() string {
	return s.base.String()
}

// BaseName returns the classified base.
func (s *Signature) BaseName() BaseName {
	return s.base
}

// Parameters returns a copy of the parameter list.
func (s *Signature) Parameters() []Parameter {
	return slices.Clone(s.parameters)
}

// NumParameters returns the number of parameters.
func (s *Signature) NumParameters() int {
	return len(s.parameters)
}

// Parameter returns the i-th parameter.
func (s *Signature) Parameter(i int) Parameter {
	return s.parameters[i]
}

// Calculated reports whether any parameter, transitively, is a variable.
func (s *Signature) Calculated() bool {
	if s == nil {
		return false
	}
	return s.calculated
}

// IsRow reports whether the standard base is row.
func (s *Signature) IsRow() bool {
	return s.base.StandardName() == StandardRow
}

// IsFunction reports whether the standard base is function.
func (s *Signature) IsFunction() bool {
	return s.base.StandardName() == StandardFunction
}

// IsBigintEnum reports whether the only parameter is a bigint enum map.
func (s *Signature) IsBigintEnum() bool {
	return len(s.parameters) == 1 && s.parameters[0].kind == KindLongEnum
}

// IsVarcharEnum reports whether the only parameter is a varchar enum map.
func (s *Signature) IsVarcharEnum() bool {
	return len(s.parameters) == 1 && s.parameters[0].kind == KindVarcharEnum
}

// IsEnum reports whether the signature is a bigint or varchar enum.
func (s *Signature) IsEnum() bool {
	return s.IsBigintEnum() || s.IsVarcharEnum()
}

// IsDistinctType reports whether the only parameter is a distinct-type definition.
func (s *Signature) IsDistinctType() bool {
	return len(s.parameters) == 1 && s.parameters[0].kind == KindDistinctType
}

// DistinctTypeInfo returns the definition of a distinct type signature.
func (s *Signature) DistinctTypeInfo() (*DistinctTypeInfo, bool) {
	if !s.IsDistinctType() {
		return nil, false
	}
	return s.parameters[0].distinct, true
}

// StandardSignature returns the same parameters under the standard base,
// dropping any user-defined qualification.
func (s *Signature) StandardSignature() *Signature {
	return NewWithBase(PlainBase(s.base.StandardName()), s.parameters...)
}

// TypeOrNamedTypeParameters returns the nested signatures of all TYPE and
// NAMED_TYPE parameters. Any other kind is an *AssertionError.
func (s *Signature) TypeOrNamedTypeParameters() ([]*Signature, error) {
	result := make([]*Signature, 0, len(s.parameters))
	for _, p := range s.parameters {
		switch p.kind {
		case KindType:
			result = append(result, p.signature)
		case KindNamedType:
			result = append(result, p.field.typ)
		default:
			return nil, &AssertionError{Message: fmt.Sprintf(
				"expected all parameters to be of kind TYPE or NAMED_TYPE but [%s] kind was found for parameter: [%s]",
				p.kind, p)}
		}
	}
	return result, nil
}

// Equal reports structural equality over base and parameters.
func (s *Signature) Equal(other *Signature) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s == other {
		return true
	}
	if s.base.String() != other.base.String() || len(s.parameters) != len(other.parameters) {
		return false
	}
	for i := range s.parameters {
		if !s.parameters[i].Equal(other.parameters[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash that agrees with Equal.
func (s *Signature) Hash() uint64 {
	return xxhash.Sum64String(s.String())
}

// String returns the canonical signature text.
func (s *Signature) String() string {
	var b strings.Builder
	s.writeTo(&b)
	return b.String()
}

func (s *Signature) writeTo(b *strings.Builder) {
	if s == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(s.base.String())
	if len(s.parameters) == 0 || s.isUnboundedVarchar() {
		return
	}
	b.WriteByte('(')
	for i, p := range s.parameters {
		if i > 0 {
			b.WriteByte(',')
		}
		p.writeTo(b)
	}
	b.WriteByte(')')
}

func (s *Signature) isUnboundedVarchar() bool {
	if s.base.String() != StandardVarchar || len(s.parameters) != 1 {
		return false
	}
	length, ok := s.parameters[0].LongLiteral()
	return ok && length == UnboundedLength
}
