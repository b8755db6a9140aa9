package signature

import (
	"strings"
)

// BaseKind classifies the head of a signature.
type BaseKind int

const (
	// BasePlain is a plain identifier such as bigint or array.
	BasePlain BaseKind = iota
	// BaseQualified is an unresolved user-defined type catalog.schema.type.
	BaseQualified
	// BaseResolved is a user-defined type with its underlying standard base,
	// catalog.schema.type:base.
	BaseResolved
	// BaseDistinctType refers to a distinct-type definition.
	BaseDistinctType
)

// String returns a human-readable name for the kind.
func (k BaseKind) String() string {
	switch k {
	case BasePlain:
		return "plain"
	case BaseQualified:
		return "qualified"
	case BaseResolved:
		return "resolved"
	case BaseDistinctType:
		return "distinct"
	default:
		return "unknown"
	}
}

// BaseName is the head of a signature, before any parameter list.
type BaseName struct {
	kind      BaseKind
	standard  string
	qualified QualifiedName
}

// PlainBase returns a plain base name after alias canonicalisation.
func PlainBase(name string) BaseName {
	return BaseName{kind: BasePlain, standard: foldLower(CanonicalBaseName(name))}
}

// QualifiedBase returns the base of an unresolved user-defined type.
func QualifiedBase(name QualifiedName) BaseName {
	return BaseName{kind: BaseQualified, qualified: name}
}

// ResolvedBase returns the base of a user-defined type resolved to standard.
func ResolvedBase(name QualifiedName, standard string) BaseName {
	return BaseName{
		kind:      BaseResolved,
		standard:  foldLower(CanonicalBaseName(standard)),
		qualified: name,
	}
}

// DistinctTypeBase returns the base of a distinct type named name.
func DistinctTypeBase(name QualifiedName) BaseName {
	return BaseName{kind: BaseDistinctType, standard: StandardDistinctType, qualified: name}
}

// Kind returns the base kind.
func (b BaseName) Kind() BaseKind {
	return b.kind
}

// QualifiedName returns the user-defined or distinct type name, if any.
func (b BaseName) QualifiedName() (QualifiedName, bool) {
	switch b.kind {
	case BaseQualified, BaseResolved, BaseDistinctType:
		return b.qualified, true
	default:
		return QualifiedName{}, false
	}
}

// StandardName returns the name of the standard type behind the base. An
// unresolved qualified base has no standard type and returns its own name.
func (b BaseName) StandardName() string {
	if b.kind == BaseQualified {
		return b.qualified.String()
	}
	return b.standard
}

// String returns the canonical spelling of the base.
func (b BaseName) String() string {
	switch b.kind {
	case BaseQualified:
		return b.qualified.String()
	case BaseResolved:
		return b.qualified.String() + ":" + b.standard
	default:
		return b.standard
	}
}

// parseBaseName classifies raw, the text before a parameter list, and
// reports defects against input.
func parseBaseName(input, raw string) (BaseName, error) {
	if strings.TrimSpace(raw) == "" {
		return BaseName{}, invalidf(input, 0, "empty base name")
	}
	if raw != strings.TrimSpace(raw) {
		return BaseName{}, invalidf(input, 0, "base name %q has surrounding whitespace", raw)
	}
	if i := strings.IndexAny(raw, `,()<>{}[]"`); i >= 0 {
		return BaseName{}, invalidf(input, i, "unexpected %q in base name", raw[i])
	}

	if colon := strings.IndexByte(raw, ':'); colon >= 0 {
		name, err := ParseQualifiedName(raw[:colon])
		if err != nil {
			return BaseName{}, invalidf(input, 0, "%v", err)
		}
		standard := raw[colon+1:]
		if standard == "" || strings.ContainsAny(standard, ".:") {
			return BaseName{}, invalidf(input, colon+1, "invalid underlying base %q", standard)
		}
		return ResolvedBase(name, standard), nil
	}

	if strings.IndexByte(raw, '.') >= 0 {
		name, err := ParseQualifiedName(raw)
		if err != nil {
			return BaseName{}, invalidf(input, 0, "%v", err)
		}
		return QualifiedBase(name), nil
	}

	return PlainBase(raw), nil
}
