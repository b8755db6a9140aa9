package signature

import (
	"slices"
	"strings"
)

// DistinctTypeInfo describes a distinct type: its name, the signature it is
// derived from, whether it is orderable, and its ancestor chain.
type DistinctTypeInfo struct {
	name        QualifiedName
	base        *Signature
	orderable   bool
	topAncestor QualifiedName
	hasTop      bool
	others      []QualifiedName
}

// NewDistinctTypeInfo returns a distinct-type definition. A nil top means the
// type has no ancestor.
func NewDistinctTypeInfo(name QualifiedName, base *Signature, orderable bool, top *QualifiedName, others []QualifiedName) *DistinctTypeInfo {
	info := &DistinctTypeInfo{
		name:      name,
		base:      base,
		orderable: orderable,
		others:    slices.Clone(others),
	}
	if top != nil {
		info.topAncestor = *top
		info.hasTop = true
	}
	return info
}

// Name returns the distinct type's qualified name.
func (d *DistinctTypeInfo) Name() QualifiedName { return d.name }

// BaseSignature returns the signature the type is derived from.
func (d *DistinctTypeInfo) BaseSignature() *Signature { return d.base }

// Orderable reports whether values of the type can be ordered.
func (d *DistinctTypeInfo) Orderable() bool { return d.orderable }

// TopAncestor returns the root of the ancestor chain, if any.
func (d *DistinctTypeInfo) TopAncestor() (QualifiedName, bool) {
	return d.topAncestor, d.hasTop
}

// OtherAncestors returns the remaining ancestors in order.
func (d *DistinctTypeInfo) OtherAncestors() []QualifiedName {
	return slices.Clone(d.others)
}

// Equal reports structural equality.
func (d *DistinctTypeInfo) Equal(other *DistinctTypeInfo) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.name == other.name &&
		d.base.Equal(other.base) &&
		d.orderable == other.orderable &&
		d.hasTop == other.hasTop &&
		d.topAncestor == other.topAncestor &&
		slices.Equal(d.others, other.others)
}

// String returns the payload text, name{base, orderable, top|null, [a, b]}.
func (d *DistinctTypeInfo) String() string {
	var b strings.Builder
	d.writeTo(&b)
	return b.String()
}

func (d *DistinctTypeInfo) writeTo(b *strings.Builder) {
	b.WriteString(d.name.String())
	b.WriteByte('{')
	d.base.writeTo(b)
	b.WriteString(", ")
	if d.orderable {
		b.WriteString("true")
	} else {
		b.WriteString("false")
	}
	b.WriteString(", ")
	if d.hasTop {
		b.WriteString(d.topAncestor.String())
	} else {
		b.WriteString("null")
	}
	b.WriteString(", [")
	for i, a := range d.others {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteString("]}")
}

// distinctTypeParse is the result of scanning one distinct-type payload.
type distinctTypeParse struct {
	info *DistinctTypeInfo
	// end is the index just past the closing '}'.
	end int
}

// parseDistinctType reads the payload that starts at start, the byte after
// the '(' of distincttype(. Separators are literally ", ".
func parseDistinctType(input, lower string, start int) (*distinctTypeParse, error) {
	pos := start
	next := func(sep, what string) (string, int, error) {
		i := strings.Index(lower[pos:], sep)
		if i < 0 {
			return "", 0, invalidf(input, pos, "distinct type: expected %q after %s", sep, what)
		}
		at := pos
		part := lower[pos : pos+i]
		pos += i + len(sep)
		return part, at, nil
	}

	rawName, at, err := next("{", "type name")
	if err != nil {
		return nil, err
	}
	name, err := ParseQualifiedName(rawName)
	if err != nil {
		return nil, invalidf(input, at, "distinct type name: %v", err)
	}

	baseEnd, err := distinctBaseEnd(input, lower, pos)
	if err != nil {
		return nil, err
	}
	baseAt := pos
	base, err := parseNested(input[baseAt:baseEnd], nil)
	if err != nil {
		return nil, rebase(err, input, baseAt)
	}
	pos = baseEnd + len(", ")

	rawOrderable, at, err := next(", ", "orderable flag")
	if err != nil {
		return nil, err
	}
	var orderable bool
	switch rawOrderable {
	case "true":
		orderable = true
	case "false":
	default:
		return nil, invalidf(input, at, "distinct type: orderable must be true or false, found %q", rawOrderable)
	}

	rawTop, at, err := next(", [", "top ancestor")
	if err != nil {
		return nil, err
	}
	var top *QualifiedName
	if rawTop != "null" {
		q, err := ParseQualifiedName(rawTop)
		if err != nil {
			return nil, invalidf(input, at, "distinct type top ancestor: %v", err)
		}
		top = &q
	}

	rawOthers, at, err := next("]}", "ancestor list")
	if err != nil {
		return nil, err
	}
	var others []QualifiedName
	if rawOthers != "" {
		offset := at
		for _, part := range strings.Split(rawOthers, ", ") {
			q, err := ParseQualifiedName(part)
			if err != nil {
				return nil, invalidf(input, offset, "distinct type ancestor: %v", err)
			}
			others = append(others, q)
			offset += len(part) + len(", ")
		}
	}

	return &distinctTypeParse{
		info: NewDistinctTypeInfo(name, base, orderable, top, others),
		end:  pos,
	}, nil
}

// distinctBaseEnd finds the ", " that ends the base signature of a distinct
// type. The base may itself contain brackets and quoted text, so the first
// separator at bracket depth zero wins.
func distinctBaseEnd(input, lower string, from int) (int, error) {
	depth := 0
	quoted := false
	for i := from; i < len(lower); i++ {
		c := lower[i]
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(' || c == '<' || c == '{':
			depth++
		case c == ')' || c == '>' || c == '}':
			if depth == 0 {
				return 0, invalidf(input, i, "distinct type: unexpected %q in base signature", c)
			}
			depth--
		case c == ',' && depth == 0:
			if i+1 < len(lower) && lower[i+1] == ' ' {
				return i, nil
			}
			return 0, invalidf(input, i, "distinct type: expected \", \" after base signature")
		}
	}
	return 0, invalidf(input, from, "distinct type: expected \", \" after base signature")
}
