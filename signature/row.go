package signature

import (
	"strings"
)

type rowState int

const (
	startOfField rowState = iota
	delimitedName
	delimitedNameEscaped
	typeOrNamedType
	fieldType
	rowFinished
)

// rowParser holds the state of one row(...) scan.
type rowParser struct {
	input    string
	literals LiteralSet

	fields []Parameter
	seen   map[string]struct{}
}

// parseRow parses a signature known to start with row( in any case. Fields
// are separated by ',' at bracket level one, where both bracket styles
// nest; text inside double quotes never ends a field.
func parseRow(s string, literals LiteralSet) (*Signature, error) {
	p := &rowParser{input: s, literals: literals, seen: make(map[string]struct{})}

	var (
		state      = startOfField
		level      = 1
		tokenStart = -1
		quoted     bool
		name       string
	)

	for i := len(StandardRow) + 1; i < len(s); i++ {
		c := s[i]
		switch state {
		case startOfField:
			switch {
			case c == '"':
				state = delimitedName
				tokenStart = i
			case isIdentifierStart(c):
				state = typeOrNamedType
				tokenStart = i
			case c == ' ':
			default:
				return nil, invalidf(s, i, "unexpected %q at the start of a row field", c)
			}

		case delimitedName:
			if c != '"' {
				continue
			}
			if i+1 < len(s) && s[i+1] == '"' {
				state = delimitedNameEscaped
				continue
			}
			name = strings.ReplaceAll(s[tokenStart+1:i], `""`, `"`)
			tokenStart = i + 1
			state = fieldType

		case delimitedNameEscaped:
			if c != '"' {
				return nil, &AssertionError{Message: "row scanner expected an escaped quote"}
			}
			state = delimitedName

		case typeOrNamedType, fieldType:
			if quoted {
				if c == '"' {
					quoted = false
				}
				continue
			}
			switch {
			case c == '"':
				quoted = true
			case c == '(' || c == '<':
				level++
			case (c == ')' || c == '>') && level > 1:
				level--
			case c == ')', c == ',' && level == 1:
				var err error
				if state == typeOrNamedType {
					err = p.ambiguousField(tokenStart, i)
				} else {
					err = p.delimitedField(name, tokenStart, i)
				}
				if err != nil {
					return nil, err
				}
				tokenStart = -1
				name = ""
				if c == ')' {
					state = rowFinished
				} else {
					state = startOfField
				}
			}

		case rowFinished:
			return nil, invalidf(s, i, "unexpected text after row fields")
		}
	}

	if state != rowFinished {
		return nil, invalidf(s, len(s), "unterminated row signature")
	}
	return NewWithBase(PlainBase(StandardRow), p.fields...), nil
}

// ambiguousField finishes a field that may or may not start with a name.
func (p *rowParser) ambiguousField(begin, end int) error {
	span, offset := trimSpan(p.input, begin, end)
	split := strings.IndexByte(span, ' ')

	if split >= 0 && !IsMultiWordName(span) && isIdentifier(span[:split]) {
		rest := strings.TrimLeft(span[split+1:], " ")
		typ, err := p.parseType(rest, offset+len(span)-len(rest))
		if err != nil {
			return err
		}
		return p.add(NewNamedField(span[:split], false, typ))
	}

	typ, err := p.parseType(span, offset)
	if err != nil {
		return err
	}
	return p.add(NewAnonymousField(typ))
}

// delimitedField finishes a field whose name was quoted.
func (p *rowParser) delimitedField(name string, begin, end int) error {
	span, offset := trimSpan(p.input, begin, end)
	typ, err := p.parseType(span, offset)
	if err != nil {
		return err
	}
	return p.add(NewNamedField(name, true, typ))
}

func (p *rowParser) parseType(span string, offset int) (*Signature, error) {
	if span == "" {
		return nil, invalidf(p.input, offset, "row field has no type")
	}
	typ, err := parseNested(span, p.literals)
	if err != nil {
		return nil, rebase(err, p.input, offset)
	}
	return typ, nil
}

func (p *rowParser) add(field NamedField) error {
	if name, ok := field.Name(); ok {
		if _, dup := p.seen[name]; dup {
			return &DuplicateFieldError{Field: name}
		}
		p.seen[name] = struct{}{}
	}
	p.fields = append(p.fields, NamedTypeParameter(field))
	return nil
}

// trimSpan trims whitespace from s[begin:end] and returns the result with its
// offset in s.
func trimSpan(s string, begin, end int) (string, int) {
	raw := s[begin:end]
	trimmed := strings.TrimLeftFunc(raw, func(r rune) bool { return r < 0x80 && isSpace(byte(r)) })
	offset := begin + len(raw) - len(trimmed)
	return strings.TrimRightFunc(trimmed, func(r rune) bool { return r < 0x80 && isSpace(byte(r)) }), offset
}
