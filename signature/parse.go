package signature

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	enumMapPrefix      = regexp.MustCompile(`(varchar|bigint)enum\(`)
	distinctTypePrefix = regexp.MustCompile(`distincttype\(`)
)

// LiteralSet holds identifiers that parse as VARIABLE parameters instead of
// nested signatures. The zero value is empty.
type LiteralSet map[string]struct{}

// NewLiteralSet returns a set containing names.
func NewLiteralSet(names ...string) LiteralSet {
	if len(names) == 0 {
		return nil
	}
	set := make(LiteralSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Contains reports whether name is in the set.
func (l LiteralSet) Contains(name string) bool {
	_, ok := l[name]
	return ok
}

// Parse parses s. Identifiers listed in literalParams are accepted as
// symbolic parameters, as in decimal(p,s).
//
// Errors match ErrInvalidSignature or ErrDuplicateField.
func Parse(s string, literalParams ...string) (*Signature, error) {
	return parseSignature(s, NewLiteralSet(literalParams...))
}

// ParseWithLiterals is Parse with a prepared literal set.
func ParseWithLiterals(s string, literals LiteralSet) (*Signature, error) {
	return parseSignature(s, literals)
}

// MustParse is like Parse but panics on error. It is meant for signatures
// that are known to be valid, such as package-level variables and tests.
func MustParse(s string, literalParams ...string) *Signature {
	sig, err := Parse(s, literalParams...)
	if err != nil {
		panic(err)
	}
	return sig
}

func parseSignature(s string, literals LiteralSet) (*Signature, error) {
	return parseSignatureAt(s, literals, false)
}

// parseNested parses a signature that sits inside another one's parameter
// list, where legacy angle brackets are accepted.
func parseNested(s string, literals LiteralSet) (*Signature, error) {
	return parseSignatureAt(s, literals, true)
}

func parseSignatureAt(s string, literals LiteralSet, nested bool) (*Signature, error) {
	if strings.TrimSpace(s) == "" {
		return nil, invalidf(s, 0, "empty signature")
	}

	bracket := strings.IndexAny(s, "(<")
	colon := strings.IndexByte(s, ':')

	if bracket < 0 && colon < 0 {
		return parseNonParametric(s, literals)
	}
	if colon >= 0 && (bracket < 0 || colon < bracket) {
		return parseUserDefined(s, colon, bracket, nested)
	}
	if s[bracket] == '<' && !nested {
		return nil, invalidf(s, bracket, "angle brackets are only accepted inside a parameter list")
	}

	lower := lowerASCII(s)
	if strings.HasPrefix(lower, StandardRow+"(") {
		return parseRow(s, literals)
	}
	return parseParametric(s, lower, literals)
}

func parseNonParametric(s string, literals LiteralSet) (*Signature, error) {
	if equalFold(s, StandardVarchar) {
		return NewUnboundedVarchar(), nil
	}
	if literals.Contains(s) {
		return nil, invalidf(s, 0, "%q is a literal parameter, not a type", s)
	}
	base, err := parseBaseName(s, s)
	if err != nil {
		return nil, err
	}
	return NewWithBase(base), nil
}

// parseUserDefined handles catalog.schema.type and catalog.schema.type:base
// forms, with the underlying base optionally parameterised.
func parseUserDefined(s string, colon, bracket int, nested bool) (*Signature, error) {
	if colon == 0 {
		return nil, invalidf(s, 0, "missing type name before ':'")
	}
	if bracket < 0 {
		base, err := parseBaseName(s, s)
		if err != nil {
			return nil, err
		}
		return NewWithBase(base), nil
	}

	inner, err := parseSignatureAt(s[colon+1:], nil, nested)
	if err != nil {
		return nil, rebase(err, s, colon+1)
	}
	base, err := parseBaseName(s, s[:bracket])
	if err != nil {
		return nil, err
	}
	return NewWithBase(base, inner.parameters...), nil
}

// scanner walks a generic parametric signature. Enum and distinct-type
// payloads are located up front and skipped by the main pass, since they
// carry characters that would otherwise end a parameter.
type scanner struct {
	input    string
	lower    string
	literals LiteralSet

	enumStarts     map[int]bool
	distinctStarts map[int]bool
	enums          map[int]*enumMapParse
	distincts      map[int]*distinctTypeParse
}

func parseParametric(s, lower string, literals LiteralSet) (*Signature, error) {
	sc := &scanner{
		input:          s,
		lower:          lower,
		literals:       literals,
		enumStarts:     matchEnds(enumMapPrefix, lower),
		distinctStarts: matchEnds(distinctTypePrefix, lower),
	}
	return sc.scan()
}

func matchEnds(re *regexp.Regexp, s string) map[int]bool {
	matches := re.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return nil
	}
	ends := make(map[int]bool, len(matches))
	for _, m := range matches {
		ends[m[1]] = true
	}
	return ends
}

func (sc *scanner) scan() (*Signature, error) {
	s := sc.input
	var (
		base       BaseName
		params     []Parameter
		paramStart = -1
		openers    []byte
		skipUntil  int
		quoted     bool
	)

	for i := 0; i < len(s); i++ {
		if i < skipUntil {
			continue
		}
		c := s[i]

		if quoted {
			if c == '"' {
				quoted = false
			}
			continue
		}

		switch {
		case c == '"':
			if len(openers) == 0 {
				return nil, invalidf(s, i, "unexpected '\"' outside a parameter list")
			}
			quoted = true

		case c == '(' || c == '<':
			if len(openers) == 0 {
				b, err := parseBaseName(s, s[:i])
				if err != nil {
					return nil, err
				}
				if head := strings.TrimSpace(s[:i]); sc.literals.Contains(head) {
					return nil, invalidf(s, 0, "%q is a literal parameter, not a type", head)
				}
				base = b
				paramStart = i + 1
			}
			openers = append(openers, c)

		case c == ')' || c == '>':
			if len(openers) == 0 {
				return nil, invalidf(s, i, "unmatched %q", c)
			}
			if closerFor(openers[len(openers)-1]) != c {
				return nil, invalidf(s, i, "mismatched %q", c)
			}
			openers = openers[:len(openers)-1]
			if len(openers) > 0 {
				continue
			}
			p, err := sc.parameter(paramStart, i)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
			if i != len(s)-1 {
				return nil, invalidf(s, i+1, "unexpected text after the parameter list")
			}
			return sc.build(base, params), nil

		case sc.enumStarts[i]:
			parsed, err := parseEnumMap(s, sc.lower, i)
			if err != nil {
				return nil, err
			}
			if sc.enums == nil {
				sc.enums = make(map[int]*enumMapParse)
			}
			sc.enums[i] = parsed
			skipUntil = parsed.end

		case sc.distinctStarts[i]:
			parsed, err := parseDistinctType(s, sc.lower, i)
			if err != nil {
				return nil, err
			}
			if sc.distincts == nil {
				sc.distincts = make(map[int]*distinctTypeParse)
			}
			sc.distincts[i] = parsed
			skipUntil = parsed.end

		case c == ',' && len(openers) == 1:
			p, err := sc.parameter(paramStart, i)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
			paramStart = i + 1
		}
	}

	return nil, invalidf(s, len(s), "unterminated parameter list")
}

func closerFor(opener byte) byte {
	if opener == '<' {
		return '>'
	}
	return ')'
}

func (sc *scanner) build(base BaseName, params []Parameter) *Signature {
	if base.kind == BasePlain && base.standard == StandardDistinctType && len(params) == 1 {
		if info, ok := params[0].DistinctTypeInfo(); ok {
			return NewDistinctType(info)
		}
	}
	return NewWithBase(base, params...)
}

// parameter classifies the span [begin, end) of the input.
func (sc *scanner) parameter(begin, end int) (Parameter, error) {
	s := sc.input
	raw := s[begin:end]
	name := strings.TrimSpace(raw)
	if name == "" {
		return Parameter{}, invalidf(s, begin, "empty parameter")
	}
	offset := begin + strings.Index(raw, name)

	switch {
	case isDigit(name[0]):
		v, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return Parameter{}, invalidf(s, offset, "parameter %q is not a bigint literal", name)
		}
		return LongLiteralParameter(v), nil

	case sc.literals.Contains(name):
		return VariableParameter(name), nil

	case sc.enums[begin] != nil:
		if !strings.HasSuffix(name, "}") {
			return Parameter{}, invalidf(s, end, "enum payload must end with '}'")
		}
		return sc.enums[begin].parameter(), nil

	case sc.distincts[begin] != nil:
		if !strings.HasSuffix(name, "}") {
			return Parameter{}, invalidf(s, end, "distinct type payload must end with '}'")
		}
		return DistinctTypeParameter(sc.distincts[begin].info), nil
	}

	nested, err := parseNested(name, sc.literals)
	if err != nil {
		return Parameter{}, rebase(err, s, offset)
	}
	return TypeParameter(nested), nil
}
