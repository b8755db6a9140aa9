package signature

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Standard base names recognised by the parser and the classifiers.
const (
	StandardBigint                = "bigint"
	StandardInteger               = "integer"
	StandardVarchar               = "varchar"
	StandardRow                   = "row"
	StandardArray                 = "array"
	StandardMap                   = "map"
	StandardFunction              = "function"
	StandardBigintEnum            = "bigintenum"
	StandardVarcharEnum           = "varcharenum"
	StandardDistinctType          = "distincttype"
	StandardTimeWithTimeZone      = "time with time zone"
	StandardTimestampWithTimeZone = "timestamp with time zone"
	StandardIntervalDayToSecond   = "interval day to second"
	StandardIntervalYearToMonth   = "interval year to month"
	StandardDoublePrecision       = "double precision"
)

// UnboundedLength is the varchar length that denotes an unbounded varchar.
// A varchar carrying it prints without a parameter list.
const UnboundedLength int64 = math.MaxInt32

// baseNameAliases maps folded alias spellings to their canonical base name.
var baseNameAliases = map[string]string{
	"int": StandardInteger,
}

// multiWordNames holds scalar names whose spaces are part of the name.
var multiWordNames = map[string]struct{}{
	StandardTimeWithTimeZone:      {},
	StandardTimestampWithTimeZone: {},
	StandardIntervalDayToSecond:   {},
	StandardIntervalYearToMonth:   {},
	StandardDoublePrecision:       {},
}

// CanonicalBaseName returns the canonical spelling of a raw base token.
// Lookup is case-insensitive; names without an alias pass through unchanged.
func CanonicalBaseName(name string) string {
	if canonical, ok := baseNameAliases[foldLower(name)]; ok {
		return canonical
	}
	return name
}

// IsMultiWordName reports whether name is one of the scalar names that
// contain spaces, compared case-insensitively.
func IsMultiWordName(name string) bool {
	_, ok := multiWordNames[foldLower(name)]
	return ok
}

// foldLower lower-cases s under English rules.
func foldLower(s string) string {
	if isASCII(s) {
		return lowerASCII(s)
	}
	return cases.Lower(language.English).String(s)
}

// foldUpper upper-cases s under English rules.
func foldUpper(s string) string {
	if isASCII(s) {
		return upperASCII(s)
	}
	return cases.Upper(language.English).String(s)
}

// equalFold compares two names case-insensitively under English rules.
func equalFold(a, b string) bool {
	if isASCII(a) && isASCII(b) {
		if len(a) != len(b) {
			return false
		}
		return lowerASCII(a) == lowerASCII(b)
	}
	return foldLower(a) == foldLower(b)
}

// lowerASCII lower-cases ASCII letters only, so byte offsets into the result
// match offsets into s.
func lowerASCII(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func upperASCII(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentifierPart(c byte) bool {
	return isIdentifierStart(c) || isDigit(c) || c == ':' || c == '@'
}

// isIdentifier reports whether s matches [A-Za-z_][A-Za-z0-9_:@]*.
func isIdentifier(s string) bool {
	if s == "" || !isIdentifierStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentifierPart(s[i]) {
			return false
		}
	}
	return true
}
