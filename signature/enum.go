package signature

import (
	"encoding/base32"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// LongEnumEntry is one key and value of a bigint enum.
type LongEnumEntry struct {
	Key   string
	Value int64
}

// VarcharEnumEntry is one key and decoded value of a varchar enum.
type VarcharEnumEntry struct {
	Key   string
	Value string
}

// LongEnumMap is the payload of a bigint enum signature.
type LongEnumMap struct {
	typeName string
	entries  []LongEnumEntry
	index    map[string]int
}

// NewLongEnumMap builds a bigint enum map. Keys are upper-cased and must be
// unique after folding; entries keep the order given.
func NewLongEnumMap(typeName string, entries []LongEnumEntry) (*LongEnumMap, error) {
	m := &LongEnumMap{
		typeName: foldLower(typeName),
		entries:  make([]LongEnumEntry, 0, len(entries)),
		index:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := foldUpper(e.Key)
		if _, dup := m.index[key]; dup {
			return nil, fmt.Errorf("enum %s: duplicate key %q", m.typeName, key)
		}
		m.index[key] = len(m.entries)
		m.entries = append(m.entries, LongEnumEntry{Key: key, Value: e.Value})
	}
	return m, nil
}

// TypeName returns the enum's type name.
func (m *LongEnumMap) TypeName() string { return m.typeName }

// Entries returns the entries in insertion order.
func (m *LongEnumMap) Entries() []LongEnumEntry { return slices.Clone(m.entries) }

// Len returns the number of entries.
func (m *LongEnumMap) Len() int { return len(m.entries) }

// Value looks up key, folding it the same way the constructor does.
func (m *LongEnumMap) Value(key string) (int64, bool) {
	i, ok := m.index[foldUpper(key)]
	if !ok {
		return 0, false
	}
	return m.entries[i].Value, true
}

// Equal reports whether both maps carry the same name and entries in the
// same order.
func (m *LongEnumMap) Equal(other *LongEnumMap) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.typeName == other.typeName && slices.Equal(m.entries, other.entries)
}

// String returns the payload text, typeName{"K":v,...}.
func (m *LongEnumMap) String() string {
	var b strings.Builder
	m.writeTo(&b)
	return b.String()
}

func (m *LongEnumMap) writeTo(b *strings.Builder) {
	b.WriteString(m.typeName)
	b.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		writeQuoted(b, e.Key)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(e.Value, 10))
	}
	b.WriteByte('}')
}

// VarcharEnumMap is the payload of a varchar enum signature. Values are held
// decoded and re-encoded as base32 when printed.
type VarcharEnumMap struct {
	typeName string
	entries  []VarcharEnumEntry
	index    map[string]int
}

// NewVarcharEnumMap builds a varchar enum map with the same key rules as
// NewLongEnumMap.
func NewVarcharEnumMap(typeName string, entries []VarcharEnumEntry) (*VarcharEnumMap, error) {
	m := &VarcharEnumMap{
		typeName: foldLower(typeName),
		entries:  make([]VarcharEnumEntry, 0, len(entries)),
		index:    make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := foldUpper(e.Key)
		if _, dup := m.index[key]; dup {
			return nil, fmt.Errorf("enum %s: duplicate key %q", m.typeName, key)
		}
		m.index[key] = len(m.entries)
		m.entries = append(m.entries, VarcharEnumEntry{Key: key, Value: e.Value})
	}
	return m, nil
}

// TypeName returns the enum's type name.
func (m *VarcharEnumMap) TypeName() string { return m.typeName }

// Entries returns the entries in insertion order.
func (m *VarcharEnumMap) Entries() []VarcharEnumEntry { return slices.Clone(m.entries) }

// Len returns the number of entries.
func (m *VarcharEnumMap) Len() int { return len(m.entries) }

// Value looks up the decoded value of key.
func (m *VarcharEnumMap) Value(key string) (string, bool) {
	i, ok := m.index[foldUpper(key)]
	if !ok {
		return "", false
	}
	return m.entries[i].Value, true
}

// Equal reports whether both maps carry the same name and entries in the
// same order.
func (m *VarcharEnumMap) Equal(other *VarcharEnumMap) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.typeName == other.typeName && slices.Equal(m.entries, other.entries)
}

// String returns the payload text with base32-encoded values.
func (m *VarcharEnumMap) String() string {
	var b strings.Builder
	m.writeTo(&b)
	return b.String()
}

func (m *VarcharEnumMap) writeTo(b *strings.Builder) {
	b.WriteString(m.typeName)
	b.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			b.WriteByte(',')
		}
		writeQuoted(b, e.Key)
		b.WriteByte(':')
		b.WriteByte('"')
		b.WriteString(lowerASCII(base32.StdEncoding.EncodeToString([]byte(e.Value))))
		b.WriteByte('"')
	}
	b.WriteByte('}')
}

type enumState int

const (
	expectKey enumState = iota
	inKey
	inKeyEscape
	expectColon
	expectValue
	inNumValue
	inStrValue
	inStrValueEscape
	expectCommaOrClosingBracket
)

// enumMapParse is the result of scanning one enum payload.
type enumMapParse struct {
	long    *LongEnumMap
	varchar *VarcharEnumMap
	// end is the index of the closing '}'.
	end int
}

func (p *enumMapParse) parameter() Parameter {
	if p.long != nil {
		return LongEnumParameter(p.long)
	}
	return VarcharEnumParameter(p.varchar)
}

// parseEnumMap scans the enum payload that starts at start, the byte after
// the '(' of bigintenum( or varcharenum(. lower is the ASCII-lowered copy
// of input and shares its indices.
func parseEnumMap(input, lower string, start int) (*enumMapParse, error) {
	isLong := strings.HasSuffix(lower[:start], StandardBigintEnum+"(")

	open := strings.IndexByte(lower[start:], '{')
	if open < 0 {
		return nil, invalidf(input, start, "enum payload has no opening '{'")
	}
	open += start
	typeName := lower[start:open]
	if typeName == "" {
		return nil, invalidf(input, start, "enum has an empty type name")
	}
	if i := strings.IndexAny(typeName, " \t\r\n(),<>\"}[]:"); i >= 0 {
		return nil, invalidf(input, start+i, "unexpected %q in enum type name", typeName[i])
	}

	var (
		state   = expectKey
		key     strings.Builder
		value   strings.Builder
		longs   []LongEnumEntry
		strs    []VarcharEnumEntry
		pending string
	)

	commit := func(at int) error {
		if isLong {
			v, err := strconv.ParseInt(value.String(), 10, 64)
			if err != nil {
				return invalidf(input, at, "enum value %q is not a bigint", value.String())
			}
			longs = append(longs, LongEnumEntry{Key: pending, Value: v})
		} else {
			decoded, err := base32.StdEncoding.DecodeString(upperASCII(value.String()))
			if err != nil {
				return invalidf(input, at, "enum value %q is not base32", value.String())
			}
			strs = append(strs, VarcharEnumEntry{Key: pending, Value: string(decoded)})
		}
		value.Reset()
		return nil
	}

	finish := func(end int) (*enumMapParse, error) {
		if isLong {
			m, err := NewLongEnumMap(typeName, longs)
			if err != nil {
				return nil, invalidf(input, end, "%v", err)
			}
			return &enumMapParse{long: m, end: end}, nil
		}
		m, err := NewVarcharEnumMap(typeName, strs)
		if err != nil {
			return nil, invalidf(input, end, "%v", err)
		}
		return &enumMapParse{varchar: m, end: end}, nil
	}

	for i := open + 1; i < len(lower); i++ {
		c := lower[i]
		switch state {
		case expectKey:
			switch {
			case c == '"':
				state = inKey
			case isSpace(c):
			default:
				return nil, invalidf(input, i, "expected enum key, found %q", c)
			}
		case inKey:
			if c == '"' {
				if i+1 < len(lower) && lower[i+1] == '"' {
					state = inKeyEscape
					continue
				}
				state = expectColon
				continue
			}
			key.WriteByte(c)
		case inKeyEscape:
			key.WriteByte(c)
			state = inKey
		case expectColon:
			switch {
			case c == ':':
				pending = key.String()
				key.Reset()
				state = expectValue
			case isSpace(c):
			default:
				return nil, invalidf(input, i, "expected ':' after enum key, found %q", c)
			}
		case expectValue:
			switch {
			case c == '"' && !isLong:
				state = inStrValue
			case (isDigit(c) || c == '-') && isLong:
				value.WriteByte(c)
				state = inNumValue
			case isSpace(c):
			default:
				return nil, invalidf(input, i, "unexpected %q as enum value", c)
			}
		case inNumValue:
			switch {
			case isDigit(c):
				value.WriteByte(c)
			case c == ',':
				if err := commit(i); err != nil {
					return nil, err
				}
				state = expectKey
			case c == '}':
				if err := commit(i); err != nil {
					return nil, err
				}
				return finish(i)
			case isSpace(c):
				state = expectCommaOrClosingBracket
			default:
				return nil, invalidf(input, i, "unexpected %q in enum value", c)
			}
		case inStrValue:
			if c == '"' {
				if i+1 < len(lower) && lower[i+1] == '"' {
					state = inStrValueEscape
					continue
				}
				state = expectCommaOrClosingBracket
				continue
			}
			value.WriteByte(c)
		case inStrValueEscape:
			value.WriteByte(c)
			state = inStrValue
		case expectCommaOrClosingBracket:
			switch {
			case c == ',':
				if err := commit(i); err != nil {
					return nil, err
				}
				state = expectKey
			case c == '}':
				if err := commit(i); err != nil {
					return nil, err
				}
				return finish(i)
			case isSpace(c):
			default:
				return nil, invalidf(input, i, "expected ',' or '}' in enum, found %q", c)
			}
		}
	}
	return nil, invalidf(input, len(input), "unterminated enum payload")
}
