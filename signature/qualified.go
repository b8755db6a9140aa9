package signature

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// QualifiedName is a three-part catalog.schema.object identifier.
type QualifiedName struct {
	Catalog string
	Schema  string
	Object  string
}

// NewQualifiedName returns the lower-cased qualified name for the given parts.
func NewQualifiedName(catalog, schema, object string) QualifiedName {
	return QualifiedName{
		Catalog: foldLower(catalog),
		Schema:  foldLower(schema),
		Object:  foldLower(object),
	}
}

// String returns the dotted form.
func (q QualifiedName) String() string {
	return q.Catalog + "." + q.Schema + "." + q.Object
}

var qualifiedNameLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Part", Pattern: `[^.\s{}\[\](),"<>:]+`},
	{Name: "Dot", Pattern: `\.`},
})

// qualifiedNameGrammar is the participle grammar of a qualified name.
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type qualifiedNameGrammar struct {
	Catalog string `@Part "."`
	Schema  string `@Part "."`
	Object  string `@Part`
}

var qualifiedNameParser = participle.MustBuild[qualifiedNameGrammar](
	participle.Lexer(qualifiedNameLexer),
)

// ParseQualifiedName parses a catalog.schema.object name. Every part must be
// non-empty and free of whitespace, brackets, braces, commas, colons and
// quotes. Parts are lower-cased.
func ParseQualifiedName(s string) (QualifiedName, error) {
	parsed, err := qualifiedNameParser.ParseString("", s)
	if err != nil {
		return QualifiedName{}, fmt.Errorf("invalid qualified name %q: %w", s, err)
	}
	return NewQualifiedName(parsed.Catalog, parsed.Schema, parsed.Object), nil
}
