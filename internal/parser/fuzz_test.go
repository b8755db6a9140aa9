package parser

import (
	"context"
	"testing"
	"time"

	"github.com/electwix/typesig/internal/cache"
)

// FuzzParser checks that the high-level parser never panics and that a
// cached parse agrees with a fresh one.
func FuzzParser(f *testing.F) {
	f.Add("bigint")
	f.Add("varchar")
	f.Add("array(map(bigint,varchar(10)))")
	f.Add(`row(a bigint,"b""c" double,array(int))`)
	f.Add(`bigintenum(test.enum.mood{"HAPPY":0,"SAD":1})`)
	f.Add(`varcharenum(test.enum.c{"A":"mfzwizltoq======"})`)
	f.Add("distincttype(a.b.c{bigint, true, null, []})")
	f.Add("cat.sch.t:row(x int)")
	f.Add("function<bigint,double>")
	// Malformed inputs
	f.Add("")
	f.Add("(")
	f.Add("row(")
	f.Add("array(bigint))")
	f.Add(`row("a`)

	f.Fuzz(func(t *testing.T, input string) {
		ctx := context.Background()
		fresh, freshErr := NewParser().Parse(ctx, input)

		p := NewParser(WithCache(cache.NewMemoryCache(), time.Minute))
		_, _ = p.Parse(ctx, input)
		cached, cachedErr := p.Parse(ctx, input)

		if (freshErr == nil) != (cachedErr == nil) {
			t.Fatalf("cache changed the outcome for %q: %v vs %v", input, freshErr, cachedErr)
		}
		if freshErr == nil && !fresh.Equal(cached) {
			t.Fatalf("cache changed the result for %q: %q vs %q", input, fresh, cached)
		}
	})
}

// FuzzParserWithLiterals runs inputs under a literal parameter set.
func FuzzParserWithLiterals(f *testing.F) {
	f.Add("decimal(p,s)", "p")
	f.Add("varchar(x)", "x")
	f.Add("row(a decimal(p,s))", "s")

	f.Fuzz(func(t *testing.T, input, literal string) {
		p := NewParser(WithLiteralParams(literal))
		_, _ = p.Parse(context.Background(), input)
	})
}
