package parser

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/typesig/internal/cache"
	"github.com/electwix/typesig/internal/logging"
	"github.com/electwix/typesig/signature"
)

func TestNewParser(t *testing.T) {
	tests := []struct {
		name     string
		options  []Option
		literals []string
		cached   bool
	}{
		{name: "default parser"},
		{
			name:     "with literal params",
			options:  []Option{WithLiteralParams("s", "p", "s")},
			literals: []string{"p", "s"},
		},
		{
			name:     "later literal params replace earlier ones",
			options:  []Option{WithLiteralParams("a"), WithLiteralParams("b")},
			literals: []string{"b"},
		},
		{
			name:    "with cache",
			options: []Option{WithCache(cache.NewMemoryCache(), time.Minute)},
			cached:  true,
		},
		{
			name:    "nil cache disables caching",
			options: []Option{WithCache(nil, time.Minute)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.options...)
			if diff := cmp.Diff(tt.literals, p.LiteralParams()); diff != "" {
				t.Errorf("LiteralParams mismatch (-want +got):\n%s", diff)
			}
			if got := p.cache != nil; got != tt.cached {
				t.Errorf("cache set = %v, want %v", got, tt.cached)
			}
			if p.logger == nil {
				t.Error("logger must never be nil")
			}
		})
	}
}

func TestWithNilLogger(t *testing.T) {
	p := NewParser(WithLogger(nil))
	if p.logger == nil {
		t.Fatal("WithLogger(nil) left a nil logger")
	}
	if _, err := p.Parse(context.Background(), "bigint"); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
}

func TestParserParse(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		input   string
		want    string
		wantErr error
	}{
		{name: "scalar", input: "BIGINT", want: "bigint"},
		{name: "unbounded varchar", input: "varchar", want: "varchar"},
		{name: "nested", input: "map(varchar(10), array(double))", want: "map(varchar(10),array(double))"},
		{name: "row", input: `row(a bigint, "b c" double)`, want: `row(a bigint,"b c" double)`},
		{
			name:    "literal params",
			options: []Option{WithLiteralParams("p", "s")},
			input:   "decimal(p,s)",
			want:    "decimal(p,s)",
		},
		{name: "literal without params is a type", input: "decimal(p,s)", want: "decimal(p,s)"},
		{name: "invalid", input: "array(", wantErr: signature.ErrInvalidSignature},
		{name: "duplicate field", input: "row(a bigint, a double)", wantErr: signature.ErrDuplicateField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.options...)
			sig, err := p.Parse(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if got := sig.String(); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParserLiteralParamsChangeMeaning(t *testing.T) {
	ctx := context.Background()

	plain, err := NewParser().Parse(ctx, "decimal(p,s)")
	if err != nil {
		t.Fatal(err)
	}
	literal, err := NewParser(WithLiteralParams("p", "s")).Parse(ctx, "decimal(p,s)")
	if err != nil {
		t.Fatal(err)
	}

	if plain.Calculated() {
		t.Error("decimal(p,s) without literal params should not be calculated")
	}
	if !literal.Calculated() {
		t.Error("decimal(p,s) with literal params should be calculated")
	}
	if plain.Equal(literal) {
		t.Error("type and variable parameters must not compare equal")
	}
}

func TestParserContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewParser()
	_, err := p.Parse(ctx, "bigint")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Parse error = %v, want context.Canceled", err)
	}

	results, err := p.ParseAll(ctx, []string{"bigint", "double"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ParseAll error = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Fatalf("ParseAll returned %d results after cancellation", len(results))
	}
}

func TestParserContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	if _, err := NewParser().Parse(ctx, "bigint"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Parse error = %v, want context.DeadlineExceeded", err)
	}
}

func TestParseAll(t *testing.T) {
	p := NewParser()
	results, err := p.ParseAll(context.Background(), []string{"bigint", "array(", "row(a int)"})
	if err != nil {
		t.Fatalf("ParseAll returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("ParseAll returned %d results, want 3", len(results))
	}

	if results[0].Err != nil || results[0].Signature.String() != "bigint" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if !errors.Is(results[1].Err, signature.ErrInvalidSignature) || results[1].Signature != nil {
		t.Errorf("results[1] = %+v", results[1])
	}
	if results[2].Input != "row(a int)" || results[2].Signature.String() != "row(a integer)" {
		t.Errorf("results[2] = %+v", results[2])
	}
}

func TestParserMemoryCache(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	p := NewParser(WithCache(mc, time.Minute))

	first, err := p.Parse(ctx, "array(bigint)")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Parse(ctx, "array(bigint)")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("expected the cached signature to be returned")
	}
	if got, want := mc.Stats(), (cache.Stats{Hits: 1, Misses: 1}); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestParserCacheSkipsFailures(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	p := NewParser(WithCache(mc, time.Minute))

	for range 2 {
		if _, err := p.Parse(ctx, "row("); err == nil {
			t.Fatal("expected error")
		}
	}
	if mc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", mc.Len())
	}
}

func TestParserCacheKeyIncludesLiterals(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()

	plain := NewParser(WithCache(mc, time.Minute))
	literal := NewParser(WithCache(mc, time.Minute), WithLiteralParams("n"))

	a, err := plain.Parse(ctx, "varchar(n)")
	if err != nil {
		t.Fatal(err)
	}
	b, err := literal.Parse(ctx, "varchar(n)")
	if err != nil {
		t.Fatal(err)
	}

	if a.Calculated() || !b.Calculated() {
		t.Errorf("literal set leaked through the cache: plain=%v literal=%v", a.Calculated(), b.Calculated())
	}
	if mc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", mc.Len())
	}
}

func TestParserCacheKeySeparatesLiteralNames(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()

	joined := NewParser(WithCache(mc, time.Minute), WithLiteralParams("a,b"))
	split := NewParser(WithCache(mc, time.Minute), WithLiteralParams("a", "b"))

	for _, p := range []*Parser{joined, split} {
		if _, err := p.Parse(ctx, "bigint"); err != nil {
			t.Fatal(err)
		}
	}
	if mc.Len() != 2 {
		t.Errorf("Len() = %d, want distinct entries for distinct literal sets", mc.Len())
	}
	if got := mc.Stats().Hits; got != 0 {
		t.Errorf("Stats().Hits = %d, want 0", got)
	}
}

func TestParserFileCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	input := "ROW(a BIGINT, b ARRAY(VARCHAR(3)))"
	first, err := NewParser(WithCache(fc, time.Hour)).Parse(ctx, input)
	if err != nil {
		t.Fatal(err)
	}

	// A fresh parser reads the persisted canonical form back.
	second, err := NewParser(WithCache(fc, time.Hour)).Parse(ctx, input)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("cached signature %q differs from %q", second, first)
	}
}

func TestParserDropsCorruptCacheEntry(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	p := NewParser(WithCache(mc, time.Minute))

	key := p.cacheKey("bigint")
	mc.Set(ctx, key, "array(", time.Minute)

	sig, err := p.Parse(ctx, "bigint")
	if err != nil {
		t.Fatal(err)
	}
	if sig.String() != "bigint" {
		t.Errorf("Parse = %q, want bigint", sig)
	}
	if cached, ok := mc.Get(ctx, key); !ok || cached != sig {
		t.Errorf("expected the corrupt entry to be replaced, got %v", cached)
	}
}

func TestParserLogsCacheEvents(t *testing.T) {
	rec := &recordingLogger{}
	p := NewParser(WithCache(cache.NewMemoryCache(), time.Minute), WithLogger(rec))

	ctx := context.Background()
	_, _ = p.Parse(ctx, "bigint")
	_, _ = p.Parse(ctx, "bigint")
	_, _ = p.Parse(ctx, "array(")

	want := []string{"signature cache miss", "signature cache hit", "signature cache miss", "signature rejected"}
	if diff := cmp.Diff(want, rec.messages); diff != "" {
		t.Errorf("log messages mismatch (-want +got):\n%s", diff)
	}
}

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) Debug(msg string, _ ...any) { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.messages = append(r.messages, msg) }
func (r *recordingLogger) With(_ ...any) logging.Logger {
	return r
}
