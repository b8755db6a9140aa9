// Package parser provides a high-level type signature parser with
// functional options.
package parser

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/electwix/typesig/internal/cache"
	"github.com/electwix/typesig/internal/logging"
	"github.com/electwix/typesig/signature"
)

// Option configures a Parser using the functional options pattern.
type Option func(*Parser)

// Parser parses type signatures with a fixed literal parameter set,
// optionally memoising results in a cache.
type Parser struct {
	literalNames []string
	literals     signature.LiteralSet
	cache        cache.Cache
	ttl          time.Duration
	logger       logging.Logger
}

// Result is the outcome of parsing one input in ParseAll.
type Result struct {
	Input     string
	Signature *signature.Signature
	Err       error
}

// NewParser creates a new Parser with the provided functional options.
func NewParser(options ...Option) *Parser {
	p := &Parser{
		logger: logging.NewNopLogger(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// WithLiteralParams sets the parameter names parsed as literal variables.
// Later calls replace earlier ones.
func WithLiteralParams(names ...string) Option {
	return func(p *Parser) {
		sorted := slices.Clone(names)
		slices.Sort(sorted)
		p.literalNames = slices.Compact(sorted)
		p.literals = signature.NewLiteralSet(p.literalNames...)
	}
}

// WithCache memoises successful parses in c for ttl. A nil cache disables
// caching.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(p *Parser) {
		p.cache = c
		p.ttl = ttl
	}
}

// WithLogger sets the logger used for cache and failure events.
func WithLogger(logger logging.Logger) Option {
	return func(p *Parser) {
		if logger == nil {
			logger = logging.NewNopLogger()
		}
		p.logger = logger
	}
}

// LiteralParams returns the sorted literal parameter names.
func (p *Parser) LiteralParams() []string {
	return slices.Clone(p.literalNames)
}

// Parse parses input. Signature errors are returned unwrapped so callers
// can match them with errors.As.
func (p *Parser) Parse(ctx context.Context, input string) (*signature.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	var key string
	if p.cache != nil {
		key = p.cacheKey(input)
		if sig, ok := p.lookup(ctx, key); ok {
			p.logger.Debug("signature cache hit", "input", input)
			return sig, nil
		}
		p.logger.Debug("signature cache miss", "input", input)
	}

	sig, err := signature.ParseWithLiterals(input, p.literals)
	if err != nil {
		p.logger.Debug("signature rejected", "input", input, "error", err)
		return nil, err
	}

	if p.cache != nil {
		p.cache.Set(ctx, key, sig, p.ttl)
	}
	return sig, nil
}

// ParseAll parses every input, recording per-input failures in the results.
// It stops with the context error once ctx is done.
func (p *Parser) ParseAll(ctx context.Context, inputs []string) ([]Result, error) {
	results := make([]Result, 0, len(inputs))
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("parse cancelled: %w", err)
		}
		sig, err := p.Parse(ctx, input)
		results = append(results, Result{Input: input, Signature: sig, Err: err})
	}
	return results, nil
}

// lookup reads a cached signature. Persistent caches hand back the
// canonical string, which is parsed again; a stale or foreign entry is
// dropped.
func (p *Parser) lookup(ctx context.Context, key string) (*signature.Signature, bool) {
	value, ok := p.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	switch v := value.(type) {
	case *signature.Signature:
		return v, true
	case string:
		sig, err := signature.ParseWithLiterals(v, p.literals)
		if err == nil {
			return sig, true
		}
	}
	p.cache.Delete(ctx, key)
	return nil, false
}

func (p *Parser) cacheKey(input string) string {
	var b strings.Builder
	b.WriteString(input)
	b.WriteByte(0)
	b.WriteString(strings.Join(p.literalNames, "\x00"))
	return cache.ComputeKeyWithPrefix("sig", []byte(b.String()))
}
