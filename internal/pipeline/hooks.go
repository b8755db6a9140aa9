package pipeline

import (
	"context"

	"github.com/electwix/typesig/internal/fileset"
	"github.com/electwix/typesig/internal/parser"
	"github.com/electwix/typesig/internal/render"
)

// Hooks provides extension points in the pipeline execution.
// Each hook is called at a specific stage and can modify behavior or perform side effects.
type Hooks struct {
	// BeforeParse is called with every gathered signature line.
	// Return an error to abort the pipeline.
	BeforeParse func(ctx context.Context, lines []fileset.Line) error

	// AfterParse is called with one result per line, failures included.
	// Return an error to abort the pipeline.
	AfterParse func(ctx context.Context, results []parser.Result) error

	// BeforeWrite is called with the records about to be rendered. It is
	// skipped in check mode and when nothing parsed.
	BeforeWrite func(ctx context.Context, records []render.Record) error

	// AfterRun is the final hook, called even if earlier stages failed.
	AfterRun func(ctx context.Context, summary Summary) error
}

// Chain combines two Hooks, calling h's hooks first, then other's hooks.
// If a hook in h returns an error, other's hook is not called.
func (h Hooks) Chain(other Hooks) Hooks {
	return Hooks{
		BeforeParse: chainHook(h.BeforeParse, other.BeforeParse),
		AfterParse:  chainHook(h.AfterParse, other.AfterParse),
		BeforeWrite: chainHook(h.BeforeWrite, other.BeforeWrite),
		AfterRun:    chainHook(h.AfterRun, other.AfterRun),
	}
}

func chainHook[T any](first, second func(context.Context, T) error) func(context.Context, T) error {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return func(ctx context.Context, arg T) error {
		if err := first(ctx, arg); err != nil {
			return err
		}
		return second(ctx, arg)
	}
}

// NoHooks returns a Hooks with all nil functions (no-op).
func NoHooks() Hooks {
	return Hooks{}
}
