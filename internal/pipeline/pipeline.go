// Package pipeline orchestrates a typesig run: configuration, parsing,
// diagnostics and rendering.
package pipeline

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/electwix/typesig/internal/cache"
	"github.com/electwix/typesig/internal/config"
	"github.com/electwix/typesig/internal/diagnostics"
	"github.com/electwix/typesig/internal/fileset"
	"github.com/electwix/typesig/internal/logging"
	"github.com/electwix/typesig/internal/parser"
	"github.com/electwix/typesig/internal/render"
)

// StdinPath names standard input in diagnostics.
const StdinPath = "<stdin>"

// ArgsPath names positional arguments in diagnostics.
const ArgsPath = "<args>"

// Environment captures external dependencies used by the pipeline.
type Environment struct {
	FSResolver func(string) (fileset.Resolver, error)
	// Logger is built from the resolved plan when nil.
	Logger *slog.Logger
	Writer Writer
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Writer writes rendered output to persistent storage.
type Writer interface {
	WriteFile(path string, data []byte) error
}

// Pipeline orchestrates configuration loading, parsing and rendering.
type Pipeline struct {
	Env   Environment
	Hooks Hooks
}

// Summary captures what a run parsed and reported.
type Summary struct {
	Plan        config.Plan
	Records     []render.Record
	Diagnostics *diagnostics.Collection
	Parsed      int
	Rejected    int
	// Output is the file written, empty when output went to stdout or
	// nothing was rendered.
	Output string
}

// RunOptions configures a pipeline execution. Zero values defer to the
// configuration file.
type RunOptions struct {
	ConfigPath string
	// ConfigExplicit makes a missing configuration file an error even at
	// the default path.
	ConfigExplicit bool
	StrictConfig   bool
	Format         string
	LiteralParams  []string
	Standard       *bool
	Verbose        bool
	Check          bool
	CacheDir       string
	NoCache        bool
	Out            string
	Args           []string
}

// DiagnosticsError indicates that errors were reported via diagnostics.
type DiagnosticsError struct {
	Diagnostic diagnostics.Diagnostic
	Cause      error
}

func (e *DiagnosticsError) Error() string {
	return e.Diagnostic.Error()
}

func (e *DiagnosticsError) Unwrap() error {
	return e.Cause
}

// InputError wraps failures encountered while reading signature sources.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// WriteError wraps failures encountered while writing rendered output.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewOSWriter returns a Writer that performs atomic writes on the local filesystem.
func NewOSWriter() Writer {
	return &osWriter{perm: 0o644}
}

type osWriter struct {
	perm fs.FileMode
}

func (w *osWriter) WriteFile(path string, data []byte) error {
	if path == "" {
		return errors.New("pipeline: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".typesig-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
		_ = tmp.Close()
	}()
	if w.perm != 0 {
		if err := tmp.Chmod(w.perm); err != nil {
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}

// Run executes the pipeline according to the provided options. Signatures
// that parse are rendered even when others are rejected; the rejection is
// then reported as a *DiagnosticsError carrying the first error.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (summary Summary, err error) {
	diags := diagnostics.NewCollection()
	summary.Diagnostics = diags

	if p.Hooks.AfterRun != nil {
		defer func() {
			if hookErr := p.Hooks.AfterRun(ctx, summary); hookErr != nil && err == nil {
				err = hookErr
			}
		}()
	}

	configPath := cmp.Or(opts.ConfigPath, config.DefaultPath)
	loadResult, err := p.loadConfig(configPath, opts)
	if err != nil {
		d := diagnostics.Error(err.Error()).
			WithCode(diagnostics.CodeConfigError).
			At(configPath, 0, 0).
			Build()
		diags.Add(d)
		return summary, &DiagnosticsError{Diagnostic: d, Cause: err}
	}

	plan, err := applyOverrides(loadResult.Plan, opts)
	if err != nil {
		return summary, err
	}
	summary.Plan = plan

	logger := p.Env.Logger
	if logger == nil {
		logger = logging.New(logging.Options{
			Verbose: plan.Log.Verbose,
			Format:  plan.Log.Format,
			Writer:  p.Env.Stderr,
		})
	}
	for _, warning := range loadResult.Warnings {
		logger.Warn("configuration warning", "warning", warning)
		diags.Add(diagnostics.Warning(warning).
			WithCode(diagnostics.CodeConfigWarning).
			At(configPath, 0, 0).
			Build())
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	parserOpts := []parser.Option{
		parser.WithLiteralParams(plan.LiteralParams...),
		parser.WithLogger(logging.NewSlogAdapter(logger)),
	}
	sigCache, err := buildCache(plan.Cache, logger)
	if err != nil {
		return summary, fmt.Errorf("cache: %w", err)
	}
	if sigCache != nil {
		parserOpts = append(parserOpts, parser.WithCache(sigCache, plan.Cache.TTL))
	}
	sigParser := parser.NewParser(parserOpts...)
	logger.Debug("parser ready", "literal_params", sigParser.LiteralParams())

	lines, err := p.gatherLines(plan, opts.Args)
	if err != nil {
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			diags.Add(diagnostics.Error(inputErr.Err.Error()).
				WithCode(diagnostics.CodeInputError).
				At(inputErr.Path, 0, 0).
				Build())
		}
		return summary, err
	}
	logger.Debug("signatures gathered", "count", len(lines))

	if p.Hooks.BeforeParse != nil {
		if err := p.Hooks.BeforeParse(ctx, lines); err != nil {
			return summary, err
		}
	}

	inputs := make([]string, len(lines))
	for i, line := range lines {
		inputs[i] = line.Text
	}
	results, err := sigParser.ParseAll(ctx, inputs)
	if err != nil {
		return summary, err
	}

	if p.Hooks.AfterParse != nil {
		if err := p.Hooks.AfterParse(ctx, results); err != nil {
			return summary, err
		}
	}

	var firstError *diagnostics.Diagnostic
	records := make([]render.Record, 0, len(results))
	for i, res := range results {
		if res.Err != nil {
			summary.Rejected++
			d := diagnostics.FromError(lines[i].Path, lines[i].Number, res.Err)
			if d.Location.Column > 0 {
				d.Location.Column += lines[i].Indent
			}
			diags.Add(d)
			if firstError == nil {
				firstError = &d
			}
			continue
		}
		summary.Parsed++
		sig := res.Signature
		if plan.Standard {
			sig = sig.StandardSignature()
		}
		records = append(records, render.Record{Input: res.Input, Signature: sig})
	}
	summary.Records = records

	if mc, ok := sigCache.(*cache.MemoryCache); ok {
		stats := mc.Stats()
		logger.Debug("signature cache stats", "hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	}

	if !opts.Check && len(records) > 0 {
		if p.Hooks.BeforeWrite != nil {
			if err := p.Hooks.BeforeWrite(ctx, records); err != nil {
				return summary, err
			}
		}
		output, err := p.writeOutput(plan.Format, opts.Out, records)
		if err != nil {
			return summary, err
		}
		summary.Output = output
	}

	if firstError != nil {
		return summary, &DiagnosticsError{Diagnostic: *firstError}
	}
	return summary, nil
}

func (p *Pipeline) loadConfig(configPath string, opts RunOptions) (config.Result, error) {
	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		return config.Result{}, fmt.Errorf("resolve config path: %w", err)
	}

	if !opts.ConfigExplicit {
		if _, statErr := os.Stat(absConfigPath); errors.Is(statErr, fs.ErrNotExist) {
			return config.Result{Plan: config.DefaultPlan()}, nil
		}
	}

	resolverFn := p.Env.FSResolver
	if resolverFn == nil {
		resolverFn = fileset.NewOSResolver
	}
	resolver, err := resolverFn(filepath.Dir(absConfigPath))
	if err != nil {
		return config.Result{}, fmt.Errorf("resolve filesystem: %w", err)
	}

	return config.Load(absConfigPath, config.LoadOptions{Strict: opts.StrictConfig, Resolver: &resolver})
}

// applyOverrides layers flag values over the loaded plan.
func applyOverrides(plan config.Plan, opts RunOptions) (config.Plan, error) {
	if opts.Format != "" {
		if err := config.ValidateFormat(opts.Format); err != nil {
			return plan, err
		}
		plan.Format = opts.Format
	}
	if opts.LiteralParams != nil {
		plan.LiteralParams = opts.LiteralParams
	}
	if opts.Standard != nil {
		plan.Standard = *opts.Standard
	}
	if opts.Verbose {
		plan.Log.Verbose = true
	}
	if opts.CacheDir != "" {
		plan.Cache.Dir = filepath.Clean(opts.CacheDir)
	}
	if opts.NoCache {
		plan.Cache.Enabled = false
	}
	return plan, nil
}

// buildCache returns the parse cache for plan, or nil when caching is off.
// A file cache is swept of expired and unreadable entries before use.
func buildCache(plan config.CachePlan, logger *slog.Logger) (cache.Cache, error) {
	if !plan.Enabled {
		return nil, nil
	}
	if plan.Dir != "" {
		fc, err := cache.NewFileCache(plan.Dir)
		if err != nil {
			return nil, err
		}
		removed := fc.Cleanup()
		logger.Debug("file cache ready", "dir", fc.Dir(), "removed", removed)
		return fc, nil
	}
	return cache.NewMemoryCache(cache.WithMaxEntries(plan.MaxEntries)), nil
}

// gatherLines collects signatures from args, configured inputs or stdin,
// in that order of preference.
func (p *Pipeline) gatherLines(plan config.Plan, args []string) ([]fileset.Line, error) {
	var lines []fileset.Line
	switch {
	case len(args) > 0:
		for i, arg := range args {
			if arg == "-" {
				stdinLines, err := p.readStdin()
				if err != nil {
					return nil, err
				}
				lines = append(lines, stdinLines...)
				continue
			}
			lines = append(lines, fileset.Line{Path: ArgsPath, Number: i + 1, Text: arg})
		}
	case len(plan.Inputs) > 0:
		for _, path := range plan.Inputs {
			fileLines, err := fileset.ReadFile(path)
			if err != nil {
				return nil, &InputError{Path: path, Err: err}
			}
			lines = append(lines, fileLines...)
		}
	default:
		return p.readStdin()
	}
	return lines, nil
}

func (p *Pipeline) readStdin() ([]fileset.Line, error) {
	stdin := p.Env.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	lines, err := fileset.ReadLines(StdinPath, stdin)
	if err != nil {
		return nil, &InputError{Path: StdinPath, Err: err}
	}
	return lines, nil
}

// writeOutput renders records and sends them to out, or to stdout when out
// is empty. It returns the path written.
func (p *Pipeline) writeOutput(format, out string, records []render.Record) (string, error) {
	var buf bytes.Buffer
	renderer, err := render.New(format, &buf)
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if err := renderer.Write(rec); err != nil {
			return "", fmt.Errorf("render %q: %w", rec.Input, err)
		}
	}
	if err := renderer.Close(); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	if out == "" {
		stdout := p.Env.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return "", &WriteError{Path: "<stdout>", Err: err}
		}
		return "", nil
	}

	writer := p.Env.Writer
	if writer == nil {
		writer = NewOSWriter()
	}
	if err := writer.WriteFile(out, buf.Bytes()); err != nil {
		return "", &WriteError{Path: out, Err: err}
	}
	return out, nil
}
