// Package main implements the typesig CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/electwix/typesig/internal/cli"
	"github.com/electwix/typesig/internal/diagnostics"
	"github.com/electwix/typesig/internal/fileset"
	"github.com/electwix/typesig/internal/pipeline"
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	env := pipeline.Environment{
		FSResolver: fileset.NewOSResolver,
		Writer:     pipeline.NewOSWriter(),
		Stdin:      stdin,
		Stdout:     stdout,
		Stderr:     stderr,
	}

	runOpts := pipeline.RunOptions{
		ConfigPath:     opts.ConfigPath,
		ConfigExplicit: opts.IsSet("config"),
		StrictConfig:   opts.StrictConfig,
		Format:         opts.Format,
		LiteralParams:  opts.LiteralParams,
		Verbose:        opts.Verbose,
		Check:          opts.Check,
		CacheDir:       opts.CacheDir,
		NoCache:        opts.NoCache,
		Out:            opts.Out,
		Args:           opts.Args,
	}
	if opts.IsSet("standard") {
		runOpts.Standard = &opts.Standard
	}

	pipe := pipeline.Pipeline{Env: env}
	summary, runErr := pipe.Run(ctx, runOpts)

	if err := printDiagnostics(stderr, summary.Diagnostics, opts); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	if runErr != nil {
		var (
			diagErr  *pipeline.DiagnosticsError
			inputErr *pipeline.InputError
			writeErr *pipeline.WriteError
		)
		if !errors.As(runErr, &diagErr) && !errors.As(runErr, &inputErr) {
			_, _ = fmt.Fprintln(stderr, runErr.Error())
		}
		if errors.As(runErr, &inputErr) || errors.As(runErr, &writeErr) {
			return 2
		}
		return 1
	}
	return 0
}

func printDiagnostics(w io.Writer, diags *diagnostics.Collection, opts cli.Options) error {
	if diags == nil || diags.Len() == 0 {
		return nil
	}
	if opts.DiagnosticsFormat == "json" {
		out, err := (&diagnostics.JSONFormatter{Indent: opts.Verbose}).FormatCollection(diags)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}
	formatter := diagnostics.NewFormatter()
	formatter.ShowCodeDescription = opts.Verbose
	_ = formatter.WriteAll(w, diags)
	formatter.PrintSummary(w, diags)
	return nil
}
