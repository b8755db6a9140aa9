// Package fileset expands the input globs named by configuration into the
// signature files the CLI reads.
package fileset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Resolver expands glob patterns against an fs.FS. Matches are rewritten by
// a join function so that callers receive paths they can open directly.
type Resolver struct {
	fsys fs.FS
	join func(name string) string
}

// ErrNoPatterns is returned when Resolve is called without patterns.
var ErrNoPatterns = errors.New("fileset: no patterns provided")

// PatternError reports a malformed glob.
type PatternError struct {
	Pattern string
	Err     error
}

func (e PatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Err)
}

func (e PatternError) Unwrap() error { return e.Err }

// NoMatchError lists the patterns that matched nothing.
type NoMatchError struct {
	Patterns []string
}

func (e NoMatchError) Error() string {
	return "patterns matched no files: " + strings.Join(e.Patterns, ", ")
}

// NewResolver returns a Resolver over fsys that reports match names as-is.
func NewResolver(fsys fs.FS) Resolver {
	return Resolver{fsys: fsys, join: identity}
}

// NewOSResolver returns a Resolver rooted at base that reports absolute OS
// paths.
func NewOSResolver(base string) (Resolver, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return Resolver{}, fmt.Errorf("resolve base %q: %w", base, err)
	}

	info, err := os.Stat(absBase)
	if err != nil {
		return Resolver{}, fmt.Errorf("stat base %q: %w", absBase, err)
	}
	if !info.IsDir() {
		return Resolver{}, fmt.Errorf("base %q is not a directory", absBase)
	}

	return Resolver{
		fsys: os.DirFS(absBase),
		join: func(name string) string {
			return filepath.Join(absBase, filepath.FromSlash(name))
		},
	}, nil
}

func identity(name string) string { return name }

// Resolve expands every pattern and returns the sorted, de-duplicated set of
// matches. All patterns that matched nothing are reported together.
func (r Resolver) Resolve(patterns []string) ([]string, error) {
	if r.fsys == nil {
		return nil, errors.New("fileset: resolver has no filesystem")
	}
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}

	join := r.join
	if join == nil {
		join = identity
	}

	var (
		paths   []string
		missing []string
	)
	for _, pattern := range patterns {
		matches, err := fs.Glob(r.fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, PatternError{Pattern: pattern, Err: err}
		}
		if len(matches) == 0 {
			missing = append(missing, pattern)
			continue
		}
		for _, match := range matches {
			paths = append(paths, join(match))
		}
	}

	if len(missing) > 0 {
		return nil, NoMatchError{Patterns: missing}
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}
