// Package config loads and validates the typesig configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/electwix/typesig/internal/fileset"
	"github.com/electwix/typesig/internal/logging"
)

// DefaultPath is the configuration file looked up when none is named.
const DefaultPath = "typesig.toml"

// Output formats accepted by the format key and the -format flag.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

var validFormats = []string{FormatText, FormatJSON, FormatYAML, FormatTable}

// Defaults applied when a key is absent.
const (
	DefaultMaxEntries = 4096
	DefaultTTL        = 10 * time.Minute
)

// CacheConfig mirrors the [cache] table.
type CacheConfig struct {
	Enabled    *bool  `toml:"enabled"`
	MaxEntries *int   `toml:"max_entries"`
	TTL        string `toml:"ttl"`
	Dir        string `toml:"dir"`
}

// LogConfig mirrors the [log] table.
type LogConfig struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"`
}

// Config mirrors the typesig TOML schema.
type Config struct {
	LiteralParams []string    `toml:"literal_params"`
	Inputs        []string    `toml:"inputs"`
	Format        string      `toml:"format"`
	Standard      bool        `toml:"standard"`
	Cache         CacheConfig `toml:"cache"`
	Log           LogConfig   `toml:"log"`
}

// CachePlan is the normalised cache configuration. Dir is empty when no
// persistent cache is wanted.
type CachePlan struct {
	Enabled    bool
	MaxEntries int
	TTL        time.Duration
	Dir        string
}

// LogPlan is the normalised logging configuration.
type LogPlan struct {
	Verbose bool
	Format  logging.Format
}

// Plan is the fully-resolved configuration used by the CLI.
type Plan struct {
	LiteralParams []string
	Inputs        []string
	Format        string
	Standard      bool
	Cache         CachePlan
	Log           LogPlan
}

// DefaultPlan returns the plan used when no configuration file exists.
func DefaultPlan() Plan {
	return Plan{
		Format: FormatText,
		Cache: CachePlan{
			Enabled:    true,
			MaxEntries: DefaultMaxEntries,
			TTL:        DefaultTTL,
		},
		Log: LogPlan{Format: logging.FormatText},
	}
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	Strict   bool
	Resolver *fileset.Resolver
}

// Result wraps a loaded plan alongside any non-fatal warnings.
type Result struct {
	Plan     Plan
	Warnings []string
}

// Load reads, validates and resolves a typesig configuration file. Input
// patterns and the cache directory are relative to the file's directory.
func Load(path string, opts LoadOptions) (Result, error) {
	var res Result

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	unknown, err := collectUnknownKeys(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if len(unknown) > 0 {
		message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknown, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	plan := DefaultPlan()
	baseDir := filepath.Dir(path)

	plan.LiteralParams, err = normalizeLiterals(cfg.LiteralParams)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Format != "" {
		if err := ValidateFormat(cfg.Format); err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
		plan.Format = cfg.Format
	}
	plan.Standard = cfg.Standard

	plan.Cache, err = resolveCache(baseDir, cfg.Cache)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	plan.Log.Verbose = cfg.Log.Verbose
	if cfg.Log.Format != "" {
		plan.Log.Format, err = logging.ParseFormat(cfg.Log.Format)
		if err != nil {
			return res, fmt.Errorf("%s: log.format: %w", path, err)
		}
	}

	if len(cfg.Inputs) > 0 {
		var resolver fileset.Resolver
		if opts.Resolver != nil {
			resolver = *opts.Resolver
		} else {
			resolver, err = fileset.NewOSResolver(baseDir)
			if err != nil {
				return res, fmt.Errorf("%s: %w", path, err)
			}
		}
		plan.Inputs, err = resolvePatterns(resolver, "inputs", cfg.Inputs)
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}

	res.Plan = plan
	return res, nil
}

// ValidateFormat reports whether format names a supported output format.
func ValidateFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(validFormats, ", "))
	}
	return nil
}

// knownKeys lists the accepted keys per table; "" is the top level.
var knownKeys = map[string][]string{
	"":      {"literal_params", "inputs", "format", "standard", "cache", "log"},
	"cache": {"enabled", "max_entries", "ttl", "dir"},
	"log":   {"verbose", "format"},
}

// collectUnknownKeys returns the sorted dotted names of keys outside the
// schema.
func collectUnknownKeys(data []byte) ([]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	unknown := make([]string, 0)
	for key, value := range raw {
		if !slices.Contains(knownKeys[""], key) {
			unknown = append(unknown, key)
			continue
		}
		table, ok := value.(map[string]any)
		if !ok {
			continue
		}
		for nested := range table {
			if !slices.Contains(knownKeys[key], nested) {
				unknown = append(unknown, key+"."+nested)
			}
		}
	}
	slices.Sort(unknown)
	return unknown, nil
}

func normalizeLiterals(params []string) ([]string, error) {
	if len(params) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(params))
	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, errors.New("literal_params must not contain empty names")
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func resolveCache(baseDir string, cfg CacheConfig) (CachePlan, error) {
	plan := DefaultPlan().Cache
	if cfg.Enabled != nil {
		plan.Enabled = *cfg.Enabled
	}
	if cfg.MaxEntries != nil {
		if *cfg.MaxEntries < 0 {
			return plan, fmt.Errorf("cache.max_entries must not be negative, got %d", *cfg.MaxEntries)
		}
		plan.MaxEntries = *cfg.MaxEntries
	}
	if cfg.TTL != "" {
		ttl, err := time.ParseDuration(cfg.TTL)
		if err != nil {
			return plan, fmt.Errorf("cache.ttl: %w", err)
		}
		if ttl < 0 {
			return plan, fmt.Errorf("cache.ttl must not be negative, got %s", cfg.TTL)
		}
		plan.TTL = ttl
	}
	if cfg.Dir != "" {
		plan.Dir = cfg.Dir
		if !filepath.IsAbs(plan.Dir) {
			plan.Dir = filepath.Join(baseDir, filepath.Clean(plan.Dir))
		}
	}
	return plan, nil
}

func resolvePatterns(resolver fileset.Resolver, field string, patterns []string) ([]string, error) {
	paths, err := resolver.Resolve(patterns)
	if err == nil {
		return paths, nil
	}

	var (
		noMatchErr fileset.NoMatchError
		patternErr fileset.PatternError
	)
	switch {
	case errors.Is(err, fileset.ErrNoPatterns):
		return nil, fmt.Errorf("%s must include at least one pattern", field)
	case errors.As(err, &noMatchErr):
		return nil, fmt.Errorf("%s patterns matched no files: %s", field, strings.Join(noMatchErr.Patterns, ", "))
	case errors.As(err, &patternErr):
		return nil, fmt.Errorf("%s: invalid glob pattern %q: %w", field, patternErr.Pattern, patternErr.Err)
	default:
		return nil, fmt.Errorf("%s: %w", field, err)
	}
}
