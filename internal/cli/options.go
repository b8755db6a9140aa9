// Package cli parses the typesig command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Options holds the parsed command line. Flags not given on the command
// line keep their zero value and leave the configured value in place; use
// IsSet to tell an explicit false from an absent flag.
type Options struct {
	ConfigPath        string
	Format            string
	LiteralParams     []string
	Standard          bool
	Check             bool
	StrictConfig      bool
	Verbose           bool
	CacheDir          string
	NoCache           bool
	Out               string
	// DiagnosticsFormat selects how diagnostics reach stderr: text or json.
	DiagnosticsFormat string
	Args              []string

	set map[string]bool
}

// IsSet reports whether the named flag appeared on the command line. The
// short aliases count as their long names.
func (o Options) IsSet(name string) bool {
	return o.set[name]
}

var aliases = map[string]string{
	"c": "config",
	"v": "verbose",
	"o": "out",
}

// Parse parses args, excluding the program name.
func Parse(args []string) (Options, error) {
	const defaultConfig = "typesig.toml"

	opts := Options{
		ConfigPath:        defaultConfig,
		DiagnosticsFormat: "text",
	}

	var literals string

	fs := flag.NewFlagSet("typesig", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", opts.ConfigPath, "Path to configuration file")
	fs.StringVar(&opts.Format, "format", "", "Output format: text, json, yaml or table")
	fs.StringVar(&literals, "literal", "", "Comma-separated parameter names treated as literal variables")
	fs.BoolVar(&opts.Standard, "standard", false, "Print the standard signature instead of the parsed one")
	fs.BoolVar(&opts.Check, "check", false, "Validate only; print nothing for valid signatures")
	fs.BoolVar(&opts.StrictConfig, "strict-config", false, "Treat configuration warnings as errors")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")
	fs.StringVar(&opts.CacheDir, "cache-dir", "", "Persist parsed signatures under this directory")
	fs.BoolVar(&opts.NoCache, "no-cache", false, "Disable the parse cache")
	fs.StringVar(&opts.Out, "out", "", "Write rendered output to this file instead of stdout")
	fs.StringVar(&opts.Out, "o", "", "Write rendered output to this file instead of stdout")
	fs.StringVar(&opts.DiagnosticsFormat, "diagnostics-format", opts.DiagnosticsFormat, "Diagnostics format on stderr: text or json")

	if err := fs.Parse(args); err != nil {
		return Options{}, fmt.Errorf("%w\n\n%s", err, Usage(fs))
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		opts.set[name] = true
	})

	switch opts.DiagnosticsFormat {
	case "text", "json":
	default:
		return Options{}, fmt.Errorf("unsupported diagnostics format %q: want text or json", opts.DiagnosticsFormat)
	}

	if literals != "" {
		for _, name := range strings.Split(literals, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				return Options{}, errors.New("-literal must not contain empty names")
			}
			opts.LiteralParams = append(opts.LiteralParams, name)
		}
	}

	opts.Args = fs.Args()
	return opts, nil
}

// Usage renders the flag set's defaults.
func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
