package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/electwix/typesig/internal/fileset"
	"github.com/electwix/typesig/internal/logging"
)

func TestLoadSuccess(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeFixture(t, tempDir, "signatures/rows.sig", "row(a bigint)\n")
	writeFixture(t, tempDir, "signatures/scalars.sig", "bigint\n")

	configPath := writeConfig(t, tempDir, `
literal_params = ["s", "p", "p"]
inputs = ["signatures/*.sig"]
format = "yaml"
standard = true

[cache]
enabled = false
max_entries = 16
ttl = "90s"
dir = ".cache"

[log]
verbose = true
format = "json"
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}

	want := Plan{
		LiteralParams: []string{"p", "s"},
		Inputs: []string{
			filepath.Join(tempDir, "signatures", "rows.sig"),
			filepath.Join(tempDir, "signatures", "scalars.sig"),
		},
		Format:   FormatYAML,
		Standard: true,
		Cache: CachePlan{
			Enabled:    false,
			MaxEntries: 16,
			TTL:        90 * time.Second,
			Dir:        filepath.Join(tempDir, ".cache"),
		},
		Log: LogPlan{Verbose: true, Format: logging.FormatJSON},
	}
	if diff := cmp.Diff(want, result.Plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "")

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := DefaultPlan()
	if diff := cmp.Diff(want, result.Plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
	if !want.Cache.Enabled || want.Cache.MaxEntries != DefaultMaxEntries || want.Cache.TTL != DefaultTTL {
		t.Fatalf("unexpected default cache plan: %+v", want.Cache)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{name: "format", contents: `format = "xml"`, wantErr: `unsupported format "xml"`},
		{name: "log format", contents: "[log]\nformat = \"logfmt\"", wantErr: "log.format"},
		{name: "ttl syntax", contents: "[cache]\nttl = \"soon\"", wantErr: "cache.ttl"},
		{name: "ttl negative", contents: "[cache]\nttl = \"-1m\"", wantErr: "cache.ttl must not be negative"},
		{name: "max entries", contents: "[cache]\nmax_entries = -3", wantErr: "cache.max_entries must not be negative"},
		{name: "empty literal", contents: `literal_params = ["p", " "]`, wantErr: "literal_params"},
		{name: "toml syntax", contents: `format = `, wantErr: "typesig.toml"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			configPath := writeConfig(t, t.TempDir(), tc.contents)
			_, err := Load(configPath, LoadOptions{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), DefaultPath), LoadOptions{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadInputsNoMatch(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := writeConfig(t, tempDir, `inputs = ["signatures/*.sig"]`)

	resolver := fileset.NewResolver(fstest.MapFS{
		"other/types.sig": &fstest.MapFile{},
	})

	_, err := Load(configPath, LoadOptions{Resolver: &resolver})
	if err == nil {
		t.Fatal("expected error for unmatched inputs")
	}
	if !strings.Contains(err.Error(), "inputs patterns matched no files: signatures/*.sig") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadInputsInvalidPattern(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), `inputs = ["["]`)
	resolver := fileset.NewResolver(fstest.MapFS{})

	_, err := Load(configPath, LoadOptions{Resolver: &resolver})
	if err == nil || !strings.Contains(err.Error(), `invalid glob pattern "["`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadInputsWithResolver(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), `inputs = ["*.sig"]`)
	resolver := fileset.NewResolver(fstest.MapFS{
		"b.sig": &fstest.MapFile{},
		"a.sig": &fstest.MapFile{},
	})

	result, err := Load(configPath, LoadOptions{Resolver: &resolver})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"a.sig", "b.sig"}, result.Plan.Inputs); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadStrictUnknownKeys(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), `
format = "text"
colour = true

[cache]
size = 3
`)

	_, err := Load(configPath, LoadOptions{Strict: true})
	if err == nil {
		t.Fatal("expected error in strict mode")
	}
	if !strings.Contains(err.Error(), "unknown configuration keys: cache.size, colour") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadNonStrictUnknownKeysWarning(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), `
extra = "value"

[log]
level = "debug"

[plugins]
enabled = true
`)

	result, err := Load(configPath, LoadOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	want := configPath + ": unknown configuration keys: extra, log.level, plugins"
	if result.Warnings[0] != want {
		t.Fatalf("warning = %q, want %q", result.Warnings[0], want)
	}
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{FormatText, FormatJSON, FormatYAML, FormatTable} {
		if err := ValidateFormat(format); err != nil {
			t.Errorf("ValidateFormat(%q) returned error: %v", format, err)
		}
	}
	if err := ValidateFormat("TEXT"); err == nil {
		t.Error("expected format names to be case-sensitive")
	}
}

func writeConfig(tb testing.TB, dir, contents string) string {
	tb.Helper()

	path := filepath.Join(dir, DefaultPath)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		tb.Fatalf("write config: %v", err)
	}
	return path
}

func writeFixture(tb testing.TB, dir, name, contents string) {
	tb.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		tb.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		tb.Fatalf("write fixture file: %v", err)
	}
}
