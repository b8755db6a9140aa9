package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf})

	logger.Debug("cache miss")
	if got := buf.Len(); got != 0 {
		t.Fatalf("expected debug output to be suppressed, got %d bytes", got)
	}

	logger.Info("parsed signatures", "count", 3)
	if out := buf.String(); !strings.Contains(out, "parsed signatures") || !strings.Contains(out, "count=3") {
		t.Fatalf("expected text record, got %q", out)
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Verbose: true, Writer: &buf})

	logger.Debug("cache miss", "key", "sig:abc")
	if out := buf.String(); !strings.Contains(out, "cache miss") {
		t.Fatalf("expected debug output when verbose, got %q", out)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Format: FormatJSON, Writer: &buf})

	logger.Warn("invalid signature", "input", "array(")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "invalid signature" {
		t.Errorf("msg = %v, want %q", record["msg"], "invalid signature")
	}
	if record["input"] != "array(" {
		t.Errorf("input = %v, want %q", record["input"], "array(")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: " json ", want: FormatJSON},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Debug("debug message", "key", "value")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.With("component", "parser").Info("child message")

	out := buf.String()
	for _, want := range []string{"debug message", "key=value", "info message", "warn message", "error message", "component=parser"} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, want to contain %q", out, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	logger.With("key", "value").Info("child message")
}
