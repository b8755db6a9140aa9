package diagnostics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func sampleDiagnostic() Diagnostic {
	return Error("bad type signature: unbalanced brackets").
		WithCode(CodeInvalidSignature).
		At("types.sig", 2, 5).
		WithContext("row(\n    ^").
		WithNote("check the closing bracket").
		Build()
}

func TestFormatterFormat(t *testing.T) {
	got := NewFormatter().Format(sampleDiagnostic())
	want := strings.Join([]string{
		"types.sig:2:5: error: bad type signature: unbalanced brackets [S001]",
		"  | row(",
		"  |     ^",
		"  note: check the closing bracket",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatterHidesSections(t *testing.T) {
	f := &Formatter{}
	got := f.Format(sampleDiagnostic())
	want := "types.sig:2:5: error: bad type signature: unbalanced brackets\n"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestVerboseFormatterColorizes(t *testing.T) {
	got := NewVerboseFormatter().Format(sampleDiagnostic())
	if !strings.Contains(got, colorRed+"error"+colorReset) {
		t.Errorf("expected colored severity in %q", got)
	}
	if !strings.Contains(got, "(Malformed type signature)") {
		t.Errorf("expected code description in %q", got)
	}
}

func TestFormatterWriteAllAndSummary(t *testing.T) {
	c := NewCollection()
	c.Add(sampleDiagnostic())
	c.Add(Warning("unknown configuration keys: extra").WithCode(CodeConfigWarning).Build())

	var buf bytes.Buffer
	f := &Formatter{ShowCode: true}
	if err := f.WriteAll(&buf, c); err != nil {
		t.Fatal(err)
	}
	f.PrintSummary(&buf, c)

	want := strings.Join([]string{
		"types.sig:2:5: error: bad type signature: unbalanced brackets [S001]",
		"warning: unknown configuration keys: extra [C001]",
		"1 error(s), 1 warning(s)",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestPrintSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter().PrintSummary(&buf, NewCollection())
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}
	got, err := f.Format(sampleDiagnostic())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}
	if decoded["severity"] != "error" || decoded["code"] != "S001" {
		t.Errorf("unexpected fields: %v", decoded)
	}
	loc, ok := decoded["location"].(map[string]any)
	if !ok || loc["path"] != "types.sig" || loc["line"] != float64(2) || loc["column"] != float64(5) {
		t.Errorf("unexpected location: %v", decoded["location"])
	}
}

func TestJSONFormatterOmitsEmpty(t *testing.T) {
	got, err := (&JSONFormatter{}).Format(Warning("w").Build())
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"severity":"warning","message":"w"}` {
		t.Errorf("Format() = %s", got)
	}
}

func TestJSONFormatterCollection(t *testing.T) {
	c := NewCollection()
	c.Add(sampleDiagnostic())
	c.Add(Warning("w").Build())

	got, err := (&JSONFormatter{Indent: true}).FormatCollection(c)
	if err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", got, err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(decoded))
	}
	if !strings.Contains(got, "\n  ") {
		t.Error("expected indented output")
	}

	empty, err := (&JSONFormatter{}).FormatCollection(NewCollection())
	if err != nil || empty != "[]" {
		t.Errorf("empty collection = %q, %v", empty, err)
	}
}
