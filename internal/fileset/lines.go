package fileset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Line is one signature read from an input. Number is 1-based; Indent is
// the byte count of leading whitespace trimmed from Text.
type Line struct {
	Path   string
	Number int
	Indent int
	Text   string
}

// ReadLines splits r into signature lines. Blank lines and lines starting
// with '#' are skipped.
func ReadLines(path string, r io.Reader) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		raw := scanner.Text()
		text := strings.TrimLeft(raw, " \t")
		indent := len(raw) - len(text)
		text = strings.TrimRight(text, " \t\r")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, Line{Path: path, Number: number, Indent: indent, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// ReadFile opens path and returns its signature lines.
func ReadFile(path string) ([]Line, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadLines(path, f)
}
