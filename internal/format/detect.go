// Package format recognises instrument export files: which field separator
// they use and where the header row sits above the first reading.
package format

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/araddon/dateparse"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no analyser writes.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrHeaderNotFound is returned when no header row precedes a timestamped
	// reading.
	ErrHeaderNotFound = errors.New("failed to detect header")
)

// separators maps lower-case file extensions onto field separators.
var separators = map[string]rune{
	".dat": '\t',
	".log": '\t',
	".csv": ',',
	".txt": ',',
}

// DetectSeparator returns the field separator implied by the file extension.
func DetectSeparator(path string) (rune, error) {
	ext := strings.ToLower(filepath.Ext(path))
	sep, ok := separators[ext]
	if !ok {
		return 0, fmt.Errorf("%w: %q has extension %q", ErrUnsupportedFormat, filepath.Base(path), ext)
	}
	return sep, nil
}

// DetectHeaderRow returns the zero-based line index of the header row. The
// header is the line immediately before the first line whose leading field
// parses as a date.
func DetectHeaderRow(r io.Reader, sep rune) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for i := 0; sc.Scan(); i++ {
		if !isTimestamp(leadingField(sc.Text(), sep)) {
			continue
		}
		if i == 0 {
			return 0, fmt.Errorf("%w: first line is already a reading", ErrHeaderNotFound)
		}
		return i - 1, nil
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan for header: %w", err)
	}
	return 0, ErrHeaderNotFound
}

func leadingField(line string, sep rune) string {
	if i := strings.IndexRune(line, sep); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimPrefix(line, "\ufeff")
	return strings.Trim(strings.TrimSpace(line), `"'`)
}

func isTimestamp(field string) bool {
	if field == "" {
		return false
	}
	_, err := dateparse.ParseAny(field)
	return err == nil
}
