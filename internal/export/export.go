// Package export writes a result table to disk in the supported formats.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/security"
	"github.com/banshee-data/fluxpro/internal/table"
)

// DatetimeLayout is how timestamps are written to text outputs.
const DatetimeLayout = "2006-01-02T15:04:05.000000"

// Format names an output format.
type Format string

// Output formats
const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatXLSX, FormatSQLite}

// ErrUnknownFormat is returned for a format name outside Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormats parses format names, dropping duplicates and keeping order.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		if f == "" {
			continue
		}
		if !isFormat(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func isFormat(f Format) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Writer writes a result table into dir. File names start with stem.
type Writer interface {
	Format() Format
	Write(ctx context.Context, w *table.Wide, dir, stem string) ([]string, error)
}

// NewWriter returns the writer for f backed by fs.
func NewWriter(f Format, fs fsutil.FileSystem) (Writer, error) {
	switch f {
	case FormatCSV:
		return &CSVWriter{fs: fs}, nil
	case FormatXLSX:
		return &XLSXWriter{fs: fs}, nil
	case FormatSQLite:
		return &SQLiteWriter{fs: fs}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// FormatValue renders a value for text output. Null is the empty string.
func FormatValue(v table.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

// create opens dir/name for writing after checking it stays inside dir.
func create(fs fsutil.FileSystem, dir, name string) (string, io.WriteCloser, error) {
	path, err := security.JoinWithinDirectory(dir, name)
	if err != nil {
		return "", nil, err
	}
	f, err := fs.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return path, f, nil
}
