package format

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/table"
)

// MaxFileSize bounds the size of an instrument export read into memory.
const MaxFileSize = 256 * 1024 * 1024

// Reader loads instrument exports into raw tables.
type Reader struct {
	fs fsutil.FileSystem
}

// NewReader creates a Reader over fs.
func NewReader(fs fsutil.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// ReadTable reads path, skipping any preamble above the header row. Every
// record is padded or cut to the header width and blank lines are dropped.
func (r *Reader) ReadTable(path string) (*table.Raw, error) {
	sep, err := DetectSeparator(path)
	if err != nil {
		return nil, err
	}

	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file %s too large: %d bytes (max %d)", path, info.Size(), MaxFileSize)
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	skip, err := DetectHeaderRow(bytes.NewReader(data), sep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	raw, err := parse(data, sep, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	monitoring.Logf("read %s: header at line %d, %d columns, %d records", path, skip, len(raw.Header), len(raw.Records))
	return raw, nil
}

func parse(data []byte, sep rune, skip int) (*table.Raw, error) {
	br := bufio.NewReader(bytes.NewReader(data))
	for i := 0; i < skip; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("preamble shorter than %d lines: %w", skip, err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	raw := &table.Raw{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		if blank(rec) {
			continue
		}
		raw.Records = append(raw.Records, fit(rec, len(header)))
	}
	return raw, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func fit(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
