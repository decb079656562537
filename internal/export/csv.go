package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/table"
)

// CSVWriter writes one CSV file per sample, named <stem>_<sample>_out.csv.
type CSVWriter struct {
	fs fsutil.FileSystem
}

// Format returns FormatCSV.
func (*CSVWriter) Format() Format { return FormatCSV }

// Write writes the partitions of w in ascending sample order.
func (c *CSVWriter) Write(ctx context.Context, w *table.Wide, dir, stem string) ([]string, error) {
	parts := w.Partition()
	var written []string
	for _, sample := range w.Samples() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path, err := c.writeSample(parts[sample], dir, fmt.Sprintf("%s_%d_out.csv", stem, sample))
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (c *CSVWriter) writeSample(part *table.Wide, dir, name string) (string, error) {
	path, f, err := create(c.fs, dir, name)
	if err != nil {
		return "", err
	}

	cw := csv.NewWriter(f)
	cw.Write(part.Header())
	for _, r := range part.Rows {
		rec := make([]string, 0, 3+len(r.Values))
		rec = append(rec, strconv.Itoa(r.Cycle), strconv.Itoa(r.Sample), r.Time.Format(DatetimeLayout))
		for _, v := range r.Values {
			rec = append(rec, FormatValue(v))
		}
		cw.Write(rec)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
