// Package chart draws the corrected flux of a result table: a PNG per gas
// and sample, and an interactive HTML page per sample.
package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/fluxpro/internal/fsutil"
	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/security"
	"github.com/banshee-data/fluxpro/internal/table"
)

// Kind names a chart output.
type Kind string

// Chart outputs
const (
	KindPNG  Kind = "png"
	KindHTML Kind = "html"
)

// Kinds lists every supported chart output.
var Kinds = []Kind{KindPNG, KindHTML}

// ErrUnknownKind is returned for a chart name outside Kinds.
var ErrUnknownKind = errors.New("unknown plot type")

// FluxAxisLabel labels the flux axis of every chart.
const FluxAxisLabel = "Flux /ng·m⁻²·min⁻¹"

// ParseKinds parses chart names, dropping duplicates and keeping order.
func ParseKinds(names []string) ([]Kind, error) {
	var out []Kind
	seen := make(map[Kind]bool)
	for _, n := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(n)))
		if k == "" {
			continue
		}
		if k != KindPNG && k != KindHTML {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, n)
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// Point is a corrected flux reading placed at its cycle.
type Point struct {
	Cycle float64
	Flux  float64
}

// Group is the average of one (sample, cycle) group with its standard error.
// Cycle is the mean cycle of the rows sharing the average.
type Group struct {
	Cycle float64
	Avg   float64
	Sem   float64
}

// Series is the chart data for one gas within one sample.
type Series struct {
	Sample int
	Gas    gas.Gas
	Points []Point
	Groups []Group
}

// Tidy extracts one Series per sample and gas from w, in ascending sample
// order and column order within a sample. Null fluxes are skipped; a null
// standard error draws as zero.
func Tidy(w *table.Wide) []Series {
	var gases []gas.Gas
	for _, c := range w.Columns {
		if g, m, ok := table.SplitColumnName(c); ok && m == table.MetricFluxCorrected {
			gases = append(gases, g)
		}
	}

	parts := w.Partition()
	var out []Series
	for _, sample := range w.Samples() {
		part := parts[sample]
		for _, g := range gases {
			s := Series{Sample: sample, Gas: g}
			raw := part.Column(table.ColumnName(g, table.MetricFluxCorrected))
			avg := part.Column(table.ColumnName(g, table.MetricFluxCorrectedAvg))
			sem := part.Column(table.ColumnName(g, table.MetricFluxCorrectedSem))

			type acc struct {
				cycles float64
				sem    float64
				n      int
			}
			groups := make(map[float64]*acc)
			var order []float64
			for _, r := range part.Rows {
				x := float64(r.Cycle)
				if v := r.Values[raw]; v.Valid {
					s.Points = append(s.Points, Point{Cycle: x, Flux: v.Float64})
				}
				if avg < 0 || !r.Values[avg].Valid {
					continue
				}
				a := r.Values[avg].Float64
				gr, ok := groups[a]
				if !ok {
					gr = &acc{}
					groups[a] = gr
					order = append(order, a)
				}
				gr.cycles += x
				gr.n++
				if sem >= 0 && r.Values[sem].Valid {
					gr.sem += r.Values[sem].Float64
				}
			}
			for _, a := range order {
				gr := groups[a]
				s.Groups = append(s.Groups, Group{
					Cycle: gr.cycles / float64(gr.n),
					Avg:   a,
					Sem:   gr.sem / float64(gr.n),
				})
			}
			if len(s.Points) > 0 || len(s.Groups) > 0 {
				out = append(out, s)
			}
		}
	}
	return out
}

// Writer renders charts into files of a FileSystem.
type Writer struct {
	fs fsutil.FileSystem
}

// NewWriter returns a Writer backed by fs.
func NewWriter(fs fsutil.FileSystem) *Writer {
	return &Writer{fs: fs}
}

// Write renders the charts of kind k for w into dir.
func (c *Writer) Write(ctx context.Context, k Kind, w *table.Wide, dir, stem string) ([]string, error) {
	switch k {
	case KindPNG:
		return c.WritePNG(ctx, w, dir, stem)
	case KindHTML:
		return c.WriteHTML(ctx, w, dir, stem)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
}

func (c *Writer) save(dir, name string, render func(io.Writer) error) (string, error) {
	path, err := security.JoinWithinDirectory(dir, name)
	if err != nil {
		return "", err
	}
	f, err := c.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
