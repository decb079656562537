// Package table defines the tabular values handed from one processing stage
// to the next. Stages never modify a value they receive; they return a new
// one.
package table

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/banshee-data/fluxpro/internal/gas"
)

// Raw is an instrument file as read from disk: the header row and the data
// records, every record padded to the header width.
type Raw struct {
	Header  []string
	Records [][]string
}

// Row is one timestamped reading. Cycle and Sample are zero until the row
// has been labeled.
type Row struct {
	Cycle  int
	Sample int
	Time   time.Time
	Values []sql.NullFloat64
}

// Frame is a wide table of readings. Row.Values[i] belongs to Gases[i].
type Frame struct {
	Gases []gas.Gas
	Rows  []Row
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Gases: append([]gas.Gas(nil), f.Gases...),
		Rows:  make([]Row, len(f.Rows)),
	}
	for i, r := range f.Rows {
		r.Values = append([]sql.NullFloat64(nil), r.Values...)
		out.Rows[i] = r
	}
	return out
}

// Record is one gas measurement in long form. Fields are filled in as the
// record moves through the pipeline: Concentration (mol/L), then Flux
// (ng/m^2/min), then the blank correction, then the group statistics.
type Record struct {
	Cycle  int
	Sample int
	Time   time.Time
	Gas    gas.Gas

	Concentration    sql.NullFloat64
	Flux             sql.NullFloat64
	FluxBlankAvg     sql.NullFloat64
	FluxCorrected    sql.NullFloat64
	FluxCorrectedAvg sql.NullFloat64
	FluxCorrectedStd sql.NullFloat64
	FluxCorrectedSem sql.NullFloat64
}

// Metric names a per-gas output column suffix.
type Metric string

// Output metrics, in column order.
const (
	MetricFluxCorrected    Metric = "flux_corrected"
	MetricFluxCorrectedAvg Metric = "flux_corrected_avg"
	MetricFluxCorrectedStd Metric = "flux_corrected_std"
	MetricFluxCorrectedSem Metric = "flux_corrected_sem"
)

// Metrics lists the output metrics in column order.
var Metrics = []Metric{MetricFluxCorrected, MetricFluxCorrectedAvg, MetricFluxCorrectedStd, MetricFluxCorrectedSem}

// Value returns the field of r that holds metric m.
func (r Record) Value(m Metric) sql.NullFloat64 {
	switch m {
	case MetricFluxCorrected:
		return r.FluxCorrected
	case MetricFluxCorrectedAvg:
		return r.FluxCorrectedAvg
	case MetricFluxCorrectedStd:
		return r.FluxCorrectedStd
	case MetricFluxCorrectedSem:
		return r.FluxCorrectedSem
	}
	return sql.NullFloat64{}
}

// ColumnName builds the wide output column name for a gas and metric.
func ColumnName(g gas.Gas, m Metric) string {
	return string(g) + "_" + string(m)
}

// SplitColumnName reverses ColumnName.
func SplitColumnName(name string) (gas.Gas, Metric, bool) {
	for _, m := range Metrics {
		if g, ok := strings.CutSuffix(name, "_"+string(m)); ok && g != "" {
			return gas.Gas(g), m, true
		}
	}
	return "", "", false
}

// Fixed leading columns of the wide output.
const (
	ColCycle    = "cycle"
	ColSample   = "sample"
	ColDatetime = "datetime"
)

// WideRow is one output row keyed by (cycle, sample, datetime).
type WideRow struct {
	Cycle  int
	Sample int
	Time   time.Time
	Values []sql.NullFloat64
}

// Wide is the final output table: one row per (cycle, sample, datetime) and
// one column per {gas}_{metric}. WideRow.Values[i] belongs to Columns[i].
type Wide struct {
	Columns []string
	Rows    []WideRow
}

// Header returns the full header including the key columns.
func (w *Wide) Header() []string {
	return append([]string{ColCycle, ColSample, ColDatetime}, w.Columns...)
}

// Samples returns the distinct sample numbers in ascending order.
func (w *Wide) Samples() []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range w.Rows {
		if !seen[r.Sample] {
			seen[r.Sample] = true
			out = append(out, r.Sample)
		}
	}
	sort.Ints(out)
	return out
}

// Partition splits the table by sample number, keeping row order.
func (w *Wide) Partition() map[int]*Wide {
	out := make(map[int]*Wide)
	for _, r := range w.Rows {
		p, ok := out[r.Sample]
		if !ok {
			p = &Wide{Columns: w.Columns}
			out[r.Sample] = p
		}
		p.Rows = append(p.Rows, r)
	}
	return out
}

// Column returns the index of the named column, or -1.
func (w *Wide) Column(name string) int {
	for i, c := range w.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value is a nullable reading or result.
type Value = sql.NullFloat64

// Null is the missing value.
var Null = Value{}

// Float wraps v as a valid value.
func Float(v float64) Value {
	return Value{Float64: v, Valid: true}
}
