// Package blank subtracts a reference ("blank") flux from every measured
// flux. The blank is either one sample position in every cycle or one whole
// cycle of the run.
package blank

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/fluxpro/internal/config"
	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/table"
)

// Mode names a blank strategy.
type Mode string

// Blank modes
const (
	ModeSample Mode = config.BlankSample
	ModeCycle  Mode = config.BlankCycle
)

// ErrUnsupportedMode is returned by New for unknown modes.
var ErrUnsupportedMode = fmt.Errorf("%w: unsupported blank mode", config.ErrConfiguration)

// Key joins blank averages onto records. Cycle is zero when the strategy
// averages across the whole run.
type Key struct {
	Cycle int
	Gas   gas.Gas
}

// Strategy decides which records are the blank and how averages are keyed.
type Strategy interface {
	Mode() Mode
	IsBlank(r table.Record) bool
	Key(r table.Record) Key
}

// SampleBlank uses sample Index of every cycle as that cycle's blank.
type SampleBlank struct{ Index int }

func (SampleBlank) Mode() Mode                    { return ModeSample }
func (s SampleBlank) IsBlank(r table.Record) bool { return r.Sample == s.Index }
func (SampleBlank) Key(r table.Record) Key        { return Key{Cycle: r.Cycle, Gas: r.Gas} }

// CycleBlank uses cycle Index as the blank for the whole run.
type CycleBlank struct{ Index int }

func (CycleBlank) Mode() Mode                    { return ModeCycle }
func (c CycleBlank) IsBlank(r table.Record) bool { return r.Cycle == c.Index }
func (CycleBlank) Key(r table.Record) Key        { return Key{Gas: r.Gas} }

// Handler applies a Strategy.
type Handler struct {
	strategy Strategy
}

// New builds the handler for a configured mode and index.
func New(mode string, index int) (*Handler, error) {
	switch Mode(mode) {
	case ModeSample:
		return NewHandler(SampleBlank{Index: index}), nil
	case ModeCycle:
		return NewHandler(CycleBlank{Index: index}), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedMode, mode)
}

// NewHandler wraps s.
func NewHandler(s Strategy) *Handler {
	return &Handler{strategy: s}
}

// Strategy returns the active strategy.
func (h *Handler) Strategy() Strategy {
	return h.strategy
}

// Averages returns the mean flux of the blank records per key. Null fluxes
// are skipped; a key whose blank fluxes are all null maps to null.
func (h *Handler) Averages(records []table.Record) map[Key]table.Value {
	values := make(map[Key][]float64)
	for _, r := range records {
		if !h.strategy.IsBlank(r) {
			continue
		}
		k := h.strategy.Key(r)
		if _, ok := values[k]; !ok {
			values[k] = nil
		}
		if r.Flux.Valid {
			values[k] = append(values[k], r.Flux.Float64)
		}
	}

	out := make(map[Key]table.Value, len(values))
	for k, xs := range values {
		if len(xs) == 0 {
			out[k] = table.Null
			continue
		}
		out[k] = table.Float(stat.Mean(xs, nil))
	}
	return out
}

// Subtract drops the blank records and sets FluxBlankAvg and FluxCorrected
// on the rest, keeping their order. A missing average leaves both null.
func (h *Handler) Subtract(records []table.Record, averages map[Key]table.Value) []table.Record {
	out := make([]table.Record, 0, len(records))
	for _, r := range records {
		if h.strategy.IsBlank(r) {
			continue
		}
		avg := averages[h.strategy.Key(r)]
		r.FluxBlankAvg = avg
		if avg.Valid && r.Flux.Valid {
			r.FluxCorrected = table.Float(r.Flux.Float64 - avg.Float64)
		} else {
			r.FluxCorrected = table.Null
		}
		out = append(out, r)
	}
	return out
}

// Run computes the blank averages and subtracts them.
func (h *Handler) Run(records []table.Record) ([]table.Record, error) {
	return h.Subtract(records, h.Averages(records)), nil
}
