// Package standardize turns a raw instrument table into a frame of
// timestamped readings: one column per recognised gas, values in mol/L.
package standardize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/table"
	"github.com/banshee-data/fluxpro/internal/units"
)

var (
	// ErrUnrecognizedDatetimeFormat is returned when no layout yields a
	// plausible constant-cadence series.
	ErrUnrecognizedDatetimeFormat = errors.New("unexpected datetime format")
	// ErrDuplicateGas is returned when two headers resolve to the same gas.
	ErrDuplicateGas = errors.New("duplicate gas column")
)

// MaxCadenceSpread is the largest accepted difference between the longest
// and shortest gap of a parsed datetime column.
const MaxCadenceSpread = time.Hour

// DatetimeLayouts are tried in order against the first column. Go accepts a
// fractional second after the seconds field even when the layout omits it,
// and the unpadded day and month fields also accept zero-padded input.
var DatetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04PM",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
}

// Standardizer maps raw instrument columns onto canonical gases.
type Standardizer struct {
	gases   *gas.Table
	layouts []string
}

// New creates a Standardizer that resolves headers through gases.
func New(gases *gas.Table) *Standardizer {
	return &Standardizer{gases: gases, layouts: DatetimeLayouts}
}

type column struct {
	index int
	gas   gas.Gas
	unit  units.Unit
}

// Run converts raw into a frame. The first column is the timestamp; other
// columns are kept only when their trimmed header is a known gas identifier.
func (s *Standardizer) Run(raw *table.Raw) (*table.Frame, error) {
	if len(raw.Header) == 0 {
		return nil, fmt.Errorf("%w: table has no columns", ErrUnrecognizedDatetimeFormat)
	}

	stamps := make([]string, len(raw.Records))
	for i, rec := range raw.Records {
		stamps[i] = rec[0]
	}
	times, err := s.ParseDatetimes(stamps)
	if err != nil {
		return nil, err
	}

	cols, err := s.selectColumns(raw.Header)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		monitoring.Logf("no gas columns recognised; known headers: %s", strings.Join(s.gases.Headers(), ", "))
	}

	frame := &table.Frame{
		Gases: make([]gas.Gas, len(cols)),
		Rows:  make([]table.Row, len(raw.Records)),
	}
	for j, c := range cols {
		frame.Gases[j] = c.gas
	}
	for i, rec := range raw.Records {
		values := make([]table.Value, len(cols))
		for j, c := range cols {
			v, ok := parseFloat(rec[c.index])
			if ok {
				values[j] = table.Float(units.ToMolPerLitre(v, c.unit))
			}
		}
		frame.Rows[i] = table.Row{Time: times[i], Values: values}
	}
	return frame, nil
}

func (s *Standardizer) selectColumns(header []string) ([]column, error) {
	var cols []column
	seen := make(map[gas.Gas]string)
	for i := 1; i < len(header); i++ {
		name := strings.TrimSpace(header[i])
		g, ok := s.gases.Lookup(name)
		if !ok {
			continue
		}
		if prev, dup := seen[g]; dup {
			return nil, fmt.Errorf("%w: %q and %q both map to %s", ErrDuplicateGas, prev, name, g)
		}
		u, err := units.Detect(name)
		if err != nil {
			return nil, err
		}
		seen[g] = name
		cols = append(cols, column{index: i, gas: g, unit: u})
	}
	return cols, nil
}

// ParseDatetimes parses a timestamp column with the first layout that both
// parses every value and gives a near-constant sampling interval.
func (s *Standardizer) ParseDatetimes(values []string) ([]time.Time, error) {
	for _, layout := range s.layouts {
		times, err := parseColumn(values, layout)
		if err != nil {
			continue
		}
		if !steadyCadence(times) {
			monitoring.Logf("datetime layout %q parses but gives an irregular cadence", layout)
			continue
		}
		monitoring.Logf("datetime layout %q matched %d rows", layout, len(times))
		return times, nil
	}
	var sample string
	if len(values) > 0 {
		sample = values[0]
	}
	return nil, fmt.Errorf("%w: %q", ErrUnrecognizedDatetimeFormat, sample)
}

func parseColumn(values []string, layout string) ([]time.Time, error) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := time.Parse(layout, strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// steadyCadence needs at least one gap to judge the interval.
func steadyCadence(times []time.Time) bool {
	if len(times) < 2 {
		return false
	}
	lo, hi := times[1].Sub(times[0]), times[1].Sub(times[0])
	for i := 2; i < len(times); i++ {
		d := times[i].Sub(times[i-1])
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return hi-lo < MaxCadenceSpread
}

// parseFloat trims and parses a reading. NaN and infinities count as missing.
func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
