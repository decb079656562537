package flux

import (
	"math"
	"sort"
	"time"

	"github.com/banshee-data/fluxpro/internal/table"
)

// Schedule is the multiplexer timing used to label readings.
type Schedule struct {
	TotalCycles      int
	SamplesPerCycle  int
	MinutesPerSample int
}

// Label assigns cycle and sample numbers from the time elapsed since the
// first reading. Rows are expected in time order from the start of the
// multiplexer sequence; both labels are capped at their configured maximum.
func Label(s Schedule) Stage[*table.Frame] {
	return func(in *table.Frame) (*table.Frame, error) {
		out := in.Clone()
		if len(out.Rows) == 0 {
			return out, nil
		}

		perSample := float64(s.MinutesPerSample)
		perCycle := perSample * float64(s.SamplesPerCycle)
		start := out.Rows[0].Time
		for i := range out.Rows {
			elapsed := out.Rows[i].Time.Sub(start).Minutes()

			within := math.Mod(elapsed, perCycle)
			if within < 0 {
				within += perCycle
			}
			out.Rows[i].Cycle = min(int(math.Floor(elapsed/perCycle))+1, s.TotalCycles)
			out.Rows[i].Sample = min(int(math.Floor(within/perSample))+1, s.SamplesPerCycle)
		}
		return out, nil
	}
}

type window struct{ cycle, sample int }

// Trim sorts rows by (cycle, sample, time) and drops the first discard
// minutes of every sample window. A window starts at its earliest reading.
func Trim(discardMinutes int) Stage[*table.Frame] {
	return func(in *table.Frame) (*table.Frame, error) {
		out := in.Clone()
		rows := out.Rows
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.Cycle != b.Cycle {
				return a.Cycle < b.Cycle
			}
			if a.Sample != b.Sample {
				return a.Sample < b.Sample
			}
			return a.Time.Before(b.Time)
		})

		starts := make(map[window]time.Time)
		for _, r := range rows {
			w := window{r.Cycle, r.Sample}
			if t, ok := starts[w]; !ok || r.Time.Before(t) {
				starts[w] = r.Time
			}
		}

		discard := time.Duration(discardMinutes) * time.Minute
		kept := rows[:0]
		for _, r := range rows {
			if r.Time.Before(starts[window{r.Cycle, r.Sample}].Add(discard)) {
				continue
			}
			kept = append(kept, r)
		}
		out.Rows = kept
		return out, nil
	}
}
