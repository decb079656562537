package flux

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/table"
)

type group struct {
	sample, cycle int
	gas           gas.Gas
}

type summary struct {
	mean, std, sem table.Value
}

// Aggregate annotates every record with the mean, sample standard deviation
// and standard error of FluxCorrected over its (sample, cycle, gas) group.
// Nulls are skipped for mean and std; the standard error divides by the full
// group size. Row count and order are unchanged.
func Aggregate(in []table.Record) ([]table.Record, error) {
	values := make(map[group][]float64)
	sizes := make(map[group]int)
	for _, r := range in {
		k := group{r.Sample, r.Cycle, r.Gas}
		sizes[k]++
		if r.FluxCorrected.Valid {
			values[k] = append(values[k], r.FluxCorrected.Float64)
		}
	}

	sums := make(map[group]summary, len(sizes))
	for k, n := range sizes {
		sums[k] = summarize(values[k], n)
	}

	out := make([]table.Record, len(in))
	for i, r := range in {
		s := sums[group{r.Sample, r.Cycle, r.Gas}]
		r.FluxCorrectedAvg = s.mean
		r.FluxCorrectedStd = s.std
		r.FluxCorrectedSem = s.sem
		out[i] = r
	}
	return out, nil
}

func summarize(xs []float64, size int) summary {
	var s summary
	if len(xs) > 0 {
		s.mean = table.Float(stat.Mean(xs, nil))
	}
	if len(xs) > 1 {
		std := stat.StdDev(xs, nil)
		s.std = table.Float(std)
		s.sem = table.Float(std / math.Sqrt(float64(size)))
	}
	return s
}
