package flux

import (
	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/monitoring"
	"github.com/banshee-data/fluxpro/internal/table"
)

// NanogramsPerGram scales g/m^2/min to ng/m^2/min.
const NanogramsPerGram = 1e9

// Chamber holds the geometry used by the flux formula.
type Chamber struct {
	FlowRate        float64 // L/min
	SoilSurfaceArea float64 // m^2
}

// Unpivot turns a frame into one record per reading and gas, gas by gas.
func Unpivot(f *table.Frame) []table.Record {
	out := make([]table.Record, 0, len(f.Gases)*len(f.Rows))
	for j, g := range f.Gases {
		for _, r := range f.Rows {
			out = append(out, table.Record{
				Cycle:         r.Cycle,
				Sample:        r.Sample,
				Time:          r.Time,
				Gas:           g,
				Concentration: r.Values[j],
			})
		}
	}
	return out
}

// Flux converts a concentration in mol/L to ng/m^2/min.
func Flux(concentration, molarMass float64, c Chamber) float64 {
	return concentration * c.FlowRate / c.SoilSurfaceArea * molarMass * NanogramsPerGram
}

// ComputeFlux sets Flux on every record. Records for gases without a molar
// mass are dropped.
func ComputeFlux(gases *gas.Table, c Chamber) Stage[[]table.Record] {
	return func(in []table.Record) ([]table.Record, error) {
		out := make([]table.Record, 0, len(in))
		dropped := make(map[gas.Gas]int)
		for _, r := range in {
			mm, ok := gases.MolarMass(r.Gas)
			if !ok {
				dropped[r.Gas]++
				continue
			}
			if r.Concentration.Valid {
				r.Flux = table.Float(Flux(r.Concentration.Float64, mm, c))
			} else {
				r.Flux = table.Null
			}
			out = append(out, r)
		}
		for g, n := range dropped {
			monitoring.Logf("no molar mass for %s: dropped %d records", g, n)
		}
		return out, nil
	}
}
