package flux

import (
	"sort"
	"time"

	"github.com/banshee-data/fluxpro/internal/gas"
	"github.com/banshee-data/fluxpro/internal/table"
)

type rowKey struct {
	cycle, sample int
	time          time.Time
}

// Reshape pivots records into one row per (cycle, sample, time) with a
// column per gas and metric. Gases keep their order of first appearance.
// When two records share a key the first one wins. Rows are sorted by
// (cycle, sample, time).
func Reshape(records []table.Record) *table.Wide {
	var gases []gas.Gas
	gasIndex := make(map[gas.Gas]int)
	for _, r := range records {
		if _, ok := gasIndex[r.Gas]; !ok {
			gasIndex[r.Gas] = len(gases)
			gases = append(gases, r.Gas)
		}
	}

	nm := len(table.Metrics)
	w := &table.Wide{Columns: make([]string, 0, len(gases)*nm)}
	for _, g := range gases {
		for _, m := range table.Metrics {
			w.Columns = append(w.Columns, table.ColumnName(g, m))
		}
	}

	rowIndex := make(map[rowKey]int)
	var filled [][]bool
	for _, r := range records {
		k := rowKey{r.Cycle, r.Sample, r.Time.UTC()}
		i, ok := rowIndex[k]
		if !ok {
			i = len(w.Rows)
			rowIndex[k] = i
			w.Rows = append(w.Rows, table.WideRow{
				Cycle:  r.Cycle,
				Sample: r.Sample,
				Time:   r.Time,
				Values: make([]table.Value, len(w.Columns)),
			})
			filled = append(filled, make([]bool, len(w.Columns)))
		}
		base := gasIndex[r.Gas] * nm
		for j, m := range table.Metrics {
			if filled[i][base+j] {
				continue
			}
			w.Rows[i].Values[base+j] = r.Value(m)
			filled[i][base+j] = true
		}
	}

	sort.SliceStable(w.Rows, func(i, j int) bool {
		a, b := w.Rows[i], w.Rows[j]
		if a.Cycle != b.Cycle {
			return a.Cycle < b.Cycle
		}
		if a.Sample != b.Sample {
			return a.Sample < b.Sample
		}
		return a.Time.Before(b.Time)
	})
	return w
}
