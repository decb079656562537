package chart

import (
	"context"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/fluxpro/internal/table"
)

// WriteHTML writes one page per sample, named <stem>_<sample>_flux.html,
// holding a scatter chart per gas.
func (c *Writer) WriteHTML(ctx context.Context, w *table.Wide, dir, stem string) ([]string, error) {
	bySample := make(map[int][]Series)
	var samples []int
	for _, s := range Tidy(w) {
		if _, ok := bySample[s.Sample]; !ok {
			samples = append(samples, s.Sample)
		}
		bySample[s.Sample] = append(bySample[s.Sample], s)
	}

	var written []string
	for _, sample := range samples {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		page := components.NewPage()
		page.PageTitle = fmt.Sprintf("%s sample %d", stem, sample)
		for _, s := range bySample[sample] {
			page.AddCharts(newScatter(s))
		}

		path, err := c.save(dir, fmt.Sprintf("%s_%d_flux.html", stem, sample), func(out io.Writer) error {
			return page.Render(out)
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func newScatter(s Series) *charts.Scatter {
	raw := make([]opts.ScatterData, 0, len(s.Points))
	for _, p := range s.Points {
		raw = append(raw, opts.ScatterData{Value: []interface{}{p.Cycle, p.Flux}})
	}
	avg := make([]opts.ScatterData, 0, len(s.Groups))
	bounds := make([]opts.ScatterData, 0, 2*len(s.Groups))
	for _, g := range s.Groups {
		avg = append(avg, opts.ScatterData{Value: []interface{}{g.Cycle, g.Avg, g.Sem}})
		bounds = append(bounds,
			opts.ScatterData{Value: []interface{}{g.Cycle, g.Avg - g.Sem}},
			opts.ScatterData{Value: []interface{}{g.Cycle, g.Avg + g.Sem}},
		)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: string(s.Gas), Subtitle: fmt.Sprintf("sample %d", s.Sample)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cycle", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: FluxAxisLabel, NameLocation: "middle", NameGap: 60}),
	)
	scatter.AddSeries("flux corrected", raw,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "hotpink"}),
	)
	scatter.AddSeries("average", avg,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "crimson"}),
	)
	scatter.AddSeries("average ± sem", bounds,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "gray"}),
	)
	return scatter
}
