package chart

import (
	"context"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/fluxpro/internal/security"
	"github.com/banshee-data/fluxpro/internal/table"
)

var (
	rawColor = color.RGBA{R: 255, G: 105, B: 180, A: 255}
	avgColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
)

// groupBars adapts groups to the gonum XYer and YErrorer interfaces.
type groupBars []Group

func (g groupBars) Len() int                        { return len(g) }
func (g groupBars) XY(i int) (float64, float64)     { return g[i].Cycle, g[i].Avg }
func (g groupBars) YError(i int) (float64, float64) { return g[i].Sem, g[i].Sem }

// WritePNG writes one chart per sample and gas, named
// <stem>_<sample>_<gas>_flux.png.
func (c *Writer) WritePNG(ctx context.Context, w *table.Wide, dir, stem string) ([]string, error) {
	var written []string
	for _, s := range Tidy(w) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		p, err := newPlot(s)
		if err != nil {
			return written, err
		}
		wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
		if err != nil {
			return written, err
		}
		name := fmt.Sprintf("%s_%d_%s_flux.png", stem, s.Sample, security.SanitizeFilename(string(s.Gas)))
		path, err := c.save(dir, name, func(out io.Writer) error {
			_, err := wt.WriteTo(out)
			return err
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func newPlot(s Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - sample %d", s.Gas, s.Sample)
	p.X.Label.Text = "Cycle"
	p.Y.Label.Text = FluxAxisLabel

	if len(s.Points) > 0 {
		pts := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			pts[i] = plotter.XY{X: pt.Cycle, Y: pt.Flux}
		}
		raw, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("%s flux points: %w", s.Gas, err)
		}
		raw.GlyphStyle.Color = rawColor
		raw.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(raw)
		p.Legend.Add("flux corrected", raw)
	}

	if len(s.Groups) > 0 {
		bars, err := plotter.NewYErrorBars(groupBars(s.Groups))
		if err != nil {
			return nil, fmt.Errorf("%s error bars: %w", s.Gas, err)
		}
		bars.LineStyle.Width = vg.Points(1)

		avg, err := plotter.NewScatter(groupBars(s.Groups))
		if err != nil {
			return nil, fmt.Errorf("%s averages: %w", s.Gas, err)
		}
		avg.GlyphStyle.Color = avgColor
		avg.GlyphStyle.Shape = draw.CircleGlyph{}
		avg.GlyphStyle.Radius = vg.Points(3)

		p.Add(bars, avg)
		p.Legend.Add("average ± sem", avg)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}
