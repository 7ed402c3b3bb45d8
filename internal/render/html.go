package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mctalPlots/mctalPlots/internal/deposition"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
)

// HTML renders interactive pages with go-echarts.
type HTML struct{}

// Ext implements Renderer.
func (HTML) Ext() string { return ".html" }

func labels(vs []float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return out
}

func centres(edges []float64) []float64 {
	if len(edges) < 2 {
		return nil
	}
	out := make([]float64, len(edges)-1)
	for i := range out {
		out[i] = (edges[i] + edges[i+1]) / 2
	}
	return out
}

func logAxis(log bool) string {
	if log {
		return "log"
	}
	return "value"
}

// CrossSection implements Renderer.
func (HTML) CrossSection(w io.Writer, pl *slicer.Plane, o Options) error {
	g := planeGrid{p: pl, fm: o.fm(), log: o.LogScale}
	lo, hi := g.zRange(o)
	c, r := g.Dims()

	// Cells with no log10 value are left out of the series.
	data := make([]opts.HeatMapData, 0, c*r)
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			z := g.Z(i, j)
			if math.IsNaN(z) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, z}})
		}
	}

	title := planeTitle(pl, o.quantity())
	if o.LogScale {
		title += " (log10)"
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: axisLabel(pl.Col), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: labels(centres(pl.RowEdges)), Name: axisLabel(pl.Row), NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: hexRamp(9)},
		}),
	)
	hm.SetXAxis(labels(centres(pl.ColEdges))).AddSeries("values", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("render heat map: %w", err)
	}
	return nil
}

// LineScan implements Renderer.
func (HTML) LineScan(w io.Writer, l *slicer.Line, o Options) error {
	ys := scaled(l.Values, o.fm())
	data := make([]opts.LineData, len(ys))
	for i, v := range ys {
		data[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: lineTitle(l), Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: lineTitle(l)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: axisLabel(l.Along), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: logAxis(o.LogScale && allPositive(ys)), Name: o.ValueLabel}),
	)
	line.SetXAxis(labels(l.Positions)).AddSeries("value", data)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render line scan: %w", err)
	}
	return nil
}

// Spectrum implements Renderer.
func (HTML) Spectrum(w io.Writer, s Spectrum, o Options) error {
	data := make([]opts.LineData, len(s.Flux))
	for i, v := range s.Flux {
		data[i] = opts.LineData{Value: v}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.title(), Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: s.title(), Subtitle: s.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.xLabel(), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fluxLabel}),
	)
	line.SetXAxis(labels(s.X)).AddSeries("flux", data)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render spectrum: %w", err)
	}
	return nil
}

// Deposition implements Renderer.
func (HTML) Deposition(w io.Writer, tallyID int, r deposition.Result, o Options) error {
	vals := make([]opts.BarData, len(r.Entries))
	errs := make([]opts.BarData, len(r.Entries))
	for i, e := range r.Entries {
		vals[i] = opts.BarData{Value: e.Value}
		errs[i] = opts.BarData{Value: e.Error}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fmt.Sprintf("Tally f%d", tallyID), Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Tally f%d", tallyID), Subtitle: depositionTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: depositionXAxis}),
		charts.WithYAxisOpts(opts.YAxis{Name: depositionYAxis}),
	)
	bar.SetXAxis(r.Labels()).
		AddSeries("deposition", vals).
		AddSeries("abs. error", errs)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render deposition: %w", err)
	}
	return nil
}
