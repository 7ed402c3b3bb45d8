package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/mctalPlots/mctalPlots/internal/deposition"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
)

// PNG renders with gonum/plot.
type PNG struct{}

// Ext implements Renderer.
func (PNG) Ext() string { return ".png" }

// planeGrid adapts a Plane to plotter.GridXYZ. Columns and rows sit at bin
// centres; values are scaled by fm and, for log plots, mapped to log10 with
// non-positive cells left as NaN.
type planeGrid struct {
	p   *slicer.Plane
	fm  float64
	log bool
}

func (g planeGrid) Dims() (c, r int) {
	r, c = g.p.Values.Dims()
	return c, r
}

func (g planeGrid) Z(c, r int) float64 { return g.norm(g.p.Values.At(r, c) * g.fm) }

func (g planeGrid) X(c int) float64 { return (g.p.ColEdges[c] + g.p.ColEdges[c+1]) / 2 }

func (g planeGrid) Y(r int) float64 { return (g.p.RowEdges[r] + g.p.RowEdges[r+1]) / 2 }

func (g planeGrid) norm(v float64) float64 {
	if !g.log {
		return v
	}
	if v <= 0 {
		return math.NaN()
	}
	return math.Log10(v)
}

// zRange returns the colour limits, honouring vmin/vmax.
func (g planeGrid) zRange(o Options) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	c, r := g.Dims()
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			z := g.Z(i, j)
			if math.IsNaN(z) {
				continue
			}
			lo, hi = math.Min(lo, z), math.Max(hi, z)
		}
	}
	if o.VMin != nil {
		lo = g.norm(*o.VMin)
	}
	if o.VMax != nil {
		hi = g.norm(*o.VMax)
	}
	if math.IsInf(lo, 0) || math.IsNaN(lo) {
		lo = 0
	}
	if math.IsInf(hi, 0) || math.IsNaN(hi) || hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// CrossSection implements Renderer.
func (PNG) CrossSection(w io.Writer, pl *slicer.Plane, o Options) error {
	g := planeGrid{p: pl, fm: o.fm(), log: o.LogScale}

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)
	h := plotter.NewHeatMap(g, cm.Palette(255))
	h.Min, h.Max = g.zRange(o)

	p := plot.New()
	p.Title.Text = planeTitle(pl, o.quantity())
	p.X.Label.Text = axisLabel(pl.Col)
	p.Y.Label.Text = axisLabel(pl.Row)
	if o.LogScale {
		p.Title.Text += " (log10)"
	}
	p.Add(h)

	return save(w, p, 8*vg.Inch, 6*vg.Inch, o.DPI)
}

// LineScan implements Renderer.
func (PNG) LineScan(w io.Writer, l *slicer.Line, o Options) error {
	ys := scaled(l.Values, o.fm())
	pts := make(plotter.XYs, len(ys))
	for i := range ys {
		pts[i] = plotter.XY{X: l.Positions[i], Y: ys[i]}
	}

	p := plot.New()
	p.Title.Text = lineTitle(l)
	p.X.Label.Text = axisLabel(l.Along)
	p.Y.Label.Text = o.ValueLabel
	if o.LogScale {
		if allPositive(ys) {
			p.Y.Scale = plot.LogScale{}
			p.Y.Tick.Marker = plot.LogTicks{}
		} else {
			monitoring.Debugf("%s: non-positive values, using a linear y axis", p.Title.Text)
		}
	}
	if err := addPoints(p, pts); err != nil {
		return err
	}
	return save(w, p, 16*vg.Inch, 9*vg.Inch, o.DPI)
}

// Spectrum implements Renderer.
func (PNG) Spectrum(w io.Writer, s Spectrum, o Options) error {
	pts := make(plotter.XYs, len(s.X))
	for i := range s.X {
		pts[i] = plotter.XY{X: s.X[i], Y: s.Flux[i]}
	}

	p := plot.New()
	p.Title.Text = s.title() + "\n" + s.subtitle()
	p.X.Label.Text = s.xLabel()
	p.Y.Label.Text = fluxLabel
	if err := addPoints(p, pts); err != nil {
		return err
	}
	return save(w, p, 16*vg.Inch, 9*vg.Inch, o.DPI)
}

// Deposition implements Renderer.
func (PNG) Deposition(w io.Writer, tallyID int, r deposition.Result, o Options) error {
	if len(r.Entries) == 0 {
		return fmt.Errorf("tally f%d: no deposition entries to plot", tallyID)
	}
	n := len(r.Entries)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Tally f%d\n%s", tallyID, depositionTitle)
	p.X.Label.Text = depositionXAxis
	p.Y.Label.Text = depositionYAxis

	bars, err := plotter.NewBarChart(plotter.Values(r.Values()), vg.Points(math.Max(4, 400/float64(n))))
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = color.RGBA{A: 153}
	bars.LineStyle.Width = 0
	p.Add(bars)

	type errPoints struct {
		plotter.XYs
		plotter.YErrors
	}
	ep := errPoints{XYs: make(plotter.XYs, n), YErrors: make(plotter.YErrors, n)}
	for i, e := range r.Entries {
		ep.XYs[i] = plotter.XY{X: float64(i), Y: e.Value}
		ep.YErrors[i].Low, ep.YErrors[i].High = e.Error, e.Error
	}
	yerr, err := plotter.NewYErrorBars(ep)
	if err != nil {
		return fmt.Errorf("error bars: %w", err)
	}
	p.Add(yerr, plotter.NewGrid())
	p.NominalX(r.Labels()...)

	return save(w, p, 10*vg.Inch, 5*vg.Inch, o.DPI)
}

func addPoints(p *plot.Plot, pts plotter.XYs) error {
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	sc.GlyphStyle.Color = color.Black
	sc.GlyphStyle.Radius = vg.Points(1.5)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc, plotter.NewGrid())
	return nil
}

// save draws p at the given size and resolution and writes it as PNG.
func save(w io.Writer, p *plot.Plot, width, height vg.Length, dpi int) error {
	if dpi <= 0 {
		dpi = vgimg.DefaultDPI
	}
	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
