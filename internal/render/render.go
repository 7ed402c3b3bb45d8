// Package render draws slices, flux spectra and deposition bars. PNG output
// goes through gonum/plot; HTML output through go-echarts.
package render

import (
	"fmt"
	"io"

	"github.com/mctalPlots/mctalPlots/internal/deposition"
	"github.com/mctalPlots/mctalPlots/internal/mesh"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Renderer writes one figure per call.
type Renderer interface {
	// Ext is the artifact file extension, including the dot.
	Ext() string
	CrossSection(w io.Writer, p *slicer.Plane, o Options) error
	LineScan(w io.Writer, l *slicer.Line, o Options) error
	Spectrum(w io.Writer, s Spectrum, o Options) error
	Deposition(w io.Writer, tallyID int, r deposition.Result, o Options) error
}

// New returns the renderer for a format name ("png" or "html").
func New(format string) (Renderer, error) {
	switch format {
	case "", "png":
		return PNG{}, nil
	case "html":
		return HTML{}, nil
	}
	return nil, fmt.Errorf("render format %q: %w", format, tally.ErrInvalidSelection)
}

// Options carries the presentation knobs. FM scales plotted values only.
type Options struct {
	DPI        int
	FM         float64
	LogScale   bool
	VMin, VMax *float64
	// Quantity names what a mesh plane shows ("distribution", "heat load").
	Quantity string
	// ValueLabel is the y-axis label of line scans, if any.
	ValueLabel string
}

func (o Options) fm() float64 {
	if o.FM == 0 {
		return 1
	}
	return o.FM
}

func (o Options) quantity() string {
	if o.Quantity == "" {
		return "distribution"
	}
	return o.Quantity
}

// Spectrum is one cell's flux series against energy or wavelength.
type Spectrum struct {
	Cell       int
	Wavelength bool
	X          []float64
	Flux       []float64
}

func (s Spectrum) title() string {
	return fmt.Sprintf("Flux averaged over cell %d", s.Cell)
}

func (s Spectrum) subtitle() string {
	if s.Wavelength {
		return "per wavelength [Å]"
	}
	return "per energy [MeV]"
}

func (s Spectrum) xLabel() string {
	if s.Wavelength {
		return "Neutron wavelength [Å]"
	}
	return "Neutron energy [MeV]"
}

const (
	fluxLabel       = "Neutron flux [n/cm2-s]"
	depositionTitle = "Energy deposition averaged over cell"
	depositionXAxis = "Cells"
	depositionYAxis = "Average energy deposited [MeV/g]"
)

func axisLabel(a mesh.Axis) string { return a.String() + " [cm]" }

// planeName is the two in-plane axes in x, y, z order, e.g. "yz".
func planeName(p *slicer.Plane) string {
	a, b := p.Col, p.Row
	if b < a {
		a, b = b, a
	}
	return a.String() + b.String()
}

func planeTitle(p *slicer.Plane, quantity string) string {
	return fmt.Sprintf("%s-plane 2D %s between %s = %gcm and %s = %gcm",
		planeName(p), quantity, p.Fixed, p.Lower, p.Fixed, p.Upper)
}

func lineTitle(l *slicer.Line) string {
	return fmt.Sprintf("%s-axis 1D distribution at %s = %gcm and %s = %gcm",
		l.Along, l.Fixed[0], l.At[0], l.Fixed[1], l.At[1])
}

func allPositive(vs []float64) bool {
	for _, v := range vs {
		if !(v > 0) {
			return false
		}
	}
	return len(vs) > 0
}

func scaled(vs []float64, fm float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v * fm
	}
	return out
}
