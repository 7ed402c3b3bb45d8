package flattable

import (
	"fmt"
	"path/filepath"

	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// DirName is the tallies directory created next to the tally source.
const DirName = "tallies"

// Layout resolves the on-disk locations of flat tables and plot artifacts:
//
//	<root>/F<d>/f<id>                   flat table
//	<root>/F<d>/f<id>_plots/<family>/   mesh plots (xCS, yLineScan, ...)
//	<root>/F4/f4_plots/                 flux plots
//	<root>/F6/f6_plots/                 deposition plots
type Layout struct {
	Root string
}

// LayoutFor places the tallies directory beside sourcePath, or under the
// working directory when no source is given.
func LayoutFor(sourcePath string) Layout {
	if sourcePath == "" {
		return Layout{Root: filepath.Join(".", DirName)}
	}
	return Layout{Root: filepath.Join(filepath.Dir(sourcePath), DirName)}
}

// TypeDir is the folder holding every table of type t.
func (l Layout) TypeDir(t tally.Type) string {
	return filepath.Join(l.Root, t.Folder())
}

// TablePath is the flat table location for a tally number.
func (l Layout) TablePath(number int) string {
	return filepath.Join(l.TypeDir(tally.TypeOf(number)), fmt.Sprintf("f%d", number))
}

// PlotDir is the per-tally plot folder for a family such as "xCS" or
// "zLineScan".
func (l Layout) PlotDir(number int, family string) string {
	return filepath.Join(l.TypeDir(tally.TypeOf(number)), fmt.Sprintf("f%d_plots", number), family)
}

// TypePlotDir is the shared plot folder for per-type plots ("F4/f4_plots").
func (l Layout) TypePlotDir(t tally.Type) string {
	return filepath.Join(l.TypeDir(t), fmt.Sprintf("f%d_plots", int(t)))
}

// CrossSectionStem is the artifact path, without extension, of the
// cross-section of tally number fixing axis at boundary index, e.g.
// F1/f11_plots/xCS/f11_xCS3.
func (l Layout) CrossSectionStem(number int, axis string, index int) string {
	return filepath.Join(l.PlotDir(number, axis+"CS"), fmt.Sprintf("f%d_%sCS%d", number, axis, index))
}

// LineScanStem is the artifact path, without extension, of a line scan
// along axis with the two fixed axes at the given boundary indices, e.g.
// F1/f11_plots/xLineScan/f11_xLine_y1_z2. Line-scan exports share the stem.
func (l Layout) LineScanStem(number int, along string, fixed [2]string, indices [2]int) string {
	return filepath.Join(l.PlotDir(number, along+"LineScan"),
		fmt.Sprintf("f%d_%sLine_%s%d_%s%d", number, along, fixed[0], indices[0], fixed[1], indices[1]))
}

// SpectrumStem is the flux plot of one cell bin, against energy or
// wavelength.
func (l Layout) SpectrumStem(cell int, wavelength bool) string {
	name := fmt.Sprintf("Cell%d_Energy", cell)
	if wavelength {
		name = fmt.Sprintf("Cell%d_Wavelength", cell)
	}
	return filepath.Join(l.TypePlotDir(tally.TypeFlux), name)
}

// DepositionStem is the bar chart of one F6 tally.
func (l Layout) DepositionStem(number int) string {
	return filepath.Join(l.TypePlotDir(tally.TypeDeposition), fmt.Sprintf("tally%d", number))
}
