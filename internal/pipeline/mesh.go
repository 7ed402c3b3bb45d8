package pipeline

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/mctalPlots/mctalPlots/internal/mesh"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/render"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// HeatLoadLabel is the default line-scan value label of F3 tallies.
const HeatLoadLabel = "Heat load [MeV/cm³]"

// MeshProcessor sweeps F1 and F3 tallies into cross-sections and line scans.
type MeshProcessor struct {
	Source TableSource
	Out    Output

	// Families selects the slice kinds; nil means all six.
	Families []slicer.Family
	// Pins restricts the sweep to boundary coordinates.
	Pins slicer.Coordinates
	// SwitchAxis draws cross-sections in the transposed orientation.
	SwitchAxis bool
	Options    render.Options
}

func (p *MeshProcessor) families() []slicer.Family {
	if p.Families == nil {
		return append(append([]slicer.Family(nil), slicer.CrossSections...), slicer.LineScans...)
	}
	return p.Families
}

// options applies the per-type labels: F3 planes show "heat load" and its
// line scans default to the heat load unit.
func (p *MeshProcessor) options(typ tally.Type) render.Options {
	o := p.Options
	if typ == tally.TypeHeat {
		o.Quantity = "heat load"
		if o.ValueLabel == "" {
			o.ValueLabel = HeatLoadLabel
		}
	}
	return o
}

// Process reconstructs the mesh of t and emits every planned slice.
func (p *MeshProcessor) Process(t tally.Tally) (Stats, error) {
	var stats Stats
	ctx := NewContext(t)
	if !ctx.Type.IsMesh() {
		return stats, fmt.Errorf("tally %d is type %d, not a mesh tally: %w", ctx.Tally, int(ctx.Type), tally.ErrUnsupportedType)
	}

	table, err := p.Source.Table(ctx.Tally)
	if err != nil {
		return stats, err
	}
	m, err := mesh.Reconstruct(table, ctx.Axes)
	if err != nil {
		return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
	}
	ctx = ctx.WithMesh(m)
	monitoring.Debugf("%s", ctx.Report(len(table)))

	ex, err := slicer.New(m, ctx.Axes)
	if err != nil {
		return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
	}
	reqs, err := slicer.Plan(ctx.Axes, p.Pins, p.families())
	if err != nil {
		return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
	}

	opts := p.options(ctx.Type)
	for _, r := range reqs {
		s, err := ex.Extract(r)
		if err != nil {
			return stats, fmt.Errorf("tally %d %s: %w", ctx.Tally, r.Family, err)
		}
		st, err := p.emit(ctx.WithRequest(r), s, opts)
		stats.add(st)
		if err != nil {
			return stats, err
		}
	}
	monitoring.Logf("f%d: %s", ctx.Tally, stats)
	return stats, nil
}

// Stem is the artifact path, without extension, of slice s.
func (p *MeshProcessor) Stem(tallyID int, s slicer.Slice) string {
	if s.Line != nil {
		l := s.Line
		return p.Out.Layout.LineScanStem(tallyID, l.Along.String(),
			[2]string{l.Fixed[0].String(), l.Fixed[1].String()}, l.Indices)
	}
	return p.Out.Layout.CrossSectionStem(tallyID, s.Plane.Fixed.String(), s.Plane.Index)
}

func (p *MeshProcessor) emit(ctx Context, s slicer.Slice, opts render.Options) (Stats, error) {
	var stats Stats
	stem := p.Stem(ctx.Tally, s)

	if s.Line != nil && p.Out.Exporter != nil {
		if err := p.Out.FS.MkdirAll(filepath.Dir(stem), 0755); err != nil {
			return stats, fmt.Errorf("failed to create plot dir: %w", err)
		}
		path, err := p.Out.Exporter.LineScan(stem, s.Line)
		if err != nil {
			return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
		}
		p.Out.record(ctx.Tally, KindExport, path)
		stats.Exported++
	}

	if s.Degenerate() {
		monitoring.Logf("value range is 0, no %s plot for f%d at %s", s.Request.Family, ctx.Tally, ctx.Coordinate())
		stats.Degenerate++
		return stats, nil
	}

	var draw func(io.Writer) error
	switch {
	case s.Line != nil:
		draw = func(w io.Writer) error { return p.Out.Renderer.LineScan(w, s.Line, opts) }
	case p.SwitchAxis:
		plane := s.Plane.Switched()
		draw = func(w io.Writer) error { return p.Out.Renderer.CrossSection(w, plane, opts) }
	default:
		draw = func(w io.Writer) error { return p.Out.Renderer.CrossSection(w, s.Plane, opts) }
	}
	wrote, err := p.Out.figure(ctx.Tally, stem, draw)
	if err != nil {
		return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
	}
	if wrote {
		stats.Plotted++
	} else {
		stats.Existing++
	}
	return stats, nil
}
