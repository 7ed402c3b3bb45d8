package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mctalPlots/mctalPlots/internal/catalog"
	"github.com/mctalPlots/mctalPlots/internal/config"
	"github.com/mctalPlots/mctalPlots/internal/deposition"
	"github.com/mctalPlots/mctalPlots/internal/export"
	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/fsutil"
	"github.com/mctalPlots/mctalPlots/internal/mesh"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/render"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// DefaultOrder is the type order of a full run.
var DefaultOrder = []tally.Type{tally.TypeDeposition, tally.TypeFlux, tally.TypeHeat, tally.TypeCurrent}

// Runner flattens a set of tallies and drives the per-type processors over
// the resulting tables.
type Runner struct {
	FS     fsutil.FileSystem
	Layout flattable.Layout
	Config *config.PlotConfig

	// Catalog is optional. When set, Read opens a run and every later
	// artifact is filed under it.
	Catalog *catalog.DB
	// SourcePath is the tally source the tallies were loaded from.
	SourcePath string

	runID string
}

// NewRunner returns a Runner over the OS filesystem writing beside
// sourcePath.
func NewRunner(sourcePath string, cfg *config.PlotConfig) *Runner {
	if cfg == nil {
		cfg = config.EmptyPlotConfig()
	}
	return &Runner{
		FS:         fsutil.OSFileSystem{},
		Layout:     flattable.LayoutFor(sourcePath),
		Config:     cfg,
		SourcePath: sourcePath,
	}
}

// RunID is the catalog run opened by Read, empty without a catalog.
func (r *Runner) RunID() string { return r.runID }

// Read writes the flat table of every tally, replacing existing tables.
func (r *Runner) Read(ts []tally.Tally) ([]flattable.WriteResult, error) {
	if err := r.FS.MkdirAll(r.Layout.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tallies dir: %w", err)
	}
	if r.Catalog != nil {
		run, err := r.Catalog.BeginRun(r.SourcePath, r.Layout.Root)
		if err != nil {
			return nil, err
		}
		r.runID = run.ID
	}

	w := &flattable.Writer{FS: r.FS, Layout: r.Layout}
	results, err := w.WriteAll(ts)
	for _, res := range results {
		if r.Catalog == nil {
			continue
		}
		if cerr := r.Catalog.RecordTable(r.runID, res); cerr != nil {
			monitoring.Logf("catalog: %v", cerr)
		}
	}
	if err != nil {
		return results, err
	}
	monitoring.Logf("wrote %d flat tables under %s", len(results), r.Layout.Root)
	return results, nil
}

func (r *Runner) output(exports bool) (Output, error) {
	rend, err := render.New(r.Config.GetRenderFormat())
	if err != nil {
		return Output{}, err
	}
	out := Output{FS: r.FS, Layout: r.Layout, Renderer: rend}
	if exports {
		ex, err := export.New(r.FS, r.Config.GetExportFormat())
		if err != nil {
			return Output{}, err
		}
		out.Exporter = ex
	}
	if r.Catalog != nil && r.runID != "" {
		out.Recorder = CatalogRecorder{DB: r.Catalog, RunID: r.runID}
	}
	return out, nil
}

// processor is implemented by the per-type processors.
type processor interface {
	Process(t tally.Tally) (Stats, error)
}

func (r *Runner) processor(typ tally.Type, families []slicer.Family) (processor, error) {
	src := &flattable.Source{FS: r.FS, Layout: r.Layout}
	c := r.Config
	switch typ {
	case tally.TypeCurrent, tally.TypeHeat:
		out, err := r.output(c.GetExportLineScans())
		if err != nil {
			return nil, err
		}
		return &MeshProcessor{
			Source:     src,
			Out:        out,
			Families:   families,
			Pins:       slicer.Coordinates{X: c.X, Y: c.Y, Z: c.Z},
			SwitchAxis: c.GetSwitchAxis(),
			Options: render.Options{
				DPI:      c.GetDPI(),
				FM:       c.GetFM(),
				LogScale: c.GetLogScale(),
				VMin:     c.VMin,
				VMax:     c.VMax,
			},
		}, nil
	case tally.TypeFlux:
		out, err := r.output(false)
		if err != nil {
			return nil, err
		}
		return &FluxProcessor{
			Source:    src,
			Out:       out,
			XAxisMode: c.GetXAxisMode(),
			Options:   render.Options{DPI: c.GetSpectrumDPI()},
		}, nil
	case tally.TypeDeposition:
		out, err := r.output(c.GetExportFormat() == config.ExportXLSX)
		if err != nil {
			return nil, err
		}
		return &DepositionProcessor{
			Source:  src,
			Out:     out,
			Filter:  deposition.Options{NoTotal: c.GetNoTotal(), Cells: c.Cells},
			Options: render.Options{DPI: c.GetSpectrumDPI()},
		}, nil
	}
	return nil, fmt.Errorf("type %d: %w", int(typ), tally.ErrUnsupportedType)
}

// Run processes the selected tallies of one type. families narrows mesh
// sweeps and is ignored by other types. A type with no tallies is
// tally.ErrNotFound; unknown selected ids are logged and skipped. A failing
// tally does not stop the others; their errors are joined.
func (r *Runner) Run(ts []tally.Tally, typ tally.Type, families []slicer.Family) (Stats, error) {
	var total Stats
	ids := tally.Group(tally.Numbers(ts))[typ]
	if len(ids) == 0 {
		return total, fmt.Errorf("no tallies of type f%d: %w", int(typ), tally.ErrNotFound)
	}
	sel := tally.Select(ids, r.Config.GetTallies(typ))
	if err := sel.Err(); err != nil {
		monitoring.Logf("f%d selection: %v", int(typ), err)
	}

	proc, err := r.processor(typ, families)
	if err != nil {
		return total, err
	}
	var errs []error
	for _, id := range sel.Valid {
		t, err := tally.Find(ts, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		st, err := proc.Process(t)
		total.add(st)
		if err != nil {
			monitoring.Logf("f%d: %v", id, err)
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// RunAll flattens ts and processes every supported type in DefaultOrder.
// Types without tallies are skipped.
func (r *Runner) RunAll(ts []tally.Tally) (Stats, error) {
	var total Stats
	if _, err := r.Read(ts); err != nil {
		return total, err
	}
	groups := tally.Group(tally.Numbers(ts))
	var errs []error
	for _, typ := range DefaultOrder {
		if len(groups[typ]) == 0 {
			monitoring.Debugf("no f%d tallies", int(typ))
			continue
		}
		st, err := r.Run(ts, typ, nil)
		total.add(st)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// AxisReport lists the i, j and k boundaries of the selected mesh tallies of
// type typ, one block per tally.
func AxisReport(ts []tally.Tally, typ tally.Type, requested []int) (string, error) {
	if !typ.IsMesh() {
		return "", fmt.Errorf("type %d has no mesh axes: %w", int(typ), tally.ErrUnsupportedType)
	}
	ids := tally.Group(tally.Numbers(ts))[typ]
	if len(ids) == 0 {
		return "", fmt.Errorf("no tallies of type f%d: %w", int(typ), tally.ErrNotFound)
	}
	sel := tally.Select(ids, requested)
	var b strings.Builder
	for _, id := range sel.Valid {
		t, err := tally.Find(ts, id)
		if err != nil {
			return "", err
		}
		ax := mesh.AxesOf(t)
		for _, a := range []mesh.Axis{mesh.X, mesh.Y, mesh.Z} {
			fmt.Fprintf(&b, "%s-axis bins for tally f%d:\n%v\n", a, id, ax.Boundaries(a))
		}
	}
	return b.String(), sel.Err()
}
