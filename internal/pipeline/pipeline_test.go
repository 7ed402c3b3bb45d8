package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mctalPlots/mctalPlots/internal/deposition"
	"github.com/mctalPlots/mctalPlots/internal/export"
	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/fsutil"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/render"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
	"github.com/mctalPlots/mctalPlots/internal/tally"
	"github.com/mctalPlots/mctalPlots/internal/testutil"
)

// fakeRenderer writes a one-line description of every figure and keeps the
// arguments for inspection.
type fakeRenderer struct {
	planes  []*slicer.Plane
	lines   []*slicer.Line
	spectra []render.Spectrum
	bars    []deposition.Result
	opts    []render.Options
}

func (f *fakeRenderer) Ext() string { return ".fake" }

func (f *fakeRenderer) CrossSection(w io.Writer, p *slicer.Plane, o render.Options) error {
	f.planes = append(f.planes, p)
	f.opts = append(f.opts, o)
	_, err := fmt.Fprintf(w, "plane %s=%d\n", p.Fixed, p.Index)
	return err
}

func (f *fakeRenderer) LineScan(w io.Writer, l *slicer.Line, o render.Options) error {
	f.lines = append(f.lines, l)
	f.opts = append(f.opts, o)
	_, err := fmt.Fprintf(w, "line %s\n", l.Along)
	return err
}

func (f *fakeRenderer) Spectrum(w io.Writer, s render.Spectrum, o render.Options) error {
	f.spectra = append(f.spectra, s)
	_, err := fmt.Fprintf(w, "spectrum %d\n", s.Cell)
	return err
}

func (f *fakeRenderer) Deposition(w io.Writer, id int, r deposition.Result, o render.Options) error {
	f.bars = append(f.bars, r)
	_, err := fmt.Fprintf(w, "bars %d\n", id)
	return err
}

func quiet(t *testing.T) {
	t.Helper()
	monitoring.SetLogger(nil)
	monitoring.SetDebugLogger(nil)
}

// flatten writes the tables of ts into a fresh memory filesystem.
func flatten(t *testing.T, ts ...tally.Tally) (*fsutil.MemoryFileSystem, flattable.Layout) {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	layout := flattable.Layout{Root: "tallies"}
	w := &flattable.Writer{FS: mfs, Layout: layout}
	_, err := w.WriteAll(ts)
	require.NoError(t, err)
	return mfs, layout
}

type memRecorder struct{ paths map[int][]string }

func (m *memRecorder) RecordArtifact(id int, kind, path string) error {
	if m.paths == nil {
		m.paths = make(map[int][]string)
	}
	m.paths[id] = append(m.paths[id], kind+":"+path)
	return nil
}

func TestMeshProcessor_ExampleScenario(t *testing.T) {
	quiet(t)
	tl := testutil.LineMesh(t, 11)
	mfs, layout := flatten(t, tl)
	fake := &fakeRenderer{}
	ex, err := export.New(mfs, export.Text)
	require.NoError(t, err)
	rec := &memRecorder{}

	p := &MeshProcessor{
		Source: &flattable.Source{FS: mfs, Layout: layout},
		Out:    Output{FS: mfs, Layout: layout, Renderer: fake, Exporter: ex, Recorder: rec},
	}
	stats, err := p.Process(tl)
	require.NoError(t, err)

	// yCS1, zCS1 and the single x line have range; both xCS planes and every
	// y and z line hold one value.
	assert.Equal(t, Stats{Plotted: 3, Degenerate: 6, Exported: 5}, stats)

	want := []string{
		"tallies/F1/f11",
		"tallies/F1/f11_plots/xLineScan/f11_xLine_y1_z1",
		"tallies/F1/f11_plots/xLineScan/f11_xLine_y1_z1.fake",
		"tallies/F1/f11_plots/yCS/f11_yCS1.fake",
		"tallies/F1/f11_plots/yLineScan/f11_yLine_x1_z1",
		"tallies/F1/f11_plots/yLineScan/f11_yLine_x2_z1",
		"tallies/F1/f11_plots/zCS/f11_zCS1.fake",
		"tallies/F1/f11_plots/zLineScan/f11_zLine_x1_y1",
		"tallies/F1/f11_plots/zLineScan/f11_zLine_x2_y1",
	}
	if diff := cmp.Diff(want, mfs.Files("tallies")); diff != "" {
		t.Errorf("artifacts (-want +got):\n%s", diff)
	}

	data, err := mfs.ReadFile("tallies/F1/f11_plots/xLineScan/f11_xLine_y1_z1")
	require.NoError(t, err)
	assert.Equal(t, "x axis bin\ttally value \terror value\n"+
		"1         \t1.000000e+01\t1.000000e-01\n"+
		"2         \t2.000000e+01\t2.000000e-01\n", string(data))

	require.Len(t, fake.lines, 1)
	assert.Equal(t, []float64{10, 20}, fake.lines[0].Values)
	assert.Len(t, rec.paths[11], 3+5)
}

func TestMeshProcessor_DoesNotOverwrite(t *testing.T) {
	quiet(t)
	tl := testutil.LineMesh(t, 11)
	mfs, layout := flatten(t, tl)
	p := &MeshProcessor{
		Source:   &flattable.Source{FS: mfs, Layout: layout},
		Out:      Output{FS: mfs, Layout: layout, Renderer: &fakeRenderer{}},
		Families: slicer.CrossSections,
	}
	_, err := p.Process(tl)
	require.NoError(t, err)

	require.NoError(t, mfs.WriteFile("tallies/F1/f11_plots/yCS/f11_yCS1.fake", []byte("kept"), 0644))
	stats, err := p.Process(tl)
	require.NoError(t, err)
	assert.Equal(t, Stats{Existing: 2, Degenerate: 2}, stats)

	data, _ := mfs.ReadFile("tallies/F1/f11_plots/yCS/f11_yCS1.fake")
	assert.Equal(t, "kept", string(data))
}

func TestMeshProcessor_HeatLabelsAndSwitchAxis(t *testing.T) {
	quiet(t)
	tl := testutil.LineMesh(t, 13)
	mfs, layout := flatten(t, tl)
	fake := &fakeRenderer{}
	p := &MeshProcessor{
		Source:     &flattable.Source{FS: mfs, Layout: layout},
		Out:        Output{FS: mfs, Layout: layout, Renderer: fake},
		Families:   []slicer.Family{slicer.CrossSectionZ},
		SwitchAxis: true,
		Options:    render.Options{DPI: 50},
	}
	stats, err := p.Process(tl)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Plotted)
	assert.True(t, mfs.Exists("tallies/F3/f13_plots/zCS/f13_zCS1.fake"))

	require.Len(t, fake.planes, 1)
	r, c := fake.planes[0].Values.Dims()
	// fix z draws rows over y and columns over x; switched is the transpose.
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, "heat load", fake.opts[0].Quantity)
	assert.Equal(t, HeatLoadLabel, fake.opts[0].ValueLabel)
	assert.Equal(t, 50, fake.opts[0].DPI)
}

func TestMeshProcessor_Errors(t *testing.T) {
	quiet(t)
	tl := testutil.LineMesh(t, 11)
	mfs, layout := flatten(t, tl)
	x := 0.5
	p := &MeshProcessor{
		Source: &flattable.Source{FS: mfs, Layout: layout},
		Out:    Output{FS: mfs, Layout: layout, Renderer: &fakeRenderer{}},
		Pins:   slicer.Coordinates{X: &x},
	}
	_, err := p.Process(tl)
	assert.ErrorIs(t, err, tally.ErrInvalidCoordinate)
	assert.Equal(t, []string{"tallies/F1/f11"}, mfs.Files("tallies"), "nothing is drawn for a bad coordinate")

	p.Pins = slicer.Coordinates{}
	_, err = p.Process(testutil.LineMesh(t, 21))
	assert.ErrorIs(t, err, tally.ErrNotFound)

	_, err = p.Process(testutil.FluxTally(t, 14))
	assert.ErrorIs(t, err, tally.ErrUnsupportedType)
}

func TestFluxProcessor(t *testing.T) {
	quiet(t)
	tl := testutil.FluxTally(t, 14)
	mfs, layout := flatten(t, tl)
	fake := &fakeRenderer{}
	p := &FluxProcessor{
		Source: &flattable.Source{FS: mfs, Layout: layout},
		Out:    Output{FS: mfs, Layout: layout, Renderer: fake},
	}
	stats, err := p.Process(tl)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Plotted)
	for _, name := range []string{"Cell0_Energy", "Cell0_Wavelength", "Cell1_Energy", "Cell1_Wavelength"} {
		assert.True(t, mfs.Exists(filepath.Join("tallies/F4/f4_plots", name+".fake")), name)
	}

	require.Len(t, fake.spectra, 4)
	assert.Equal(t, []float64{1, 2}, fake.spectra[0].X, "zero energy dropped")
	assert.Equal(t, []float64{4, 2}, fake.spectra[0].Flux)
	assert.True(t, fake.spectra[1].Wavelength)
	assert.Equal(t, 1, fake.spectra[2].Cell)
}

func TestFluxProcessor_Modes(t *testing.T) {
	quiet(t)
	tl := testutil.FluxTally(t, 14)

	mfs, layout := flatten(t, tl)
	fake := &fakeRenderer{}
	p := &FluxProcessor{
		Source:    &flattable.Source{FS: mfs, Layout: layout},
		Out:       Output{FS: mfs, Layout: layout, Renderer: fake},
		XAxisMode: "W",
	}
	stats, err := p.Process(tl)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Plotted)
	for _, s := range fake.spectra {
		assert.True(t, s.Wavelength)
	}

	p.XAxisMode = "lambda"
	_, err = p.Process(tl)
	assert.ErrorIs(t, err, tally.ErrInvalidSelection)
}

func TestDepositionProcessor(t *testing.T) {
	quiet(t)
	tl := testutil.DepositionTally(t, 6)
	mfs, layout := flatten(t, tl)
	fake := &fakeRenderer{}
	ex, err := export.New(mfs, export.XLSX)
	require.NoError(t, err)

	p := &DepositionProcessor{
		Source: &flattable.Source{FS: mfs, Layout: layout},
		Out:    Output{FS: mfs, Layout: layout, Renderer: fake, Exporter: ex},
	}
	stats, err := p.Process(tl)
	require.NoError(t, err)
	assert.Equal(t, Stats{Plotted: 1, Exported: 1}, stats)
	assert.True(t, mfs.Exists("tallies/F6/f6_plots/tally6.fake"))
	assert.True(t, mfs.Exists("tallies/F6/f6_plots/tally6.xlsx"))
	require.Len(t, fake.bars, 1)
	assert.Equal(t, []string{"10", "20", "Total"}, fake.bars[0].Labels())

	mfs, layout = flatten(t, tl)
	fake = &fakeRenderer{}
	p = &DepositionProcessor{
		Source: &flattable.Source{FS: mfs, Layout: layout},
		Out:    Output{FS: mfs, Layout: layout, Renderer: fake},
		Filter: deposition.Options{Cells: []int{20, 7}},
	}
	_, err = p.Process(tl)
	require.NoError(t, err, "unknown filter ids are reported, not fatal")
	assert.Equal(t, []string{"20", "Total"}, fake.bars[0].Labels())
	assert.Equal(t, []int{7}, fake.bars[0].Unknown)
}

func TestContext(t *testing.T) {
	tl := testutil.LineMesh(t, 11)
	base := NewContext(tl)
	assert.Equal(t, tally.TypeCurrent, base.Type)
	assert.Empty(t, base.Coordinate())

	line := base.WithRequest(slicer.Request{Family: slicer.LineX, Index: [2]int{1, 2}})
	cs := base.WithRequest(slicer.Request{Family: slicer.CrossSectionY, Index: [2]int{3, 0}})
	assert.Equal(t, "y=1, z=2", line.Coordinate())
	assert.Equal(t, "y=3", cs.Coordinate())
	assert.Nil(t, base.Request, "With returns a copy")

	report := base.Report(2)
	assert.Contains(t, report, "tally 11 has length 2")
	lines := strings.Split(report, "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[2], "x \t 0.00"), lines[2])
	assert.Contains(t, lines[2], "3")
}
