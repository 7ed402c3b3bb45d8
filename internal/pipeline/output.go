package pipeline

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/mctalPlots/mctalPlots/internal/catalog"
	"github.com/mctalPlots/mctalPlots/internal/export"
	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/fsutil"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/render"
)

// TableSource reads the flat table of a tally. flattable.Source is the
// production implementation.
type TableSource interface {
	Table(number int) (flattable.Table, error)
}

// Recorder is notified of every artifact written.
type Recorder interface {
	RecordArtifact(tallyID int, kind, path string) error
}

// CatalogRecorder files artifacts under one catalog run.
type CatalogRecorder struct {
	DB    *catalog.DB
	RunID string
}

func (r CatalogRecorder) RecordArtifact(tallyID int, kind, path string) error {
	return r.DB.RecordArtifact(r.RunID, tallyID, kind, path)
}

// Artifact kinds
const (
	KindPlot   = "plot"
	KindExport = "export"
)

// Output bundles where and how processors write.
type Output struct {
	FS       fsutil.FileSystem
	Layout   flattable.Layout
	Renderer render.Renderer
	// Exporter writes line-scan and deposition exports; nil disables them.
	Exporter *export.Exporter
	// Recorder may be nil.
	Recorder Recorder
}

// figure writes one rendered artifact at stem+ext unless it already exists.
// It reports whether a file was written.
func (o Output) figure(tallyID int, stem string, draw func(io.Writer) error) (bool, error) {
	path := stem + o.Renderer.Ext()
	if o.FS.Exists(path) {
		monitoring.Debugf("%s exists, not overwriting", path)
		return false, nil
	}
	if err := o.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create plot dir: %w", err)
	}
	f, err := o.FS.Create(path)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := draw(f); err != nil {
		f.Close()
		return false, fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to close %s: %w", path, err)
	}
	o.record(tallyID, KindPlot, path)
	return true, nil
}

// record logs catalog failures instead of failing the tally; the catalog is
// advisory.
func (o Output) record(tallyID int, kind, path string) {
	if o.Recorder == nil || path == "" {
		return
	}
	if err := o.Recorder.RecordArtifact(tallyID, kind, path); err != nil {
		monitoring.Logf("catalog: %v", err)
	}
}

// Stats counts what a processor did with one tally.
type Stats struct {
	Plotted    int
	Existing   int
	Degenerate int
	Exported   int
}

func (s *Stats) add(o Stats) {
	s.Plotted += o.Plotted
	s.Existing += o.Existing
	s.Degenerate += o.Degenerate
	s.Exported += o.Exported
}

func (s Stats) String() string {
	return fmt.Sprintf("%d plotted, %d existing, %d without range, %d exported",
		s.Plotted, s.Existing, s.Degenerate, s.Exported)
}
