// Package flattable serializes eleven-axis tallies into the flat
// (cell, energy, value, error) text tables that every later stage reads, and
// reads them back.
package flattable

import (
	"bufio"
	"fmt"

	"github.com/mctalPlots/mctalPlots/internal/fsutil"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// recordFormat is the persisted line layout: left-justified cell index, then
// tab-separated energy, value and relative error in scientific notation.
const recordFormat = "%-5d%e\t%e\t%e\n"

// Writer emits one flat table per tally under a Layout.
type Writer struct {
	FS     fsutil.FileSystem
	Layout Layout
	// SkipExisting leaves tables that are already on disk untouched.
	SkipExisting bool
}

// NewWriter returns a Writer over the OS filesystem.
func NewWriter(layout Layout) *Writer {
	return &Writer{FS: fsutil.OSFileSystem{}, Layout: layout}
}

// WriteResult describes one table written (or skipped).
type WriteResult struct {
	Number  int
	Path    string
	Records int
	Bounds  tally.Bounds
	Skipped bool
}

// Write enumerates every bin combination of t in nested order and writes one
// record per combination to <root>/F<d>/f<id>.
func (w *Writer) Write(t tally.Tally) (WriteResult, error) {
	typ := tally.TypeOf(t.Number())
	path := w.Layout.TablePath(t.Number())
	bounds := tally.BoundsOf(t)
	res := WriteResult{Number: t.Number(), Path: path, Bounds: bounds}

	if err := w.FS.MkdirAll(w.Layout.TypeDir(typ), 0755); err != nil {
		return res, fmt.Errorf("failed to create tally type dir: %w", err)
	}
	if w.SkipExisting && w.FS.Exists(path) {
		res.Skipped = true
		res.Records = bounds.Total()
		return res, nil
	}

	f, err := w.FS.Create(path)
	if err != nil {
		return res, fmt.Errorf("failed to create flat table: %w", err)
	}
	bw := bufio.NewWriter(f)

	energies := t.Axis(tally.AxisEnergy)
	it := tally.NewIndexIterator(bounds)
	for it.Next() {
		ix := it.Index()
		cell := ix.At(tally.AxisCell)
		var eVal float64
		if e := ix.At(tally.AxisEnergy); e < len(energies) {
			eVal = energies[e]
		}
		val := t.Value(ix, tally.KindValue)
		rel := t.Value(ix, tally.KindError)
		if _, err := fmt.Fprintf(bw, recordFormat, cell, eVal, val, rel); err != nil {
			f.Close()
			return res, fmt.Errorf("failed to write record %d: %w", it.Ordinal(), err)
		}
		res.Records++
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return res, fmt.Errorf("failed to flush flat table: %w", err)
	}
	if err := f.Close(); err != nil {
		return res, fmt.Errorf("failed to close flat table: %w", err)
	}
	monitoring.Debugf("wrote %s: %d records", path, res.Records)
	return res, nil
}

// WriteAll writes every tally of a supported type. Unsupported types are
// still flattened, so the tables exist for external tools, but are logged.
func (w *Writer) WriteAll(ts []tally.Tally) ([]WriteResult, error) {
	out := make([]WriteResult, 0, len(ts))
	for _, t := range ts {
		if typ := tally.TypeOf(t.Number()); !typ.Supported() {
			monitoring.Logf("tally f%d has type %d; plotting is not supported", t.Number(), int(typ))
		}
		res, err := w.Write(t)
		if err != nil {
			return out, fmt.Errorf("tally %d: %w", t.Number(), err)
		}
		out = append(out, res)
	}
	return out, nil
}
