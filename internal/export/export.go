// Package export writes line scans and deposition tables as text or XLSX
// next to their plots.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mctalPlots/mctalPlots/internal/deposition"
	"github.com/mctalPlots/mctalPlots/internal/fsutil"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Formats
const (
	Text = "txt"
	XLSX = "xlsx"
)

// lineRowFormat truncates the bin position to an integer.
const lineRowFormat = "%-10d\t%e\t%e\n"

// WriteLineScanText writes a header and one row per bin: upper boundary,
// value, relative error.
func WriteLineScanText(w io.Writer, l *slicer.Line) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s axis bin\ttally value \terror value\n", l.Along)
	for i, v := range l.Values {
		fmt.Fprintf(bw, lineRowFormat, int(l.Positions[i]), v, l.Errors[i])
	}
	return bw.Flush()
}

// WriteLineScanXLSX writes the same columns to a single-sheet workbook.
func WriteLineScanXLSX(w io.Writer, l *slicer.Line) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%sLineScan", l.Along)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []interface{}{l.Along.String() + " axis bin", "tally value", "error value"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, v := range l.Values {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{l.Positions[i], v, l.Errors[i]}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// WriteDepositionXLSX writes one row per bar: label, value, absolute error.
func WriteDepositionXLSX(w io.Writer, tallyID int, r deposition.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("f%d", tallyID)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	header := []interface{}{"cell", "energy deposited", "error value"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, e := range r.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{e.Label, e.Value, e.Error}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// Exporter writes export files through a FileSystem. Existing exports are
// rewritten.
type Exporter struct {
	FS     fsutil.FileSystem
	Format string
}

// New validates format ("" means text).
func New(fsys fsutil.FileSystem, format string) (*Exporter, error) {
	switch format {
	case "":
		format = Text
	case Text, XLSX:
	default:
		return nil, fmt.Errorf("export format %q: %w", format, tally.ErrInvalidSelection)
	}
	return &Exporter{FS: fsys, Format: format}, nil
}

// LineScan writes l at stem (text) or stem.xlsx and returns the path. The
// parent directory must exist.
func (e *Exporter) LineScan(stem string, l *slicer.Line) (string, error) {
	if e.Format == XLSX {
		path := stem + ".xlsx"
		return path, e.write(path, func(w io.Writer) error { return WriteLineScanXLSX(w, l) })
	}
	return stem, e.write(stem, func(w io.Writer) error { return WriteLineScanText(w, l) })
}

// Deposition writes the workbook stem.xlsx. Text format has no deposition
// export; it returns "" and does nothing.
func (e *Exporter) Deposition(stem string, tallyID int, r deposition.Result) (string, error) {
	if e.Format != XLSX {
		return "", nil
	}
	path := stem + ".xlsx"
	return path, e.write(path, func(w io.Writer) error { return WriteDepositionXLSX(w, tallyID, r) })
}

func (e *Exporter) write(path string, fn func(io.Writer) error) error {
	f, err := e.FS.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	monitoring.Debugf("exported %s", path)
	return nil
}
