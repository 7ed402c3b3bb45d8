// Package deposition reduces an F6 energy-deposition table to one bar per
// cell, with absolute errors and an optional trailing Total entry.
package deposition

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// TotalLabel replaces the cell id of the last row.
const TotalLabel = "Total"

// Entry is one bar.
type Entry struct {
	Label string
	Cell  int
	Total bool
	Value float64
	Error float64 // absolute
}

// Options controls Aggregate.
type Options struct {
	// NoTotal drops the trailing Total row.
	NoTotal bool
	// Cells keeps only these cell ids when non-nil. Order follows the table.
	Cells []int
}

// Result is the aggregated table. Unknown lists filter ids that match no
// row; those are reported, not fatal.
type Result struct {
	Entries []Entry
	Unknown []int
}

// Aggregate maps row i of table to cellIDs[i], relabels the last row as the
// Total pseudo-cell, and converts relative errors to absolute ones. The cell
// list must have one id per row.
func Aggregate(table flattable.Table, cellIDs []int, opts Options) (Result, error) {
	if len(cellIDs) != len(table) {
		return Result{}, fmt.Errorf("%d cell ids for %d deposition rows: %w",
			len(cellIDs), len(table), tally.ErrShapeMismatch)
	}
	if len(table) == 0 {
		return Result{}, nil
	}

	entries := make([]Entry, len(table))
	for i, r := range table {
		entries[i] = Entry{
			Label: strconv.Itoa(cellIDs[i]),
			Cell:  cellIDs[i],
			Value: r.Value,
			Error: r.Error * r.Value,
		}
	}
	last := &entries[len(entries)-1]
	last.Label, last.Total = TotalLabel, true

	var res Result
	if opts.Cells != nil {
		present := make([]int, 0, len(entries)-1)
		for _, e := range entries[:len(entries)-1] {
			present = append(present, e.Cell)
		}
		res.Unknown = tally.Select(present, opts.Cells).Unknown

		keep := make(map[int]bool, len(opts.Cells))
		for _, c := range opts.Cells {
			keep[c] = true
		}
		n := 0
		for _, e := range entries {
			if (e.Total && !opts.NoTotal) || (!e.Total && keep[e.Cell]) {
				entries[n] = e
				n++
			}
		}
		entries = entries[:n]
	} else if opts.NoTotal {
		entries = entries[:len(entries)-1]
	}
	res.Entries = entries
	return res, nil
}

// Err reports filter ids that matched nothing.
func (r Result) Err() error {
	return tally.Selection{Unknown: r.Unknown}.Err()
}

// Labels returns the bar labels in order.
func (r Result) Labels() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Label
	}
	return out
}

// Values returns the bar heights in order.
func (r Result) Values() []float64 {
	out := make([]float64, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Value
	}
	return out
}

// Errors returns the absolute errors in order.
func (r Result) Errors() []float64 {
	out := make([]float64, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Error
	}
	return out
}

// Summary returns the mean and sample standard deviation of the cell
// entries, leaving out Total. Fewer than two cells have zero deviation.
func (r Result) Summary() (mean, std float64) {
	var xs []float64
	for _, e := range r.Entries {
		if !e.Total {
			xs = append(xs, e.Value)
		}
	}
	if len(xs) == 0 {
		return 0, 0
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}
