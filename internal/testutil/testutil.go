// Package testutil provides shared tally fixtures for package tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Boundaries returns n+1 unit-spaced boundaries starting at 0.
func Boundaries(n int) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// MeshTally builds an nx*ny*nz mesh tally with unit-spaced boundaries. Value
// i in nested order is i+1 and its relative error 0.01*(i+1).
func MeshTally(t testing.TB, number, nx, ny, nz int) *tally.MemoryTally {
	t.Helper()
	n := nx * ny * nz
	vals := make([]float64, n)
	errs := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i + 1)
		errs[i] = 0.01 * float64(i+1)
	}
	tl, err := tally.NewMemoryTally(number,
		map[tally.AxisKey]int{tally.AxisMeshI: nx, tally.AxisMeshJ: ny, tally.AxisMeshK: nz},
		map[tally.AxisKey][]float64{
			tally.AxisMeshI: Boundaries(nx),
			tally.AxisMeshJ: Boundaries(ny),
			tally.AxisMeshK: Boundaries(nz),
		},
		vals, errs, nil)
	AssertNoError(t, err)
	return tl
}

// LineMesh is the 2x1x1 mesh holding 10 and 20 along x, errors 0.1 and 0.2.
func LineMesh(t testing.TB, number int) *tally.MemoryTally {
	t.Helper()
	tl, err := tally.NewMemoryTally(number,
		map[tally.AxisKey]int{tally.AxisMeshI: 2, tally.AxisMeshJ: 1, tally.AxisMeshK: 1},
		map[tally.AxisKey][]float64{
			tally.AxisMeshI: {0, 1, 2},
			tally.AxisMeshJ: {0, 1},
			tally.AxisMeshK: {0, 1},
		},
		[]float64{10, 20}, []float64{0.1, 0.2}, nil)
	AssertNoError(t, err)
	return tl
}

// FluxTally has two cell bins over energies 0, 1 and 2 MeV with flux 9, 4,
// 2 and 8, 3, 1.
func FluxTally(t testing.TB, number int) *tally.MemoryTally {
	t.Helper()
	tl, err := tally.NewMemoryTally(number,
		map[tally.AxisKey]int{tally.AxisCell: 2, tally.AxisEnergy: 3},
		map[tally.AxisKey][]float64{tally.AxisEnergy: {0, 1, 2}},
		[]float64{9, 4, 2, 8, 3, 1}, nil, nil)
	AssertNoError(t, err)
	return tl
}

// DepositionTally has cells 10 and 20 plus a trailing total row (cell 99)
// with values 2, 4 and 6.
func DepositionTally(t testing.TB, number int) *tally.MemoryTally {
	t.Helper()
	tl, err := tally.NewMemoryTally(number,
		map[tally.AxisKey]int{tally.AxisCell: 3},
		nil,
		[]float64{2, 4, 6}, []float64{0.1, 0.1, 0.05}, []int{10, 20, 99})
	AssertNoError(t, err)
	return tl
}

// Record converts a MemoryTally back into its dump form.
func Record(tl *tally.MemoryTally) tally.Record {
	rec := tally.Record{
		Number: tl.ID,
		Bins:   make(map[string]int, len(tl.Counts)),
		Axes:   make(map[string][]float64, len(tl.Boundaries)),
		Values: tl.Values,
		Errors: tl.Errors,
		Cells:  tl.CellIDs,
	}
	for k, n := range tl.Counts {
		rec.Bins[k.String()] = n
	}
	for k, b := range tl.Boundaries {
		rec.Axes[k.String()] = b
	}
	return rec
}

// WriteDump writes ts as a JSON tally dump named mctal.json in a fresh temp
// dir and returns its path.
func WriteDump(t testing.TB, ts ...*tally.MemoryTally) string {
	t.Helper()
	doc := tally.Document{Source: "mctal"}
	for _, tl := range ts {
		doc.Tallies = append(doc.Tallies, Record(tl))
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	AssertNoError(t, err)
	path := filepath.Join(t.TempDir(), "mctal.json")
	AssertNoError(t, os.WriteFile(path, data, 0644))
	return path
}
