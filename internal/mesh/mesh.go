// Package mesh reshapes a flat mesh-tally table into a three-dimensional
// value/error grid indexed by the i, j and k spatial bins.
//
// Element [a,b,c] is the cell between boundaries a and a+1 on x (and so on),
// so a mesh built from boundary arrays of lengths nx, ny, nz has shape
// (nx-1, ny-1, nz-1). Storage is row-major with x slowest and z fastest, the
// order in which flat tables enumerate i, j, k.
package mesh

import (
	"fmt"

	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Axis is a spatial mesh axis.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Key maps a spatial axis onto its tally axis.
func (a Axis) Key() tally.AxisKey {
	switch a {
	case Y:
		return tally.AxisMeshJ
	case Z:
		return tally.AxisMeshK
	}
	return tally.AxisMeshI
}

// Axes holds the boundary coordinates of the three spatial axes.
type Axes struct {
	X, Y, Z []float64
}

// AxesOf reads the i, j, k boundaries of a tally.
func AxesOf(t tally.Tally) Axes {
	return Axes{X: t.Axis(tally.AxisMeshI), Y: t.Axis(tally.AxisMeshJ), Z: t.Axis(tally.AxisMeshK)}
}

// Boundaries returns the boundary array of a.
func (ax Axes) Boundaries(a Axis) []float64 {
	switch a {
	case Y:
		return ax.Y
	case Z:
		return ax.Z
	}
	return ax.X
}

// Mesh holds parallel value and relative-error grids.
type Mesh struct {
	NX, NY, NZ int
	Values     []float64
	Errors     []float64
}

// Reconstruct reshapes the value and error columns of table into a Mesh sized
// by the boundary arrays. The table must hold exactly one record per spatial
// cell; anything else is tally.ErrShapeMismatch.
func Reconstruct(table flattable.Table, axes Axes) (*Mesh, error) {
	nx, ny, nz := len(axes.X)-1, len(axes.Y)-1, len(axes.Z)-1
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("axis boundaries %d/%d/%d need at least two points each: %w",
			len(axes.X), len(axes.Y), len(axes.Z), tally.ErrShapeMismatch)
	}
	if want := nx * ny * nz; len(table) != want {
		return nil, fmt.Errorf("table has %d records, mesh (%d,%d,%d) needs %d: %w",
			len(table), nx, ny, nz, want, tally.ErrShapeMismatch)
	}
	return &Mesh{NX: nx, NY: ny, NZ: nz, Values: table.Values(), Errors: table.Errors()}, nil
}

// Shape returns the bin counts along x, y, z.
func (m *Mesh) Shape() [3]int { return [3]int{m.NX, m.NY, m.NZ} }

// Len is the number of spatial cells.
func (m *Mesh) Len() int { return m.NX * m.NY * m.NZ }

// Dim returns the bin count along a.
func (m *Mesh) Dim(a Axis) int {
	switch a {
	case Y:
		return m.NY
	case Z:
		return m.NZ
	}
	return m.NX
}

func (m *Mesh) offset(a, b, c int) int { return (a*m.NY+b)*m.NZ + c }

// At returns the value of cell [a,b,c].
func (m *Mesh) At(a, b, c int) float64 { return m.Values[m.offset(a, b, c)] }

// ErrAt returns the relative error of cell [a,b,c].
func (m *Mesh) ErrAt(a, b, c int) float64 { return m.Errors[m.offset(a, b, c)] }

// Contains reports whether [a,b,c] addresses a cell.
func (m *Mesh) Contains(a, b, c int) bool {
	return a >= 0 && a < m.NX && b >= 0 && b < m.NY && c >= 0 && c < m.NZ
}
