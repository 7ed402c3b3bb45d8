// Package slicer extracts 2D cross-sections and 1D line scans from a
// reconstructed mesh.
//
// Positions are boundary indices: index n along an axis selects the cell
// behind boundary n, i.e. cell n-1. Boundary index 0 has no cell behind it and
// never yields a slice, so an axis with n boundaries has n-1 valid positions.
package slicer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/mctalPlots/mctalPlots/internal/mesh"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Plane is a cross-section at a fixed boundary index. Values and Errors are
// laid out for display: columns follow the first in-plane axis and rows the
// second, so a fix-x plane has rows over z and columns over y.
type Plane struct {
	Fixed mesh.Axis
	Index int

	// Col and Row name the in-plane axes for columns and rows.
	Col, Row mesh.Axis
	// ColEdges and RowEdges are the boundary coordinates along Col and Row.
	ColEdges, RowEdges []float64
	// Lower and Upper bound the fixed-axis cell.
	Lower, Upper float64

	Values *mat.Dense
	Errors *mat.Dense
}

// Line is a line scan along one axis with the other two fixed.
type Line struct {
	Along mesh.Axis
	// Fixed holds the two fixed axes in x, y, z order and their boundary
	// indices.
	Fixed   [2]mesh.Axis
	Indices [2]int
	// At holds the boundary coordinates the fixed indices select.
	At [2]float64

	// Positions are the upper boundaries of each bin along the scan axis.
	Positions []float64
	Values    []float64
	Errors    []float64
}

// Extractor slices one reconstructed mesh.
type Extractor struct {
	Mesh *mesh.Mesh
	Axes mesh.Axes
}

// New pairs a mesh with its boundaries. The boundary lengths must agree with
// the mesh shape.
func New(m *mesh.Mesh, axes mesh.Axes) (*Extractor, error) {
	for _, a := range []mesh.Axis{mesh.X, mesh.Y, mesh.Z} {
		if len(axes.Boundaries(a))-1 != m.Dim(a) {
			return nil, fmt.Errorf("%s axis has %d boundaries for %d bins: %w",
				a, len(axes.Boundaries(a)), m.Dim(a), tally.ErrShapeMismatch)
		}
	}
	return &Extractor{Mesh: m, Axes: axes}, nil
}

// Positions lists the valid boundary indices along a, 1 through n-1.
func (e *Extractor) Positions(a mesh.Axis) []int {
	return Positions(e.Axes.Boundaries(a))
}

// Positions lists the valid boundary indices of a boundary array.
func Positions(boundaries []float64) []int {
	if len(boundaries) < 2 {
		return nil
	}
	out := make([]int, 0, len(boundaries)-1)
	for n := 1; n < len(boundaries); n++ {
		out = append(out, n)
	}
	return out
}

func (e *Extractor) checkIndex(a mesh.Axis, index int) error {
	if index < 1 || index >= len(e.Axes.Boundaries(a)) {
		return fmt.Errorf("%s boundary index %d outside 1..%d: %w",
			a, index, len(e.Axes.Boundaries(a))-1, tally.ErrInvalidCoordinate)
	}
	return nil
}

// inPlane returns the two remaining axes in x, y, z order.
func inPlane(fixed mesh.Axis) (first, second mesh.Axis) {
	switch fixed {
	case mesh.X:
		return mesh.Y, mesh.Z
	case mesh.Y:
		return mesh.X, mesh.Z
	}
	return mesh.X, mesh.Y
}

// CrossSection fixes one axis at boundary index and returns the plane over
// the other two, transposed to row=second axis, column=first axis.
func (e *Extractor) CrossSection(fixed mesh.Axis, index int) (*Plane, error) {
	if err := e.checkIndex(fixed, index); err != nil {
		return nil, err
	}
	first, second := inPlane(fixed)
	n1, n2 := e.Mesh.Dim(first), e.Mesh.Dim(second)
	cell := index - 1

	vals := make([]float64, 0, n1*n2)
	errs := make([]float64, 0, n1*n2)
	for p := 0; p < n1; p++ {
		for q := 0; q < n2; q++ {
			a, b, c := e.coords(fixed, cell, p, q)
			vals = append(vals, e.Mesh.At(a, b, c))
			errs = append(errs, e.Mesh.ErrAt(a, b, c))
		}
	}

	// (first, second) as sliced from the mesh; transpose for display.
	var v, r mat.Dense
	v.CloneFrom(mat.NewDense(n1, n2, vals).T())
	r.CloneFrom(mat.NewDense(n1, n2, errs).T())

	bounds := e.Axes.Boundaries(fixed)
	return &Plane{
		Fixed:    fixed,
		Index:    index,
		Col:      first,
		Row:      second,
		ColEdges: e.Axes.Boundaries(first),
		RowEdges: e.Axes.Boundaries(second),
		Lower:    bounds[index-1],
		Upper:    bounds[index],
		Values:   &v,
		Errors:   &r,
	}, nil
}

// coords places the fixed cell and the in-plane cells (p along first, q along
// second) back into mesh [x,y,z] order.
func (e *Extractor) coords(fixed mesh.Axis, cell, p, q int) (int, int, int) {
	switch fixed {
	case mesh.X:
		return cell, p, q
	case mesh.Y:
		return p, cell, q
	}
	return p, q, cell
}

// LineScan varies along one axis with the other two fixed at boundary indices
// i1 and i2, given in x, y, z order (an x line takes y then z). The scan is
// read out of the cross-section that fixes the first of those axes.
func (e *Extractor) LineScan(along mesh.Axis, i1, i2 int) (*Line, error) {
	fixedA, fixedB := inPlane(along)
	if err := e.checkIndex(fixedA, i1); err != nil {
		return nil, err
	}
	if err := e.checkIndex(fixedB, i2); err != nil {
		return nil, err
	}

	var vals, errs []float64
	switch along {
	case mesh.X:
		// y fixed: rows over z, columns over x.
		p, err := e.CrossSection(mesh.Y, i1)
		if err != nil {
			return nil, err
		}
		vals = mat.Row(nil, i2-1, p.Values)
		errs = mat.Row(nil, i2-1, p.Errors)
	case mesh.Y:
		// z fixed: rows over y, columns over x.
		p, err := e.CrossSection(mesh.Z, i2)
		if err != nil {
			return nil, err
		}
		vals = mat.Col(nil, i1-1, p.Values)
		errs = mat.Col(nil, i1-1, p.Errors)
	default:
		// x fixed: rows over z, columns over y.
		p, err := e.CrossSection(mesh.X, i1)
		if err != nil {
			return nil, err
		}
		vals = mat.Col(nil, i2-1, p.Values)
		errs = mat.Col(nil, i2-1, p.Errors)
	}

	bounds := e.Axes.Boundaries(along)
	return &Line{
		Along:     along,
		Fixed:     [2]mesh.Axis{fixedA, fixedB},
		Indices:   [2]int{i1, i2},
		At:        [2]float64{e.Axes.Boundaries(fixedA)[i1], e.Axes.Boundaries(fixedB)[i2]},
		Positions: append([]float64(nil), bounds[1:]...),
		Values:    vals,
		Errors:    errs,
	}, nil
}

// Switched returns the alternate orientation, rows over the first in-plane
// axis and columns over the second. It is the element-wise transpose of p.
func (p *Plane) Switched() *Plane {
	out := *p
	out.Col, out.Row = p.Row, p.Col
	out.ColEdges, out.RowEdges = p.RowEdges, p.ColEdges
	var v, r mat.Dense
	v.CloneFrom(p.Values.T())
	r.CloneFrom(p.Errors.T())
	out.Values, out.Errors = &v, &r
	return &out
}

// Range returns the minimum and maximum value of the plane.
func (p *Plane) Range() (lo, hi float64) {
	data := p.Values.RawMatrix().Data
	return floats.Min(data), floats.Max(data)
}

// Degenerate reports a plane without dynamic range.
func (p *Plane) Degenerate() bool {
	lo, hi := p.Range()
	return lo == hi
}

// Range returns the minimum and maximum value of the line.
func (l *Line) Range() (lo, hi float64) {
	return floats.Min(l.Values), floats.Max(l.Values)
}

// Degenerate reports a line without dynamic range.
func (l *Line) Degenerate() bool {
	lo, hi := l.Range()
	return lo == hi
}
