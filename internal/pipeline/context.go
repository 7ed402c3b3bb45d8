// Package pipeline runs the per-type processors over flat tables: mesh
// tallies (F1, F3) are swept into cross-sections and line scans, flux
// tallies (F4) into energy and wavelength spectra, and deposition tallies
// (F6) into per-cell bar charts.
//
// Processors share no state. Each one composes a TableSource for reading and
// an Output for writing, and threads an immutable Context through its stages.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/mctalPlots/mctalPlots/internal/mesh"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Context is what a stage knows about the work in progress. It is passed by
// value; the With methods return modified copies.
type Context struct {
	Tally int
	Type  tally.Type
	Axes  mesh.Axes
	Mesh  *mesh.Mesh
	// Request is the slice being produced, if any.
	Request *slicer.Request
}

// NewContext starts a context for tally t.
func NewContext(t tally.Tally) Context {
	return Context{Tally: t.Number(), Type: tally.TypeOf(t.Number()), Axes: mesh.AxesOf(t)}
}

// WithMesh returns a copy carrying the reconstructed mesh.
func (c Context) WithMesh(m *mesh.Mesh) Context {
	c.Mesh = m
	return c
}

// WithRequest returns a copy positioned on r.
func (c Context) WithRequest(r slicer.Request) Context {
	c.Request = &r
	return c
}

// Coordinate describes the current request position as boundary indices,
// e.g. "x=3" for a cross-section or "y=1, z=2" for an x line scan.
func (c Context) Coordinate() string {
	if c.Request == nil {
		return ""
	}
	r := *c.Request
	if !r.Family.IsLine() {
		return fmt.Sprintf("%s=%d", r.Family.Axis(), r.Index[0])
	}
	a, b := fixedAxes(r.Family.Axis())
	return fmt.Sprintf("%s=%d, %s=%d", a, r.Index[0], b, r.Index[1])
}

// fixedAxes are the two axes held constant by a line along a, in x, y, z
// order.
func fixedAxes(along mesh.Axis) (mesh.Axis, mesh.Axis) {
	switch along {
	case mesh.X:
		return mesh.Y, mesh.Z
	case mesh.Y:
		return mesh.X, mesh.Z
	}
	return mesh.X, mesh.Y
}

// Report is the verbose per-tally summary: start, end, step and boundary
// count of every mesh axis, then the table length and mesh shape.
func (c Context) Report(records int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "tally %d\n", c.Tally)
	fmt.Fprintf(&b, "axis \t initial point \t final point \t step \t bins\n")
	for _, a := range []mesh.Axis{mesh.X, mesh.Y, mesh.Z} {
		bounds := c.Axes.Boundaries(a)
		if len(bounds) == 0 {
			fmt.Fprintf(&b, "%s \t (no boundaries)\n", a)
			continue
		}
		first, last := bounds[0], bounds[len(bounds)-1]
		var step float64
		if len(bounds) > 1 {
			step = (last - first) / float64(len(bounds)-1)
		}
		fmt.Fprintf(&b, "%s \t %-15.2f %-15.2f %-7g %-8d\n", a, first, last, step, len(bounds))
	}
	fmt.Fprintf(&b, "tally %d has length %d", c.Tally, records)
	if c.Mesh != nil {
		fmt.Fprintf(&b, " and shape %v", c.Mesh.Shape())
	}
	return b.String()
}
