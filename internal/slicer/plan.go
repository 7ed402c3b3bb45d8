package slicer

import (
	"fmt"
	"math"

	"github.com/mctalPlots/mctalPlots/internal/mesh"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Family is a kind of slice request.
type Family int

const (
	CrossSectionX Family = iota // yz-plane at fixed x
	CrossSectionY               // xz-plane at fixed y
	CrossSectionZ               // xy-plane at fixed z
	LineX                       // x line at fixed y, z
	LineY                       // y line at fixed x, z
	LineZ                       // z line at fixed x, y
)

var familyNames = [...]string{"xCS", "yCS", "zCS", "xLineScan", "yLineScan", "zLineScan"}

// String is the plot folder name of the family.
func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// IsLine reports a line-scan family.
func (f Family) IsLine() bool { return f >= LineX }

// Axis is the fixed axis of a cross-section or the scan axis of a line.
func (f Family) Axis() mesh.Axis {
	return mesh.Axis(int(f) % 3)
}

// CrossSections and LineScans are the two family groups.
var (
	CrossSections = []Family{CrossSectionX, CrossSectionY, CrossSectionZ}
	LineScans     = []Family{LineX, LineY, LineZ}
)

// Coordinates optionally pins the sweep to boundary coordinate values. A nil
// field leaves that axis free.
type Coordinates struct {
	X, Y, Z *float64
}

// Get returns the pinned value for a, if any.
func (c Coordinates) Get(a mesh.Axis) *float64 {
	switch a {
	case mesh.Y:
		return c.Y
	case mesh.Z:
		return c.Z
	}
	return c.X
}

// coordinateTolerance absorbs decimal round-off in user-supplied values.
const coordinateTolerance = 1e-9

// IndexOf finds value among boundaries. A value that is not a boundary is
// tally.ErrInvalidCoordinate.
func IndexOf(boundaries []float64, value float64) (int, error) {
	for i, b := range boundaries {
		if b == value {
			return i, nil
		}
	}
	for i, b := range boundaries {
		scale := math.Max(1, math.Max(math.Abs(b), math.Abs(value)))
		if math.Abs(b-value) <= coordinateTolerance*scale {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%g is not an axis boundary %v: %w", value, boundaries, tally.ErrInvalidCoordinate)
}

// Request is one slice to extract. Cross-sections use Index[0]; line scans
// use both, in x, y, z order of the fixed axes.
type Request struct {
	Family Family
	Index  [2]int
}

// Plan expands the selected families into deduplicated requests over the
// sweep positions. Every combination (x, y, z) of valid positions that
// matches the pinned coordinates contributes its slices; a pinned coordinate
// on boundary index 0 leaves nothing to sweep.
func Plan(axes mesh.Axes, pins Coordinates, families []Family) ([]Request, error) {
	var pos [3][]int
	for _, a := range []mesh.Axis{mesh.X, mesh.Y, mesh.Z} {
		bounds := axes.Boundaries(a)
		if v := pins.Get(a); v != nil {
			n, err := IndexOf(bounds, *v)
			if err != nil {
				return nil, fmt.Errorf("%s coordinate: %w", a, err)
			}
			if n > 0 {
				pos[a] = []int{n}
			}
			continue
		}
		pos[a] = Positions(bounds)
	}
	if len(pos[mesh.X]) == 0 || len(pos[mesh.Y]) == 0 || len(pos[mesh.Z]) == 0 {
		return nil, nil
	}

	var out []Request
	for _, f := range families {
		switch f {
		case CrossSectionX, CrossSectionY, CrossSectionZ:
			for _, n := range pos[f.Axis()] {
				out = append(out, Request{Family: f, Index: [2]int{n, 0}})
			}
		case LineX, LineY, LineZ:
			first, second := inPlane(f.Axis())
			for _, a := range pos[first] {
				for _, b := range pos[second] {
					out = append(out, Request{Family: f, Index: [2]int{a, b}})
				}
			}
		default:
			return nil, fmt.Errorf("family %v: %w", f, tally.ErrInvalidSelection)
		}
	}
	return out, nil
}

// Slice is the outcome of one request: exactly one of Plane or Line is set.
type Slice struct {
	Request Request
	Plane   *Plane
	Line    *Line
}

// Degenerate reports a slice without dynamic range.
func (s Slice) Degenerate() bool {
	if s.Plane != nil {
		return s.Plane.Degenerate()
	}
	return s.Line != nil && s.Line.Degenerate()
}

// Extract materializes a request.
func (e *Extractor) Extract(r Request) (Slice, error) {
	out := Slice{Request: r}
	var err error
	if r.Family.IsLine() {
		out.Line, err = e.LineScan(r.Family.Axis(), r.Index[0], r.Index[1])
	} else {
		out.Plane, err = e.CrossSection(r.Family.Axis(), r.Index[0])
	}
	return out, err
}
