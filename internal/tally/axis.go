package tally

import "fmt"

// AxisKey names one of the eleven standardized tally axes.
type AxisKey byte

// Axis keys in enumeration order. The order is the flat-table write order:
// the cell axis is outermost and mesh-k innermost.
const (
	AxisCell       AxisKey = 'f' // cell, surface or detector
	AxisDirect     AxisKey = 'd' // total vs. direct, flagged vs. unflagged
	AxisUser       AxisKey = 'u'
	AxisSegment    AxisKey = 's'
	AxisMultiplier AxisKey = 'm'
	AxisCosine     AxisKey = 'c'
	AxisEnergy     AxisKey = 'e' // MeV
	AxisTime       AxisKey = 't' // shakes
	AxisMeshI      AxisKey = 'i'
	AxisMeshJ      AxisKey = 'j'
	AxisMeshK      AxisKey = 'k'
)

// NumAxes is the number of standardized axes.
const NumAxes = 11

// Axes lists every axis key in nested enumeration order.
var Axes = [NumAxes]AxisKey{
	AxisCell, AxisDirect, AxisUser, AxisSegment, AxisMultiplier,
	AxisCosine, AxisEnergy, AxisTime, AxisMeshI, AxisMeshJ, AxisMeshK,
}

// Position returns the slot of k in an Index, or -1 for an unknown key.
func (k AxisKey) Position() int {
	for i, a := range Axes {
		if a == k {
			return i
		}
	}
	return -1
}

func (k AxisKey) String() string { return string(rune(k)) }

// ParseAxisKey converts a one-letter axis name into an AxisKey.
func ParseAxisKey(s string) (AxisKey, error) {
	if len(s) == 1 {
		k := AxisKey(s[0])
		if k.Position() >= 0 {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown axis %q: %w", s, ErrInvalidSelection)
}

// Index addresses one bin combination; slots follow Axes.
type Index [NumAxes]int

// At returns the bin index for axis k.
func (ix Index) At(k AxisKey) int { return ix[k.Position()] }

// Bounds holds the bin count of every axis, in Axes order.
type Bounds [NumAxes]int

// BoundsOf reads the bin counts of t. An axis reporting no bins makes the
// whole product empty.
func BoundsOf(t Tally) Bounds {
	var b Bounds
	for i, k := range Axes {
		b[i] = max(t.Bins(k), 0)
	}
	return b
}

// Total is the number of bin combinations, the product of all counts.
func (b Bounds) Total() int {
	total := 1
	for _, n := range b {
		total *= n
	}
	return total
}

// Spatial returns the i, j and k bin counts.
func (b Bounds) Spatial() (nx, ny, nz int) {
	return b[AxisMeshI.Position()], b[AxisMeshJ.Position()], b[AxisMeshK.Position()]
}

// IndexIterator walks every Index within Bounds as a cartesian product, the
// last axis varying fastest.
type IndexIterator struct {
	bounds Bounds
	cur    Index
	n      int
	total  int
}

// NewIndexIterator starts an enumeration over b.
func NewIndexIterator(b Bounds) *IndexIterator {
	return &IndexIterator{bounds: b, n: -1, total: b.Total()}
}

// Next advances to the following combination and reports whether one exists.
func (it *IndexIterator) Next() bool {
	if it.n+1 >= it.total {
		it.n = it.total
		return false
	}
	it.n++
	if it.n == 0 {
		return true
	}
	for slot := NumAxes - 1; slot >= 0; slot-- {
		it.cur[slot]++
		if it.cur[slot] < it.bounds[slot] {
			break
		}
		it.cur[slot] = 0
	}
	return true
}

// Index returns the current combination.
func (it *IndexIterator) Index() Index { return it.cur }

// Ordinal is the zero-based row number of the current combination.
func (it *IndexIterator) Ordinal() int { return it.n }

// Ordinal computes the row number of ix in nested order, the inverse of the
// enumeration performed by IndexIterator.
func (b Bounds) Ordinal(ix Index) int {
	ord := 0
	for slot := 0; slot < NumAxes; slot++ {
		ord = ord*b[slot] + ix[slot]
	}
	return ord
}
