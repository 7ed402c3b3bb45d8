// Package tally holds the data model shared by the flattening and mesh
// reconstruction stages: the eleven-axis tally accessor supplied by an
// external parser, the tally type derived from the identifier, the nested
// index enumeration and the sentinel error set.
package tally

import (
	"fmt"
	"strconv"
)

// ValueKind selects between the tallied value and its relative error.
type ValueKind int

const (
	KindValue ValueKind = 0
	KindError ValueKind = 1
)

// Tally is the read-only accessor handed over by the external parser.
type Tally interface {
	// Number is the tally identifier, e.g. 14 or 1001.
	Number() int
	// Bins is the bin count of axis k.
	Bins(k AxisKey) int
	// Axis returns the boundary coordinates of axis k, or nil when the parser
	// provides none.
	Axis(k AxisKey) []float64
	// Value returns the value (KindValue) or relative error (KindError) at ix.
	Value(ix Index, kind ValueKind) float64
	// Cells maps cell-axis bin positions to physical cell identifiers.
	Cells() []int
}

// Type is the tally type, the last decimal digit of the identifier.
type Type int

const (
	TypeCurrent    Type = 1 // surface current / TMESH1 mesh
	TypeFlux       Type = 4 // cell flux
	TypeDeposition Type = 6 // energy deposition
	TypeHeat       Type = 3 // TMESH3 mesh
)

// TypeOf derives the type from a tally identifier.
func TypeOf(number int) Type {
	if number < 0 {
		number = -number
	}
	return Type(number % 10)
}

// Supported reports whether the post-processor handles this type.
func (t Type) Supported() bool {
	switch t {
	case TypeCurrent, TypeHeat, TypeFlux, TypeDeposition:
		return true
	}
	return false
}

// IsMesh reports whether tallies of this type carry an i/j/k spatial mesh.
func (t Type) IsMesh() bool { return t == TypeCurrent || t == TypeHeat }

// Folder is the type directory name, "F1" for type 1.
func (t Type) Folder() string { return "F" + strconv.Itoa(int(t)) }

func (t Type) String() string { return fmt.Sprintf("f%d", int(t)) }

// ParseType accepts "1", "f1" or "F1".
func ParseType(s string) (Type, error) {
	if len(s) > 1 && (s[0] == 'f' || s[0] == 'F') {
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 9 {
		return 0, fmt.Errorf("tally type %q: %w", s, ErrInvalidSelection)
	}
	t := Type(n)
	if !t.Supported() {
		return t, fmt.Errorf("type %d: %w", n, ErrUnsupportedType)
	}
	return t, nil
}

// MemoryTally is a Tally backed by slices, values laid out in nested order.
type MemoryTally struct {
	ID         int
	Counts     map[AxisKey]int
	Boundaries map[AxisKey][]float64
	Values     []float64
	Errors     []float64
	CellIDs    []int
}

// NewMemoryTally builds a tally and checks that values and errors cover every
// bin combination.
func NewMemoryTally(id int, counts map[AxisKey]int, axes map[AxisKey][]float64, values, errs []float64, cells []int) (*MemoryTally, error) {
	t := &MemoryTally{ID: id, Counts: counts, Boundaries: axes, Values: values, Errors: errs, CellIDs: cells}
	want := BoundsOf(t).Total()
	if len(values) != want {
		return nil, fmt.Errorf("tally %d: %d values for %d bins: %w", id, len(values), want, ErrShapeMismatch)
	}
	if errs != nil && len(errs) != want {
		return nil, fmt.Errorf("tally %d: %d errors for %d bins: %w", id, len(errs), want, ErrShapeMismatch)
	}
	return t, nil
}

func (t *MemoryTally) Number() int { return t.ID }

func (t *MemoryTally) Bins(k AxisKey) int {
	if n, ok := t.Counts[k]; ok {
		return n
	}
	return 1
}

func (t *MemoryTally) Axis(k AxisKey) []float64 { return t.Boundaries[k] }

func (t *MemoryTally) Value(ix Index, kind ValueKind) float64 {
	ord := BoundsOf(t).Ordinal(ix)
	if kind == KindError {
		if ord < len(t.Errors) {
			return t.Errors[ord]
		}
		return 0
	}
	return t.Values[ord]
}

func (t *MemoryTally) Cells() []int { return t.CellIDs }
