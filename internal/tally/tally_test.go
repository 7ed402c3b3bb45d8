package tally

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mctalPlots/mctalPlots/internal/fsutil"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		number    int
		want      Type
		supported bool
		mesh      bool
	}{
		{1, TypeCurrent, true, true},
		{11, TypeCurrent, true, true},
		{13, TypeHeat, true, true},
		{14, TypeFlux, true, false},
		{1006, TypeDeposition, true, false},
		{2, 2, false, false},
		{15, 5, false, false},
		{27, 7, false, false},
		{8, 8, false, false},
	}
	for _, tt := range tests {
		got := TypeOf(tt.number)
		if got != tt.want {
			t.Errorf("TypeOf(%d) = %v, want %v", tt.number, got, tt.want)
		}
		if got.Supported() != tt.supported {
			t.Errorf("TypeOf(%d).Supported() = %v, want %v", tt.number, got.Supported(), tt.supported)
		}
		if got.IsMesh() != tt.mesh {
			t.Errorf("TypeOf(%d).IsMesh() = %v, want %v", tt.number, got.IsMesh(), tt.mesh)
		}
	}
	if TypeOf(14).Folder() != "F4" {
		t.Errorf("Folder() = %q, want F4", TypeOf(14).Folder())
	}
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"1", "f3", "F4", "6"} {
		if _, err := ParseType(s); err != nil {
			t.Errorf("ParseType(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseType("f5"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("ParseType(f5) err = %v, want ErrUnsupportedType", err)
	}
	if _, err := ParseType("fx"); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("ParseType(fx) err = %v, want ErrInvalidSelection", err)
	}
}

func TestIndexIterator_Cardinality(t *testing.T) {
	b := Bounds{2, 1, 1, 3, 1, 1, 4, 1, 2, 1, 3}
	it := NewIndexIterator(b)
	count := 0
	for it.Next() {
		if it.Ordinal() != count {
			t.Fatalf("Ordinal() = %d at step %d", it.Ordinal(), count)
		}
		if got := b.Ordinal(it.Index()); got != count {
			t.Fatalf("Bounds.Ordinal(%v) = %d, want %d", it.Index(), got, count)
		}
		count++
	}
	if count != b.Total() || count != 2*3*4*2*3 {
		t.Errorf("iterated %d combinations, want %d", count, b.Total())
	}
	if it.Next() {
		t.Error("Next() after exhaustion returned true")
	}
}

func TestIndexIterator_MeshKInnermost(t *testing.T) {
	var b Bounds
	for i := range b {
		b[i] = 1
	}
	b[AxisMeshI.Position()] = 2
	b[AxisMeshK.Position()] = 2

	var got [][2]int
	it := NewIndexIterator(b)
	for it.Next() {
		ix := it.Index()
		got = append(got, [2]int{ix.At(AxisMeshI), ix.At(AxisMeshK)})
	}
	want := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("enumeration order mismatch (-want +got):\n%s", diff)
	}
}

func TestBoundsOf_ZeroBins(t *testing.T) {
	tl := &MemoryTally{ID: 4, Counts: map[AxisKey]int{AxisCell: 3, AxisTime: 0}}
	b := BoundsOf(tl)
	if got := b[AxisTime.Position()]; got != 0 {
		t.Errorf("time bins = %d, want 0", got)
	}
	if got := b[AxisUser.Position()]; got != 1 {
		t.Errorf("absent user axis = %d bins, want 1", got)
	}
	if b.Total() != 0 {
		t.Errorf("Total() = %d, want 0", b.Total())
	}
	if NewIndexIterator(b).Next() {
		t.Error("a zero-bin axis should yield no combinations")
	}
}

func TestIndexIterator_EmptyBounds(t *testing.T) {
	it := NewIndexIterator(Bounds{})
	if it.Next() {
		t.Error("zero bounds should yield no combinations")
	}
}

func TestNewMemoryTally_ShapeMismatch(t *testing.T) {
	_, err := NewMemoryTally(11, map[AxisKey]int{AxisMeshI: 2}, nil, []float64{1}, nil, nil)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMemoryTally_Value(t *testing.T) {
	tl, err := NewMemoryTally(11,
		map[AxisKey]int{AxisMeshI: 2, AxisMeshK: 2},
		nil,
		[]float64{1, 2, 3, 4},
		[]float64{0.1, 0.2, 0.3, 0.4},
		nil)
	require.NoError(t, err)

	var ix Index
	ix[AxisMeshI.Position()] = 1
	ix[AxisMeshK.Position()] = 0
	assert.Equal(t, 3.0, tl.Value(ix, KindValue))
	assert.Equal(t, 0.3, tl.Value(ix, KindError))
	assert.Equal(t, 1, tl.Bins(AxisEnergy))
}

func TestSelect(t *testing.T) {
	discovered := []int{11, 21, 31}

	all := Select(discovered, nil)
	assert.Equal(t, discovered, all.Valid)
	assert.NoError(t, all.Err())

	sel := Select(discovered, []int{31, 41, 11})
	assert.Equal(t, []int{11, 31}, sel.Valid)
	assert.Equal(t, []int{41}, sel.Unknown)
	assert.ErrorIs(t, sel.Err(), ErrInvalidSelection)

	none := Select(discovered, []int{})
	assert.Empty(t, none.Valid)
	assert.NoError(t, none.Err())
}

func TestGroup(t *testing.T) {
	got := Group([]int{14, 1, 26, 34, 12})
	want := map[Type][]int{TypeFlux: {14, 34}, TypeCurrent: {1}, TypeDeposition: {26}, 2: {12}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDocument_JSON(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	doc := `{"tallies": [
	  {"number": 11, "axes": {"i": [0, 1, 2], "j": [0, 1], "k": [0, 1]}, "values": [10, 20], "errors": [0.1, 0.2]},
	  {"number": 14, "bins": {"f": 2}, "axes": {"e": [1, 2]}, "values": [1, 2, 3, 4], "cells": [100, 200]}
	]}`
	require.NoError(t, mfs.MkdirAll("run", 0755))
	require.NoError(t, mfs.WriteFile("run/mctal.json", []byte(doc), 0644))

	ts, err := LoadDocument(mfs, "run/mctal.json")
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, []int{11, 14}, Numbers(ts))

	mesh := ts[0]
	assert.Equal(t, 2, mesh.Bins(AxisMeshI))
	assert.Equal(t, 1, mesh.Bins(AxisMeshJ))
	assert.Equal(t, []float64{0, 1, 2}, mesh.Axis(AxisMeshI))

	flux, err := Find(ts, 14)
	require.NoError(t, err)
	assert.Equal(t, 2, flux.Bins(AxisEnergy))
	assert.Equal(t, []int{100, 200}, flux.Cells())

	_, err = Find(ts, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDocument_YAML(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	doc := "tallies:\n  - number: 6\n    bins: {f: 3}\n    values: [1.5, 2.5, 4.0]\n    errors: [0.1, 0.1, 0.05]\n    cells: [1, 2, 0]\n"
	require.NoError(t, mfs.WriteFile("mctal.yaml", []byte(doc), 0644))

	ts, err := LoadDocument(mfs, "mctal.yaml")
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, TypeDeposition, TypeOf(ts[0].Number()))
	assert.Equal(t, 3, ts[0].Bins(AxisCell))
}

func TestLoadDocument_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()

	_, err := LoadDocument(mfs, "absent.json")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mfs.WriteFile("bad.json", []byte(`{"tallies":[{"number":1,"bins":{"q":2},"values":[1,2]}]}`), 0644))
	_, err = LoadDocument(mfs, "bad.json")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	require.NoError(t, mfs.WriteFile("short.json", []byte(`{"tallies":[{"number":1,"bins":{"i":2},"values":[1]}]}`), 0644))
	_, err = LoadDocument(mfs, "short.json")
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
