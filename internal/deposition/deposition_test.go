package deposition

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// three cells plus the aggregate row
func sample() (flattable.Table, []int) {
	table := flattable.Table{
		{Cell: 0, Value: 2, Error: 0.5},
		{Cell: 1, Value: 4, Error: 0.25},
		{Cell: 2, Value: 6, Error: 0.1},
		{Cell: 3, Value: 12, Error: 0.05},
	}
	return table, []int{10, 20, 30, 99}
}

func TestAggregate_TotalRelabel(t *testing.T) {
	table, cells := sample()
	res, err := Aggregate(table, cells, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"10", "20", "30", "Total"}, res.Labels())
	assert.Equal(t, []float64{2, 4, 6, 12}, res.Values())
	assert.InDeltaSlice(t, []float64{1, 1, 0.6, 0.6}, res.Errors(), 1e-12)
	assert.True(t, res.Entries[3].Total)
	assert.NoError(t, res.Err())
}

func TestAggregate_NoTotal(t *testing.T) {
	table, cells := sample()
	res, err := Aggregate(table, cells, Options{NoTotal: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "20", "30"}, res.Labels())
	assert.Len(t, res.Entries, len(table)-1)
}

func TestAggregate_CellFilter(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		labels  []string
		unknown []int
	}{
		{"keeps order and total", Options{Cells: []int{30, 10}}, []string{"10", "30", "Total"}, nil},
		{"no total", Options{Cells: []int{30, 10}, NoTotal: true}, []string{"10", "30"}, nil},
		{"unknown reported", Options{Cells: []int{20, 55}}, []string{"20", "Total"}, []int{55}},
		{"empty filter keeps only total", Options{Cells: []int{}}, []string{"Total"}, nil},
		{"total id is not a cell", Options{Cells: []int{99}, NoTotal: true}, []string{}, []int{99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, cells := sample()
			res, err := Aggregate(table, cells, tt.opts)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.labels, res.Labels()); diff != "" {
				t.Errorf("labels (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.unknown, res.Unknown)
			if tt.unknown != nil {
				assert.ErrorIs(t, res.Err(), tally.ErrInvalidSelection)
			}
		})
	}
}

func TestAggregate_ShapeMismatch(t *testing.T) {
	table, cells := sample()
	_, err := Aggregate(table, cells[:2], Options{})
	assert.ErrorIs(t, err, tally.ErrShapeMismatch)
	_, err = Aggregate(table, append(cells, 100), Options{})
	assert.ErrorIs(t, err, tally.ErrShapeMismatch, "extra cell ids")

	res, err := Aggregate(nil, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestSummary(t *testing.T) {
	table, cells := sample()
	res, err := Aggregate(table, cells, Options{})
	require.NoError(t, err)

	mean, std := res.Summary()
	assert.InDelta(t, 4.0, mean, 1e-12)
	assert.InDelta(t, 2.0, std, 1e-12)

	one := Result{Entries: []Entry{{Value: 3}}}
	mean, std = one.Summary()
	assert.Equal(t, 3.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = Result{}.Summary()
	assert.False(t, math.IsNaN(mean) || math.IsNaN(std))
}
