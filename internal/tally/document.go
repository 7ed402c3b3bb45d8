package tally

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mctalPlots/mctalPlots/internal/fsutil"
)

// Document is the tally dump exchanged with the external output-file parser.
// Values and errors are flattened in nested axis order.
type Document struct {
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
	Tallies []Record `json:"tallies" yaml:"tallies"`
}

// Record is one tally in a Document. Bins and Axes are keyed by the
// one-letter axis names (f, d, u, s, m, c, e, t, i, j, k).
type Record struct {
	Number int                  `json:"number" yaml:"number"`
	Bins   map[string]int       `json:"bins,omitempty" yaml:"bins,omitempty"`
	Axes   map[string][]float64 `json:"axes,omitempty" yaml:"axes,omitempty"`
	Values []float64            `json:"values" yaml:"values"`
	Errors []float64            `json:"errors,omitempty" yaml:"errors,omitempty"`
	Cells  []int                `json:"cells,omitempty" yaml:"cells,omitempty"`
}

// Tally converts the record into a MemoryTally. Missing bin counts for mesh
// axes are derived from their boundaries (len-1); a missing energy count is
// the boundary count; every other axis defaults to one bin.
func (r Record) Tally() (*MemoryTally, error) {
	counts := make(map[AxisKey]int)
	axes := make(map[AxisKey][]float64)
	for name, n := range r.Bins {
		k, err := ParseAxisKey(name)
		if err != nil {
			return nil, fmt.Errorf("tally %d bins: %w", r.Number, err)
		}
		counts[k] = n
	}
	for name, bounds := range r.Axes {
		k, err := ParseAxisKey(name)
		if err != nil {
			return nil, fmt.Errorf("tally %d axes: %w", r.Number, err)
		}
		axes[k] = bounds
		if _, ok := counts[k]; ok || len(bounds) == 0 {
			continue
		}
		switch k {
		case AxisMeshI, AxisMeshJ, AxisMeshK:
			counts[k] = len(bounds) - 1
		case AxisEnergy:
			counts[k] = len(bounds)
		}
	}
	return NewMemoryTally(r.Number, counts, axes, r.Values, r.Errors, r.Cells)
}

// LoadDocument reads a JSON or YAML tally dump and returns its tallies in
// file order. A missing file is ErrNotFound.
func LoadDocument(fsys fsutil.FileSystem, path string) ([]Tally, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("tally source %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read tally source: %w", err)
	}

	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse tally source %s: %w", path, err)
	}

	out := make([]Tally, 0, len(doc.Tallies))
	for _, rec := range doc.Tallies {
		t, err := rec.Tally()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Numbers lists the identifiers of ts in order.
func Numbers(ts []Tally) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.Number()
	}
	return out
}

// Find returns the tally with the given number.
func Find(ts []Tally, number int) (Tally, error) {
	for _, t := range ts {
		if t.Number() == number {
			return t, nil
		}
	}
	return nil, fmt.Errorf("tally %d: %w", number, ErrNotFound)
}
