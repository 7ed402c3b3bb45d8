package flattable

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/mctalPlots/mctalPlots/internal/fsutil"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// Record is one flat table row.
type Record struct {
	Cell   int
	Energy float64
	Value  float64
	Error  float64 // relative error
}

// Table is a flat table in file order.
type Table []Record

// Values returns the third column.
func (t Table) Values() []float64 {
	out := make([]float64, len(t))
	for i, r := range t {
		out[i] = r.Value
	}
	return out
}

// Errors returns the fourth column.
func (t Table) Errors() []float64 {
	out := make([]float64, len(t))
	for i, r := range t {
		out[i] = r.Error
	}
	return out
}

// Source reads flat tables by tally number. Every per-type processor
// composes one instead of owning file handling.
type Source struct {
	FS     fsutil.FileSystem
	Layout Layout
}

// NewSource returns a Source over the OS filesystem.
func NewSource(layout Layout) *Source {
	return &Source{FS: fsutil.OSFileSystem{}, Layout: layout}
}

// Table reads the flat table of a tally. A table that was never written is
// tally.ErrNotFound.
func (s *Source) Table(number int) (Table, error) {
	return ReadTable(s.FS, s.Layout.TablePath(number))
}

// ReadTable parses a flat table file.
func ReadTable(fsys fsutil.FileSystem, path string) (Table, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("flat table %s: %w", path, tally.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read flat table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable parses flat table content. Fields are whitespace separated.
func ParseTable(data []byte) (Table, error) {
	var out Table
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 4 {
			return nil, fmt.Errorf("line %d: want 4 fields, got %d", line, len(fields))
		}
		var nums [4]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+1, err)
			}
			nums[i] = v
		}
		out = append(out, Record{Cell: int(nums[0]), Energy: nums[1], Value: nums[2], Error: nums[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan flat table: %w", err)
	}
	return out, nil
}
