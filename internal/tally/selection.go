package tally

import (
	"fmt"
	"sort"
)

// Selection is the outcome of matching a requested id list against the ids
// actually discovered. Unknown requests do not abort processing; callers
// inspect Err and carry on with Valid.
type Selection struct {
	Valid   []int
	Unknown []int
}

// Select resolves requested against discovered. A nil request selects every
// discovered id. Valid preserves discovery order.
func Select(discovered, requested []int) Selection {
	if requested == nil {
		return Selection{Valid: append([]int(nil), discovered...)}
	}
	known := make(map[int]bool, len(discovered))
	for _, id := range discovered {
		known[id] = true
	}
	want := make(map[int]bool, len(requested))
	var sel Selection
	for _, id := range requested {
		if !known[id] {
			sel.Unknown = append(sel.Unknown, id)
			continue
		}
		want[id] = true
	}
	for _, id := range discovered {
		if want[id] {
			sel.Valid = append(sel.Valid, id)
		}
	}
	return sel
}

// Err describes the unknown ids, or returns nil when every request matched.
func (s Selection) Err() error {
	if len(s.Unknown) == 0 {
		return nil
	}
	unknown := append([]int(nil), s.Unknown...)
	sort.Ints(unknown)
	return fmt.Errorf("ids %v not present: %w", unknown, ErrInvalidSelection)
}

// Group splits tally numbers by type, keeping source order within a type.
func Group(numbers []int) map[Type][]int {
	out := make(map[Type][]int)
	for _, n := range numbers {
		t := TypeOf(n)
		out[t] = append(out[t], n)
	}
	return out
}
