package tally

import "errors"

// Every message carries the "tally:" prefix so log lines can be grepped.
// Return the sentinels directly or wrap them with fmt.Errorf("ctx: %w", ErrX);
// callers match with errors.Is.
var (
	// ErrNotFound is returned when a tally source file is absent, a flat table
	// has not been written, or a requested tally type has no instances.
	ErrNotFound = errors.New("tally: not found")

	// ErrShapeMismatch is returned when a flat table length disagrees with the
	// product of the declared axis bin counts.
	ErrShapeMismatch = errors.New("tally: shape mismatch")

	// ErrInvalidSelection marks a selection that references identifiers absent
	// from the discovered set, or an unknown mode string.
	ErrInvalidSelection = errors.New("tally: invalid selection")

	// ErrInvalidCoordinate marks a requested coordinate value that is not one of
	// the axis boundaries, or a boundary index outside the valid range.
	ErrInvalidCoordinate = errors.New("tally: invalid coordinate")

	// ErrDegenerateRange signals a slice with identical minimum and maximum.
	// It is not a failure; renderers skip the slice.
	ErrDegenerateRange = errors.New("tally: degenerate value range")

	// ErrUnsupportedType is returned for tally types 2, 5, 7 and 8.
	ErrUnsupportedType = errors.New("tally: unsupported tally type")
)
