package render

import (
	"fmt"

	"gonum.org/v1/plot/palette/moreland"
)

// hexRamp samples the heat map colour map at n points as CSS hex strings, so
// HTML visual maps match the PNG palette.
func hexRamp(n int) []string {
	if n <= 0 {
		return nil
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)
	out := make([]string, 0, n)
	for _, c := range cm.Palette(n).Colors() {
		r, g, b, _ := c.RGBA()
		out = append(out, fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
	}
	return out
}
