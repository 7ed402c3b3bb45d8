// Package spectrum turns F4 flux-by-energy tables into per-cell series and
// re-expresses them per unit wavelength.
package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/mctalPlots/mctalPlots/internal/flattable"
	"github.com/mctalPlots/mctalPlots/internal/tally"
	"github.com/mctalPlots/mctalPlots/internal/units"
)

// Series is the energy spectrum of one cell bin.
type Series struct {
	Cell     int
	Energies []float64
	Flux     []float64
	Errors   []float64 // relative
}

// SeriesByCell splits a flat table into runs of consecutive records that
// share a cell index. A cell index that reappears later starts a new series.
func SeriesByCell(table flattable.Table) []Series {
	var out []Series
	for i, r := range table {
		if i == 0 || r.Cell != table[i-1].Cell {
			out = append(out, Series{Cell: r.Cell})
		}
		s := &out[len(out)-1]
		s.Energies = append(s.Energies, r.Energy)
		s.Flux = append(s.Flux, r.Value)
		s.Errors = append(s.Errors, r.Error)
	}
	return out
}

// Converted is a spectrum expressed both ways. Energies and EnergyFlux are
// the filtered inputs the wavelength series was derived from.
type Converted struct {
	Energies       []float64
	EnergyFlux     []float64
	Wavelengths    []float64
	WavelengthFlux []float64
}

// Convert maps energies (MeV) to wavelengths (angstrom) and rescales flux by
// the Jacobian -dE/dW. A leading zero energy is dropped along with its flux.
// Differences are forward differences over the filtered series; the final
// bin reuses the last difference of each, an approximation for the open
// upper edge. Wavelengths decrease when energies increase.
func Convert(energies, flux []float64) (Converted, error) {
	if len(energies) != len(flux) {
		return Converted{}, fmt.Errorf("%d energies for %d flux values: %w",
			len(energies), len(flux), tally.ErrShapeMismatch)
	}
	if len(energies) > 0 && energies[0] == 0 {
		energies, flux = energies[1:], flux[1:]
	}
	n := len(energies)
	if n < 2 {
		return Converted{}, fmt.Errorf("%d nonzero energy bins, need at least 2: %w", n, tally.ErrShapeMismatch)
	}

	e := append([]float64(nil), energies...)
	fe := append([]float64(nil), flux...)
	w := make([]float64, n)
	for i, v := range e {
		w[i] = units.EnergyToWavelength(v)
	}

	dE := diff(e)
	dW := diff(w)

	// flux_w = flux_e * (-dE/dW)
	jac := make([]float64, n)
	floats.DivTo(jac, dE, dW)
	floats.Scale(-1, jac)
	fw := make([]float64, n)
	floats.MulTo(fw, fe, jac)

	return Converted{Energies: e, EnergyFlux: fe, Wavelengths: w, WavelengthFlux: fw}, nil
}

// diff returns forward differences with the last one repeated, so the
// result has the length of xs.
func diff(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := 0; i+1 < len(xs); i++ {
		out[i] = xs[i+1] - xs[i]
	}
	out[len(xs)-1] = out[len(xs)-2]
	return out
}
