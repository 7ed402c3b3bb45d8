package pipeline

import (
	"fmt"
	"io"

	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/render"
	"github.com/mctalPlots/mctalPlots/internal/spectrum"
	"github.com/mctalPlots/mctalPlots/internal/tally"
	"github.com/mctalPlots/mctalPlots/internal/units"
)

// FluxProcessor plots the F4 flux of every cell bin against energy,
// wavelength or both.
type FluxProcessor struct {
	Source TableSource
	Out    Output

	// XAxisMode is units.Energy, units.Wavelength or units.Both.
	XAxisMode string
	Options   render.Options
}

// Process converts and plots every cell series of t.
func (p *FluxProcessor) Process(t tally.Tally) (Stats, error) {
	var stats Stats
	ctx := NewContext(t)
	if ctx.Type != tally.TypeFlux {
		return stats, fmt.Errorf("tally %d is type %d, not flux: %w", ctx.Tally, int(ctx.Type), tally.ErrUnsupportedType)
	}
	mode, err := units.ParseXAxisMode(p.XAxisMode)
	if err != nil {
		return stats, err
	}

	table, err := p.Source.Table(ctx.Tally)
	if err != nil {
		return stats, err
	}
	series := spectrum.SeriesByCell(table)
	monitoring.Debugf("f%d: %d records in %d cell bins", ctx.Tally, len(table), len(series))

	for _, s := range series {
		c, err := spectrum.Convert(s.Energies, s.Flux)
		if err != nil {
			return stats, fmt.Errorf("tally %d cell %d: %w", ctx.Tally, s.Cell, err)
		}
		var plots []render.Spectrum
		if units.PlotsEnergy(mode) {
			plots = append(plots, render.Spectrum{Cell: s.Cell, X: c.Energies, Flux: c.EnergyFlux})
		}
		if units.PlotsWavelength(mode) {
			plots = append(plots, render.Spectrum{Cell: s.Cell, Wavelength: true, X: c.Wavelengths, Flux: c.WavelengthFlux})
		}
		for _, sp := range plots {
			sp := sp
			wrote, err := p.Out.figure(ctx.Tally, p.Out.Layout.SpectrumStem(sp.Cell, sp.Wavelength),
				func(w io.Writer) error { return p.Out.Renderer.Spectrum(w, sp, p.Options) })
			if err != nil {
				return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
			}
			if wrote {
				stats.Plotted++
			} else {
				stats.Existing++
			}
		}
	}
	monitoring.Logf("f%d: %s", ctx.Tally, stats)
	return stats, nil
}
