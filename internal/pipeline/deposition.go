package pipeline

import (
	"fmt"
	"io"

	"github.com/mctalPlots/mctalPlots/internal/deposition"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/render"
	"github.com/mctalPlots/mctalPlots/internal/tally"
)

// DepositionProcessor draws one bar chart per F6 tally.
type DepositionProcessor struct {
	Source TableSource
	Out    Output

	Filter  deposition.Options
	Options render.Options
}

// Process aggregates t against its cell list and plots the result.
func (p *DepositionProcessor) Process(t tally.Tally) (Stats, error) {
	var stats Stats
	ctx := NewContext(t)
	if ctx.Type != tally.TypeDeposition {
		return stats, fmt.Errorf("tally %d is type %d, not deposition: %w", ctx.Tally, int(ctx.Type), tally.ErrUnsupportedType)
	}

	table, err := p.Source.Table(ctx.Tally)
	if err != nil {
		return stats, err
	}
	res, err := deposition.Aggregate(table, t.Cells(), p.Filter)
	if err != nil {
		return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
	}
	if err := res.Err(); err != nil {
		monitoring.Logf("f%d cell filter: %v", ctx.Tally, err)
	}
	if len(res.Entries) == 0 {
		monitoring.Logf("f%d: no deposition entries to plot", ctx.Tally)
		return stats, nil
	}
	mean, std := res.Summary()
	monitoring.Debugf("f%d: %d bars, cell mean %e, std dev %e", ctx.Tally, len(res.Entries), mean, std)

	stem := p.Out.Layout.DepositionStem(ctx.Tally)
	wrote, err := p.Out.figure(ctx.Tally, stem,
		func(w io.Writer) error { return p.Out.Renderer.Deposition(w, ctx.Tally, res, p.Options) })
	if err != nil {
		return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
	}
	if wrote {
		stats.Plotted++
	} else {
		stats.Existing++
	}

	if p.Out.Exporter != nil {
		path, err := p.Out.Exporter.Deposition(stem, ctx.Tally, res)
		if err != nil {
			return stats, fmt.Errorf("tally %d: %w", ctx.Tally, err)
		}
		if path != "" {
			p.Out.record(ctx.Tally, KindExport, path)
			stats.Exported++
		}
	}
	monitoring.Logf("f%d: %s", ctx.Tally, stats)
	return stats, nil
}
