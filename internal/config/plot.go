package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mctalPlots/mctalPlots/internal/tally"
	"github.com/mctalPlots/mctalPlots/internal/units"
)

// Render formats
const (
	FormatPNG  = "png"
	FormatHTML = "html"
)

// Export formats for line scans and deposition tables
const (
	ExportText = "txt"
	ExportXLSX = "xlsx"
)

// PlotConfig holds run and plot options. Every field is optional; the Get*
// methods supply defaults for fields a file leaves out, so partial configs
// are safe.
type PlotConfig struct {
	// Tally selections per type. Omitted means every tally of that type.
	F1Tallies []int `json:"f1_tallies,omitempty" yaml:"f1_tallies,omitempty"`
	F3Tallies []int `json:"f3_tallies,omitempty" yaml:"f3_tallies,omitempty"`
	F4Tallies []int `json:"f4_tallies,omitempty" yaml:"f4_tallies,omitempty"`
	F6Tallies []int `json:"f6_tallies,omitempty" yaml:"f6_tallies,omitempty"`

	// Mesh sweep coordinate filters; each must be a boundary value.
	X *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y *float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Z *float64 `json:"z,omitempty" yaml:"z,omitempty"`

	// Mesh plot params
	FM         *float64 `json:"fm,omitempty" yaml:"fm,omitempty"` // multiplier on plotted values
	VMin       *float64 `json:"vmin,omitempty" yaml:"vmin,omitempty"`
	VMax       *float64 `json:"vmax,omitempty" yaml:"vmax,omitempty"`
	DPI        *int     `json:"dpi,omitempty" yaml:"dpi,omitempty"`
	SwitchAxis *bool    `json:"switch_axis,omitempty" yaml:"switch_axis,omitempty"`
	LogScale   *bool    `json:"logscale,omitempty" yaml:"logscale,omitempty"`

	// Line scan export
	ExportLineScans *bool   `json:"export_line_scans,omitempty" yaml:"export_line_scans,omitempty"`
	ExportFormat    *string `json:"export_format,omitempty" yaml:"export_format,omitempty"`

	// Flux and deposition params
	SpectrumDPI *int    `json:"spectrum_dpi,omitempty" yaml:"spectrum_dpi,omitempty"`
	XAxisMode   *string `json:"x_axis_mode,omitempty" yaml:"x_axis_mode,omitempty"` // E, W or both
	NoTotal     *bool   `json:"nototal,omitempty" yaml:"nototal,omitempty"`
	Cells       []int   `json:"cells,omitempty" yaml:"cells,omitempty"`

	RenderFormat *string `json:"format,omitempty" yaml:"format,omitempty"`
	Catalog      *string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPlotConfig returns a PlotConfig with all fields unset.
func EmptyPlotConfig() *PlotConfig {
	return &PlotConfig{}
}

// DefaultPlotConfig returns a PlotConfig with every scalar field populated
// from the defaults.
func DefaultPlotConfig() *PlotConfig {
	return &PlotConfig{
		FM:              ptrFloat64(1),
		DPI:             ptrInt(120),
		SwitchAxis:      ptrBool(false),
		LogScale:        ptrBool(true),
		ExportLineScans: ptrBool(false),
		ExportFormat:    ptrString(ExportText),
		SpectrumDPI:     ptrInt(200),
		XAxisMode:       ptrString(units.Both),
		NoTotal:         ptrBool(false),
		RenderFormat:    ptrString(FormatPNG),
	}
}

// LoadPlotConfig loads a PlotConfig from a .json, .yaml or .yml file.
func LoadPlotConfig(path string) (*PlotConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPlotConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ext, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PlotConfig) Validate() error {
	if c.FM != nil && *c.FM == 0 {
		return fmt.Errorf("fm must be nonzero")
	}
	if c.VMin != nil && c.VMax != nil && *c.VMin >= *c.VMax {
		return fmt.Errorf("vmin %g must be below vmax %g", *c.VMin, *c.VMax)
	}
	if c.DPI != nil && *c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", *c.DPI)
	}
	if c.SpectrumDPI != nil && *c.SpectrumDPI <= 0 {
		return fmt.Errorf("spectrum_dpi must be positive, got %d", *c.SpectrumDPI)
	}
	if c.XAxisMode != nil {
		if _, err := units.ParseXAxisMode(*c.XAxisMode); err != nil {
			return err
		}
	}
	if c.ExportFormat != nil && *c.ExportFormat != ExportText && *c.ExportFormat != ExportXLSX {
		return fmt.Errorf("export_format must be %s or %s, got %q", ExportText, ExportXLSX, *c.ExportFormat)
	}
	if c.RenderFormat != nil && *c.RenderFormat != FormatPNG && *c.RenderFormat != FormatHTML {
		return fmt.Errorf("format must be %s or %s, got %q", FormatPNG, FormatHTML, *c.RenderFormat)
	}
	return nil
}

// GetFM returns the fm multiplier or the default.
func (c *PlotConfig) GetFM() float64 {
	if c.FM == nil {
		return 1
	}
	return *c.FM
}

// GetDPI returns the cross-section and line-scan dpi or the default.
func (c *PlotConfig) GetDPI() int {
	if c.DPI == nil {
		return 120
	}
	return *c.DPI
}

// GetSpectrumDPI returns the flux and deposition dpi or the default.
func (c *PlotConfig) GetSpectrumDPI() int {
	if c.SpectrumDPI == nil {
		return 200
	}
	return *c.SpectrumDPI
}

// GetSwitchAxis returns the switch_axis value or the default.
func (c *PlotConfig) GetSwitchAxis() bool {
	return c.SwitchAxis != nil && *c.SwitchAxis
}

// GetLogScale returns the logscale value or the default.
func (c *PlotConfig) GetLogScale() bool {
	if c.LogScale == nil {
		return true
	}
	return *c.LogScale
}

// GetExportLineScans returns the export_line_scans value or the default.
func (c *PlotConfig) GetExportLineScans() bool {
	return c.ExportLineScans != nil && *c.ExportLineScans
}

// GetExportFormat returns the export format or the default.
func (c *PlotConfig) GetExportFormat() string {
	if c.ExportFormat == nil || *c.ExportFormat == "" {
		return ExportText
	}
	return *c.ExportFormat
}

// GetXAxisMode returns the flux x-axis mode or the default.
func (c *PlotConfig) GetXAxisMode() string {
	if c.XAxisMode == nil || *c.XAxisMode == "" {
		return units.Both
	}
	return *c.XAxisMode
}

// GetNoTotal returns the nototal value or the default.
func (c *PlotConfig) GetNoTotal() bool {
	return c.NoTotal != nil && *c.NoTotal
}

// GetRenderFormat returns the render format or the default.
func (c *PlotConfig) GetRenderFormat() string {
	if c.RenderFormat == nil || *c.RenderFormat == "" {
		return FormatPNG
	}
	return *c.RenderFormat
}

// GetCatalog returns the catalog database path, empty when disabled.
func (c *PlotConfig) GetCatalog() string {
	if c.Catalog == nil {
		return ""
	}
	return *c.Catalog
}

// GetTallies returns the requested tally ids of type t, nil for all.
func (c *PlotConfig) GetTallies(t tally.Type) []int {
	switch t {
	case tally.TypeCurrent:
		return c.F1Tallies
	case tally.TypeHeat:
		return c.F3Tallies
	case tally.TypeFlux:
		return c.F4Tallies
	case tally.TypeDeposition:
		return c.F6Tallies
	}
	return nil
}
