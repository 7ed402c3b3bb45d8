package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mctalPlots/mctalPlots/internal/catalog"
	"github.com/mctalPlots/mctalPlots/internal/config"
	"github.com/mctalPlots/mctalPlots/internal/fsutil"
	"github.com/mctalPlots/mctalPlots/internal/monitoring"
	"github.com/mctalPlots/mctalPlots/internal/pipeline"
	"github.com/mctalPlots/mctalPlots/internal/slicer"
	"github.com/mctalPlots/mctalPlots/internal/tally"
	"github.com/mctalPlots/mctalPlots/internal/version"
)

// defaultSource is read when no source argument is given.
const defaultSource = "mctal.json"

var (
	configPath  string
	verbose     bool
	catalogPath string
	format      string

	lineScansOnly     bool
	crossSectionsOnly bool
	axesType          string
	axesTallies       []int

	syncLogger func() error
)

var rootCmd = &cobra.Command{
	Use:   "mctalplots [source]",
	Short: "Flatten MCNP tallies and plot them",
	Long: `mctalplots reads a tally dump (JSON or YAML) exported from an MCNP
mctal file, writes one flat table per tally under <source dir>/tallies and
plots them:

  F1, F3  mesh cross-sections and line scans
  F4      cell flux per energy and per wavelength
  F6      energy deposition per cell

Without a subcommand every supported type is plotted, in the order F6, F4,
F3, F1.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		sync, err := monitoring.Init(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		syncLogger = sync
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if syncLogger != nil {
			_ = syncLogger()
		}
	},
	RunE: runAll,
}

var readCmd = &cobra.Command{
	Use:   "read [source]",
	Short: "Write the flat tables only",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRead,
}

var f1Cmd = &cobra.Command{
	Use:   "f1 [source]",
	Short: "Plot F1 mesh tallies",
	Args:  cobra.MaximumNArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runType(tally.TypeCurrent, args) },
}

var f3Cmd = &cobra.Command{
	Use:   "f3 [source]",
	Short: "Plot F3 heat load mesh tallies",
	Args:  cobra.MaximumNArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runType(tally.TypeHeat, args) },
}

var f4Cmd = &cobra.Command{
	Use:   "f4 [source]",
	Short: "Plot F4 flux per energy and wavelength",
	Args:  cobra.MaximumNArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runType(tally.TypeFlux, args) },
}

var f6Cmd = &cobra.Command{
	Use:   "f6 [source]",
	Short: "Plot F6 energy deposition",
	Args:  cobra.MaximumNArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runType(tally.TypeDeposition, args) },
}

var axesCmd = &cobra.Command{
	Use:   "axes [source]",
	Short: "Print the x, y and z boundaries of mesh tallies",
	Long: `Prints the mesh boundaries of F1 or F3 tallies. Coordinate filters
(x, y, z in the config file) must be one of these values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAxes,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Plot config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and per-tally reports")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "SQLite catalog of runs and artifacts (disabled when empty)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "Render format: png or html (overrides the config file)")

	for _, c := range []*cobra.Command{f1Cmd, f3Cmd} {
		c.Flags().BoolVar(&lineScansOnly, "ls", false, "Only plot line scans")
		c.Flags().BoolVar(&crossSectionsOnly, "cs", false, "Only plot cross-sections")
		c.MarkFlagsMutuallyExclusive("ls", "cs")
	}
	axesCmd.Flags().StringVarP(&axesType, "type", "t", "f1", "Mesh tally type: f1 or f3")
	axesCmd.Flags().IntSliceVar(&axesTallies, "tally", nil, "Tally ids (default: all of the type)")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(f1Cmd)
	rootCmd.AddCommand(f3Cmd)
	rootCmd.AddCommand(f4Cmd)
	rootCmd.AddCommand(f6Cmd)
	rootCmd.AddCommand(axesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sourceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultSource
}

// loadConfig reads --config, then applies the flag overrides.
func loadConfig() (*config.PlotConfig, error) {
	cfg := config.DefaultPlotConfig()
	if configPath != "" {
		loaded, err := config.LoadPlotConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if format != "" {
		f := format
		cfg.RenderFormat = &f
	}
	if catalogPath != "" {
		p := catalogPath
		cfg.Catalog = &p
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the source and builds a runner. The returned close function
// releases the catalog, if one was opened.
func setup(args []string) (*pipeline.Runner, []tally.Tally, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	source := sourceArg(args)
	ts, err := tally.LoadDocument(fsutil.OSFileSystem{}, source)
	if err != nil {
		return nil, nil, nil, err
	}
	monitoring.Logf("loaded %d tallies from %s: %v", len(ts), source, tally.Numbers(ts))

	r := pipeline.NewRunner(source, cfg)
	closer := func() {}
	if p := cfg.GetCatalog(); p != "" {
		db, err := catalog.Open(p)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		r.Catalog = db
		closer = func() { db.Close() }
	}
	return r, ts, closer, nil
}

func runAll(cmd *cobra.Command, args []string) error {
	r, ts, closer, err := setup(args)
	if err != nil {
		return err
	}
	defer closer()

	monitoring.Logf("plotting tallies f6, f4, f3 and f1")
	stats, err := r.RunAll(ts)
	monitoring.Logf("done: %s", stats)
	return err
}

func runRead(cmd *cobra.Command, args []string) error {
	r, ts, closer, err := setup(args)
	if err != nil {
		return err
	}
	defer closer()

	_, err = r.Read(ts)
	return err
}

// families maps --ls and --cs to slice families; nil plots both.
func families() []slicer.Family {
	switch {
	case lineScansOnly:
		return slicer.LineScans
	case crossSectionsOnly:
		return slicer.CrossSections
	}
	return nil
}

func runType(typ tally.Type, args []string) error {
	r, ts, closer, err := setup(args)
	if err != nil {
		return err
	}
	defer closer()

	if _, err := r.Read(ts); err != nil {
		return err
	}
	stats, err := r.Run(ts, typ, families())
	monitoring.Logf("f%d done: %s", int(typ), stats)
	return err
}

func runAxes(cmd *cobra.Command, args []string) error {
	typ, err := tally.ParseType(axesType)
	if err != nil {
		return err
	}
	ts, err := tally.LoadDocument(fsutil.OSFileSystem{}, sourceArg(args))
	if err != nil {
		return err
	}
	out, err := pipeline.AxisReport(ts, typ, axesTallies)
	fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
