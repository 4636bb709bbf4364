package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/dyncontact/internal/viz"
)

var (
	dataDir     string
	themeName   string
	logLevel    string
	problemFile string
	presetName  string

	evalV       []float64
	showHessian bool

	scanFrom   []float64
	scanTo     []float64
	alphaLo    float64
	alphaHi    float64
	numSamples int
	numWorkers int
	saveRun    bool

	exportPath string
	svgPath    string
)

var (
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	styles = viz.NewStyles(viz.ThemeCyberpunk)
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "dyncontact",
		Short:             "discrete contact model inspector",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dyncontact", "data directory")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", viz.ThemeCyberpunk.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "show sizes, clusters, permutations and Delassus estimates",
		Args:  cobra.NoArgs,
		RunE:  inspectModel,
	}
	addProblemFlags(inspectCmd)

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate costs, impulses and gradient at one velocity",
		Args:  cobra.NoArgs,
		RunE:  evalModel,
	}
	addProblemFlags(evalCmd)
	evalCmd.Flags().Float64SliceVar(&evalV, "v", nil, "velocity in the full problem space (default: file velocity or v*)")
	evalCmd.Flags().BoolVar(&showHessian, "hessian", false, "print the dense cost Hessian")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "evaluate the cost along a line through velocity space",
		Args:  cobra.NoArgs,
		RunE:  scanModel,
	}
	addProblemFlags(scanCmd)
	addScanFlags(scanCmd)
	scanCmd.Flags().BoolVar(&saveRun, "save", false, "store the scan in the data directory")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "step interactively along a scan line",
		Args:  cobra.NoArgs,
		RunE:  exploreModel,
	}
	addProblemFlags(exploreCmd)
	addScanFlags(exploreCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "list constraint kinds accepted in problem files",
		Args:  cobra.NoArgs,
		RunE:  listKinds,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored scans",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot a stored scan",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored scan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "write the cost plot as SVG instead of printing JSON")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "remove a stored scan",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	rootCmd.AddCommand(inspectCmd, evalCmd, scanCmd, exploreCmd, presetsCmd, kindsCmd, listCmd, showCmd, exportCmd, deleteCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&problemFile, "problem", "", "problem file (yaml)")
	cmd.Flags().StringVar(&presetName, "preset", "spring_mass", "built-in problem, used when --problem is not set")
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVar(&scanFrom, "from", nil, "v(0) in the full problem space (default: file velocity or v*)")
	cmd.Flags().Float64SliceVar(&scanTo, "to", nil, "v(1) in the full problem space (default: zero)")
	cmd.Flags().Float64Var(&alphaLo, "alpha-min", -0.5, "first α")
	cmd.Flags().Float64Var(&alphaHi, "alpha-max", 1.5, "last α")
	cmd.Flags().IntVar(&numSamples, "samples", 101, "number of α values")
	cmd.Flags().IntVar(&numWorkers, "workers", 0, "parallel workers (default GOMAXPROCS)")
}

func setup(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	theme, err := viz.GetTheme(themeName)
	if err != nil {
		return err
	}
	styles = viz.NewStyles(theme)
	return nil
}
