package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dyncontact/internal/config"
	"github.com/san-kum/dyncontact/internal/export"
	"github.com/san-kum/dyncontact/internal/metrics"
	"github.com/san-kum/dyncontact/internal/model"
	"github.com/san-kum/dyncontact/internal/scalar"
	"github.com/san-kum/dyncontact/internal/scan"
	"github.com/san-kum/dyncontact/internal/storage"
	"github.com/san-kum/dyncontact/internal/tui"
	"github.com/san-kum/dyncontact/internal/viz"
)

func inspectModel(cmd *cobra.Command, args []string) error {
	f, name, err := loadProblem()
	if err != nil {
		return err
	}
	m, err := buildModel(f)
	if err != nil {
		return err
	}

	fmt.Println(styles.RenderSummary(viz.Summarize(name, m)))

	g := m.Graph()
	participating := make([]int, m.NumCliques())
	for c := range participating {
		participating[c] = g.ParticipatingCliques().DomainIndex(c)
	}
	fmt.Println()
	fmt.Println(styles.Field("cliques", fmt.Sprint(participating), 10))
	fmt.Println(styles.Field("v*", fmt.Sprintf("%.6g", scalar.Values(m.VStar())), 10))
	fmt.Println(styles.Field("p*", fmt.Sprintf("%.6g", scalar.Values(m.PStar())), 10))
	fmt.Println(styles.Field("R", fmt.Sprintf("%.6g", scalar.Values(m.ConstraintsBundle().R())), 10))
	fmt.Println(styles.Field("v̂", fmt.Sprintf("%.6g", scalar.Values(m.ConstraintsBundle().VHat())), 10))
	return nil
}

func evalModel(cmd *cobra.Command, args []string) error {
	f, name, err := loadProblem()
	if err != nil {
		return err
	}
	m, err := buildModel(f)
	if err != nil {
		return err
	}
	v, err := reduced(m, evalV, f.EvaluationPoint())
	if err != nil {
		return err
	}

	ctx := m.MakeContext()
	start := time.Now()
	p, err := scan.Inspect(m, ctx, v)
	if err != nil {
		return err
	}
	logger.Info("evaluated", "problem", name, "elapsed", time.Since(start))

	fmt.Println(styles.Box(name, styles.RenderPoint(viz.Summarize(name, m), p), 0))
	fmt.Println(styles.Field("v", fmt.Sprintf("%.6g", p.V), 10))
	fmt.Println(styles.Field("∇ℓ", fmt.Sprintf("%.6g", p.Gradient), 10))

	if showHessian {
		h, err := m.EvalCostHessian(ctx)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(styles.Title.Render("cost Hessian"))
		fmt.Printf("%.6g\n", mat.Formatted(h.Dense(), mat.Squeeze()))
	}
	return nil
}

type scanResult struct {
	name    string
	model   *model.Model[scalar.Float]
	line    scan.Line
	samples []scan.Sample
	workers int
}

func runScan(cmd *cobra.Command) (*scanResult, error) {
	f, name, err := loadProblem()
	if err != nil {
		return nil, err
	}
	m, err := buildModel(f)
	if err != nil {
		return nil, err
	}
	from, err := reduced(m, scanFrom, f.EvaluationPoint())
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	to, err := reduced(m, scanTo, make([]float64, f.NumVelocities()))
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}

	opts := scan.DefaultOptions()
	if numWorkers > 0 {
		opts.Workers = numWorkers
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	line := scan.Between(from, to)
	start := time.Now()
	samples, err := scan.Run(ctx, m, line, scan.Alphas(alphaLo, alphaHi, numSamples), opts)
	if err != nil {
		return nil, err
	}
	logger.Info("scan done", "problem", name, "samples", len(samples), "workers", opts.Workers, "elapsed", time.Since(start))

	return &scanResult{name: name, model: m, line: line, samples: samples, workers: opts.Workers}, nil
}

func scanModel(cmd *cobra.Command, args []string) error {
	res, err := runScan(cmd)
	if err != nil {
		return err
	}

	values := metrics.Collect(res.samples, metrics.Default()...)
	printScan(res.samples, values)

	if !saveRun {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	m := res.model
	runID, err := st.Save(storage.RunMetadata{
		Problem:        res.name,
		TimeStep:       float64(m.TimeStep()),
		NumVelocities:  m.NumVelocities(),
		NumConstraints: m.NumConstraints(),
		NumEquations:   m.NumConstraintEquations(),
		Workers:        res.workers,
		From:           res.line.From,
		To:             res.line.At(1),
		Metrics:        values,
	}, res.samples)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func exploreModel(cmd *cobra.Command, args []string) error {
	res, err := runScan(cmd)
	if err != nil {
		return err
	}
	e, err := tui.NewExplorer(res.name, res.model, res.line, res.samples, styles.Theme)
	if err != nil {
		return err
	}
	return tui.Run(e)
}

func printScan(samples []scan.Sample, values map[string]float64) {
	fmt.Println(viz.PlotScan(samples, 80, 15))
	fmt.Println()
	fmt.Println(viz.PlotSlope(samples, 80, 8))
	fmt.Println()

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println(styles.Title.Render("metrics:"))
	for _, name := range names {
		fmt.Println("  " + styles.Field(name, fmt.Sprintf("%.6g", values[name]), 22))
	}
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, name := range config.ListPresets() {
			f, _ := config.GetPreset(name)
			fmt.Printf("  %-12s %d cliques, %d constraints\n", name, len(f.Cliques), len(f.Constraints))
		}
		return nil
	}

	f, err := config.GetPreset(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, config.ListPresets())
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func listKinds(cmd *cobra.Command, args []string) error {
	fmt.Println(strings.Join(config.NewRegistry[scalar.Float]().ListKinds(), "\n"))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tDOFS\tCONSTRAINTS\tMIN COST\tARGMIN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.6g\t%.4g\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NumVelocities,
			run.NumConstraints,
			run.Metrics["min_cost"],
			run.Metrics["argmin_alpha"],
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("samples: %d\n\n", len(samples))
	printScan(samples, meta.Metrics)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.ScanSVG(samples, 800, 400, styles.Theme)), 0644); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", svgPath)
		if exportPath == "" {
			return nil
		}
	}
	if exportPath == "" {
		return storage.WriteJSON(os.Stdout, *meta, samples)
	}
	if err := storage.ExportJSON(exportPath, *meta, samples); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", exportPath)
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	if err := storage.New(dataDir).Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
