package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/pongsim/internal/analysis"
	"github.com/san-kum/pongsim/internal/automation"
	"github.com/san-kum/pongsim/internal/config"
	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/experiment"
	"github.com/san-kum/pongsim/internal/export"
	"github.com/san-kum/pongsim/internal/metrics"
	"github.com/san-kum/pongsim/internal/optim"
	"github.com/san-kum/pongsim/internal/sim"
	"github.com/san-kum/pongsim/internal/storage"
	"github.com/san-kum/pongsim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	dt         float64
	duration   float64
	width      float64
	height     float64
	goalPolicy string
	resumeMs   int
	maxFrameDt float64
	metricList []string
	noSave     bool
	workers    int
	field      string
	outPath    string
	bodyName   string
	xField     string
	yField     string
	netY       float64
	svgSize    int
	axes       []string
	metricName string
	maximize   bool

	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "pongsim"})
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pongsim",
		Short: "circle physics sandbox with springs, drag and soft contacts",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pongsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metricList, "metrics", nil, "metrics to record (default all)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "play a configuration in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body trajectories of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&field, "field", "y", "state field to plot (x, y, dx, dy, speed)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file, - for stdout")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&bodyName, "body", "", "body name (default first)")
	phaseCmd.Flags().StringVar(&xField, "x-axis", "y", "field for the x axis")
	phaseCmd.Flags().StringVar(&yField, "y-axis", "dy", "field for the y axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce frequency and line crossings of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&bodyName, "body", "", "body name (default first)")
	analyzeCmd.Flags().Float64Var(&netY, "line", 0, "y of the crossing line (default midpoint of travel)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw body trajectories of a stored run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file, - for stdout")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 480, "image width in pixels")
	exportSVGCmd.Flags().Float64Var(&width, "width", 0, "arena width (fit to data when unset)")
	exportSVGCmd.Flags().Float64Var(&height, "height", 0, "arena height (fit to data when unset)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search body constants against a metric",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&axes, "axis", nil, "swept constant as body.param=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "contact_ratio", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "max", false, "prefer the largest metric value")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default NumCPU)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML batch of configurations and store each run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tARENA\tBODIES\tDT\tDURATION")
			for _, name := range config.ListPresets() {
				cfg, err := config.GetPreset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%.0fx%.0f\t%d\t%.3fs\t%.1fs\n",
					name, cfg.Arena.Width, cfg.Arena.Height, len(cfg.Bodies), cfg.Dt, cfg.Duration)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nmetrics: %s\n", strings.Join(metrics.Names(), ", "))
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset...]",
		Short: "run presets concurrently and report throughput",
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default NumCPU)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, exportJSONCmd, exportSVGCmd, tuneCmd, scenarioCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration in seconds")
	cmd.Flags().Float64Var(&width, "width", 480, "arena width")
	cmd.Flags().Float64Var(&height, "height", 800, "arena height")
	cmd.Flags().StringVar(&goalPolicy, "goal-policy", "reject", "out-of-bounds goals: reject or clamp")
	cmd.Flags().IntVar(&resumeMs, "resume-ms", 100, "delay before the first step after resume")
	cmd.Flags().Float64Var(&maxFrameDt, "max-frame-dt", 0.05, "largest step taken per frame")
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("width") {
		cfg.Arena.Width = width
	}
	if flags.Changed("height") {
		cfg.Arena.Height = height
	}
	if flags.Changed("goal-policy") {
		cfg.GoalPolicy = goalPolicy
	}
	if flags.Changed("resume-ms") {
		cfg.ResumeOffset = time.Duration(resumeMs) * time.Millisecond
	}
	if flags.Changed("max-frame-dt") {
		cfg.MaxFrameDt = maxFrameDt
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runName(cfg *config.Config) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return "custom"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, metricList, experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running", "config", runName(cfg), "bodies", len(cfg.Bodies), "steps", exp.Steps())
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(runName(cfg), cfg.Dt, cfg.Duration, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	printDiagnostics(result.Diagnostics)
	if len(result.Errors) > 0 {
		fmt.Printf("recoverable errors: %d (first: %v)\n", len(result.Errors), result.Errors[0])
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func printDiagnostics(d sim.Diagnostics) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\ndiagnostics:")
	fmt.Fprintf(w, "  contacts\t%d\n", d.Contacts)
	fmt.Fprintf(w, "  degenerate contacts\t%d\n", d.DegenerateContacts)
	fmt.Fprintf(w, "  mode transitions\t%d\n", d.ModeTransitions)
	fmt.Fprintf(w, "  wall hits\t%d\n", d.WallHits)
	fmt.Fprintf(w, "  rejected goals\t%d\n", d.RejectedGoals)
	fmt.Fprintf(w, "  invalid modes\t%d\n", d.InvalidModes)
	fmt.Fprintf(w, "  invalid states\t%d\n", d.InvalidStates)
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		return runInteractive()
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg, sim.SystemClock{})
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func runInteractive() error {
	p := tea.NewProgram(viz.NewInteractiveApp(sim.SystemClock{}), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tBODIES\tCONTACTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			strings.Join(run.Bodies, ","),
			run.Diagnostics.Contacts,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	pick, err := analysis.ParseField(field)
	if err != nil {
		return err
	}

	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(result.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(result.States))

	for i, name := range result.Bodies {
		graph := asciigraph.Plot(result.Series(i, pick),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s.%s vs time", name, field)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// loadRun reads a stored run with its metrics and diagnostics filled in.
func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	result, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	result.Metrics = meta.Metrics
	result.Diagnostics = meta.Diagnostics
	return meta, result, nil
}

func bodyIndex(result *sim.Result, name string) (int, error) {
	if name == "" {
		return 0, nil
	}
	for i, b := range result.Bodies {
		if b == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no body named %q in %v", dynamo.ErrBodyIndex, name, result.Bodies)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	fx, err := analysis.ParseField(xField)
	if err != nil {
		return err
	}
	fy, err := analysis.ParseField(yField)
	if err != nil {
		return err
	}
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx, err := bodyIndex(result, bodyName)
	if err != nil {
		return err
	}

	points, err := analysis.PhasePortrait(result, idx, fx, fy)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s vs %s\n\n", result.Bodies[idx], yField, xField)
	fmt.Print(analysis.PhasePortraitToASCII(points, 80, 24))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx, err := bodyIndex(result, bodyName)
	if err != nil {
		return err
	}
	if len(result.States) < 2 {
		return fmt.Errorf("run %s has too few samples", meta.ID)
	}

	name := result.Bodies[idx]
	ys := result.Series(idx, analysis.Fields["y"])
	spectrum := analysis.PowerSpectrum(ys, meta.Dt)
	fmt.Printf("%s: dominant y frequency %.3f Hz\n", name, spectrum.Dominant())

	line := netY
	if !cmd.Flags().Changed("line") {
		lo, hi := ys[0], ys[0]
		for _, y := range ys {
			lo, hi = min(lo, y), max(hi, y)
		}
		line = (lo + hi) / 2
	}
	crossings, err := analysis.Crossings(result, idx, line)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d crossings of y=%.1f\n", name, len(crossings), line)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tX\tSPEED\tDIRECTION")
	for _, c := range crossings {
		dir := "up"
		if c.Down {
			dir = "down"
		}
		fmt.Fprintf(w, "%.3f\t%.1f\t%.1f\t%s\n", c.Time, c.X, c.Speed, dir)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	arena := export.Arena{Width: width, Height: height}
	if !cmd.Flags().Changed("width") || !cmd.Flags().Changed("height") {
		arena = export.Arena{}
	}
	return export.TrajectorySVG(out, result, arena, svgSize, svgSize*4/3, nil)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if err := storage.ExportJSON(outPath, meta.Name, meta.Dt, meta.Duration, result); err != nil {
		return err
	}
	if outPath != "-" {
		logger.Info("exported", "run", meta.ID, "path", outPath)
	}
	return nil
}

func benchPresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}

	configs := make([]*config.Config, 0, len(names))
	for _, name := range names {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
	}

	ens := experiment.NewEnsemble(configs, nil, experiment.WithLogger(logger))
	ens.SetWorkers(workers)

	start := time.Now()
	results, err := ens.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTEPS\tCONTACTS\tWALL HITS")
	for i, res := range results {
		total += res.StepsTaken
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", names[i], res.StepsTaken, res.Diagnostics.Contacts, res.Diagnostics.WallHits)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d steps in %v (%.0f steps/s)\n", total, elapsed, float64(total)/elapsed.Seconds())
	return nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	parsed := make([]optim.Axis, 0, len(axes))
	for _, a := range axes {
		ax, err := optim.ParseAxis(a)
		if err != nil {
			return err
		}
		parsed = append(parsed, ax)
	}

	gs := optim.NewGridSearch(cfg, parsed, metricName, experiment.WithLogger(logger))
	if maximize {
		gs.Maximize()
	}
	gs.SetWorkers(workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	best, trials, err := gs.Search(ctx)
	if err != nil {
		return err
	}

	keys := best.Keys()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(keys, "\t")), strings.ToUpper(metricName))
	for _, tr := range trials {
		for _, k := range keys {
			fmt.Fprintf(w, "%g\t", tr.Params[k])
		}
		fmt.Fprintf(w, "%.6f\n", tr.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Print("\nbest:")
	for _, k := range keys {
		fmt.Printf(" %s=%g", k, best.Params[k])
	}
	fmt.Printf(" (%s %.6f)\n", metricName, best.Value)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	results, runErr := automation.RunScenario(ctx, sc, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSTEPS\tCONTACTS")
	for _, r := range results {
		runID, err := st.Save(r.Name, r.Config.Dt, r.Config.Duration, r.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", r.Name, runID, r.Result.StepsTaken, r.Result.Diagnostics.Contacts)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
