package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbsim/internal/analysis"
	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/export"
	"github.com/san-kum/orbsim/internal/metrics"
	"github.com/san-kum/orbsim/internal/physics"
	"github.com/san-kum/orbsim/internal/registry"
	"github.com/san-kum/orbsim/internal/sim"
	"github.com/san-kum/orbsim/internal/storage"
	"github.com/san-kum/orbsim/internal/viz"
)

var (
	dataDir     string
	configFile  string
	logLevel    string
	logFile     string
	timeScale   float64
	step        float64
	duration    float64
	sampleEvery int
	compareTime float64
	workers     int
	svgWidth    int
	svgHeight   int
	chaosTime   float64
	chaosBody   int
	chaosDelta  float64
)

// main registers the orbsim commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "orbsim",
		Short:        "n-body gravity simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().Float64Var(&timeScale, "scale", 1.0, "initial time-scale")
	rootCmd.PersistentFlags().Float64Var(&step, "step", config.DefaultStep, "fixed integration step (simulated seconds)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario headless and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds to run")
	runCmd.Flags().IntVar(&sampleEvery, "every", config.DefaultSampleEvery, "record every N frames")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scenario in real time with a terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [preset] [path]",
		Short: "write a preset out as an editable scenario file",
		Args:  cobra.ExactArgs(2),
		RunE:  initScenario,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and separations of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a run's trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [scale1] [scale2] ...",
		Short: "run one scenario at several time-scales and compare",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareScales,
	}
	compareCmd.Flags().Float64Var(&compareTime, "time", 10, "simulated seconds per member")
	compareCmd.Flags().IntVar(&workers, "workers", 0, "members run at once (0: one per CPU)")

	chaosCmd := &cobra.Command{
		Use:   "chaos [preset]",
		Short: "estimate the largest Lyapunov exponent of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  estimateChaos,
	}
	chaosCmd.Flags().Float64Var(&chaosTime, "time", 50, "simulated seconds to integrate")
	chaosCmd.Flags().IntVar(&chaosBody, "body", 0, "index of the body to perturb")
	chaosCmd.Flags().Float64Var(&chaosDelta, "delta", analysis.DefaultPerturbation, "initial position perturbation")

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, initCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, compareCmd, chaosCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "orbsim",
		ReportTimestamp: true,
	}), nil
}

// loadScenario resolves the scenario from --config or a preset name and
// applies command-line overrides.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		return nil, fmt.Errorf("no scenario: name a preset or pass --config")
	}

	if cmd.Flags().Changed("scale") {
		cfg.TimeScale = timeScale
	}
	if cmd.Flags().Changed("step") {
		cfg.Step = step
	}
	if cmd.Name() == "run" && cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("every") {
		cfg.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	s, err := sim.FromConfig(cfg, nil, logger)
	if err != nil {
		return err
	}

	initial := s.Registry.Frame()
	drift := metrics.NewEnergyDrift(s.Gravity)
	momentum := metrics.NewMomentumDrift()
	bounded := metrics.NewBoundedness(boundRadius(&initial))
	rec := &storage.Recorder{}
	var energy []float64

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("running", "scenario", cfg.Name, "bodies", len(cfg.Bodies), "duration", cfg.Duration, "scale", cfg.TimeScale)

	res, err := s.RunHeadless(ctx, sim.RunOptions{
		Duration:    cfg.Duration,
		Frame:       cfg.Frame,
		SampleEvery: cfg.SampleEvery,
	}, func(f *registry.Frame) error {
		metrics.Collect(f, drift, momentum, bounded)
		energy = append(energy, s.Energy(f))
		return rec.Record(f)
	})
	if err != nil {
		return err
	}

	summary := drift.Summary()
	values := metrics.Values(drift, momentum, bounded)
	values["energy_drift_mean"] = summary.Mean
	values["energy_drift_std"] = summary.StdDev

	bodies := make([]storage.BodyInfo, len(initial.Bodies))
	for i, b := range initial.Bodies {
		bodies[i] = storage.BodyInfo{Name: b.Name, Mass: b.Mass, Radius: b.Radius}
	}

	meta := &storage.RunMetadata{
		Scenario:  cfg.Name,
		Units:     s.Units.Name,
		G:         s.Units.G,
		Step:      cfg.Step,
		TimeScale: cfg.TimeScale,
		Duration:  cfg.Duration,
		SimTime:   res.SimTime,
		Steps:     res.Steps,
		Frames:    res.Frames,
		Bodies:    bodies,
		Metrics:   values,
		Energy:    energy,
	}

	st := storage.New(dataDir)
	runID, err := st.Save(meta, rec.Samples)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("scenario: %s (%d bodies, %s units)\n", cfg.Name, len(cfg.Bodies), s.Units.Name)
	fmt.Printf("simulated: %.2fs in %d steps over %d frames\n", res.SimTime, res.Steps, res.Frames)
	fmt.Printf("energy drift: max %.3e  mean %.3e  std %.3e\n", summary.Max, summary.Mean, summary.StdDev)
	fmt.Printf("momentum drift: %.3e\n", momentum.Value())
	fmt.Printf("bounded: %.1f%%\n", 100*bounded.Value())

	final := res.Final
	for _, b := range final.Bodies[1:] {
		el := analysis.OrbitalElements(s.Units.G, final.Bodies[0], b)
		if !el.Bound {
			fmt.Printf("  %-10s unbound from %s (e=%.3f)\n", b.Name, final.Bodies[0].Name, el.Eccentricity)
			continue
		}
		fmt.Printf("  %-10s a=%.4g e=%.4f T=%.4g\n", b.Name, el.SemiMajorAxis, el.Eccentricity, el.Period)
	}

	return nil
}

// boundRadius is ten times the initial spread of the system around its centre
// of mass.
func boundRadius(f *registry.Frame) float64 {
	com := metrics.CenterOfMass(f)
	var far float64
	for _, b := range f.Bodies {
		far = math.Max(far, b.Position.Sub(com).Len())
	}
	if far == 0 {
		return 1
	}
	return 10 * far
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" {
		choices := make([]viz.Choice, 0, len(config.Presets))
		for _, name := range config.ListPresets() {
			choices = append(choices, viz.Choice{Name: name, Info: config.Presets[name].Description})
		}
		name, err := viz.Pick(choices)
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		args = []string{name}
	}

	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	// the terminal belongs to the viewer, so logs go to a file or nowhere
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	logger, err := newLogger(w)
	if err != nil {
		return err
	}

	s, err := sim.FromConfig(cfg, sim.SystemClock{}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	return viz.Run(s)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDURATION\tUNITS\tDESCRIPTION")

	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%d\t%.0fs\t%s\t%s\n", name, len(p.Bodies), p.Duration, p.Units, p.Description)
	}

	return w.Flush()
}

func initScenario(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if err := config.Save(args[1], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSIMULATED\tSTEP\tSCALE\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.1f\t%.2e\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.SimTime,
			run.Step,
			run.TimeScale,
			run.Metrics["energy_drift"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(samples)/max(len(meta.Bodies), 1))

	if len(meta.Energy) > 1 {
		graph := asciigraph.Plot(meta.Energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("total energy"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if len(meta.Bodies) < 2 {
		return nil
	}

	ref := storage.Series(samples, meta.Bodies[0].Name)
	maxPlots := 6
	for _, b := range meta.Bodies[1:min(len(meta.Bodies), maxPlots+1)] {
		series := storage.Series(samples, b.Name)
		n := min(len(series), len(ref))
		if n < 2 {
			continue
		}
		data := make([]float64, n)
		for i := 0; i < n; i++ {
			data[i] = series[i].Position.Sub(ref[i].Position).Len()
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance from %s", b.Name, meta.Bodies[0].Name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.WriteCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, meta, samples)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	return export.TrajectorySVG(os.Stdout, samples, svgWidth, svgHeight)
}

func estimateChaos(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	specs, err := cfg.Specs()
	if err != nil {
		return err
	}
	units, err := physics.LookupUnits(cfg.Units)
	if err != nil {
		return err
	}

	lambda, err := analysis.LyapunovExponent(physics.NewGravity(units.G), specs, analysis.LyapunovOptions{
		Body:         chaosBody,
		Step:         cfg.Step,
		Duration:     chaosTime,
		Perturbation: chaosDelta,
	})
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s, perturbing %s by %g\n", cfg.Name, specs[chaosBody].Name, chaosDelta)
	fmt.Printf("lyapunov exponent: %.4g per second over %.0fs\n", lambda, chaosTime)
	if lambda > 0 {
		fmt.Printf("e-folding time: %.4gs\n", 1/lambda)
	}
	return nil
}

func compareScales(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[:1])
	if err != nil {
		return err
	}

	scales := make([]float64, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid scale %q: %w", a, err)
		}
		scales = append(scales, v)
	}

	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	e := sim.NewEnsemble(cfg, scales, logger)
	e.SetWorkers(workers)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := e.Run(ctx, compareTime)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s, %.2f simulated seconds per member\n\n", cfg.Name, compareTime)

	ref := results[0]
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCALE\tWALL\tFRAMES\tSTEPS\tSIM TIME\tMAX DEVIATION")

	for _, r := range results {
		var dev float64
		for i := range r.Final.Bodies {
			dev = math.Max(dev, r.Final.Bodies[i].Position.Sub(ref.Final.Bodies[i].Position).Len())
		}
		fmt.Fprintf(w, "%g\t%v\t%d\t%d\t%.4fs\t%.3e\n",
			r.Scale,
			r.Wall,
			r.Frames,
			r.Steps,
			r.SimTime,
			dev,
		)
	}

	return w.Flush()
}
