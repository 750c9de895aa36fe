package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nishantsule/Planetary-Energy-Balance/internal/analysis"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/config"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/ebm"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/flux"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/integrate"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/solve"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/stats"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/stochastic"
	"github.com/nishantsule/Planetary-Energy-Balance/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string

	initTemp   float64
	initAlbedo float64
	duration   float64
	samples    int
	showPlot   bool

	dt          float64
	steps       int
	runs        int
	seed        int64
	noiseTemp   float64
	noiseAlbedo float64

	guesses   string
	tolerance float64
	maxIter   int

	tempMin float64
	tempMax float64

	sweepMin    float64
	sweepMax    float64
	sweepPoints int
)

var logger *zap.SugaredLogger

func main() {
	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zl.Sync()
	logger = zl.Sugar()

	rootCmd := &cobra.Command{
		Use:   "ebm",
		Short: "planetary energy balance model with ice-albedo feedback",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ebm", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "deterministic integration of the coupled (T, a) system",
		RunE:  runDeterministic,
	}
	runCmd.Flags().Float64Var(&initTemp, "temp", config.DefaultInitTemp, "initial temperature (K)")
	runCmd.Flags().Float64Var(&initAlbedo, "albedo", config.DefaultInitAlb, "initial albedo")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "horizon (years)")
	runCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "number of samples")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot temperature in the terminal")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "stochastic ensemble via Euler-Maruyama",
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().Float64Var(&initTemp, "temp", config.DefaultInitTemp, "initial temperature (K)")
	ensembleCmd.Flags().Float64Var(&initAlbedo, "albedo", config.DefaultInitAlb, "initial albedo")
	ensembleCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (years)")
	ensembleCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "grid points per run")
	ensembleCmd.Flags().IntVar(&runs, "runs", config.DefaultRuns, "independent realizations")
	ensembleCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "base random seed")
	ensembleCmd.Flags().Float64Var(&noiseTemp, "noise-temp", 2.0, "temperature noise intensity")
	ensembleCmd.Flags().Float64Var(&noiseAlbedo, "noise-albedo", 0.05, "albedo noise intensity")

	equilibriaCmd := &cobra.Command{
		Use:   "equilibria",
		Short: "find steady-state temperatures from a list of guesses",
		RunE:  runEquilibria,
	}
	equilibriaCmd.Flags().StringVar(&guesses, "guesses", "220,265,290", "comma-separated starting guesses (K)")
	equilibriaCmd.Flags().Float64Var(&tolerance, "tol", solve.DefaultTolerance, "absolute tolerance on net flux")
	equilibriaCmd.Flags().IntVar(&maxIter, "max-iter", solve.DefaultMaxIter, "iteration budget")

	fluxCmd := &cobra.Command{
		Use:   "netflux",
		Short: "plot the net flux curve over a temperature range",
		RunE:  plotNetFlux,
	}
	fluxCmd.Flags().Float64Var(&tempMin, "min", 200, "lower temperature bound (K)")
	fluxCmd.Flags().Float64Var(&tempMax, "max", 320, "upper temperature bound (K)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep the solar constant and trace the equilibrium branches",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1200, "lower solar constant bound (W/m^2)")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1800, "upper solar constant bound (W/m^2)")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 25, "sweep resolution")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored deterministic run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, equilibriaCmd, fluxCmd, sweepCmd, listCmd, plotCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves preset, config file and flag overrides, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("temp") {
		cfg.InitState.Temp = initTemp
	}
	if cmd.Flags().Changed("albedo") {
		cfg.InitState.Albedo = initAlbedo
	}
	if cmd.Flags().Changed("time") {
		cfg.Run.Duration = duration
	}
	if cmd.Flags().Changed("samples") {
		cfg.Run.Samples = samples
	}
	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Run.Steps = steps
	}
	if cmd.Flags().Changed("runs") {
		cfg.Run.Runs = runs
	}
	if cmd.Flags().Changed("seed") || cfg.Run.Seed == 0 {
		cfg.Run.Seed = seed
	}
	if cmd.Flags().Changed("noise-temp") {
		cfg.Physics.NoiseTemp = noiseTemp
	}
	if cmd.Flags().Changed("noise-albedo") {
		cfg.Physics.NoiseAlbedo = noiseAlbedo
	}

	return cfg, cfg.Validate()
}

func runDeterministic(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model := flux.New(cfg.Params())
	times := integrate.Grid(0, cfg.Run.Duration, cfg.Run.Samples)

	start := time.Now()
	tr, err := integrate.Integrate(model, cfg.Initial(), times)
	if err != nil {
		return err
	}
	logger.Infow("integration complete",
		"samples", tr.Len(),
		"elapsed", time.Since(start),
	)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveTrajectory(tr, cfg.Initial())
	if err != nil {
		return err
	}

	final := tr.Final()
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("final state: T=%.2f K, albedo=%.4f\n", final.Temp, final.Albedo)

	if showPlot {
		graph := asciigraph.Plot(tr.Temperatures(),
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("temperature (K) vs time"),
		)
		fmt.Println(graph)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model := flux.New(cfg.Params())
	sim := stochastic.New(model)

	logger.Infow("starting ensemble",
		"runs", cfg.Run.Runs,
		"steps", cfg.Run.Steps,
		"dt", cfg.Run.Dt,
		"seed", cfg.Run.Seed,
	)

	start := time.Now()
	ens, err := sim.Run(context.Background(), cfg.Initial(), stochastic.Config{
		Dt:    cfg.Run.Dt,
		Steps: cfg.Run.Steps,
		Runs:  cfg.Run.Runs,
		Seed:  cfg.Run.Seed,
	})
	if err != nil {
		// failed runs are reported but do not hide the survivors
		logger.Warnw("ensemble finished with failed runs", "error", err)
		if allFailed(ens) {
			return err
		}
		ens = dropFailed(ens)
	}
	logger.Infow("ensemble complete", "elapsed", time.Since(start))

	sum, err := stats.Summarize(ens)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveEnsemble(ens, sum)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("runs: %d  mean of run means: %.2f K  spread of run means: %.3f K\n",
		len(ens.Runs), sum.MeanOfRuns, sum.StdOfRuns)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tMEAN\tSTD\tCOV\tFINAL")
	show := len(sum.PerRun)
	if show > 10 {
		show = 10
	}
	for k := 0; k < show; k++ {
		r := sum.PerRun[k]
		fmt.Fprintf(w, "%d\t%.2f\t%.3f\t%.5f\t%.2f\n", k, r.Mean, r.StdDev, r.CoV, sum.FinalTemps[k])
	}
	if show < len(sum.PerRun) {
		fmt.Fprintf(w, "...\t(%d more)\n", len(sum.PerRun)-show)
	}
	return w.Flush()
}

func allFailed(ens ebm.Ensemble) bool {
	for _, r := range ens.Runs {
		if r.Len() > 0 {
			return false
		}
	}
	return true
}

func dropFailed(ens ebm.Ensemble) ebm.Ensemble {
	kept := ens
	kept.Runs = nil
	for _, r := range ens.Runs {
		if r.Len() > 0 {
			kept.Runs = append(kept.Runs, r)
		}
	}
	return kept
}

func runEquilibria(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	model := flux.New(cfg.Params())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GUESS\tROOT\tNET FLUX\tSTATUS")
	for _, g := range strings.Split(guesses, ",") {
		guess, err := strconv.ParseFloat(strings.TrimSpace(g), 64)
		if err != nil {
			return fmt.Errorf("bad guess %q: %w", g, err)
		}

		root, err := solve.FindRoot(model, guess,
			solve.WithTolerance(tolerance), solve.WithMaxIter(maxIter))
		status := "ok"
		if err != nil {
			if errors.Is(err, ebm.ErrNoConvergence) {
				status = "no convergence"
			} else {
				return err
			}
		}
		fmt.Fprintf(w, "%.1f\t%.4f\t%.3e\t%s\n", guess, root, model.NetFlux(root), status)
	}
	return w.Flush()
}

func plotNetFlux(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	model := flux.New(cfg.Params())

	temps := integrate.Grid(tempMin, tempMax, 120)
	graph := asciigraph.Plot(model.NetFluxSeries(temps),
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("net flux, T in [%.0f, %.0f] K (zero crossings are steady states)", tempMin, tempMax)),
	)
	fmt.Println(graph)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	guesses := []float64{210, 235, 265, 290, 315}
	pts := analysis.SolarSweep(cfg.Params(), sweepMin, sweepMax, sweepPoints, guesses)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "S0\tEQUILIBRIA")
	for _, pt := range pts {
		parts := make([]string, 0, len(pt.Equilibria))
		for _, eq := range pt.Equilibria {
			mark := "stable"
			if !eq.Stable {
				mark = "unstable"
			}
			parts = append(parts, fmt.Sprintf("%.2f K (%s)", eq.Temp, mark))
		}
		fmt.Fprintf(w, "%.0f\t%s\n", pt.SolarConstant, strings.Join(parts, ", "))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runsMeta, err := st.List()
	if err != nil {
		return err
	}
	if len(runsMeta) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tDT\tSTEPS\tRUNS\tT0\tA0")
	for _, run := range runsMeta {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%d\t%d\t%.1f\t%.2f\n",
			run.ID,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dt,
			run.Steps,
			run.Runs,
			run.InitTemp,
			run.InitAlb,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s (%s), %d samples\n\n", meta.ID, meta.Kind, tr.Len())

	fmt.Println(asciigraph.Plot(tr.Temperatures(),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("temperature (K)"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(tr.Albedos(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("albedo"),
	))
	return nil
}
