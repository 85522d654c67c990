package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chainsim/internal/analysis"
	"github.com/san-kum/chainsim/internal/config"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/export"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/metrics"
	"github.com/san-kum/chainsim/internal/sim"
	"github.com/san-kum/chainsim/internal/storage"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	u, err := cfg.NewUniverse()
	if err != nil {
		return err
	}
	for i := 0; i < addBobs; i++ {
		u.AddBobSimple(addTheta)
	}

	drift := startDrift(u)
	energy := metrics.NewEnergy(u.System())
	stability := metrics.NewStability(threshold)
	trace := &angleTrace{bob: u.BobCount() - 1}
	u.AddObserver(drift)
	u.AddObserver(energy)
	u.AddObserver(stability)
	u.AddObserver(trace)

	var rec *export.Recorder
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		rec = export.NewRecorder(f)
		u.AddObserver(rec)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("running %s: %d bobs, %s", name, u.BobCount(), u.Method())))

	start := time.Now()
	res, runErr := u.Run(cmd.Context(), cfg.Ticks, cfg.Dt)
	wall := time.Since(start)

	if rec != nil {
		if err := rec.Flush(); err != nil {
			return fmt.Errorf("write %s: %w", csvPath, err)
		}
	}

	field("ticks", fmt.Sprintf("%d applied, %d skipped", res.Applied, res.Skipped))
	field("sim time", fmt.Sprintf("%.4fs", u.Elapsed()))
	field("wall time", wall.Round(time.Microsecond))
	field("energy", fmt.Sprintf("%.6f", drift.Current()))
	field("mean energy", fmt.Sprintf("%.6f", energy.Value()))
	field("energy drift", fmt.Sprintf("%.3e", drift.Value()))
	field("stability", fmt.Sprintf("%.3f", stability.Value()))
	if rec != nil {
		field("csv rows", rec.Rows())
	}

	if plot && len(trace.values) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(downsample(trace.values, 120),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("theta_%d (rad)", trace.bob)),
		))
	}

	snap := u.Snapshot()
	if jsonPath != "" {
		if err := export.SaveSnapshot(jsonPath, snap); err != nil {
			return err
		}
	}
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.SnapshotToSVG(snap, 800, 800)), 0644); err != nil {
			return err
		}
	}
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Scenario: name,
			Seed:     cfg.Seed,
			Dt:       cfg.Dt,
			Ticks:    res.Applied,
			Outcome:  res.Last.String(),
			Metrics: map[string]float64{
				energy.Name():    energy.Value(),
				drift.Name():     drift.Value(),
				stability.Name(): stability.Value(),
			},
		}, snap)
		if err != nil {
			return err
		}
		field("run id", runID)
	}

	if runErr != nil {
		return fmt.Errorf("%s: %w", name, runErr)
	}
	fmt.Println(okStyle.Render("done"))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tBOBS\tTICKS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", name, p.Method, len(p.Bobs), p.Ticks)
	}
	return w.Flush()
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadScenario(cmd, args[:1])
	if err != nil {
		return err
	}

	names := args[1:]
	if len(names) == 0 {
		for _, m := range integrators.Methods() {
			names = append(names, m.String())
		}
	}

	universes := make([]*sim.Universe, 0, len(names))
	drifts := make([]*metrics.EnergyDrift, 0, len(names))
	labels := make([]string, 0, len(names))
	for _, n := range names {
		c := cfg.Clone()
		c.Method = n
		u, err := c.NewUniverse()
		if err != nil {
			log.Printf("skipping %s: %v", n, err)
			continue
		}
		d := startDrift(u)
		u.AddObserver(d)

		universes = append(universes, u)
		drifts = append(drifts, d)
		labels = append(labels, n)
	}
	if len(universes) == 0 {
		return errors.New("no runnable methods")
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("comparing methods on %s (%d ticks, dt=%.4f)", name, cfg.Ticks, cfg.Dt)))
	fmt.Println()

	x0 := universes[0].State()
	h := universes[0].EffectiveStep(cfg.Dt)

	start := time.Now()
	results := sim.NewEnsemble(universes...).Run(cmd.Context(), cfg.Ticks, cfg.Dt)
	wall := time.Since(start)

	ref, refErr := referenceState(universes[0].System(), x0, h, cfg.Ticks)
	if refErr != nil {
		log.Printf("reference trajectory unavailable: %v", refErr)
	}

	fmt.Printf("%-12s  %-8s  %-16s  %-12s  %-12s  %-12s\n", "method", "applied", "outcome", "final_theta0", "energy_drift", "ref_error")
	fmt.Println(strings.Repeat("-", 82))
	for i, res := range results {
		outcome := res.Last.String()
		if res.Err != nil && !errors.Is(res.Err, dynamo.ErrNotImplemented) && !errors.Is(res.Err, dynamo.ErrUnstable) {
			outcome = res.Err.Error()
		}
		refError := math.NaN()
		if res.Applied == cfg.Ticks {
			refError = distance(universes[i].State(), ref)
		}
		fmt.Printf("%-12s  %8d  %-16s  %12.6f  %12.2e  %12.2e\n",
			labels[i], res.Applied, outcome, firstAngle(universes[i]), drifts[i].Value(), refError)
	}

	fmt.Println()
	field("wall time", wall.Round(time.Microsecond))
	return nil
}

func analyzeScenario(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	u, err := cfg.NewUniverse()
	if err != nil {
		return err
	}
	if u.BobCount() == 0 {
		return errors.New("scenario has no bobs")
	}

	warnTruncated(u)
	x0 := u.State()
	h := u.EffectiveStep(cfg.Dt)
	tail := u.BobCount() - 1
	trace := &angleTrace{bob: tail}
	u.AddObserver(trace)

	fmt.Println(titleStyle.Render(fmt.Sprintf("analyzing %s: %d bobs, %s", name, u.BobCount(), u.Method())))

	if _, err := u.Run(cmd.Context(), cfg.Ticks, cfg.Dt); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(trace.values) < 4 {
		return errors.New("not enough samples for analysis, increase --ticks")
	}

	ps := analysis.PowerSpectrum(trace.values)
	freq := analysis.DominantFrequency(trace.values, h)

	plotData := ps
	if len(plotData) > 100 {
		plotData = plotData[:100]
	}
	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (theta_%d)", tail)),
	))
	fmt.Println()

	field("samples", len(trace.values))
	field("dominant", fmt.Sprintf("%.4f Hz", freq))
	if freq > 0 {
		field("period", fmt.Sprintf("%.4f s", 1/freq))
	}

	m, _ := integrators.ParseMethod(cfg.Method)
	integ, err := integrators.ForMethod(m)
	if err != nil {
		return err
	}
	lambda, err := analysis.LyapunovExponent(u.System(), integ, x0, h, float64(cfg.Ticks)*h, 1e-8)
	switch {
	case err != nil:
		log.Printf("lyapunov exponent unavailable: %v", err)
	case lambda > 0.01:
		field("lyapunov", warnStyle.Render(fmt.Sprintf("%.4f (chaotic)", lambda)))
	default:
		field("lyapunov", okStyle.Render(fmt.Sprintf("%.4f (regular)", lambda)))
	}

	if spectrumAll {
		spectrum, err := analysis.LyapunovSpectrum(u.System(), integ, x0, h, float64(cfg.Ticks)*h, 1e-8)
		if err != nil {
			log.Printf("lyapunov spectrum unavailable: %v", err)
		} else {
			fmt.Println()
			fmt.Println(titleStyle.Render("lyapunov spectrum"))
			n := x0.Half()
			for i, lambda := range spectrum {
				label := fmt.Sprintf("theta_%d", i)
				if i >= n {
					label = fmt.Sprintf("omega_%d", i-n)
				}
				field(label, fmt.Sprintf("%.4f", lambda))
			}
		}
	}

	if poincare {
		section, err := analysis.GeneratePoincareSection(u.System(), integ, x0, 0, 0, tail, h, float64(cfg.Ticks)*h)
		if err != nil {
			log.Printf("poincare section unavailable: %v", err)
		} else {
			fmt.Println()
			fmt.Println(titleStyle.Render(fmt.Sprintf("poincare section (theta_%d, omega_%d at theta_0 = 0)", tail, tail)))
			if len(section.Points) == 0 {
				fmt.Println("no crossings")
			} else {
				field("crossings", len(section.Points))
				fmt.Print(analysis.PointsToASCII(section.Points, 80, 24))
			}
		}
	}

	if phase {
		portrait, err := analysis.GeneratePhasePortrait(u.System(), integ, x0, tail, h, float64(cfg.Ticks)*h)
		if err != nil {
			log.Printf("phase portrait unavailable: %v", err)
			return nil
		}
		fmt.Println()
		fmt.Println(titleStyle.Render(fmt.Sprintf("phase portrait (theta_%d, omega_%d)", tail, tail)))
		fmt.Print(analysis.PointsToASCII(portrait.Points, 80, 24))
	}
	return nil
}

func printSnapshot(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	u, err := cfg.NewUniverse()
	if err != nil {
		return err
	}
	if _, err := u.Run(cmd.Context(), cfg.Ticks, cfg.Dt); err != nil {
		log.Printf("run stopped early: %v", err)
	}

	snap := u.Snapshot()
	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.SnapshotToSVG(snap, 800, 800)), 0644); err != nil {
			return err
		}
	}
	return export.WriteSnapshot(os.Stdout, snap)
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
	fmt.Fprintln(w, "ID\tSCENARIO\tMETHOD\tBOBS\tTICKS\tOUTCOME\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID, run.Scenario, run.Method, run.Bobs, run.Ticks, run.Outcome,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	return describeRun(os.Stdout, storage.New(dataDir), args[0], traceCSV)
}

// describeRun prints a saved run's metadata and final chain, plus a
// summary of the trajectory CSV at tracePath when one is given.
func describeRun(out io.Writer, st *storage.Store, id, tracePath string) error {
	meta, err := st.Load(id)
	if err != nil {
		return fmt.Errorf("load run %s: %w", id, err)
	}
	snap, err := st.LoadSnapshot(id)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", id, err)
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("run %s: %s", meta.ID, meta.Scenario)))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "method\t%s\n", meta.Method)
	fmt.Fprintf(w, "dt\t%g\n", meta.Dt)
	fmt.Fprintf(w, "ticks\t%d\n", meta.Ticks)
	fmt.Fprintf(w, "outcome\t%s\n", meta.Outcome)
	fmt.Fprintf(w, "elapsed\t%.4fs\n", snap.Elapsed)
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, meta.Metrics[name])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "BOB\tTHETA\tOMEGA\tLENGTH\tMASS\tX\tY")
	for i, b := range snap.Bobs {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%g\t%g\t%.2f\t%.2f\n",
			i, b.Theta, b.Omega, b.Link.Length, b.Mass, b.Position.X, b.Position.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if tracePath == "" {
		return nil
	}
	f, err := os.Open(tracePath)
	if err != nil {
		return err
	}
	defer f.Close()
	times, states, err := export.ReadTrajectory(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", tracePath, err)
	}
	if len(times) == 0 {
		fmt.Fprintln(out, "trajectory: empty")
		return nil
	}
	last := states[len(states)-1]
	fmt.Fprintf(out, "trajectory: %d rows, %d bobs, t=%.4f..%.4f\n",
		len(times), last.Half(), times[0], times[len(times)-1])
	return nil
}

func firstAngle(u *sim.Universe) float64 {
	b, ok := u.Bob(0)
	if !ok {
		return math.NaN()
	}
	return b.Theta
}

// referenceState integrates x0 over ticks steps of h with the adaptive
// integrator at a tight tolerance.
func referenceState(sys dynamo.System, x0 dynamo.State, h float64, ticks int) (dynamo.State, error) {
	integ := integrators.NewRK45(1e-10)
	x := x0.Clone()
	for i := 0; i < ticks; i++ {
		var err error
		if x, err = integ.Step(sys, x, h); err != nil {
			return nil, err
		}
	}
	return x, nil
}
