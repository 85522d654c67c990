package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	configFile  string
	ticks       int
	dt          float64
	method      string
	gravity     float64
	speed       float64
	addBobs     int
	addTheta    float64
	seed        uint64
	csvPath     string
	jsonPath    string
	svgPath     string
	plot        bool
	save        bool
	phase       bool
	poincare    bool
	spectrumAll bool
	traceCSV    string
	threshold   float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Width(14)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "chainsim",
		Short:         "n-link pendulum simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chainsim", "data directory for saved runs")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and print a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&addBobs, "add", 0, "append this many default bobs")
	runCmd.Flags().Float64Var(&addTheta, "add-theta", 1.5707963267948966, "angle of bobs added with --add")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write the trajectory as CSV")
	runCmd.Flags().StringVar(&jsonPath, "json", "", "write the final snapshot as JSON")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "render the final snapshot as SVG")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the tail angle")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the data directory")
	runCmd.Flags().Float64Var(&threshold, "spin-limit", 50, "angular velocity counted as unstable (rad/s)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [method...]",
		Short: "run one scenario under several integration methods",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	addScenarioFlags(compareCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [preset]",
		Short: "spectrum and Lyapunov exponent of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeScenario,
	}
	addScenarioFlags(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "draw the tail bob's phase portrait")
	analyzeCmd.Flags().BoolVar(&poincare, "poincare", false, "draw the tail bob's poincare section at theta_0 = 0")
	analyzeCmd.Flags().BoolVar(&spectrumAll, "spectrum-all", false, "estimate the full lyapunov spectrum")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [preset]",
		Short: "print the JSON snapshot of a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printSnapshot,
	}
	addScenarioFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&svgPath, "svg", "", "also render the snapshot as SVG")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&traceCSV, "csv", "", "summarize a trajectory CSV written by run --csv")
	runsCmd.AddCommand(showCmd)

	rootCmd.AddCommand(runCmd, presetsCmd, compareCmd, analyzeCmd, snapshotCmd, runsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}

// addScenarioFlags registers the flags that override scenario values.
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "number of ticks")
	cmd.Flags().Float64Var(&dt, "dt", 0, "host time step per tick")
	cmd.Flags().StringVar(&method, "method", "", "integration method (euler, rk4, hamiltonian)")
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "gravitational acceleration")
	cmd.Flags().Float64Var(&speed, "speed", 0, "simulation speed multiplier")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "palette seed")
}
