package main

import (
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/chainsim/internal/config"
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/metrics"
	"github.com/san-kum/chainsim/internal/sim"
)

// loadScenario resolves the scenario for cmd: the named preset (or the
// default), replaced by --config when given, then overridden by any flag
// the user set explicitly. The returned name labels saved runs.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := "default"
	if len(args) > 0 {
		name = args[0]
	}

	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	}

	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// angleTrace samples the angle of one bob after every applied tick.
type angleTrace struct {
	bob    int
	values []float64
}

func (a *angleTrace) OnStep(x dynamo.State, t float64) {
	if a.bob >= 0 && a.bob < x.Half() {
		a.values = append(a.values, x[a.bob])
	}
}

// downsample keeps at most n evenly spaced values for plotting.
func downsample(values []float64, n int) []float64 {
	if len(values) <= n || n <= 0 {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*len(values)/n]
	}
	return out
}

func field(label string, value any) {
	fmt.Println(labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value)))
}

// warnTruncated applies the method's bob cap now so that anything sampled
// before the first tick sees the chain the run will actually integrate.
func warnTruncated(u *sim.Universe) {
	if n := u.EnforceMaxBobs(); n > 0 {
		log.Printf("warning: dropped %d bobs over the %s limit of %d", n, u.Method(), u.MaxBobs())
	}
}

// startDrift returns an energy drift metric whose baseline is the
// truncated initial chain.
func startDrift(u *sim.Universe) *metrics.EnergyDrift {
	warnTruncated(u)
	d := metrics.NewEnergyDrift(u.System())
	d.OnStep(u.State(), 0)
	return d
}

// distance is the Euclidean distance between two states, or NaN when
// either is missing or their dimensions differ.
func distance(a, b dynamo.State) float64 {
	if a == nil || b == nil || len(a) != len(b) {
		return math.NaN()
	}
	return a.Sub(b).Norm()
}
