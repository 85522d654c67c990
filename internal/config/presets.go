package config

import (
	"math"
	"sort"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"hanging": {
		Method: "rk4", Gravity: 9.8, Speed: 1.0 / 20, Dt: DefaultDt, Ticks: 4000,
		Bobs: []BobConfig{{Theta: 0.2}, {Theta: 0.1}},
	},
	"triple": {
		Method: "rk4", Gravity: 9.8, Speed: 1.0 / 20, Dt: DefaultDt, Ticks: 4000,
		Bobs: []BobConfig{{Theta: math.Pi / 2}, {Theta: math.Pi / 2}, {Theta: math.Pi / 2}},
	},
	"chaos": {
		Method: "rk4", Gravity: 9.8, Speed: 1.0 / 20, Dt: DefaultDt, Ticks: 8000,
		Bobs: []BobConfig{{Theta: 3.0}, {Theta: 3.0}},
	},
	"long_chain": {
		Method: "rk4", Gravity: 9.8, Speed: 1.0 / 20, Dt: DefaultDt, Ticks: 2000,
		Bobs: longChain(24, 20),
	},
	"euler": {
		Method: "euler", Gravity: 9.8, Speed: 1.0 / 20, Dt: DefaultDt, Ticks: 4000,
		Bobs: []BobConfig{{Theta: math.Pi / 2}, {Theta: math.Pi / 2}},
	},
}

func longChain(n int, length float64) []BobConfig {
	bobs := make([]BobConfig, n)
	for i := range bobs {
		bobs[i] = BobConfig{Theta: math.Pi / 2, Length: length, Radius: 4}
	}
	return bobs
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	if p, ok := Presets[name]; ok {
		return p.Clone()
	}
	return nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
