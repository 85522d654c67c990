package metrics

import (
	"math"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// Energy tracks the mean energy of the observed states.
type Energy struct {
	name        string
	sys         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(sys dynamo.Hamiltonian) *Energy {
	return &Energy{name: "energy", sys: sys}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(x dynamo.State, t float64) {
	e.totalEnergy += e.sys.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift records the largest departure from the first observed
// energy, relative to that energy once it exceeds 1 in magnitude. A chain
// released from horizontal starts near zero energy, where a pure ratio is
// meaningless.
type EnergyDrift struct {
	name          string
	sys           dynamo.Hamiltonian
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(sys dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", sys: sys}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnStep(x dynamo.State, t float64) {
	energy := e.sys.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	scale := math.Max(math.Abs(e.initialEnergy), 1)
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initialEnergy)/scale)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current returns the last observed energy.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
