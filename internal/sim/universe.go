package sim

import (
	"errors"
	"math"

	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/physics"
)

const (
	DefaultGravity  = 9.8
	DefaultSpeed    = 1.0 / 20.0
	DefaultStep     = 0.1
	DefaultLength   = 100.0
	DefaultMass     = 10.0
	DefaultRodColor = 0x0f0f0f
	DefaultRadius   = 10

	// TrailCapacity bounds every bob's trail after a tick.
	TrailCapacity = 250
	// StabilityScale shrinks every host dt before integrating.
	StabilityScale = 0.25

	MaxBobsEuler    = 100
	MaxBobsExtended = 1000
)

// MaxBobsFor returns the chain length cap applied when m is selected.
// Explicit stepping degrades quickly on long chains, so Euler caps low.
func MaxBobsFor(m integrators.Method) int {
	if m == integrators.MethodEuler {
		return MaxBobsEuler
	}
	return MaxBobsExtended
}

// Universe is a chain plus the settings that drive it. It is owned by a
// single caller and performs no locking.
type Universe struct {
	chain *physics.Chain

	gravity float64
	paused  bool
	method  integrators.Method
	speed   float64
	step    float64
	maxBobs int

	elapsed float64
	ticks   int

	solver     *physics.Solver
	integrator dynamo.Integrator
	colors     ColorSource
	observers  []dynamo.Observer
}

// New returns the default universe: two bobs hanging horizontally.
func New() *Universe {
	u := NewEmpty()
	u.chain.Push(physics.NewBob(dynamo.V2(100, 0), 0, math.Pi/2,
		physics.NewLink(DefaultLength, DefaultMass, DefaultRodColor), DefaultRadius, 100, 0xff0000))
	u.chain.Push(physics.NewBob(dynamo.V2(200, 0), 0, math.Pi/2,
		physics.NewLink(DefaultLength, DefaultMass, DefaultRodColor), DefaultRadius, 100, 0x0000ff))
	return u
}

// NewEmpty returns a universe with default settings and no bobs.
func NewEmpty() *Universe {
	return &Universe{
		chain:      physics.NewChain(),
		gravity:    DefaultGravity,
		method:     integrators.MethodEuler,
		speed:      DefaultSpeed,
		step:       DefaultStep,
		maxBobs:    MaxBobsEuler,
		solver:     physics.NewSolver(DefaultGravity),
		integrator: integrators.NewSemiImplicitEuler(),
		colors:     globalSource{},
	}
}

// SetColorSource replaces the palette draw used by AddBobSimple.
func (u *Universe) SetColorSource(src ColorSource) {
	if src == nil {
		src = globalSource{}
	}
	u.colors = src
}

func (u *Universe) AddObserver(o dynamo.Observer) {
	u.observers = append(u.observers, o)
}

// Reset replaces the universe with a fresh default one. The color source
// and observers carry over; observers that are metrics are reset.
func (u *Universe) Reset() {
	colors, observers := u.colors, u.observers
	*u = *New()
	u.colors = colors
	u.observers = observers
	for _, o := range observers {
		if m, ok := o.(dynamo.Metric); ok {
			m.Reset()
		}
	}
}

// Advance integrates the chain by dt·speed·StabilityScale.
func (u *Universe) Advance(dt float64) Outcome {
	if u.chain.Len() == 0 || u.paused {
		return Skipped
	}
	u.EnforceMaxBobs()

	h := u.EffectiveStep(dt)
	u.solver.Gravity = u.gravity
	next, err := u.integrator.Step(u.solver, u.chain.State(), h)
	switch {
	case errors.Is(err, dynamo.ErrNotImplemented):
		return NotImplemented
	case err != nil:
		return Aborted
	}
	if err := u.chain.SetState(next); err != nil {
		return Aborted
	}

	u.chain.UpdatePositions(0)
	u.chain.RecordTrails(TrailCapacity)
	u.elapsed += h
	u.ticks++

	for _, o := range u.observers {
		o.OnStep(next, u.elapsed)
	}
	return Applied
}

// EnforceMaxBobs drops bobs beyond the current cap and reports how many
// were removed. Advance applies it before every step; callers that sample
// the state before the first tick apply it themselves.
func (u *Universe) EnforceMaxBobs() int {
	over := u.chain.Len() - u.maxBobs
	if over <= 0 {
		return 0
	}
	u.chain.Truncate(u.maxBobs)
	return over
}

// EffectiveStep is the integration step Advance takes for a host dt.
func (u *Universe) EffectiveStep(dt float64) float64 {
	return dt * u.speed * StabilityScale
}

// AddBob appends a fully specified bob. Its position is taken as given.
func (u *Universe) AddBob(b physics.Bob) {
	u.chain.Push(b)
}

// AddBobSimple appends a default bob at angle theta, placed relative to the
// current tail's stored position (or the origin). Earlier bobs are not
// re-solved.
func (u *Universe) AddBobSimple(theta float64) {
	var parent dynamo.Vec2
	if last := u.chain.Last(); last != nil {
		parent = last.Position
	}
	pos := parent.Add(dynamo.V2(DefaultLength*math.Sin(theta), DefaultLength*math.Cos(theta)))

	u.chain.Push(physics.NewBob(pos, 0, theta,
		physics.NewLink(DefaultLength, DefaultMass, DefaultRodColor),
		DefaultRadius, DefaultMass, u.NextColor()))
}

// NextColor draws a palette color from the universe's color source.
func (u *Universe) NextColor() uint32 {
	return pickColor(u.colors)
}

// RemoveBob pops the tail bob; no-op on an empty chain.
func (u *Universe) RemoveBob() {
	u.chain.Pop()
}

func (u *Universe) UpdateBobTheta(i int, theta float64) {
	u.chain.SetTheta(i, theta)
}

func (u *Universe) UpdateBobLength(i int, length float64) {
	u.chain.SetLength(i, length)
}

func (u *Universe) UpdateBobMass(i int, mass float64) {
	u.chain.SetMass(i, mass)
}

func (u *Universe) SetGravity(g float64) { u.gravity = g }
func (u *Universe) SetSpeed(s float64)   { u.speed = s }
func (u *Universe) SetPaused(p bool)     { u.paused = p }
func (u *Universe) SetStep(s float64)    { u.step = s }

// SetMaxBobs overrides the cap until the next SetMethod.
func (u *Universe) SetMaxBobs(n int) {
	if n < 0 {
		n = 0
	}
	u.maxBobs = n
}

// SetMethod switches integrator and applies the method's chain cap.
func (u *Universe) SetMethod(m integrators.Method) error {
	integ, err := integrators.ForMethod(m)
	if err != nil {
		return err
	}
	u.method = m
	u.integrator = integ
	u.maxBobs = MaxBobsFor(m)
	return nil
}

// Bob returns a copy of bob i and whether i was in range.
func (u *Universe) Bob(i int) (physics.Bob, bool) {
	b := u.chain.At(i)
	if b == nil {
		return physics.Bob{}, false
	}
	return b.Clone(), true
}

func (u *Universe) Bobs() []physics.Bob            { return u.chain.Bobs() }
func (u *Universe) BobCount() int                  { return u.chain.Len() }
func (u *Universe) Trails() [][]physics.TrailPoint { return u.chain.Trails() }
func (u *Universe) Gravity() float64               { return u.gravity }
func (u *Universe) Speed() float64                 { return u.speed }
func (u *Universe) Paused() bool                   { return u.paused }
func (u *Universe) Method() integrators.Method     { return u.method }
func (u *Universe) Step() float64                  { return u.step }
func (u *Universe) MaxBobs() int                   { return u.maxBobs }
func (u *Universe) Elapsed() float64               { return u.elapsed }
func (u *Universe) Ticks() int                     { return u.ticks }

// State returns the packed [θ, ω] vector of the chain.
func (u *Universe) State() dynamo.State { return u.chain.State() }

// Energy is the conserved quantity of the chain dynamics at current gravity.
func (u *Universe) Energy() float64 {
	u.solver.Gravity = u.gravity
	return u.solver.Energy(u.chain.State())
}

// System returns an independent solver at the current gravity.
func (u *Universe) System() *physics.Solver {
	return physics.NewSolver(u.gravity)
}
