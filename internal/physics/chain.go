package physics

import "github.com/san-kum/chainsim/internal/dynamo"

// Chain is the ordered arena of bobs. Index order is both physical
// connectivity and solve order; bobs are only added or removed at the tail.
type Chain struct {
	bobs []Bob
}

func NewChain(bobs ...Bob) *Chain {
	return &Chain{bobs: bobs}
}

func (c *Chain) Len() int { return len(c.bobs) }

// At returns the bob at i, or nil when i is out of range.
func (c *Chain) At(i int) *Bob {
	if i < 0 || i >= len(c.bobs) {
		return nil
	}
	return &c.bobs[i]
}

// Last returns the tail bob, or nil for an empty chain.
func (c *Chain) Last() *Bob {
	return c.At(len(c.bobs) - 1)
}

func (c *Chain) Push(b Bob) {
	c.bobs = append(c.bobs, b)
}

func (c *Chain) Pop() (Bob, bool) {
	n := len(c.bobs)
	if n == 0 {
		return Bob{}, false
	}
	b := c.bobs[n-1]
	c.bobs[n-1] = Bob{}
	c.bobs = c.bobs[:n-1]
	return b, true
}

// Truncate drops every bob at index n and beyond.
func (c *Chain) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(c.bobs) {
		return
	}
	clear(c.bobs[n:])
	c.bobs = c.bobs[:n]
}

// State packs the chain as [θ0..θn-1, ω0..ωn-1].
func (c *Chain) State() dynamo.State {
	n := len(c.bobs)
	x := make(dynamo.State, 2*n)
	for i := range c.bobs {
		x[i] = c.bobs[i].Theta
		x[n+i] = c.bobs[i].Omega
	}
	return x
}

// SetState writes angles and velocities back from a packed state. Positions
// are not touched; call UpdatePositions afterwards.
func (c *Chain) SetState(x dynamo.State) error {
	n := len(c.bobs)
	if len(x) != 2*n {
		return dynamo.ErrDimensionMismatch
	}
	for i := range c.bobs {
		c.bobs[i].Theta = x[i]
		c.bobs[i].Omega = x[n+i]
	}
	return nil
}

// UpdatePositions re-derives Cartesian positions for bob from and every bob
// after it. Bob i sits at bob i-1 plus (Lᵢ·sin θᵢ, Lᵢ·cos θᵢ); the parent of
// bob 0 is the origin.
func (c *Chain) UpdatePositions(from int) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(c.bobs); i++ {
		var parent dynamo.Vec2
		if i > 0 {
			parent = c.bobs[i-1].Position
		}
		c.bobs[i].Position = parent.Add(c.bobs[i].offset())
	}
}

// SetTheta reports false when i is out of range.
func (c *Chain) SetTheta(i int, theta float64) bool {
	b := c.At(i)
	if b == nil {
		return false
	}
	b.Theta = theta
	c.UpdatePositions(i)
	return true
}

func (c *Chain) SetLength(i int, length float64) bool {
	b := c.At(i)
	if b == nil {
		return false
	}
	b.Link.SetLength(length)
	return c.SetTheta(i, b.Theta)
}

func (c *Chain) SetMass(i int, mass float64) bool {
	b := c.At(i)
	if b == nil {
		return false
	}
	b.Mass = mass
	return true
}

// RecordTrails appends every bob's own position and color to its trail.
func (c *Chain) RecordTrails(capacity int) {
	for i := range c.bobs {
		b := &c.bobs[i]
		b.RecordTrailPoint(b.Position, b.Color, capacity)
	}
}

// Bobs returns deep copies of every bob in order.
func (c *Chain) Bobs() []Bob {
	out := make([]Bob, len(c.bobs))
	for i := range c.bobs {
		out[i] = c.bobs[i].Clone()
	}
	return out
}

func (c *Chain) Trails() [][]TrailPoint {
	out := make([][]TrailPoint, len(c.bobs))
	for i := range c.bobs {
		out[i] = c.bobs[i].Trail.Points()
	}
	return out
}
