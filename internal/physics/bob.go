package physics

import (
	"math"

	"github.com/san-kum/chainsim/internal/dynamo"
)

// Bob is one pendulum mass. Theta is measured from the downward vertical,
// in radians; Position is relative to the chain origin with y pointing down.
type Bob struct {
	Position dynamo.Vec2
	Omega    float64
	Theta    float64
	Link     Link
	Trail    Trail
	Radius   int
	Mass     float64
	Color    uint32
}

func NewBob(pos dynamo.Vec2, omega, theta float64, link Link, radius int, mass float64, color uint32) Bob {
	return Bob{
		Position: pos,
		Omega:    omega,
		Theta:    theta,
		Link:     link,
		Radius:   radius,
		Mass:     mass,
		Color:    color,
	}
}

func (b *Bob) RecordTrailPoint(pos dynamo.Vec2, color uint32, capacity int) {
	b.Trail.Record(TrailPoint{Position: pos, Color: color}, capacity)
}

// Clone returns a copy that shares no trail storage with b.
func (b *Bob) Clone() Bob {
	c := *b
	c.Trail = b.Trail.Clone()
	return c
}

// offset is the rod vector from the parent to this bob.
func (b *Bob) offset() dynamo.Vec2 {
	return dynamo.Vec2{
		X: b.Link.Length * math.Sin(b.Theta),
		Y: b.Link.Length * math.Cos(b.Theta),
	}
}
