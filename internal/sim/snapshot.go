package sim

import (
	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/integrators"
	"github.com/san-kum/chainsim/internal/physics"
)

// BobRecord is the host-facing projection of every Bob field.
type BobRecord struct {
	Position dynamo.Vec2          `json:"pos"`
	Omega    float64              `json:"omega"`
	Theta    float64              `json:"theta"`
	Link     physics.Link         `json:"rod"`
	Trail    []physics.TrailPoint `json:"trail"`
	Radius   int                  `json:"radius"`
	Mass     float64              `json:"mass"`
	Color    uint32               `json:"color"`
}

func RecordOf(b *physics.Bob) BobRecord {
	return BobRecord{
		Position: b.Position,
		Omega:    b.Omega,
		Theta:    b.Theta,
		Link:     b.Link,
		Trail:    b.Trail.Points(),
		Radius:   b.Radius,
		Mass:     b.Mass,
		Color:    b.Color,
	}
}

type Snapshot struct {
	Bobs    []BobRecord        `json:"bobs"`
	Gravity float64            `json:"gravity"`
	Paused  bool               `json:"paused"`
	Method  integrators.Method `json:"method"`
	Speed   float64            `json:"speed"`
	Step    float64            `json:"step"`
	MaxBobs int                `json:"max_bobs"`
	Elapsed float64            `json:"elapsed"`
	Ticks   int                `json:"ticks"`
}

func (u *Universe) Snapshot() Snapshot {
	s := Snapshot{
		Bobs:    make([]BobRecord, u.chain.Len()),
		Gravity: u.gravity,
		Paused:  u.paused,
		Method:  u.method,
		Speed:   u.speed,
		Step:    u.step,
		MaxBobs: u.maxBobs,
		Elapsed: u.elapsed,
		Ticks:   u.ticks,
	}
	for i := range s.Bobs {
		s.Bobs[i] = RecordOf(u.chain.At(i))
	}
	return s
}
