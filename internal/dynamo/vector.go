package dynamo

import "math"

// Vec2 is a 2D position or offset. The zero value is the origin.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Div divides both components by s. Division by zero is not guarded and
// yields Inf or NaN components.
func (v Vec2) Div(s float64) Vec2 { return Vec2{v.X / s, v.Y / s} }

func (v Vec2) DistanceTo(o Vec2) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}
