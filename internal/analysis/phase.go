package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/chainsim/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// PhasePortrait holds the (θ, ω) trajectory of one bob.
type PhasePortrait struct {
	Bob    int
	Points []Point
}

// GeneratePhasePortrait integrates x0 for duration and records the angle and
// angular velocity of bob after every step.
func GeneratePhasePortrait(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	bob int,
	dt, duration float64,
) (*PhasePortrait, error) {
	n := x0.Half()
	if bob < 0 || bob >= n {
		return nil, dynamo.ErrDimensionMismatch
	}

	portrait := &PhasePortrait{Bob: bob}
	if dt > 0 && duration > 0 {
		portrait.Points = make([]Point, 0, int(duration/dt)+1)
	}

	err := trace(sys, integ, x0, dt, duration, func(x dynamo.State) {
		portrait.Points = append(portrait.Points, Point{X: x[bob], Y: x[n+bob]})
	})
	if err != nil {
		return nil, err
	}
	return portrait, nil
}

// PoincareSection records the (θ, ω) of one bob each time the angle of
// another crosses threshold going upwards.
type PoincareSection struct {
	Points []Point
}

func GeneratePoincareSection(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	crossBob int,
	threshold float64,
	recordBob int,
	dt, duration float64,
) (*PoincareSection, error) {
	n := x0.Half()
	if crossBob < 0 || crossBob >= n || recordBob < 0 || recordBob >= n {
		return nil, dynamo.ErrDimensionMismatch
	}

	section := &PoincareSection{}
	prev := x0[crossBob]

	err := trace(sys, integ, x0, dt, duration, func(x dynamo.State) {
		curr := x[crossBob]
		if prev < threshold && curr >= threshold {
			section.Points = append(section.Points, Point{X: x[recordBob], Y: x[n+recordBob]})
		}
		prev = curr
	})
	if err != nil {
		return nil, err
	}
	return section, nil
}

func trace(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, duration float64, visit func(dynamo.State)) error {
	if dt <= 0 {
		return nil
	}

	x := x0.Clone()
	var err error
	for t := 0.0; t < duration; t += dt {
		if x, err = integ.Step(sys, x, dt); err != nil {
			return err
		}
		visit(x)
	}
	return nil
}

// PointsToASCII scatters points onto a width x height character grid with
// axes drawn where they fall inside the bounds.
func PointsToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if c := col(0); c >= 0 && c < width {
		for r := range canvas {
			canvas[r][c] = '│'
		}
	}
	if r := row(0); r >= 0 && r < height {
		for c := range canvas[r] {
			if canvas[r][c] == '│' {
				canvas[r][c] = '┼'
			} else {
				canvas[r][c] = '─'
			}
		}
	}

	for _, p := range points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
