package sim

import "math/rand/v2"

// Palette holds the display colors handed to bobs added with AddBobSimple.
var Palette = [...]uint32{0xff0000, 0x0000ff, 0x00ff00, 0xf0f000, 0x00f0f0, 0xf000f0}

// ColorSource picks an index in [0, n). *rand.Rand satisfies it.
type ColorSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSeededColors returns a deterministic source for the given seed.
func NewSeededColors(seed uint64) ColorSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// FixedColors replays a fixed index sequence, wrapping at the end.
type FixedColors struct {
	Seq  []int
	next int
}

func (f *FixedColors) IntN(n int) int {
	if len(f.Seq) == 0 || n <= 0 {
		return 0
	}
	v := f.Seq[f.next%len(f.Seq)]
	f.next++
	return ((v % n) + n) % n
}

func pickColor(src ColorSource) uint32 {
	return Palette[src.IntN(len(Palette))]
}
