package physics

import "github.com/san-kum/chainsim/internal/dynamo"

const minTrailBuffer = 16

type TrailPoint struct {
	Position dynamo.Vec2 `json:"pos"`
	Color    uint32      `json:"color"`
}

// Trail is a FIFO ring of recorded positions. The zero value is empty and
// ready to use.
type Trail struct {
	buf   []TrailPoint
	head  int
	count int
}

// Record appends p and evicts the oldest points until at most capacity
// remain. A capacity of zero or less leaves the trail empty.
func (t *Trail) Record(p TrailPoint, capacity int) {
	if capacity <= 0 {
		t.Clear()
		return
	}
	for t.count >= capacity {
		t.dropOldest()
	}
	if t.count == len(t.buf) {
		t.grow()
	}
	t.buf[(t.head+t.count)%len(t.buf)] = p
	t.count++
}

func (t *Trail) Len() int { return t.count }

// Points returns a copy of the trail, oldest first.
func (t *Trail) Points() []TrailPoint {
	out := make([]TrailPoint, t.count)
	for i := 0; i < t.count; i++ {
		out[i] = t.buf[(t.head+i)%len(t.buf)]
	}
	return out
}

// Last returns the most recently recorded point.
func (t *Trail) Last() (TrailPoint, bool) {
	if t.count == 0 {
		return TrailPoint{}, false
	}
	return t.buf[(t.head+t.count-1)%len(t.buf)], true
}

func (t *Trail) Clear() {
	t.head = 0
	t.count = 0
}

func (t *Trail) Clone() Trail {
	return Trail{buf: t.Points(), count: t.count}
}

func (t *Trail) dropOldest() {
	t.head = (t.head + 1) % len(t.buf)
	t.count--
}

func (t *Trail) grow() {
	size := 2 * len(t.buf)
	if size < minTrailBuffer {
		size = minTrailBuffer
	}
	buf := make([]TrailPoint, size)
	for i := 0; i < t.count; i++ {
		buf[i] = t.buf[(t.head+i)%len(t.buf)]
	}
	t.buf = buf
	t.head = 0
}
