package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/chainsim/internal/dynamo"
	"github.com/san-kum/chainsim/internal/sim"
)

// SnapshotToSVG draws the chain in snap: trails first, then rods from the
// pivot outwards, then bobs. World coordinates are fitted into a
// width x height viewport with the y axis pointing down, as in the
// simulation.
func SnapshotToSVG(snap sim.Snapshot, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	fit := fitViewport(snap, width, height)

	for _, b := range snap.Bobs {
		if len(b.Trail) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.5" stroke-width="1" d="M`, hexColor(b.Color)))
		for i, p := range b.Trail {
			x, y := fit(p.Position)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	var parent dynamo.Vec2
	for _, b := range snap.Bobs {
		x1, y1 := fit(parent)
		x2, y2 := fit(b.Position)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, x1, y1, x2, y2, hexColor(b.Link.Color)))
		parent = b.Position
	}

	for _, b := range snap.Bobs {
		x, y := fit(b.Position)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%d" fill="%s"/>
`, x, y, b.Radius, hexColor(b.Color)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func fitViewport(snap sim.Snapshot, width, height int) func(dynamo.Vec2) (float64, float64) {
	var minX, maxX, minY, maxY float64
	pad := 0.0
	grow := func(p dynamo.Vec2) {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	for _, b := range snap.Bobs {
		grow(b.Position)
		for _, p := range b.Trail {
			grow(p.Position)
		}
		pad = math.Max(pad, float64(b.Radius))
	}
	minX, minY = minX-pad, minY-pad
	maxX, maxY = maxX+pad, maxY+pad

	rangeX := math.Max(maxX-minX, 1)
	rangeY := math.Max(maxY-minY, 1)
	scale := math.Min(float64(width)/rangeX, float64(height)/rangeY)
	offX := (float64(width) - rangeX*scale) / 2
	offY := (float64(height) - rangeY*scale) / 2

	return func(p dynamo.Vec2) (float64, float64) {
		return offX + (p.X-minX)*scale, offY + (p.Y-minY)*scale
	}
}

func hexColor(c uint32) string {
	return fmt.Sprintf("#%06x", c&0xffffff)
}
