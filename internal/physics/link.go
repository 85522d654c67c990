package physics

// Link is the massless rod that attaches a bob to its parent.
type Link struct {
	Length float64 `json:"length"`
	Mass   float64 `json:"mass"`
	Color  uint32  `json:"color"`
}

func NewLink(length, mass float64, color uint32) Link {
	return Link{Length: length, Mass: mass, Color: color}
}

// SetLength is not validated; negative lengths flip the rod through its pivot.
func (l *Link) SetLength(length float64) {
	l.Length = length
}
