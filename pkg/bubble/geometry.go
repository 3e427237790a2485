package bubble

import "math"

// overlapTolerance absorbs rounding on candidates placed exactly tangent.
const overlapTolerance = 1e-6

// PlacedCircle is a RankedItem with a resolved center. Fallback is set when
// no free position was found and the circle was dropped on the container
// center, possibly overlapping others.
type PlacedCircle struct {
	RankedItem
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Fallback bool    `json:"fallback,omitempty"`
}

// Distance returns the distance between the centers of c and o.
func (c PlacedCircle) Distance(o PlacedCircle) float64 {
	return math.Hypot(c.X-o.X, c.Y-o.Y)
}

// Overlaps reports whether a and b are closer than their radii plus padding.
func Overlaps(a, b PlacedCircle, padding float64) bool {
	return collides(a.X, a.Y, a.Radius, b.X, b.Y, b.Radius, padding)
}

func collides(x1, y1, r1, x2, y2, r2, padding float64) bool {
	need := r1 + r2 + padding - overlapTolerance
	dx, dy := x1-x2, y1-y2
	return dx*dx+dy*dy < need*need
}

// Centroid returns the mean of all circle centers. It returns (0, 0) for an
// empty slice.
func Centroid(circles []PlacedCircle) (x, y float64) {
	if len(circles) == 0 {
		return 0, 0
	}
	for _, c := range circles {
		x += c.X
		y += c.Y
	}
	n := float64(len(circles))
	return x / n, y / n
}

// Rect is an axis-aligned box in container coordinates.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal span of the box.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical span of the box.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the smallest box containing every circle, padding excluded.
func Bounds(circles []PlacedCircle) Rect {
	if len(circles) == 0 {
		return Rect{}
	}
	b := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, c := range circles {
		b.MinX = min(b.MinX, c.X-c.Radius)
		b.MinY = min(b.MinY, c.Y-c.Radius)
		b.MaxX = max(b.MaxX, c.X+c.Radius)
		b.MaxY = max(b.MaxY, c.Y+c.Radius)
	}
	return b
}

// Fallbacks counts the circles placed through the exhausted-search path.
func Fallbacks(circles []PlacedCircle) int {
	n := 0
	for _, c := range circles {
		if c.Fallback {
			n++
		}
	}
	return n
}
