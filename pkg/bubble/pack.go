package bubble

import (
	"cmp"
	"math"
	"slices"
)

// Pack ranks items, places one circle per ranked item and centers the
// cluster on the container. The result is in rank order and has the same
// length as Rank(items, opts). Pack never fails; an empty input yields nil.
func Pack(items []Item, opts Options) []PlacedCircle {
	opts = opts.Normalize()

	ranked := Rank(items, opts)
	if len(ranked) == 0 {
		return nil
	}

	// Largest first. Radius is monotonic in weight, so a stable sort keeps
	// rank order among equal radii.
	order := slices.Clone(ranked)
	slices.SortStableFunc(order, func(a, b RankedItem) int {
		return cmp.Compare(b.Radius, a.Radius)
	})

	cx, cy := opts.Width/2, opts.Height/2
	placed := make([]PlacedCircle, 0, len(order))
	for _, it := range order {
		c := PlacedCircle{RankedItem: it, X: cx, Y: cy}
		if len(placed) > 0 {
			if x, y, ok := nearestFree(placed, it.Radius, cx, cy, opts); ok {
				c.X, c.Y = x, y
			} else {
				c.Fallback = true
			}
		}
		placed = append(placed, c)
	}

	recenter(placed, cx, cy)

	slices.SortFunc(placed, func(a, b PlacedCircle) int {
		return cmp.Compare(a.Rank, b.Rank)
	})
	return placed
}

// nearestFree scans a ring of tangent candidates around every placed circle
// and returns the free one closest to (cx, cy). Strictly closer wins, so
// exact ties keep scan order.
func nearestFree(placed []PlacedCircle, r, cx, cy float64, opts Options) (x, y float64, ok bool) {
	steps := ringSteps(opts.AngleStep)
	best := math.Inf(1)

	for _, other := range placed {
		d := other.Radius + r + opts.Padding
		for k := 0; k < steps; k++ {
			a := float64(k) * opts.AngleStep
			px := other.X + d*math.Cos(a)
			py := other.Y + d*math.Sin(a)

			if blocked(placed, px, py, r, opts.Padding) {
				continue
			}
			dx, dy := px-cx, py-cy
			if dist := dx*dx + dy*dy; dist < best {
				best, x, y, ok = dist, px, py, true
			}
		}
	}
	return x, y, ok
}

func blocked(placed []PlacedCircle, x, y, r, padding float64) bool {
	for _, p := range placed {
		if collides(x, y, r, p.X, p.Y, p.Radius, padding) {
			return true
		}
	}
	return false
}

// ringSteps is the number of candidate angles covering one full turn.
func ringSteps(step float64) int {
	n := int(math.Ceil(2*math.Pi/step - 1e-9))
	return max(n, 1)
}

func recenter(circles []PlacedCircle, cx, cy float64) {
	mx, my := Centroid(circles)
	dx, dy := cx-mx, cy-my
	for i := range circles {
		circles[i].X += dx
		circles[i].Y += dy
	}
}
