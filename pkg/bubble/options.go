package bubble

import "math"

// Default values applied by [Options.Normalize].
const (
	DefaultWidth     = 400.0
	DefaultHeight    = 400.0
	DefaultMaxItems  = 30
	DefaultMinRadius = 25.0
	DefaultMaxRadius = 60.0
	DefaultPadding   = 4.0
	DefaultAngleStep = math.Pi / 16
)

// Options controls sizing and placement. The zero value is usable: missing
// or invalid fields fall back to their defaults, except Padding, where zero
// is a legal gap and only negative or NaN values are reset (to 0).
// DefaultOptions sets Padding to DefaultPadding.
type Options struct {
	Width     float64 `json:"width" toml:"width"`
	Height    float64 `json:"height" toml:"height"`
	MaxItems  int     `json:"max_items" toml:"max_items"`
	MinRadius float64 `json:"min_radius" toml:"min_radius"`
	MaxRadius float64 `json:"max_radius" toml:"max_radius"`
	Padding   float64 `json:"padding" toml:"padding"`

	// AngleStep is the spacing in radians between candidate positions on
	// the ring around each placed circle.
	AngleStep float64 `json:"angle_step" toml:"-"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		MaxItems:  DefaultMaxItems,
		MinRadius: DefaultMinRadius,
		MaxRadius: DefaultMaxRadius,
		Padding:   DefaultPadding,
		AngleStep: DefaultAngleStep,
	}
}

// Normalize returns a copy of o with every zero or invalid field replaced by
// its default. A zero Padding is kept since touching-but-not-overlapping
// bubbles are legal.
func (o Options) Normalize() Options {
	if !positive(o.Width) {
		o.Width = DefaultWidth
	}
	if !positive(o.Height) {
		o.Height = DefaultHeight
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if !positive(o.MinRadius) || !positive(o.MaxRadius) || o.MinRadius >= o.MaxRadius {
		o.MinRadius, o.MaxRadius = DefaultMinRadius, DefaultMaxRadius
	}
	if math.IsNaN(o.Padding) || math.IsInf(o.Padding, 0) || o.Padding < 0 {
		o.Padding = 0
	}
	if !positive(o.AngleStep) || o.AngleStep > math.Pi {
		o.AngleStep = DefaultAngleStep
	}
	return o
}

// Center returns the geometric center of the container.
func (o Options) Center() (x, y float64) {
	o = o.Normalize()
	return o.Width / 2, o.Height / 2
}

// MidRadius is the radius given to every item when all weights are equal.
func (o Options) MidRadius() float64 {
	o = o.Normalize()
	return (o.MinRadius + o.MaxRadius) / 2
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
