// Package cloud is the serialized form of a packed bubble layout.
//
// A Cloud is what the layout stage produces and what every renderer
// consumes. It carries the packed circles together with the container size
// and the options that produced them, so a stored cloud can be rendered
// again without re-running the packer.
package cloud

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/errors"
)

// MaxDimension bounds the container width and height.
const MaxDimension = 10000

// Bubble is one placed circle.
type Bubble struct {
	Label    string  `json:"label"`
	Weight   float64 `json:"weight"`
	Rank     int     `json:"rank"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	R        float64 `json:"r"`
	Fallback bool    `json:"fallback,omitempty"`
}

// Cloud is a complete layout.
type Cloud struct {
	ID        uuid.UUID      `json:"id"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Style     string         `json:"style,omitempty"`
	Seed      uint64         `json:"seed,omitempty"`
	Source    string         `json:"source,omitempty"`
	Options   bubble.Options `json:"options"`
	Bubbles   []Bubble       `json:"bubbles"`
	Fallbacks int            `json:"fallbacks,omitempty"`
}

// FromCircles wraps packed circles into a new Cloud with a fresh ID.
func FromCircles(circles []bubble.PlacedCircle, opts bubble.Options) Cloud {
	opts = opts.Normalize()
	c := Cloud{
		ID:      uuid.New(),
		Width:   opts.Width,
		Height:  opts.Height,
		Options: opts,
		Bubbles: make([]Bubble, len(circles)),
	}
	for i, p := range circles {
		c.Bubbles[i] = Bubble{
			Label:    p.Label,
			Weight:   p.Weight,
			Rank:     p.Rank,
			X:        p.X,
			Y:        p.Y,
			R:        p.Radius,
			Fallback: p.Fallback,
		}
		if p.Fallback {
			c.Fallbacks++
		}
	}
	return c
}

// Circles converts the bubbles back into engine values.
func (c Cloud) Circles() []bubble.PlacedCircle {
	out := make([]bubble.PlacedCircle, len(c.Bubbles))
	for i, b := range c.Bubbles {
		out[i] = bubble.PlacedCircle{
			RankedItem: bubble.RankedItem{
				Item:   bubble.Item{Label: b.Label, Weight: b.Weight},
				Rank:   b.Rank,
				Radius: b.R,
			},
			X:        b.X,
			Y:        b.Y,
			Fallback: b.Fallback,
		}
	}
	return out
}

// Validate checks the invariants every renderer relies on.
func (c Cloud) Validate() error {
	if !finitePositive(c.Width) || !finitePositive(c.Height) {
		return errors.New(errors.ErrCodeInvalidCloud, "cloud size %vx%v must be positive", c.Width, c.Height)
	}
	if c.Width > MaxDimension || c.Height > MaxDimension {
		return errors.New(errors.ErrCodeInvalidCloud, "cloud size %vx%v exceeds %d", c.Width, c.Height, MaxDimension)
	}
	for i, b := range c.Bubbles {
		if !finitePositive(b.R) {
			return errors.New(errors.ErrCodeInvalidCloud, "bubble %d (%q) has invalid radius %v", i, b.Label, b.R)
		}
		if !finite(b.X) || !finite(b.Y) {
			return errors.New(errors.ErrCodeInvalidCloud, "bubble %d (%q) has invalid center", i, b.Label)
		}
	}
	return nil
}

// Marshal encodes c as indented JSON.
func Marshal(c Cloud) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cloud: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a cloud.
func Unmarshal(data []byte) (Cloud, error) {
	var c Cloud
	if err := json.Unmarshal(data, &c); err != nil {
		return Cloud{}, errors.Wrap(errors.ErrCodeInvalidCloud, err, "decode cloud")
	}
	if err := c.Validate(); err != nil {
		return Cloud{}, err
	}
	return c, nil
}

// ReadFile loads a cloud from path.
func ReadFile(path string) (Cloud, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Cloud{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return Cloud{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// WriteFile stores c at path, creating parent directories as needed.
func WriteFile(path string, c Cloud) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finitePositive(v float64) bool { return finite(v) && v > 0 }
