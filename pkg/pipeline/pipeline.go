// Package pipeline provides the layout → render pipeline for wordbubbles.
//
// The CLI and the HTTP API both go through this package so that option
// defaults, validation, caching and logging behave the same everywhere.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Layout: rank the items, size them and pack them into a [cloud.Cloud]
//  2. Render: draw the cloud in one or more formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run on its own or through [Runner.Execute].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, items, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	c, err := runner.Layout(ctx, items, opts)
//	artifacts, err := runner.Render(ctx, c, opts)
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/render/styles"
	"github.com/matzehuels/wordbubbles/pkg/report"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed drives the handdrawn wobble when no seed is given.
	DefaultSeed = uint64(42)

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// MaxScale bounds the PNG pixel density.
	MaxScale = 8.0

	// MaxInputItems bounds how many items a single request may carry.
	// Only the heaviest MaxItems are drawn, but all of them are sorted.
	MaxInputItems = 100_000
)

// DefaultStyle is the default visual style.
const DefaultStyle = styles.StyleSimple

// DefaultSource is the frequency table used when none is named.
const DefaultSource = report.SourceWords

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// Zero values mean "use the default". The struct is JSON-serializable so the
// API can accept it verbatim.
type Options struct {
	// Input options
	Source string `json:"source,omitempty"`

	// Layout options
	Width     float64  `json:"width,omitempty"`
	Height    float64  `json:"height,omitempty"`
	MaxItems  int      `json:"max_items,omitempty"`
	MinRadius float64  `json:"min_radius,omitempty"`
	MaxRadius float64  `json:"max_radius,omitempty"`
	Padding   *float64 `json:"padding,omitempty"` // nil means bubble.DefaultPadding
	AngleStep float64  `json:"angle_step,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Seed        uint64   `json:"seed,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	ShowWeights bool     `json:"show_weights,omitempty"`
	Reveal      bool     `json:"reveal,omitempty"`
	Transparent bool     `json:"transparent,omitempty"`

	// Refresh bypasses cache reads. Results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Cloud is the packed layout.
	Cloud cloud.Cloud

	// LayoutHash is the content hash of the layout geometry.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount   int
	BubbleCount int
	Fallbacks   int
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the cloud came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	return errors.ValidateStyle(style, styles.ValidStyles)
}

// ValidateSource checks that a frequency source is valid.
func ValidateSource(source string) error {
	return errors.ValidateSource(source, report.ValidSources)
}

// ValidateItems rejects inputs the API should not silently repair: empty or
// unprintable labels, negative or non-finite weights, and oversized lists.
func ValidateItems(items []bubble.Item) error {
	if len(items) > MaxInputItems {
		return errors.New(errors.ErrCodeTooLarge, "too many items: %d (max %d)", len(items), MaxInputItems)
	}
	for _, it := range items {
		if err := errors.ValidateLabel(it.Label); err != nil {
			return err
		}
		if err := errors.ValidateWeight(it.Label, it.Weight); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the full
// pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills in layout defaults.
func (o *Options) SetLayoutDefaults() {
	if o.Source == "" {
		o.Source = DefaultSource
	}
	n := o.BubbleOptions().Normalize()
	o.Width, o.Height = n.Width, n.Height
	o.MaxItems = n.MaxItems
	o.MinRadius, o.MaxRadius = n.MinRadius, n.MaxRadius
	o.AngleStep = n.AngleStep
	if o.Padding == nil {
		p := n.Padding
		o.Padding = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout rejects explicit layout values that are out of range,
// then applies defaults. Zero values are never an error.
func (o *Options) ValidateForLayout() error {
	if o.Source != "" {
		if err := ValidateSource(o.Source); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"min_radius", o.MinRadius},
		{"max_radius", o.MaxRadius},
		{"angle_step", o.AngleStep},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return errors.New(errors.ErrCodeInvalidOptions, "%s must be a non-negative number, got %v", f.name, f.v)
		}
	}
	if o.Width > cloud.MaxDimension || o.Height > cloud.MaxDimension {
		return errors.New(errors.ErrCodeInvalidOptions, "width and height must not exceed %d, got %vx%v", cloud.MaxDimension, o.Width, o.Height)
	}
	if o.MaxItems < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max_items cannot be negative")
	}
	if o.MinRadius > 0 && o.MaxRadius > 0 && o.MinRadius >= o.MaxRadius {
		return errors.New(errors.ErrCodeInvalidOptions, "min_radius (%v) must be smaller than max_radius (%v)", o.MinRadius, o.MaxRadius)
	}
	if o.AngleStep > math.Pi {
		return errors.New(errors.ErrCodeInvalidOptions, "angle_step must not exceed π radians")
	}
	if p := o.Padding; p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0) {
		return errors.New(errors.ErrCodeInvalidOptions, "padding must be a non-negative number, got %v", *p)
	}
	o.SetLayoutDefaults()
	return nil
}

// SetRenderDefaults fills in render defaults.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates render fields and applies defaults.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if math.IsNaN(o.Scale) || o.Scale <= 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidOptions, "scale must be in (0, %v], got %v", MaxScale, o.Scale)
	}
	return nil
}

// BubbleOptions converts the layout fields into engine options.
func (o *Options) BubbleOptions() bubble.Options {
	padding := bubble.DefaultPadding
	if o.Padding != nil {
		padding = *o.Padding
	}
	return bubble.Options{
		Width:     o.Width,
		Height:    o.Height,
		MaxItems:  o.MaxItems,
		MinRadius: o.MinRadius,
		MaxRadius: o.MaxRadius,
		Padding:   padding,
		AngleStep: o.AngleStep,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	b := o.BubbleOptions().Normalize()
	return cache.LayoutKeyOpts{
		Width:     b.Width,
		Height:    b.Height,
		MaxItems:  b.MaxItems,
		MinRadius: b.MinRadius,
		MaxRadius: b.MaxRadius,
		Padding:   b.Padding,
		AngleStep: b.AngleStep,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Fields that do not affect the format are left zero so that, for example,
// toggling Reveal does not invalidate cached PNGs.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Style,
	}
	if o.Style == styles.StyleHanddrawn {
		k.Seed = o.Seed
	}
	switch format {
	case FormatSVG:
		k.ShowWeights = o.ShowWeights
		k.Reveal = o.Reveal
		k.Transparent = o.Transparent
	case FormatPNG:
		k.ShowWeights = o.ShowWeights
		k.Scale = o.Scale
		k.Transparent = o.Transparent
		k.Style, k.Seed = "", 0 // PNG draws flat discs for every style
	case FormatPDF:
		k.ShowWeights = o.ShowWeights
		k.Transparent = o.Transparent
	case FormatJSON:
		k.Seed = o.Seed
	}
	return k
}
