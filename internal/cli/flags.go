package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/pkg/pipeline"
)

// layoutFlags are the flags shared by commands that pack a cloud.
// Values only apply when the flag was given; otherwise the config wins.
type layoutFlags struct {
	source    string
	width     float64
	height    float64
	maxItems  int
	minRadius float64
	maxRadius float64
	padding   float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.source, "source", "", "frequency table to use: words (default), emojis")
	fs.Float64Var(&f.width, "width", 0, "container width")
	fs.Float64Var(&f.height, "height", 0, "container height")
	fs.IntVar(&f.maxItems, "max-items", 0, "number of bubbles to draw")
	fs.Float64Var(&f.minRadius, "min-radius", 0, "radius of the lightest bubble")
	fs.Float64Var(&f.maxRadius, "max-radius", 0, "radius of the heaviest bubble")
	fs.Float64Var(&f.padding, "padding", 0, "gap between bubbles")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("source") {
		opts.Source = f.source
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("max-items") {
		opts.MaxItems = f.maxItems
	}
	if changed("min-radius") {
		opts.MinRadius = f.minRadius
	}
	if changed("max-radius") {
		opts.MaxRadius = f.maxRadius
	}
	if changed("padding") {
		p := f.padding
		opts.Padding = &p
	}
}

// renderFlags are the flags shared by commands that draw a cloud.
type renderFlags struct {
	formats     string
	style       string
	seed        uint64
	scale       float64
	weights     bool
	reveal      bool
	transparent bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	fs.StringVar(&f.style, "style", "", "visual style: simple (default), handdrawn")
	fs.Uint64Var(&f.seed, "seed", 0, "seed for the handdrawn wobble")
	fs.Float64Var(&f.scale, "scale", 0, "PNG pixel density")
	fs.BoolVar(&f.weights, "weights", false, "print each bubble's count under its label")
	fs.BoolVar(&f.reveal, "reveal", false, "animate bubbles popping in (SVG)")
	fs.BoolVar(&f.transparent, "transparent", false, "omit the background")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if changed("style") {
		opts.Style = f.style
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("scale") {
		opts.Scale = f.scale
	}
	if changed("weights") {
		opts.ShowWeights = f.weights
	}
	if changed("reveal") {
		opts.Reveal = f.reveal
	}
	if changed("transparent") {
		opts.Transparent = f.transparent
	}
}

// options builds pipeline options from the config, then the given flags.
func (c *CLI) options(cmd *cobra.Command, lf *layoutFlags, rf *renderFlags) pipeline.Options {
	opts := c.cfg().PipelineOptions()
	if lf != nil {
		lf.apply(cmd, &opts)
	}
	if rf != nil {
		rf.apply(cmd, &opts)
	}
	opts.Logger = c.Logger
	return opts
}
