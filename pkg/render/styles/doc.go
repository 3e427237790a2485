// Package styles defines how bubbles are drawn in SVG output.
//
// A [Style] writes the <defs> block once, then one shape and one label per
// bubble. [Simple] draws flat discs; the handdrawn subpackage draws seeded
// wobbly outlines. Both share the rank-indexed [Palette] so a cloud keeps
// its colors when the style changes.
//
// Label sizing lives here too: [FontSize] fits the label inside the circle
// using its display width (wide runes count double), and [TruncateLabel]
// cuts labels that cannot fit even at the minimum size.
package styles
