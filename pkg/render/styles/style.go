package styles

import "bytes"

// Style defines the visual appearance of a bubble cloud.
// Implementations control how bubbles and their labels are drawn.
type Style interface {
	// Name is the identifier used in options and config files.
	Name() string
	// RenderDefs writes SVG <defs> content (filters, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderBubble writes the SVG for a single bubble shape.
	RenderBubble(buf *bytes.Buffer, b Bubble)
	// RenderText writes the SVG for a bubble's label.
	RenderText(buf *bytes.Buffer, b Bubble)
}

// Bubble contains all data needed to render a single bubble.
type Bubble struct {
	ID         string  // Stable element identifier
	Label      string  // Display text
	Weight     float64 // Source count, shown when ShowWeight is set
	Rank       int     // 0 is the heaviest item
	CX, CY, R  float64 // Center and radius
	ShowWeight bool
}
