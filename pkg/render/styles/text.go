package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"golang.org/x/text/width"
)

const (
	fontSizeMin   = 8.0
	fontSizeMax   = 28.0
	fontCharWidth = 0.58
	// The usable text line spans this share of the diameter.
	chordRatio = 1.6
	// Weight sub-label size relative to the label.
	subLabelRatio = 0.55
)

// DisplayWidth counts wide and fullwidth runes (CJK, most emoji) as two
// columns and everything else as one.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// FontSize picks the largest size that fits the label inside the bubble,
// clamped to [8, 28].
func FontSize(b Bubble) float64 {
	return fontSizeFor(b.R, DisplayWidth(b.Label))
}

// SubLabelSize is the font size of the weight line under the label.
func SubLabelSize(b Bubble) float64 {
	return max(fontSizeMin, FontSize(b)*subLabelRatio)
}

func fontSizeFor(r float64, columns int) float64 {
	n := float64(max(1, columns))
	byWidth := (r * chordRatio) / (n * fontCharWidth)
	byHeight := r * 0.7
	return max(fontSizeMin, min(fontSizeMax, min(byWidth, byHeight)))
}

// TruncateLabel shortens the label with ".." when even the minimum font
// size cannot fit it.
func TruncateLabel(b Bubble) string {
	fs := FontSize(b)
	maxCols := int(math.Floor((b.R * chordRatio) / (fs * fontCharWidth)))
	if maxCols < 3 {
		maxCols = 3
	}
	if DisplayWidth(b.Label) <= maxCols {
		return b.Label
	}

	var out []rune
	cols := 0
	for _, r := range b.Label {
		w := DisplayWidth(string(r))
		if cols+w > maxCols-2 {
			break
		}
		out = append(out, r)
		cols += w
	}
	return string(out) + ".."
}

// FormatWeight renders a count without a trailing ".0".
func FormatWeight(w float64) string {
	if w == math.Trunc(w) && math.Abs(w) < 1e15 {
		return fmt.Sprintf("%.0f", w)
	}
	return fmt.Sprintf("%.1f", w)
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
