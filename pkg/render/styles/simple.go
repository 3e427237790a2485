package styles

import (
	"bytes"
	"fmt"
)

// Simple draws flat filled circles with centered labels.
type Simple struct{}

func (Simple) Name() string { return "simple" }

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderBubble(buf *bytes.Buffer, b Bubble) {
	fmt.Fprintf(buf, `  <circle id="bubble-%s" class="bubble" data-rank="%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="0.85"/>`+"\n",
		EscapeXML(b.ID), b.Rank, b.CX, b.CY, b.R, Hex(ColorFor(b.Rank)))
}

func (Simple) RenderText(buf *bytes.Buffer, b Bubble) {
	renderLabel(buf, b, "sans-serif")
}

// renderLabel writes the label centered on the bubble, with the optional
// weight line beneath it.
func renderLabel(buf *bytes.Buffer, b Bubble, family string) {
	fs := FontSize(b)
	label := EscapeXML(TruncateLabel(b))
	id := EscapeXML(b.ID)

	if !b.ShowWeight {
		fmt.Fprintf(buf, `  <text class="bubble-text" data-bubble="%s" x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			id, b.CX, b.CY, family, fs, Hex(TextColor), label)
		return
	}

	sub := SubLabelSize(b)
	fmt.Fprintf(buf, `  <text class="bubble-text" data-bubble="%s" x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		id, b.CX, b.CY-sub*0.6, family, fs, Hex(TextColor), label)
	fmt.Fprintf(buf, `  <text class="bubble-weight" data-bubble="%s" x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" fill-opacity="0.8" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		id, b.CX, b.CY+fs*0.6, family, sub, Hex(TextColor), FormatWeight(b.Weight))
}
