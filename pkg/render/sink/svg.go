package sink

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/render/styles"
)

const bubbleInteractionCSS = `
    .bubble { transition: transform 0.2s ease, fill-opacity 0.2s ease; transform-origin: center; transform-box: fill-box; }
    .bubble.highlight { transform: scale(1.06); fill-opacity: 1; }
    .bubble.dim, .bubble-text.dim, .bubble-weight.dim { opacity: 0.35; }
    .bubble-text, .bubble-weight { pointer-events: none; }`

const bubbleInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.bubble').forEach(b => {
        const on = b.id === 'bubble-' + id;
        b.classList.toggle('highlight', on);
        b.classList.toggle('dim', !on);
      });
      document.querySelectorAll('.bubble-text, .bubble-weight').forEach(t => t.classList.toggle('dim', t.dataset.bubble !== id));
    }
    function clearHighlight() {
      document.querySelectorAll('.bubble, .bubble-text, .bubble-weight').forEach(el => el.classList.remove('highlight', 'dim'));
    }
    document.querySelectorAll('.bubble').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.id.replace('bubble-', '')));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// Reveal timing: bubbles pop in one after another in rank order.
const (
	revealStagger  = 0.05
	revealDuration = 0.45
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       styles.Style
	showWeights bool
	interactive bool
	animate     bool
	background  bool
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithWeights adds the count under each label.
func WithWeights() SVGOption { return func(r *svgRenderer) { r.showWeights = true } }

// WithStatic drops the hover script and CSS. Converters ignore them anyway.
func WithStatic() SVGOption { return func(r *svgRenderer) { r.interactive = false } }

// WithReveal adds a staggered pop-in animation in rank order.
func WithReveal() SVGOption { return func(r *svgRenderer) { r.animate = true } }

// WithTransparent omits the background rectangle.
func WithTransparent() SVGOption { return func(r *svgRenderer) { r.background = false } }

// RenderSVG renders the cloud as a standalone SVG document.
func RenderSVG(c cloud.Cloud, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	bubbles := buildBubbles(c, r.showWeights)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		c.Width, c.Height, c.Width, c.Height)

	r.style.RenderDefs(&buf)
	if r.background {
		fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", styles.Hex(styles.Background))
	}

	for _, b := range bubbles {
		fmt.Fprintf(&buf, `  <g class="bubble-group" data-bubble="%s">`+"\n", styles.EscapeXML(b.ID))
		r.style.RenderBubble(&buf, b)
		r.style.RenderText(&buf, b)
		buf.WriteString("  </g>\n")
	}

	// Static output (PDF) has no timeline to animate.
	if r.animate && r.interactive {
		renderReveal(&buf, len(bubbles))
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", bubbleInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", bubbleInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}, interactive: true, background: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// buildBubbles orders the bubbles so the heaviest is drawn last and sits on
// top if outlines touch.
func buildBubbles(c cloud.Cloud, showWeights bool) []styles.Bubble {
	out := make([]styles.Bubble, len(c.Bubbles))
	n := len(c.Bubbles)
	for i, b := range c.Bubbles {
		out[n-1-i] = styles.Bubble{
			ID:         strconv.Itoa(b.Rank),
			Label:      b.Label,
			Weight:     b.Weight,
			Rank:       b.Rank,
			CX:         b.X,
			CY:         b.Y,
			R:          b.R,
			ShowWeight: showWeights,
		}
	}
	return out
}

func renderReveal(buf *bytes.Buffer, n int) {
	buf.WriteString("  <style>\n")
	buf.WriteString("    @keyframes pop { from { transform: scale(0); opacity: 0; } to { transform: scale(1); opacity: 1; } }\n")
	fmt.Fprintf(buf, "    .bubble-group { transform-origin: center; transform-box: fill-box; animation: pop %.2fs ease-out both; }\n", revealDuration)
	for rank := 0; rank < n; rank++ {
		fmt.Fprintf(buf, "    .bubble-group[data-bubble=\"%d\"] { animation-delay: %.2fs; }\n", rank, float64(rank)*revealStagger)
	}
	buf.WriteString("  </style>\n")
}
