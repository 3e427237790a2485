package handdrawn

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/matzehuels/wordbubbles/pkg/render/styles"
)

const (
	segments     = 12
	wobbleRatio  = 0.035 // max radial jitter as a share of the radius
	wobbleMax    = 3.0
	strokeWidth  = 2.2
	fillOpacity  = 0.75
	fontFamily   = `'Comic Sans MS', 'Comic Neue', cursive`
	filterID     = "rough"
	outlineColor = "#1c1c21"
)

// Style is the hand-drawn look. The same seed always yields the same
// outlines.
type Style struct {
	seed uint64
}

// New returns a hand-drawn style seeded with seed.
func New(seed uint64) *Style {
	return &Style{seed: seed}
}

func (s *Style) Name() string { return styles.StyleHanddrawn }

func (s *Style) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <defs>
    <filter id="%s" x="-5%%" y="-5%%" width="110%%" height="110%%">
      <feTurbulence type="fractalNoise" baseFrequency="0.03" numOctaves="2" seed="%d" result="noise"/>
      <feDisplacementMap in="SourceGraphic" in2="noise" scale="2"/>
    </filter>
  </defs>
`, filterID, s.seed%1000)
}

func (s *Style) RenderBubble(buf *bytes.Buffer, b styles.Bubble) {
	fill := styles.Hex(styles.ColorFor(b.Rank))
	path := wobbledCircle(b.CX, b.CY, b.R, s.seed, b.ID)
	fmt.Fprintf(buf, `  <path id="bubble-%s" class="bubble" data-rank="%d" d="%s" fill="%s" fill-opacity="%.2f" stroke="%s" stroke-width="%.1f" stroke-linejoin="round" filter="url(#%s)"/>`+"\n",
		styles.EscapeXML(b.ID), b.Rank, path, fill, fillOpacity, outlineColor, strokeWidth, filterID)
}

func (s *Style) RenderText(buf *bytes.Buffer, b styles.Bubble) {
	fs := styles.FontSize(b)
	label := styles.EscapeXML(styles.TruncateLabel(b))
	id := styles.EscapeXML(b.ID)
	tilt := jitter(hash(b.ID+"/tilt", s.seed), 2.5)

	fmt.Fprintf(buf, `  <g transform="rotate(%.2f %.2f %.2f)">`+"\n", tilt, b.CX, b.CY)
	if b.ShowWeight {
		sub := styles.SubLabelSize(b)
		fmt.Fprintf(buf, `    <text class="bubble-text" data-bubble="%s" x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			id, b.CX, b.CY-sub*0.6, fontFamily, fs, outlineColor, label)
		fmt.Fprintf(buf, `    <text class="bubble-weight" data-bubble="%s" x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			id, b.CX, b.CY+fs*0.6, fontFamily, sub, outlineColor, styles.FormatWeight(b.Weight))
	} else {
		fmt.Fprintf(buf, `    <text class="bubble-text" data-bubble="%s" x="%.2f" y="%.2f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			id, b.CX, b.CY, fontFamily, fs, outlineColor, label)
	}
	buf.WriteString("  </g>\n")
}

// wobbledCircle approximates the circle with quadratic segments whose
// anchor radii are jittered. Jitter never exceeds wobbleMax, so outlines
// stay within the padding between bubbles.
func wobbledCircle(cx, cy, r float64, seed uint64, id string) string {
	amp := min(r*wobbleRatio, wobbleMax)
	step := 2 * math.Pi / segments

	radii := make([]float64, segments)
	for i := range radii {
		radii[i] = r + jitter(hash(fmt.Sprintf("%s/%d", id, i), seed), amp)
	}

	point := func(i int, rr float64) (float64, float64) {
		a := float64(i) * step
		return cx + rr*math.Cos(a), cy + rr*math.Sin(a)
	}

	var sb strings.Builder
	x0, y0 := point(0, radii[0])
	fmt.Fprintf(&sb, "M%.2f,%.2f", x0, y0)
	for i := 1; i <= segments; i++ {
		// Control point sits on the bisector, pushed out so the curve
		// bulges like an arc.
		ctrlR := (radii[i-1] + radii[i%segments]) / 2 / math.Cos(step/2)
		a := (float64(i) - 0.5) * step
		qx, qy := cx+ctrlR*math.Cos(a), cy+ctrlR*math.Sin(a)
		x, y := point(i, radii[i%segments])
		fmt.Fprintf(&sb, " Q%.2f,%.2f %.2f,%.2f", qx, qy, x, y)
	}
	sb.WriteString(" Z")
	return sb.String()
}

// jitter maps h onto [-amp, amp].
func jitter(h uint64, amp float64) float64 {
	return (float64(h%10000)/10000*2 - 1) * amp
}

func hash(s string, seed uint64) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for i := range b {
		b[i] = byte(seed >> (8 * i))
	}
	h.Write(b[:])
	h.Write([]byte(s))
	return h.Sum64()
}
