package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/render/styles"
)

// Matches fill-opacity="0.85" in the simple SVG style.
const pngFillAlpha = 217

// MaxPNGPixels bounds the raster size after scaling.
const MaxPNGPixels = 64 << 20

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale       float64
	showWeights bool
	background  bool
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 && !math.IsInf(s, 0) {
			r.scale = s
		}
	}
}

// WithPNGWeights draws the count under each label.
func WithPNGWeights() PNGOption { return func(r *pngRenderer) { r.showWeights = true } }

// WithPNGTransparent leaves the background transparent.
func WithPNGTransparent() PNGOption { return func(r *pngRenderer) { r.background = false } }

var (
	goRegular     *opentype.Font
	goRegularErr  error
	goRegularOnce sync.Once
)

func loadFont() (*opentype.Font, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = opentype.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

// RenderPNG rasterizes the cloud natively. Discs are anti-aliased by pixel
// coverage and labels use the embedded Go Regular font, so no external
// tools are needed. Glyphs the font lacks (most emoji) render as boxes.
func RenderPNG(c cloud.Cloud, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: true}
	for _, opt := range opts {
		opt(&r)
	}

	pw, ph := c.Width*r.scale, c.Height*r.scale
	if !(pw > 0 && ph > 0) || pw*ph > MaxPNGPixels {
		return nil, errors.New(errors.ErrCodeTooLarge, "png of %.0fx%.0f pixels exceeds the %d pixel budget", pw, ph, MaxPNGPixels)
	}

	fnt, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	w := int(math.Ceil(pw))
	h := int(math.Ceil(ph))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if r.background {
		draw.Draw(img, img.Bounds(), image.NewUniform(styles.Background), image.Point{}, draw.Src)
	}

	faces := newFaceCache(fnt)
	defer faces.close()

	for _, b := range buildBubbles(c, r.showWeights) {
		fill := styles.ColorFor(b.Rank)
		fillDisc(img, b.CX*r.scale, b.CY*r.scale, b.R*r.scale,
			color.NRGBA{R: fill.R, G: fill.G, B: fill.B, A: pngFillAlpha})
		if err := drawLabel(img, faces, b, r.scale); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// fillDisc composites a disc with per-pixel coverage r - d + 0.5, clamped
// to [0, 1], where d is the distance from the pixel center.
func fillDisc(img *image.RGBA, cx, cy, r float64, c color.NRGBA) {
	rect := image.Rect(
		int(math.Floor(cx-r-1)), int(math.Floor(cy-r-1)),
		int(math.Ceil(cx+r+1)), int(math.Ceil(cy+r+1)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return
	}

	mask := image.NewAlpha(rect)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			cov := math.Max(0, math.Min(1, r-d+0.5))
			mask.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(cov * 255))})
		}
	}
	draw.DrawMask(img, rect, image.NewUniform(c), image.Point{}, mask, rect.Min, draw.Over)
}

func drawLabel(img *image.RGBA, faces *faceCache, b styles.Bubble, scale float64) error {
	fs := styles.FontSize(b) * scale
	face, err := faces.get(fs)
	if err != nil {
		return err
	}

	cx, cy := b.CX*scale, b.CY*scale
	if !b.ShowWeight {
		drawCentered(img, face, cx, cy, styles.TruncateLabel(b), styles.TextColor)
		return nil
	}

	sub := styles.SubLabelSize(b) * scale
	subFace, err := faces.get(sub)
	if err != nil {
		return err
	}
	drawCentered(img, face, cx, cy-sub*0.6, styles.TruncateLabel(b), styles.TextColor)
	drawCentered(img, subFace, cx, cy+fs*0.6, styles.FormatWeight(b.Weight), styles.TextColor)
	return nil
}

// drawCentered places text so its ink box is centered on (x, y).
func drawCentered(img *image.RGBA, face font.Face, x, y float64, text string, c color.Color) {
	width := font.MeasureString(face, text)
	m := face.Metrics()
	baseline := y + float64(m.Ascent-m.Descent)/64/2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round(x*64)) - width/2,
			Y: fixed.Int26_6(math.Round(baseline * 64)),
		},
	}
	d.DrawString(text)
}

// faceCache shares one face per size within a render.
type faceCache struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func newFaceCache(f *opentype.Font) *faceCache {
	return &faceCache{font: f, faces: make(map[int]font.Face)}
}

func (fc *faceCache) get(size float64) (font.Face, error) {
	// Quarter-point buckets.
	key := int(math.Round(size * 4))
	if face, ok := fc.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(fc.font, &opentype.FaceOptions{
		Size:    float64(key) / 4,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %.2f: %w", size, err)
	}
	fc.faces[key] = face
	return face, nil
}

func (fc *faceCache) close() {
	for _, f := range fc.faces {
		f.Close()
	}
}
