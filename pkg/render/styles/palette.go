package styles

import (
	"fmt"
	"image/color"
)

// Palette is the fill rotation, indexed by rank. The first entries are the
// brand blues so the heaviest bubbles stand out.
var Palette = []color.RGBA{
	{0x00, 0x88, 0xcc, 0xff},
	{0x00, 0xc6, 0xff, 0xff},
	{0x00, 0x99, 0xe6, 0xff},
	{0x93, 0x70, 0xdb, 0xff},
	{0x32, 0xcd, 0x32, 0xff},
	{0xff, 0xa5, 0x00, 0xff},
	{0xff, 0x63, 0x47, 0xff},
	{0x00, 0xce, 0xd1, 0xff},
	{0xff, 0xd7, 0x00, 0xff},
}

// Fixed colors shared by every style.
var (
	Background = color.RGBA{0x0f, 0x0f, 0x1a, 0xff}
	TextColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Muted      = color.RGBA{0x71, 0x71, 0x7a, 0xff}
)

// ColorFor returns the palette entry for rank.
func ColorFor(rank int) color.RGBA {
	if rank < 0 {
		rank = -rank
	}
	return Palette[rank%len(Palette)]
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
