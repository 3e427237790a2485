// Package render turns packed bubble clouds into images.
//
// # Overview
//
//   - [styles]: how a bubble and its label look in SVG (simple, handdrawn)
//   - [sink]: output formats (SVG, PNG, PDF, JSON)
//
// This package itself only holds format conversion. [ToPDF] pipes an SVG
// through the external rsvg-convert tool; PNG output is rasterized natively
// by the sink package and needs no external tools.
//
//	svg := sink.RenderSVG(c, sink.WithStyle(handdrawn.New(42)))
//	pdf, err := render.ToPDF(ctx, svg)
//
// [styles]: github.com/matzehuels/wordbubbles/pkg/render/styles
// [sink]: github.com/matzehuels/wordbubbles/pkg/render/sink
package render
