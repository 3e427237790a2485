// Package sink provides output format renderers for bubble clouds.
//
// # Overview
//
// A "sink" transforms a [cloud.Cloud] into a final output format:
//
//   - SVG: scalable vector graphics with hover highlighting
//   - PNG: native raster output, no external tools
//   - PDF: print-ready output (requires rsvg-convert)
//   - JSON: the cloud itself, for caching and round-trip rendering
//
// # SVG Output
//
//	svg := sink.RenderSVG(c,
//	    sink.WithStyle(handdrawn.New(seed)),
//	    sink.WithWeights(),
//	    sink.WithReveal(),
//	)
//
// Bubbles are emitted lightest first so the heaviest sits on top. Each
// bubble and label is grouped under data-bubble="<rank>", which the hover
// script and the reveal animation key on.
//
// # PNG Output
//
// [RenderPNG] rasterizes discs with coverage-based anti-aliasing and draws
// labels with the embedded Go Regular font. Use [WithScale] for HiDPI.
//
// # PDF Output
//
// [RenderPDF] renders a static SVG and converts it through [render.ToPDF].
//
// [cloud.Cloud]: github.com/matzehuels/wordbubbles/pkg/cloud.Cloud
// [render.ToPDF]: github.com/matzehuels/wordbubbles/pkg/render.ToPDF
package sink
