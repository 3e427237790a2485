package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/render/sink"
	"github.com/matzehuels/wordbubbles/pkg/render/styles"
	"github.com/matzehuels/wordbubbles/pkg/render/styles/handdrawn"
)

// Render draws c in every requested format. Formats are rendered
// concurrently; the first failure cancels the rest.
func Render(ctx context.Context, c cloud.Cloud, opts Options) (map[string][]byte, error) {
	opts = applyCloudMetadata(opts, c)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		format := format
		g.Go(func() (err error) {
			// Panics here would escape the caller's recoverer.
			defer func() {
				if p := recover(); p != nil {
					err = errors.New(errors.ErrCodeInternal, "render %s: panic: %v", format, p)
				}
			}()
			data, err := renderFormat(ctx, c, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, c cloud.Cloud, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(c, buildSVGOptions(opts)...), nil
	case FormatPNG:
		pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
		if opts.ShowWeights {
			pngOpts = append(pngOpts, sink.WithPNGWeights())
		}
		if opts.Transparent {
			pngOpts = append(pngOpts, sink.WithPNGTransparent())
		}
		return sink.RenderPNG(c, pngOpts...)
	case FormatPDF:
		return sink.RenderPDF(ctx, c, sink.WithPDFSVGOptions(buildSVGOptions(opts)...))
	case FormatJSON:
		return sink.RenderJSON(c,
			sink.WithJSONStyle(opts.Style),
			sink.WithJSONSeed(opts.Seed),
			sink.WithJSONSource(opts.Source))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}

// applyCloudMetadata carries the style, seed and source a cloud was saved
// with into options that leave them unset.
func applyCloudMetadata(opts Options, c cloud.Cloud) Options {
	if opts.Style == "" && c.Style != "" {
		opts.Style = c.Style
	}
	if opts.Seed == 0 && c.Seed != 0 {
		opts.Seed = c.Seed
	}
	if opts.Source == "" && c.Source != "" {
		opts.Source = c.Source
	}
	return opts
}

// buildSVGOptions translates pipeline options into SVG sink options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption

	switch opts.Style {
	case styles.StyleHanddrawn:
		svgOpts = append(svgOpts, sink.WithStyle(handdrawn.New(opts.Seed)))
	default:
		svgOpts = append(svgOpts, sink.WithStyle(styles.Simple{}))
	}
	if opts.ShowWeights {
		svgOpts = append(svgOpts, sink.WithWeights())
	}
	if opts.Reveal {
		svgOpts = append(svgOpts, sink.WithReveal())
	}
	if opts.Transparent {
		svgOpts = append(svgOpts, sink.WithTransparent())
	}
	return svgOpts
}
