package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/httputil"
	"github.com/matzehuels/wordbubbles/pkg/pipeline"
)

// cloudExt is the extension of saved clouds. JSON artifacts use it too so a
// report.json input is never overwritten.
const cloudExt = ".cloud.json"

// renderCommand creates the render command: layout and visualize in one go.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		lf      layoutFlags
		rf      renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [report.json]",
		Short: "Pack and draw a frequency table in one step",
		Long: `Pack and draw a frequency table in one step.

Equivalent to 'layout' followed by 'visualize'. Both stages are cached, so
re-rendering the same report in another style only redraws.

Examples:
  wordbubbles render report.json
  wordbubbles render report.json --source emojis -f svg,png --style handdrawn
  cat counts.json | wordbubbles render - -f png -o - > cloud.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &lf, &rf)
			opts.Refresh = refresh
			return c.runRender(cmd, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (single format), base path (multiple), or "-" for stdout`)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	items, err := c.readItems(cmd, runner.Cache, input, opts.Source)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, "Rendering bubbles...")
	spinner.Start()

	result, err := runner.Execute(ctx, items, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
		stdout:    cmd.OutOrStdout(),
	}); err != nil {
		return err
	}
	if output != stdinPath {
		printStats(result.Stats.ItemCount, result.Stats.BubbleCount, result.Stats.Fallbacks, result.CacheInfo.LayoutHit)
	}
	prog.done("Render complete", "bubbles", result.Stats.BubbleCount, "formats", len(result.Artifacts))
	return nil
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	stdout    io.Writer
}

// writeArtifacts writes each rendered format to disk, or the single format
// to stdout when output is "-".
func writeArtifacts(p artifactWriteParams) error {
	formats := uniqueFormats(p.formats)

	if p.output == stdinPath {
		if len(formats) != 1 {
			return errors.New(errors.ErrCodeInvalidPath, "-o - needs exactly one format, got %d", len(formats))
		}
		_, err := p.stdout.Write(p.artifacts[formats[0]])
		return err
	}

	var paths []string
	if len(formats) == 1 && p.output != "" {
		paths = []string{p.output}
	} else {
		base := basePath(p.output, p.input)
		for _, f := range formats {
			paths = append(paths, base+extFor(f))
		}
	}

	for i, f := range formats {
		data, ok := p.artifacts[f]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "no %s artifact was rendered", f)
		}
		if err := writeFile(paths[i], data); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", strings.Join(formats, ", "))
	for _, path := range paths {
		printFile(path)
	}
	if p.cacheHit {
		printDetail("served from cache")
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension (or .cloud.json) from input.
// If output has a format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == stdinPath {
			return "cloud"
		}
		if httputil.IsURL(input) {
			return urlBase(input)
		}
		if strings.HasSuffix(input, cloudExt) {
			return strings.TrimSuffix(input, cloudExt)
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if strings.HasSuffix(output, cloudExt) {
		return strings.TrimSuffix(output, cloudExt)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func extFor(format string) string {
	if format == pipeline.FormatJSON {
		return cloudExt
	}
	return "." + format
}

func uniqueFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = append(out, pipeline.FormatSVG)
	}
	return out
}
