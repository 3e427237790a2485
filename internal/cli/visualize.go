package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/pipeline"
)

// visualizeCommand creates the visualize command for drawing a saved cloud.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		rf      renderFlags
	)

	cmd := &cobra.Command{
		Use:   "visualize [cloud.json]",
		Short: "Draw a packed cloud as SVG, PNG, PDF or JSON",
		Long: `Draw a packed cloud as SVG, PNG, PDF or JSON.

The visualize command takes a .cloud.json file (produced by 'layout') and
renders it. The cloud already holds every position, so this step is purely
about drawing. A style and seed saved in the cloud are reused unless
overridden with --style and --seed.

Use 'render' as a shortcut to go directly from a report to an image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVisualize(cmd, args[0], &rf, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file (single format), base path (multiple), or "-" for stdout`)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	rf.register(cmd)

	return cmd
}

// runVisualize loads the cloud and renders it.
func (c *CLI) runVisualize(cmd *cobra.Command, input string, rf *renderFlags, output string, noCache bool) error {
	ctx := cmd.Context()

	cl, err := cloud.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load cloud %s: %w", input, err)
	}

	opts := c.options(cmd, nil, rf)
	opts.Source = ""
	if !cmd.Flags().Changed("style") && cl.Style != "" {
		opts.Style = ""
	}
	if !cmd.Flags().Changed("seed") && cl.Seed != 0 {
		opts.Seed = 0
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, cl, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  cacheHit,
		stdout:    cmd.OutOrStdout(),
	})
}
