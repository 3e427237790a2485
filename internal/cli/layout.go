package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/pipeline"
)

// layoutCommand creates the layout command for packing a cloud.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		lf      layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [report.json]",
		Short: "Pack a frequency table into a bubble cloud",
		Long: `Pack a frequency table into a bubble cloud.

The input is either a full report payload (the "word_frequency" or
"emoji_frequency" table is picked with --source) or a bare JSON object of
label → count. Use "-" to read from stdin.

The output is a .cloud.json file that can be drawn with 'visualize'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, &lf, nil)
			opts.Refresh = refresh
			return c.runLayout(cmd, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.cloud.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")
	lf.register(cmd)

	return cmd
}

// runLayout loads the items, packs them, and writes the cloud.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, output string, noCache bool) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	items, err := c.readItems(cmd, runner.Cache, input, opts.Source)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, "Packing bubbles...")
	spinner.Start()

	cl, cacheHit, err := runner.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", input) + cloudExt
	}
	if err := cloud.WriteFile(outputPath, cl); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(items), len(cl.Bubbles), cl.Fallbacks, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
