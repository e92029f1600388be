package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/netweave/netweave/pkg/config"
	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/pipeline"
)

// renderCommand creates the render command for generating visual output.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noStore    bool
	)
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a network document as a node-link diagram",
		Long: `Render a network document as a node-link diagram.

The render command parses the input, computes a force-directed layout
(unless --no-layout is given), and renders the result via Graphviz to the
requested formats. Artifacts are cached in the configured store and reused
on subsequent runs with the same inputs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyConfigDefaults(cmd.Flags(), &opts, cfg)
			if formatsStr != "" {
				opts.Formats = parseFormats(formatsStr)
			} else {
				opts.Formats = cfg.Render.Formats
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, args[0], opts, output, noStore)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable artifact caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "re-render even when cached artifacts exist")

	// Layout flags
	cmd.Flags().IntVar(&opts.Steps, "steps", opts.Steps, "number of simulation steps")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed for initial placement")
	cmd.Flags().Float64Var(&opts.K, "k", opts.K, "ideal edge length")
	cmd.Flags().Float64Var(&opts.Damping, "damping", opts.Damping, "velocity damping per step")
	cmd.Flags().Float64Var(&opts.Repulsion, "repulsion", opts.Repulsion, "repulsion strength")
	cmd.Flags().Float64Var(&opts.Speed, "speed", opts.Speed, "position update speed")
	cmd.Flags().BoolVar(&opts.SkipLayout, "no-layout", opts.SkipLayout, "keep positions from the input document")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", opts.Detailed, "show attributes in node labels")
	cmd.Flags().BoolVar(&opts.UsePositions, "use-positions", opts.UsePositions, "pin nodes to their computed positions")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG export scale factor")

	return cmd
}

// applyConfigDefaults overlays configuration values onto option fields whose
// flags the user did not set explicitly. Flags always win over the file.
func applyConfigDefaults(flags *pflag.FlagSet, opts *pipeline.Options, cfg config.Config) {
	base := cfg.PipelineOptions()
	if !flags.Changed("steps") {
		opts.Steps = base.Steps
	}
	if !flags.Changed("seed") {
		opts.Seed = base.Seed
	}
	if !flags.Changed("k") {
		opts.K = base.K
	}
	if !flags.Changed("damping") {
		opts.Damping = base.Damping
	}
	if !flags.Changed("repulsion") {
		opts.Repulsion = base.Repulsion
	}
	if !flags.Changed("speed") {
		opts.Speed = base.Speed
	}
	if !flags.Changed("detailed") {
		opts.Detailed = base.Detailed
	}
	if !flags.Changed("use-positions") {
		opts.UsePositions = base.UsePositions
	}
	if !flags.Changed("scale") {
		opts.Scale = base.Scale
	}
	opts.ThreeD = base.ThreeD
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, cfg config.Config, input string, opts pipeline.Options, output string, noStore bool) error {
	runner, st := c.newRunner(ctx, cfg, noStore)
	defer st.Close()

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	opts.Source = input
	opts.Data = data
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(result, opts.Formats, input, output)
}

// writeArtifacts writes rendered outputs to disk, one file per format.
// With a single format the output flag names the file directly; with
// several it acts as a shared base path.
func writeArtifacts(result *pipeline.Result, formats []string, input, output string) error {
	base := basePath(output, input, pipeline.ValidFormats)

	for _, format := range formats {
		data, ok := result.Artifacts[format]
		if !ok {
			return fmt.Errorf("missing artifact for format %s", format)
		}

		path := base + "." + format
		if output != "" && len(formats) == 1 {
			path = output
		}
		if err := errors.ValidateOutputPath(path); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	return nil
}
