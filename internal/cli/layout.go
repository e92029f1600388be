package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netweave/netweave/pkg/layout/force"
	"github.com/netweave/netweave/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		from   string
		output string
		steps  int
	)
	opts := force.Options{}

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute a force-directed layout for a network document",
		Long: `Compute a force-directed layout for a network document.

The layout command parses the input, runs a spring-electrical simulation,
and writes the document back with node positions filled in. Nodes that
already carry positions keep them as their starting point.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], from, output, steps, opts)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default: detect from extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().IntVar(&steps, "steps", pipeline.DefaultSteps, "number of simulation steps")
	cmd.Flags().Float64Var(&opts.K, "k", 0, "ideal edge length (default 10)")
	cmd.Flags().Float64Var(&opts.Damping, "damping", 0, "velocity damping per step (default 0.9)")
	cmd.Flags().Float64Var(&opts.RepulsionStrength, "repulsion", 0, "repulsion strength (default 1)")
	cmd.Flags().Float64Var(&opts.Speed, "speed", 0, "position update speed (default 1)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed for initial placement")
	cmd.Flags().BoolVar(&opts.ThreeD, "3d", false, "simulate in three dimensions")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, from, output string, steps int, opts force.Options) error {
	net, format, err := readNetworkFile(input, from)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded %s: %d nodes, %d edges", format, net.NodeCount(), net.EdgeCount())

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Simulating %d steps...", steps))
	spinner.Start()

	p := newProgress(c.Logger)
	if err := force.Run(ctx, net, steps, &opts); err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Simulated %d steps over %d nodes", steps, net.NodeCount()))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = input
	}
	if err := writeNetworkFile(net, output, format); err != nil {
		return err
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(net.NodeCount(), net.EdgeCount(), false)
	printNewline()
	printNextStep("Render", "netweave render "+output+" --use-positions")

	return nil
}
