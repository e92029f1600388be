package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netweave/netweave/pkg/codec"
)

// convertCommand creates the convert command for translating between formats.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		from   string
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a network document between formats",
		Long: fmt.Sprintf(`Convert a network document between formats.

The input format is detected from the file extension unless --from is given.
The output format comes from --to, or from the extension of --output.

Supported formats: %s.`, strings.Join(codec.Formats(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(args[0], from, to, output)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default: detect from extension)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "output format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>)")

	return cmd
}

func (c *CLI) runConvert(input, from, to, output string) error {
	// Resolve the target format before doing any work.
	if to == "" && output != "" {
		detected, err := codec.Detect(output)
		if err != nil {
			return fmt.Errorf("cannot determine output format: %w", err)
		}
		to = detected
	}
	if to == "" {
		return fmt.Errorf("output format required: pass --to or an --output path with a known extension")
	}
	if _, err := codec.Get(to); err != nil {
		return err
	}

	p := newProgress(c.Logger)
	net, srcFormat, err := readNetworkFile(input, from)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Parsed %s (%d nodes, %d edges)", srcFormat, net.NodeCount(), net.EdgeCount()))

	if output == "" {
		output = replaceExt(input, to)
	}
	if err := writeNetworkFile(net, output, to); err != nil {
		return err
	}

	printSuccess("Converted %s to %s", srcFormat, to)
	printFile(output)
	printStats(net.NodeCount(), net.EdgeCount(), false)

	return nil
}
