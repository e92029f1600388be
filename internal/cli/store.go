package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netweave/netweave/pkg/codec"
	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored network documents",
	}

	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storeBrowseCommand())

	return cmd
}

// openStore opens the configured store backend.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.OpenStore(ctx)
}

// storePutCommand creates the "store put" subcommand.
func (c *CLI) storePutCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "put [file]",
		Short: "Save a network document to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStorePut(cmd.Context(), args[0], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to store under (default: file name without extension)")

	return cmd
}

func (c *CLI) runStorePut(ctx context.Context, input, name string) error {
	format, err := codec.Detect(input)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	// Parse to validate and collect counts before storing.
	net, err := codec.Parse(data, format)
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}

	if name == "" {
		base := filepath.Base(input)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	entry := store.NewEntry(name, format, data, net)
	if err := st.Save(ctx, entry); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}

	printSuccess("Stored %s", name)
	printStats(entry.Nodes, entry.Edges, false)
	return nil
}

// storeGetCommand creates the "store get" subcommand.
func (c *CLI) storeGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get [name]",
		Short: "Retrieve a stored network document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStoreGet(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.<format>)")

	return cmd
}

func (c *CLI) runStoreGet(ctx context.Context, name, output string) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	entry, err := st.Load(ctx, name)
	if err != nil {
		return err
	}

	if output == "" {
		output = entry.Name + "." + entry.Format
	}
	if err := errors.ValidateOutputPath(output); err != nil {
		return err
	}
	if err := os.WriteFile(output, entry.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Retrieved %s", name)
	printFile(output)
	printStats(entry.Nodes, entry.Edges, true)
	return nil
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored network documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("Store is empty")
				return nil
			}

			for _, e := range entries {
				printKeyValue(e.Name, fmt.Sprintf("%s · %d nodes · %d edges", e.Format, e.Nodes, e.Edges))
			}
			return nil
		},
	}
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored network document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			name := args[0]
			if err := st.Delete(cmd.Context(), name); err != nil {
				return err
			}
			printSuccess("Deleted %s", name)
			return nil
		},
	}
}
