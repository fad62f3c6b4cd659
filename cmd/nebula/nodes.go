package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nebula-hq/nebula/pkg/cli"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Manage the relay node pool",
	Long: `Inspect and manage the pool of base URLs Gemini traffic is routed through.

The pool holds the direct endpoint, community relays and your own nodes.
Probing measures the latency of every node; the fastest reachable node
becomes active unless the current one is still reachable.

Examples:
  # Show the pool
  nebula nodes list

  # Probe every node and show the ranking
  nebula nodes check

  # Add your own relay (probed once, activated when reachable)
  nebula nodes add "Home relay" relay.example.com/gemini

  # Pin a node
  nebula nodes use p_direct`,
}

var nodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the node pool",
	Args:  cobra.NoArgs,
	RunE: appCommand(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		active, _ := a.registry.Active()
		return printNodes(cmd.OutOrStdout(), a.format, a.registry.Nodes(), active.ID)
	}),
}

var nodesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every node and rank the pool",
	Args:  cobra.NoArgs,
	RunE:  appCommand(runNodesCheck),
}

var nodesAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a custom node",
	Args:  cobra.ExactArgs(2),
	RunE: appCommand(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		n, err := a.registry.AddCustomNode(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		state := "unreachable"
		if n.Reachable {
			state = "reachable, now active"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s): %s\n", n.ID, n.URL, state)
		return nil
	}),
}

var nodesRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a node from the pool",
	Args:  cobra.ExactArgs(1),
	RunE: appCommand(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.registry.RemoveNode(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	}),
}

var nodesUseCmd = &cobra.Command{
	Use:   "use ID",
	Short: "Make a node active",
	Args:  cobra.ExactArgs(1),
	RunE: appCommand(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.registry.SetActive(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Active node: %s\n", args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(nodesCmd)
	nodesCmd.AddCommand(nodesListCmd, nodesCheckCmd, nodesAddCmd, nodesRemoveCmd, nodesUseCmd)
}

func runNodesCheck(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	spinner := cli.NewSpinner(cmd.ErrOrStderr())
	spinner.Start(fmt.Sprintf("Probing %d nodes", len(a.registry.Nodes())))
	ranked := a.registry.RefreshAll(ctx)
	spinner.Stop()

	active, _ := a.registry.Active()
	return printNodes(cmd.OutOrStdout(), a.format, ranked, active.ID)
}
