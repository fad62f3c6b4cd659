package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nebula-hq/nebula/pkg/cli"
)

var historyFlags struct {
	model string
	clear bool
	users bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear a stored conversation",
	Long: `Show the conversation the current user had with a model.

Examples:
  # Conversation with the default model
  nebula history

  # Conversation with DeepSeek, as JSON
  nebula history --model deepseek-v3 -o json

  # Forget the conversation with Grok
  nebula history --model grok-2 --clear

  # List the users that have stored conversations
  nebula history --users`,
	Args: cobra.NoArgs,
	RunE: appCommand(runHistory),
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyFlags.model, "model", "m", "", "model whose conversation is used (default from config)")
	historyCmd.Flags().BoolVar(&historyFlags.clear, "clear", false, "delete the conversation instead of showing it")
	historyCmd.Flags().BoolVar(&historyFlags.users, "users", false, "list users with stored conversations")
}

func runHistory(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if historyFlags.users {
		users, err := a.store.Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintln(w, u)
		}
		return nil
	}

	session, err := a.newSession(ctx, historyFlags.model)
	if err != nil {
		return err
	}
	model := session.Model()

	if historyFlags.clear {
		if err := session.ClearHistory(ctx); err != nil {
			return err
		}
		fmt.Fprintf(w, "Cleared conversation with %s\n", model.ID)
		return nil
	}

	msgs := session.History()
	if len(msgs) == 0 && a.format != cli.FormatJSON {
		fmt.Fprintf(w, "No conversation with %s\n", model.ID)
		return nil
	}
	return printHistory(w, a.format, msgs)
}
