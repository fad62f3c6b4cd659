package main

import (
	"context"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the selectable models",
	Long: `List the built-in models and those added under "models" in the config file.
The default model is marked with *.`,
	Args: cobra.NoArgs,
	RunE: appCommand(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return printModels(cmd.OutOrStdout(), a.format, a.catalog.Models(), a.config().Chat.DefaultModel)
	}),
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
