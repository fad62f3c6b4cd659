/*
Package cli provides command-line helpers used by the nebula command.

Output Formatting:

Commands print either aligned text or JSON:

	formatter := cli.NewFormatter(format)
	table := &cli.Table{Headers: []string{"ID", "URL"}, Data: nodes}
	if err := formatter.FormatTo(os.Stdout, table); err != nil {
		return err
	}

Waiting on the network:

	spinner := cli.NewSpinner(os.Stderr)
	err := spinner.Wrap("Waiting for gemini-2.5-flash", func() error { ... })

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit codes are derived from command errors with ExitCode.
*/
package cli
