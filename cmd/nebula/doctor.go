package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/telemetry/health"
)

// errUnhealthy is returned when at least one check fails.
var errUnhealthy = errors.New("one or more checks failed")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check storage, credentials and the active node",
	Long: `Run the readiness checks: the database answers, at least one provider
has an API key and the active relay node is reachable.

The same checks back the /readyz route of the metrics listener.`,
	Args: cobra.NoArgs,
	RunE: appCommand(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		report := a.health.Run(ctx)
		if err := printReport(cmd, a.format, report); err != nil {
			return err
		}
		if !report.Healthy() {
			return errUnhealthy
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func printReport(cmd *cobra.Command, format cli.OutputFormat, report health.Report) error {
	w := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(w, report)
	}

	table := &cli.Table{Headers: []string{"CHECK", "STATUS", "TOOK", "MESSAGE"}}
	for _, r := range report.Checks {
		table.Rows = append(table.Rows, []string{r.Name, r.Status, r.Duration.String(), r.Message})
	}
	if err := cli.NewFormatter(format).FormatTo(w, table); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nOverall: %s\n", report.Status)
	return err
}
