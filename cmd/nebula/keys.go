package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/providers"
	"nebula-hq/nebula/pkg/telemetry/logging"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys",
	Long: `Store, inspect and remove the API keys used for each provider.

Stored keys take precedence. Providers without a stored key fall back to
credentials in the config file or the NEBULA_<PROVIDER>_API_KEY variables.

Examples:
  # Prompt for the Gemini key
  nebula keys set google

  # Pass the key inline
  nebula keys set deepseek sk-...

  # Show which keys are configured (masked)
  nebula keys show

  # Forget every stored key
  nebula keys clear`,
}

var keysSetCmd = &cobra.Command{
	Use:       "set PROVIDER [KEY]",
	Short:     "Store the key for a provider (read from stdin when omitted)",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"google", "openai", "deepseek", "xai"},
	RunE:      appCommand(runKeysSet),
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured keys, masked",
	Args:  cobra.NoArgs,
	RunE:  appCommand(runKeysShow),
}

var keysClearCmd = &cobra.Command{
	Use:   "clear [PROVIDER...]",
	Short: "Remove stored keys (all when no provider is given)",
	RunE:  appCommand(runKeysClear),
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysSetCmd, keysShowCmd, keysClearCmd)
}

func runKeysSet(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	tag, err := providers.ParseProviderTag(args[0])
	if err != nil {
		return err
	}

	var key string
	if len(args) == 2 {
		key = args[1]
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s API key: ", tag)
		key, err = readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is empty")
	}

	stored, err := a.store.Credentials(ctx)
	if err != nil {
		return err
	}
	if err := a.store.SaveCredentials(ctx, stored.With(tag, key)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s key %s\n", tag, logging.RedactAPIKey(key))
	return nil
}

func runKeysShow(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	type keyView struct {
		Provider string `json:"provider"`
		Source   string `json:"source"`
		Key      string `json:"key,omitempty"`
	}

	stored, err := a.store.Credentials(ctx)
	if err != nil {
		return err
	}
	configured := a.config().Credentials.ProviderCredentials()

	table := &cli.Table{Headers: []string{"PROVIDER", "SOURCE", "KEY"}}
	views := make([]keyView, 0, len(providers.AllProviders))
	for _, tag := range providers.AllProviders {
		v := keyView{Provider: tag.String(), Source: "unset"}
		switch {
		case stored.For(tag) != "":
			v.Source, v.Key = "stored", logging.RedactAPIKey(stored.For(tag))
		case configured.For(tag) != "":
			v.Source, v.Key = "config", logging.RedactAPIKey(configured.For(tag))
		}
		views = append(views, v)
		table.Rows = append(table.Rows, []string{v.Provider, v.Source, v.Key})
	}
	table.Data = views
	return cli.NewFormatter(a.format).FormatTo(cmd.OutOrStdout(), table)
}

func runKeysClear(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if err := a.store.SaveCredentials(ctx, providers.Credentials{}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cleared all stored keys")
		return nil
	}

	stored, err := a.store.Credentials(ctx)
	if err != nil {
		return err
	}
	for _, arg := range args {
		tag, err := providers.ParseProviderTag(arg)
		if err != nil {
			return err
		}
		stored = stored.With(tag, "")
	}
	if err := a.store.SaveCredentials(ctx, stored); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", strings.Join(args, ", "))
	return nil
}

// readLine reads one line from r without the line terminator.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
