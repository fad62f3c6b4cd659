package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/config"
)

var (
	// Global flags
	cfgFile      string
	envFile      string
	userName     string
	logLevel     string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "nebula",
	Short: "Nebula - multi-provider AI chat client",
	Long: `Nebula is a terminal chat client for several AI chat providers.

It talks to Google Gemini through generateContent and to OpenAI, DeepSeek
and xAI through their chat-completions APIs. Gemini traffic can be routed
through community relays; the client probes the relay pool, ranks it by
latency and keeps the fastest reachable node active.

Conversations, API keys and custom nodes are stored per user in a local
SQLite database.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code derived from its
// error.
func Execute() {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "nebula.yaml", "config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with NEBULA_* variables (optional)")
	rootCmd.PersistentFlags().StringVarP(&userName, "user", "u", "", "profile whose conversations are used (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json)")
}

// loadConfig reads the dotenv and config files and applies flag overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, cli.NewConfigError("env-file", err.Error())
	}
	if err := config.Initialize(cfgFile); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()
	applyFlagOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides lets global flags win over the config file.
func applyFlagOverrides(cfg *config.Config) {
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if userName != "" {
		cfg.Chat.User = userName
	}
}

// appCommand adapts a function taking the assembled app to a cobra RunE.
// The app is closed when fn returns.
func appCommand(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseFormat(outputFormat)
		if err != nil {
			return cli.NewConfigError("output", err.Error())
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()
		a.format = format

		if err := fn(ctx, a, cmd, args); err != nil {
			return cli.NewCommandError(cmd.Name(), err)
		}
		return nil
	}
}
