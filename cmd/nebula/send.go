package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nebula-hq/nebula/pkg/attachments"
	"nebula-hq/nebula/pkg/chat"
	"nebula-hq/nebula/pkg/cli"
)

var sendFlags struct {
	model   string
	attach  []string
	refresh bool
}

var sendCmd = &cobra.Command{
	Use:   "send [PROMPT...]",
	Short: "Send one prompt and print the reply",
	Long: `Send one prompt to a model and print the reply. The prompt is read from
stdin when no arguments are given. The exchange is appended to the stored
conversation, so later sends to the same model see it as context.

Examples:
  nebula send "What is a relay node?"
  nebula send --model grok-2 --attach diagram.png "Explain this diagram"
  git diff | nebula send --model deepseek-v3`,
	RunE: appCommand(runSend),
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendFlags.model, "model", "m", "", "model id (default from config)")
	sendCmd.Flags().StringSliceVarP(&sendFlags.attach, "attach", "a", nil, "file to attach (repeatable)")
	sendCmd.Flags().BoolVar(&sendFlags.refresh, "refresh", false, "probe the node pool before sending")
}

func runSend(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	if prompt == "" && len(sendFlags.attach) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read prompt: %w", err)
		}
		prompt = string(data)
	}

	atts, err := attachments.FromFiles(sendFlags.attach, a.config().Chat.MaxAttachmentBytes)
	if err != nil {
		return err
	}

	session, err := a.newSession(ctx, sendFlags.model)
	if err != nil {
		return err
	}

	spinner := cli.NewSpinner(cmd.ErrOrStderr())
	if sendFlags.refresh {
		_ = spinner.Wrap("Probing nodes", func() error {
			a.registry.RefreshAll(ctx)
			return nil
		})
	}

	var reply chat.Message
	err = spinner.Wrap("Waiting for "+session.Model().Name, func() error {
		var sendErr error
		reply, sendErr = session.Send(ctx, prompt, atts)
		return sendErr
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return err
}
