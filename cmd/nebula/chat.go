package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"nebula-hq/nebula/pkg/attachments"
	"nebula-hq/nebula/pkg/chat"
	"nebula-hq/nebula/pkg/cli"
	"nebula-hq/nebula/pkg/config"
	"nebula-hq/nebula/pkg/nodes"
	"nebula-hq/nebula/pkg/providers"
)

// errQuit ends the REPL loop.
var errQuit = errors.New("quit")

var chatFlags struct {
	model   string
	noWatch bool
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Start an interactive chat session. Lines are sent to the selected model;
lines starting with / are commands (type /help for the list).

While the session runs the relay pool is refreshed on the configured
schedule, and edits to the config file are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: appCommand(runChat),
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatFlags.model, "model", "m", "", "initial model id (default from config)")
	chatCmd.Flags().BoolVar(&chatFlags.noWatch, "no-watch", false, "do not reload the config file on change")
}

func runChat(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session, err := a.newSession(ctx, chatFlags.model)
	if err != nil {
		return err
	}

	a.serveMetrics(ctx)

	cfg := a.config()
	if cfg.Nodes.RefreshOnStartEnabled() {
		go a.registry.RefreshAll(ctx)
	}

	scheduler := nodes.NewScheduler(a.registry, cfg.Nodes.ScheduledRefresh(), a.logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	if !chatFlags.noWatch {
		stop, err := a.watchConfig(ctx)
		if err != nil {
			a.logger.Warn("config reload disabled", "error", err)
		} else {
			defer stop()
		}
	}

	repl := &chatREPL{
		app:     a,
		session: session,
		out:     cmd.OutOrStdout(),
		spinner: cli.NewSpinner(cmd.ErrOrStderr()),
	}
	return repl.run(ctx, cmd.InOrStdin())
}

// watchConfig reloads the config file on change until ctx is done. The
// returned function stops the watcher.
func (a *app) watchConfig(ctx context.Context) (func(), error) {
	w, err := config.NewWatcher(cfgFile, config.DefaultDebounceInterval, a.logger)
	if err != nil {
		return nil, err
	}
	go func() {
		err := w.Watch(ctx, func(cfg *config.Config) {
			applyFlagOverrides(cfg)
			a.applyConfig(cfg)
		})
		if err != nil {
			a.logger.Warn("config watcher stopped", "error", err)
		}
	}()
	return func() { _ = w.Stop() }, nil
}

// chatREPL reads lines and either sends them or runs slash commands.
type chatREPL struct {
	app     *app
	session *chat.Session
	out     io.Writer
	spinner *cli.Spinner

	// pending holds files attached with /attach for the next send.
	pending []providers.Attachment
}

func (r *chatREPL) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	m := r.session.Model()
	fmt.Fprintf(r.out, "Chatting with %s (%s). Type /help for commands.\n", m.Name, m.ID)
	for {
		fmt.Fprint(r.out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				return nil
			}
			if err := r.handle(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				fmt.Fprintln(r.out, "Error:", err)
			}
		}
	}
}

func (r *chatREPL) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return r.send(ctx, line)
	}

	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]
	switch name {
	case "/help":
		r.help()
	case "/quit", "/exit":
		return errQuit
	case "/models":
		return printModels(r.out, cli.FormatText, r.app.catalog.Models(), r.session.Model().ID)
	case "/model":
		return r.switchModel(ctx, args)
	case "/clear":
		if err := r.session.ClearHistory(ctx); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "Conversation cleared.")
	case "/history":
		return printHistory(r.out, cli.FormatText, r.session.History())
	case "/attach":
		return r.attach(args)
	case "/nodes":
		active, _ := r.app.registry.Active()
		return printNodes(r.out, cli.FormatText, r.app.registry.Nodes(), active.ID)
	case "/refresh":
		var ranked []nodes.Node
		_ = r.spinner.Wrap("Probing nodes", func() error {
			ranked = r.app.registry.RefreshAll(ctx)
			return nil
		})
		active, _ := r.app.registry.Active()
		return printNodes(r.out, cli.FormatText, ranked, active.ID)
	case "/use":
		if len(args) != 1 {
			return errors.New("usage: /use <node-id>")
		}
		if err := r.app.registry.SetActive(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Active node: %s\n", args[0])
	case "/add":
		if len(args) < 2 {
			return errors.New("usage: /add <name> <url>")
		}
		nodeName := strings.Join(args[:len(args)-1], " ")
		n, err := r.app.registry.AddCustomNode(ctx, nodeName, args[len(args)-1])
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Added %s (%s), latency %s\n", n.ID, n.URL, latencyLabel(n))
	case "/remove":
		if len(args) != 1 {
			return errors.New("usage: /remove <node-id>")
		}
		if err := r.app.registry.RemoveNode(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Removed %s\n", args[0])
	default:
		return fmt.Errorf("unknown command %s (type /help)", name)
	}
	return nil
}

func (r *chatREPL) send(ctx context.Context, prompt string) error {
	atts := r.pending
	r.pending = nil

	var reply chat.Message
	start := time.Now()
	err := r.spinner.Wrap("Thinking", func() error {
		var sendErr error
		reply, sendErr = r.session.Send(ctx, prompt, atts)
		return sendErr
	})
	if err != nil {
		if errors.Is(err, chat.ErrBusy) || errors.Is(err, chat.ErrEmptyMessage) {
			r.pending = atts
		}
		return err
	}
	fmt.Fprintf(r.out, "%s\n(%s, %s)\n", reply.Text, r.session.Model().ID, time.Since(start).Round(time.Millisecond))
	return nil
}

func (r *chatREPL) switchModel(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: /model <id> [transfer]")
	}
	transfer := len(args) == 2 && args[1] == "transfer"
	if err := r.session.SwitchModel(ctx, args[0], transfer); err != nil {
		return err
	}
	m := r.session.Model()
	fmt.Fprintf(r.out, "Now chatting with %s (%d messages in history).\n", m.Name, len(r.session.History()))
	return nil
}

func (r *chatREPL) attach(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: /attach <path>...")
	}
	atts, err := attachments.FromFiles(args, r.app.config().Chat.MaxAttachmentBytes)
	if err != nil {
		return err
	}
	r.pending = append(r.pending, atts...)
	fmt.Fprintf(r.out, "%d file(s) attached to the next message.\n", len(r.pending))
	return nil
}

func (r *chatREPL) help() {
	fmt.Fprint(r.out, `Commands:
  /models               list models
  /model <id> [transfer] switch model, optionally copying this conversation
  /clear                clear this conversation
  /history              show this conversation
  /attach <path>...     attach files to the next message
  /nodes                show the relay pool
  /refresh              probe every node
  /use <id>             make a node active
  /add <name> <url>     add a custom node
  /remove <id>          remove a node
  /quit                 leave
`)
}
