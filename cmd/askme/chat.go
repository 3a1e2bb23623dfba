// ABOUTME: Interactive chat REPL for askme
// ABOUTME: Reads questions and slash commands from stdin and drives a conversation session

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/askme/internal/conversation"
	"github.com/2389/askme/internal/identity"
	"github.com/2389/askme/internal/notice"
	"github.com/2389/askme/internal/sessionmem"
)

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging, os.Stderr, slog.LevelWarn)

	out := cmd.OutOrStdout()
	color.New(color.FgCyan).Fprint(out, banner)
	color.New(color.FgHiBlack).Fprintf(out, "    version: %s\n", version)
	if path != "" {
		color.New(color.FgHiBlack).Fprintf(out, "    config:  %s\n", path)
	}
	fmt.Fprintln(out)

	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	memory := sessionmem.New(cfg.Session.TTL, cfg.Session.MaxSize)
	defer memory.Close()

	sess, err := conversation.New(ctx, conversation.Config{
		History:        a.history,
		Identity:       identity.NewResolver(memory),
		Answers:        a.answers,
		VisitorName:    cfg.Visitor.Name,
		NoticeDuration: cfg.Notices.Duration,
		Scheduler:      notice.AfterFunc,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("starting conversation: %w", err)
	}
	defer sess.Close()

	term := newTerminal(out)
	term.draw(sess.View())

	events, _ := sess.Subscribe(ctx)
	go func() {
		for ev := range events {
			term.draw(ev.View)
		}
	}()

	return (&repl{
		sess:   sess,
		memory: memory,
		term:   term,
		out:    out,
	}).run(ctx, cmd.InOrStdin())
}

// repl reads one line at a time and maps it onto session operations.
type repl struct {
	sess   *conversation.Session
	memory *sessionmem.Memory
	term   *terminal
	out    io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	prompt := color.New(color.FgGreen, color.Bold)
	for {
		prompt.Fprint(r.out, "> ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}
		r.ask(ctx, line)
	}
}

// ask submits a question and waits for the answer to be drawn.
func (r *repl) ask(ctx context.Context, question string) {
	r.sess.SetDraft(question)
	done, ok := r.sess.SendDraft(ctx)
	if !ok {
		color.New(color.FgYellow).Fprintln(r.out, "Still waiting for the previous answer.")
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
		return
	}
	r.term.draw(r.sess.View())
}

// command handles a slash command. It reports whether the REPL should exit.
func (r *repl) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true
	case "/clear":
		r.sess.RequestClear()
	case "/yes":
		if !r.sess.ConfirmClear(ctx) {
			r.hint("Nothing to confirm.")
		}
	case "/no":
		if !r.sess.CancelClear() {
			r.hint("Nothing to cancel.")
		}
	case "/refresh":
		if err := r.sess.KnowledgeBaseChanged(ctx); err != nil {
			r.hint("Could not reload the profile; keeping the previous one.")
		}
	case "/name":
		if arg == "" {
			r.memory.Delete(sessionmem.VisitorNameKey)
		} else {
			r.memory.Set(sessionmem.VisitorNameKey, arg)
		}
		r.sess.Reidentify(ctx)
	case "/help":
		r.hint("/clear, /yes, /no, /refresh, /name NAME, /quit")
	default:
		r.hint(fmt.Sprintf("Unknown command %s. Try /help.", name))
	}

	r.term.draw(r.sess.View())
	return false
}

func (r *repl) hint(msg string) {
	color.New(color.FgHiBlack).Fprintln(r.out, msg)
}
