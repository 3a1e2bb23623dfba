// ABOUTME: Terminal presentation of conversation views for the chat REPL
// ABOUTME: Draws only what changed since the last view so repeated renders are harmless

package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/2389/askme/internal/chat"
	"github.com/2389/askme/internal/conversation"
	"github.com/2389/askme/internal/notice"
	"github.com/2389/askme/internal/render"
)

var noticeText = map[notice.Kind]string{
	notice.ProfileUpdated: "Knowledge base updated",
	notice.HistoryDeleted: "Chat history deleted",
}

// terminal draws conversation views. It remembers how much of the current
// conversation it has already printed.
type terminal struct {
	mu  sync.Mutex
	out io.Writer

	key        chat.Key
	printed    int
	loading    bool
	confirming bool
	notices    map[notice.Kind]bool
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out, notices: make(map[notice.Kind]bool)}
}

// draw prints whatever v adds over the previously drawn view.
func (t *terminal) draw(v conversation.View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// A different conversation, or one that shrank (cleared), is redrawn whole.
	if v.Key != t.key || len(v.Messages) < t.printed {
		if t.key != "" {
			color.New(color.FgHiBlack).Fprintf(t.out, "\n── %s ──\n", conversationTitle(v))
		}
		t.key = v.Key
		t.printed = 0
	}

	for _, m := range v.Messages[t.printed:] {
		printMessage(t.out, m, v.VisitorName)
	}
	t.printed = len(v.Messages)

	if v.Loading() && !t.loading {
		color.New(color.FgHiBlack, color.Italic).Fprintln(t.out, "  … thinking")
	}
	t.loading = v.Loading()

	if v.ConfirmingClear && !t.confirming {
		color.New(color.FgYellow).Fprintln(t.out, "Delete this conversation? Type /yes to confirm or /no to keep it.")
	}
	t.confirming = v.ConfirmingClear

	visible := make(map[notice.Kind]bool, len(v.Notices))
	for _, k := range v.Notices {
		visible[k] = true
		if !t.notices[k] {
			color.New(color.FgGreen).Fprintf(t.out, "✓ %s\n", noticeText[k])
		}
	}
	t.notices = visible
}

func conversationTitle(v conversation.View) string {
	visitor := v.VisitorName
	if visitor == "" {
		visitor = chat.AnonymousVisitor
	}
	return fmt.Sprintf("%s with %s", visitor, v.Subject)
}

func printMessage(out io.Writer, m chat.Message, visitorName string) {
	gray := color.New(color.FgHiBlack)
	gray.Fprintf(out, "[%s] ", m.TimeLabel())

	if m.Kind == chat.KindBot {
		color.New(color.FgCyan, color.Bold).Fprintf(out, "%s: ", m.Label(visitorName))
		fmt.Fprintln(out, render.Terminal(m.Content))
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(out, "%s: ", m.Label(visitorName))
	fmt.Fprintln(out, m.Content)
}
