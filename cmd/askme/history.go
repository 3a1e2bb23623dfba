// ABOUTME: history subcommands for inspecting and deleting stored conversations
// ABOUTME: list, show and clear operate directly on the transcript store

package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var clearYes bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or delete stored conversations",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conversations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show VISITOR",
	Short: "Print a visitor's conversation with the subject",
	Long: `Prints the stored conversation between VISITOR and the configured subject.
Use "anonymous" for visitors who never gave a name.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear VISITOR",
	Short: "Delete a visitor's conversation with the subject",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryClear,
}

func init() {
	historyClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)
}

func openFromFlags() (*app, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Logging, os.Stderr, slog.LevelWarn)
	return openApp(cfg, logger)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := openFromFlags()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	keys, err := a.history.Keys(ctx)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		fmt.Fprintln(out, "No stored conversations.")
		return nil
	}

	gray := color.New(color.FgHiBlack)
	for _, key := range keys {
		t, ok := a.history.Load(ctx, key)
		if !ok {
			fmt.Fprintf(out, "%s  ", key)
			color.New(color.FgRed).Fprintln(out, "(unreadable)")
			continue
		}
		fmt.Fprintf(out, "%s  ", key)
		if last, ok := t.Last(); ok {
			gray.Fprintf(out, "%d messages, last %s\n", len(t), last.Timestamp.Local().Format("2006-01-02 15:04"))
		} else {
			gray.Fprintf(out, "%d messages\n", len(t))
		}
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	a, err := openFromFlags()
	if err != nil {
		return err
	}
	defer a.Close()

	key := a.keyFor(args[0])
	t, ok := a.history.Load(cmd.Context(), key)
	if !ok {
		return fmt.Errorf("no conversation stored for %s", key)
	}

	visitor := args[0]
	if key == a.keyFor("") {
		visitor = ""
	}
	for _, m := range t {
		printMessage(cmd.OutOrStdout(), m, visitor)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	a, err := openFromFlags()
	if err != nil {
		return err
	}
	defer a.Close()

	key := a.keyFor(args[0])
	if !clearYes {
		reader := bufio.NewReader(cmd.InOrStdin())
		reply := strings.ToLower(prompt(reader, fmt.Sprintf("Delete conversation %s?", key), "no"))
		if reply != "yes" && reply != "y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := a.history.Delete(cmd.Context(), key); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
	return nil
}
