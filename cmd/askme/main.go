// ABOUTME: Entry point for the askme command line client
// ABOUTME: Builds the cobra command tree and wires storage, identity and answers together

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "dev"

const banner = `
            _
  __ _ ___| | ___ __ ___   ___
 / _' / __| |/ / '_ ' _ \ / _ \
| (_| \__ \   <| | | | | |  __/
 \__,_|___/_|\_\_| |_| |_|\___|
`

// Global flags
var (
	configPath  string
	subjectName string
	visitorName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "askme",
	Short: "Ask questions about someone's profile",
	Long: `askme is a conversational assistant that answers questions about one
person's profile. Conversations are kept per visitor and per subject, so a
returning visitor picks up where they left off.

Run without arguments to start an interactive chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Starts an interactive chat with the assistant.

Commands inside the chat:
  /clear       delete this conversation (asks for confirmation)
  /yes, /no    confirm or cancel a pending /clear
  /refresh     reload the subject profile
  /name NAME   introduce yourself (empty NAME forgets you)
  /quit        leave`,
	RunE: runChat,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $ASKME_CONFIG or ~/.config/askme/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&subjectName, "subject", "", "subject name, overrides subject.name")
	rootCmd.PersistentFlags().StringVar(&visitorName, "visitor", "", "visitor name, overrides visitor.name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(chatCmd, initCmd, historyCmd, versionCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
