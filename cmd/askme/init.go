// ABOUTME: askme init writes a starter config file from interactive prompts
// ABOUTME: Also creates the data directory for the transcript database

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/askme/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new config file interactively",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Println("askme configuration setup")
	fmt.Println("=========================")
	fmt.Println()

	defaultConfigPath := configPath
	if defaultConfigPath == "" {
		defaultConfigPath = config.DefaultPath()
	}

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Subject ---")
	profilePath := prompt(reader, "Profile file (leave empty to give just a name)", "")
	var name string
	if profilePath == "" {
		name = prompt(reader, "Subject name", "")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("a profile file or a subject name is required")
		}
	}

	fmt.Println("\n--- Storage ---")
	driver := prompt(reader, "SQLite driver (sqlite/sqlite3)", config.DefaultDriver)
	dbPath := prompt(reader, "Database path", config.DefaultDataPath())

	fmt.Println("\n--- Answers ---")
	answerURL := prompt(reader, "Answer service URL (leave empty for profile echo)", "")

	fmt.Println("\n--- Logging ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# askme configuration\n")
	cfg.WriteString("# Generated by askme init\n\n")

	cfg.WriteString("subject:\n")
	if profilePath != "" {
		cfg.WriteString(fmt.Sprintf("  profile_path: %q\n", profilePath))
	} else {
		cfg.WriteString(fmt.Sprintf("  name: %q\n", name))
	}
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  driver: %q\n", driver))
	cfg.WriteString(fmt.Sprintf("  path: %q\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("answer:\n")
	cfg.WriteString(fmt.Sprintf("  url: %q\n", answerURL))
	cfg.WriteString(fmt.Sprintf("  timeout: %q\n", config.DefaultAnswerTimeout.String()))
	cfg.WriteString("\n")

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  ttl: %q\n", config.DefaultSessionTTL.String()))
	cfg.WriteString("\n")

	cfg.WriteString("notices:\n")
	cfg.WriteString(fmt.Sprintf("  duration: %q\n", config.DefaultNoticeDuration.String()))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Parse what we wrote so typos surface now rather than on first chat
	if _, err := config.Load(outputFile); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}

	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start chatting:")
	fmt.Printf("  askme chat\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
