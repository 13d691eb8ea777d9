package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/output"
	"github.com/jackzampolin/tamer/version"
)

var (
	cfgFile      string
	homeDir      string
	envFile      string
	outputFormat string
	logLevel     string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "tamer",
	Short: "Prompt engineering patterns against a hosted LLM",
	Long: `Tamer wraps an OpenAI-compatible chat API (Groq by default) to demonstrate
practical prompt engineering patterns:

  - Plain completion
  - Structured prompts with section extraction
  - Streaming with a stop marker
  - Classification with confidence thresholds
  - Comparison of prompting strategies

The API key is read from GROQ_API_KEY, which may live in a .env file.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.tamer/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "tamer home directory (default: ~/.tamer)",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", "", "additional .env file loaded before ./.env and ~/.tamer/.env",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "warn", "log level: debug, info, warn or error",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "shorthand for --log-level debug",
	)

	// Validate global flags before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := output.ParseFormat(outputFormat); err != nil {
			return err
		}
		if _, err := parseLevel(logLevel); err != nil {
			return err
		}
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger. Logs go to stderr so they never mix
// with command output.
func newLogger() *slog.Logger {
	level, err := parseLevel(logLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
