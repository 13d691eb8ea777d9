package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/completion"
)

const sampleStreamPrompt = "Provide a brief overview of the history of artificial intelligence. Conclude your response with 'END'."

var streamStopMarker string

var streamCmd = &cobra.Command{
	Use:   "stream [prompt]",
	Short: "Stream a completion until a stop marker appears",
	Long: `Stream a completion and stop reading as soon as the accumulated text
contains the stop marker. The text before the marker is printed.

Examples:
  tamer stream
  tamer stream --stop-marker DONE "List three sorting algorithms, then write DONE."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := connectApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		prompt := sampleStreamPrompt
		if len(args) > 0 {
			prompt = strings.Join(args, " ")
		}
		marker := a.cfg.Defaults.StopMarker
		if cmd.Flags().Changed("stop-marker") {
			marker = streamStopMarker
		}

		opts := streamOptions(a, cmd)
		res := a.completion.Stream(cmd.Context(), prompt, marker, opts)
		if !res.OK() {
			if res.Text != "" {
				a.logger.Warn("stream ended early", "fragments", res.Fragments)
				fmt.Fprintln(cmd.ErrOrStderr(), res.Text)
			}
			return fmt.Errorf("stream failed: %w", res.Err())
		}

		return a.out.Print(res, func(w io.Writer) error {
			if !res.Stopped {
				a.logger.Info("stop marker not seen", "marker", marker)
			}
			_, err := fmt.Fprintln(w, res.Text)
			return err
		})
	},
}

// streamOptions leaves temperature to the provider unless set by flag.
func streamOptions(a *app, cmd *cobra.Command) completion.Options {
	opts := completion.Options{
		MaxTokens: a.cfg.Defaults.MaxTokens,
		PromptKey: "stream",
	}
	if cmd.Flags().Changed("max-tokens") {
		opts.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
	}
	if cmd.Flags().Changed("temperature") {
		t, _ := cmd.Flags().GetFloat64("temperature")
		opts.Temperature = completion.Temperature(t)
	}
	return opts
}

func init() {
	streamCmd.Flags().StringVar(&streamStopMarker, "stop-marker", "END", "stop reading when this text appears (default from config)")
	addGenerationFlags(streamCmd)
	rootCmd.AddCommand(streamCmd)
}
