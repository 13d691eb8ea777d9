package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/completion"
)

var completeCmd = &cobra.Command{
	Use:   "complete <prompt>",
	Short: "Send a prompt and print the completion",
	Long: `Send a single prompt as a user message and print the model's answer.

Examples:
  tamer complete "Describe the role of photosynthesis in the Earth's ecosystem."
  tamer complete --temperature 0 --max-tokens 200 "Summarize TCP in one paragraph"
  tamer complete -o json "Hello"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := connectApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		prompt := strings.Join(args, " ")
		res := a.completion.Complete(cmd.Context(), prompt, a.generation(cmd, "complete"))
		if !res.OK() {
			return fmt.Errorf("completion failed: %w", res.Err())
		}

		return a.out.Print(completionView(res), func(w io.Writer) error {
			_, err := fmt.Fprintln(w, res.Text)
			return err
		})
	},
}

// completionOutput is the structured form of a completion.
type completionOutput struct {
	Text             string `json:"text" yaml:"text"`
	RequestID        string `json:"request_id" yaml:"request_id"`
	Model            string `json:"model,omitempty" yaml:"model,omitempty"`
	PromptTokens     int    `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens" yaml:"completion_tokens"`
	LatencyMs        int64  `json:"latency_ms" yaml:"latency_ms"`
	Attempts         int    `json:"attempts" yaml:"attempts"`
}

func completionView(res completion.Result) completionOutput {
	return completionOutput{
		Text:             res.Text,
		RequestID:        res.RequestID,
		Model:            res.Model,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.CompletionTokens,
		LatencyMs:        res.Latency.Milliseconds(),
		Attempts:         res.Attempts,
	}
}

func init() {
	addGenerationFlags(completeCmd)
	rootCmd.AddCommand(completeCmd)
}
