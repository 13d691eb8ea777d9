package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/extract"
	"github.com/jackzampolin/tamer/internal/prompts"
)

const (
	sampleAnalysisText     = "Quantum computing leverages quantum mechanics to perform computations much faster than classical computers for certain problems."
	sampleAnalysisQuestion = "How does quantum computing differ from classical computing?"

	analysisHeading = "## Analysis"
)

var (
	analyzeText     string
	analyzeQuestion string
	analyzeRaw      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Ask a question about a text with a structured prompt",
	Long: `Build an "Analysis Report" prompt from a text and a question, then extract
the section after the "## Analysis" heading from the completion.

If the model does not echo the heading, the full completion is printed.

Examples:
  tamer analyze
  tamer analyze --text "Rust has no garbage collector." --question "How is memory freed?"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := connectApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		prompt, err := a.prompts.Render(prompts.AnalysisKey, prompts.Data{
			Text:     analyzeText,
			Question: analyzeQuestion,
		})
		if err != nil {
			return err
		}

		res := a.completion.Complete(cmd.Context(), prompt, a.generation(cmd, prompts.AnalysisKey))
		if !res.OK() {
			return fmt.Errorf("completion failed: %w", res.Err())
		}

		view := analyzeAnalysis(res.Text)
		return a.out.Print(view, func(w io.Writer) error {
			if analyzeRaw {
				fmt.Fprintln(w, res.Text)
				return nil
			}
			if !view.Found {
				a.logger.Warn("completion has no analysis heading; printing it whole", "heading", analysisHeading)
			}
			_, err := fmt.Fprintln(w, view.Analysis)
			return err
		})
	},
}

type analysisOutput struct {
	Analysis   string `json:"analysis" yaml:"analysis"`
	Found      bool   `json:"found" yaml:"found"`
	Completion string `json:"completion" yaml:"completion"`
}

// analyzeAnalysis extracts the analysis section, falling back to the
// whole completion when the heading is missing.
func analyzeAnalysis(completion string) analysisOutput {
	section, ok := extract.SectionToEnd(completion, analysisHeading)
	if !ok {
		section = completion
	}
	return analysisOutput{Analysis: section, Found: ok, Completion: completion}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeText, "text", sampleAnalysisText, "text to analyze")
	analyzeCmd.Flags().StringVar(&analyzeQuestion, "question", sampleAnalysisQuestion, "question about the text")
	analyzeCmd.Flags().BoolVar(&analyzeRaw, "raw", false, "print the full completion instead of the extracted section")
	addGenerationFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
