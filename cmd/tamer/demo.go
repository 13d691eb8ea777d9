package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/classify"
	"github.com/jackzampolin/tamer/internal/completion"
	"github.com/jackzampolin/tamer/internal/prompts"
	"github.com/jackzampolin/tamer/internal/strategy"
)

const sampleCompletePrompt = "Describe the role of photosynthesis in the Earth's ecosystem."

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run every pattern once with sample inputs",
	Long: `Walk through the five patterns in order with fixed sample inputs:

  1. Plain completion
  2. Structured prompt and section extraction
  3. Streaming with a stop marker
  4. Classification with confidence analysis
  5. Prompt strategy comparison

A failing part is reported and the walkthrough continues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := connectApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		report := runDemo(cmd.Context(), a)
		return a.out.Print(report, func(w io.Writer) error {
			printDemo(w, a, report)
			return nil
		})
	},
}

// demoReport is the outcome of each demo part. Empty fields mean the part
// failed; the reason is in Errors.
type demoReport struct {
	Completion     string                   `json:"completion" yaml:"completion"`
	Analysis       string                   `json:"analysis" yaml:"analysis"`
	Streamed       string                   `json:"streamed" yaml:"streamed"`
	Classification *classify.Classification `json:"classification" yaml:"classification"`
	Strategies     strategy.Results         `json:"strategies" yaml:"strategies"`
	Errors         map[string]string        `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func runDemo(ctx context.Context, a *app) *demoReport {
	r := &demoReport{Errors: map[string]string{}}
	fail := func(part string, err error) {
		r.Errors[part] = err.Error()
	}
	opts := completion.Options{
		MaxTokens:   a.cfg.Defaults.MaxTokens,
		Temperature: completion.Temperature(a.cfg.Defaults.Temperature),
	}

	// Part 1
	opts.PromptKey = "complete"
	if res := a.completion.Complete(ctx, sampleCompletePrompt, opts); res.OK() {
		r.Completion = res.Text
	} else {
		fail("completion", res.Err())
	}

	// Part 2
	if prompt, err := a.prompts.Render(prompts.AnalysisKey, prompts.Data{
		Text:     sampleAnalysisText,
		Question: sampleAnalysisQuestion,
	}); err != nil {
		fail("analysis", err)
	} else {
		opts.PromptKey = prompts.AnalysisKey
		if res := a.completion.Complete(ctx, prompt, opts); res.OK() {
			r.Analysis = analyzeAnalysis(res.Text).Analysis
		} else {
			fail("analysis", res.Err())
		}
	}

	// Part 3
	sres := a.completion.Stream(ctx, sampleStreamPrompt, a.cfg.Defaults.StopMarker, completion.Options{
		MaxTokens: a.cfg.Defaults.MaxTokens,
		PromptKey: "stream",
	})
	r.Streamed = sres.Text
	if !sres.OK() {
		fail("stream", sres.Err())
	}

	// Parts 4 and 5
	cls, err := a.classifier(-1, "")
	if err != nil {
		fail("classification", err)
		return r
	}
	if c, err := cls.Classify(ctx, sampleClassifyText, defaultCategories); err != nil {
		fail("classification", err)
	} else {
		r.Classification = c
	}

	cmp, err := a.comparator(cls, 0, false)
	if err != nil {
		fail("strategies", err)
		return r
	}
	r.Strategies = cmp.Compare(ctx, sampleCompareTexts, defaultCategories)
	return r
}

func printDemo(w io.Writer, a *app, r *demoReport) {
	section := func(n int, title string) {
		fmt.Fprintf(w, "\n----------------- Part %d: %s -----------------\n\n", n, title)
	}
	failed := func(part string) bool {
		if msg, ok := r.Errors[part]; ok {
			fmt.Fprintf(w, "(failed: %s)\n", msg)
			return true
		}
		return false
	}

	section(1, "Normal Completion")
	if !failed("completion") {
		fmt.Fprintf(w, "Completion Response:\n%s\n", r.Completion)
	}

	section(2, "Structured Completion and Section Extraction")
	if !failed("analysis") {
		fmt.Fprintf(w, "Extracted Analysis:\n%s\n", r.Analysis)
	}

	section(3, "Streaming Completion with Stop Marker")
	failed("stream")
	fmt.Fprintf(w, "Streamed Response:\n%s\n", r.Streamed)

	section(4, "Classification with Confidence Analysis")
	if !failed("classification") && r.Classification != nil {
		printClassification(w, r.Classification)
	}

	section(5, "Prompt Strategy Comparison")
	if !failed("strategies") {
		fmt.Fprintln(w, compareTable(a.out, r.Strategies))
	}
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
