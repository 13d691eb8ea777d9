package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/classify"
)

const sampleClassifyText = "The user experience of the app is frustrating, and the interface is not intuitive."

var defaultCategories = []string{"Positive", "Negative", "Neutral"}

var (
	classifyCategories []string
	classifyFormat     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify a text with a confidence score",
	Long: `Classify a text into exactly one category. The model reports a confidence
label (high, medium or low) which maps to 0.9, 0.6 or 0.3. Answers whose
score does not exceed the threshold are reported as "uncertain".

Examples:
  tamer classify
  tamer classify --categories Bug,Feature,Question "The export button crashes the app"
  tamer classify --threshold 0.5 --format json "Works fine, nothing special"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := connectApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		text := sampleClassifyText
		if len(args) > 0 {
			text = strings.Join(args, " ")
		}

		cls, err := a.classifier(flagThreshold(cmd), classifyFormat)
		if err != nil {
			return err
		}

		result, err := cls.Classify(cmd.Context(), text, classifyCategories)
		if err != nil {
			return err
		}

		return a.out.Print(result, func(w io.Writer) error {
			printClassification(w, result)
			return nil
		})
	},
}

func printClassification(w io.Writer, c *classify.Classification) {
	fmt.Fprintf(w, "Category:   %s\n", c.Category)
	fmt.Fprintf(w, "Confidence: %.1f\n", c.Confidence)
	fmt.Fprintf(w, "Reasoning:  %s\n", c.Reasoning)
}

// flagThreshold returns the --threshold value, or -1 when unset.
func flagThreshold(cmd *cobra.Command) float64 {
	if !cmd.Flags().Changed("threshold") {
		return -1
	}
	t, _ := cmd.Flags().GetFloat64("threshold")
	return t
}

func addClassifyFlags(cmd *cobra.Command, categories *[]string, format *string) {
	cmd.Flags().StringSliceVar(categories, "categories", defaultCategories, "allowed categories")
	cmd.Flags().Float64("threshold", classify.DefaultThreshold, "confidence must exceed this score (default from config)")
	cmd.Flags().StringVar(format, "format", "", "response format: lines or json (default from config)")
}

func init() {
	addClassifyFlags(classifyCmd, &classifyCategories, &classifyFormat)
	rootCmd.AddCommand(classifyCmd)
}
