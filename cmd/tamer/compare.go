package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/output"
	"github.com/jackzampolin/tamer/internal/strategy"
)

var sampleCompareTexts = []string{
	"This laptop is incredibly fast and lightweight. Highly recommend!",
	"The screen resolution is disappointing, and the colors seem off.",
	"The product is decent, but the price is too high for what it offers.",
}

var (
	compareCategories  []string
	compareFormat      string
	compareFile        string
	compareConcurrency int
	compareParity      bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [text...]",
	Short: "Compare prompting strategies on a batch of texts",
	Long: `Classify every text under each prompting strategy (basic, structured,
few_shot) and print the results side by side. A text whose classification
fails is dropped from that strategy and counted.

Texts come from arguments, from --file (one per line, "-" for stdin), or
default to three sample product reviews.

Examples:
  tamer compare
  tamer compare --file reviews.txt --concurrency 4
  tamer compare --parity "Great value" "Arrived broken"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		texts, err := compareInputs(cmd, args)
		if err != nil {
			return err
		}

		a, err := connectApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		cls, err := a.classifier(flagThreshold(cmd), compareFormat)
		if err != nil {
			return err
		}
		cmp, err := a.comparator(cls, compareConcurrency, compareParity)
		if err != nil {
			return err
		}

		results := cmp.Compare(cmd.Context(), texts, compareCategories)
		return a.out.Print(results, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, compareTable(a.out, results))
			return err
		})
	},
}

func compareInputs(cmd *cobra.Command, args []string) ([]string, error) {
	switch {
	case compareFile != "":
		return readLines(cmd.InOrStdin(), compareFile)
	case len(args) > 0:
		return args, nil
	default:
		return sampleCompareTexts, nil
	}
}

// readLines returns the non-blank lines of path, or of stdin for "-".
func readLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no texts in %s", path)
	}
	return lines, nil
}

func compareTable(p *output.Printer, results strategy.Results) string {
	var rows [][]string
	for _, s := range results {
		for _, o := range s.Outcomes {
			rows = append(rows, []string{
				s.Name,
				strconv.Itoa(o.Index + 1),
				truncate(o.Text, 48),
				o.Classification.Category,
				fmt.Sprintf("%.1f", o.Classification.Confidence),
			})
		}
		if s.Dropped > 0 {
			rows = append(rows, []string{s.Name, "-", fmt.Sprintf("(%d dropped)", s.Dropped), "", ""})
		}
	}
	return p.Table(
		[]string{"Strategy", "#", "Text", "Category", "Confidence"},
		rows,
		[]output.Align{output.AlignLeft, output.AlignRight, output.AlignLeft, output.AlignLeft, output.AlignRight},
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	addClassifyFlags(compareCmd, &compareCategories, &compareFormat)
	compareCmd.Flags().StringVarP(&compareFile, "file", "f", "", `read texts from a file, one per line ("-" for stdin)`)
	compareCmd.Flags().IntVar(&compareConcurrency, "concurrency", 0, "in-flight classifications per strategy (default from config)")
	compareCmd.Flags().BoolVar(&compareParity, "parity", false, "classify every strategy with the default prompt")
	rootCmd.AddCommand(compareCmd)
}
