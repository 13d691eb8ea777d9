package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/llmcall"
	"github.com/jackzampolin/tamer/internal/output"
)

var (
	callsLimit     int
	callsPromptKey string
	callsFailed    bool
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "List recorded LLM calls",
	Long: `List calls recorded in ~/.tamer/calls.db, newest first.

Recording is off by default; enable it with "record_calls: true" in the
config file or TAMER_RECORD_CALLS=true.

Examples:
  tamer calls
  tamer calls --limit 50 --prompt-key classify.task
  tamer calls --failed -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		store, err := llmcall.Open(cmd.Context(), a.home.CallsDBPath())
		if err != nil {
			return fmt.Errorf("open call log: %w", err)
		}
		defer store.Close()

		filter := llmcall.QueryFilter{PromptKey: callsPromptKey, Limit: callsLimit}
		if callsFailed {
			success := false
			filter.Success = &success
		}
		calls, err := store.List(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if calls == nil {
			calls = []llmcall.Call{}
		}

		return a.out.Print(calls, func(w io.Writer) error {
			if len(calls) == 0 {
				_, err := fmt.Fprintln(w, "No calls recorded.")
				return err
			}
			_, err := fmt.Fprintln(w, callsTable(a.out, calls))
			return err
		})
	},
}

func callsTable(p *output.Printer, calls []llmcall.Call) string {
	rows := make([][]string, 0, len(calls))
	for _, c := range calls {
		status := "ok"
		if !c.Success {
			status = truncate(c.Error, 40)
		}
		rows = append(rows, []string{
			c.Timestamp.Local().Format("2006-01-02 15:04:05"),
			c.PromptKey,
			c.Model,
			strconv.Itoa(c.LatencyMs),
			strconv.Itoa(c.InputTokens) + "/" + strconv.Itoa(c.OutputTokens),
			status,
		})
	}
	return p.Table(
		[]string{"Time", "Prompt", "Model", "Latency (ms)", "Tokens in/out", "Status"},
		rows,
		[]output.Align{output.AlignLeft, output.AlignLeft, output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignLeft},
	)
}

func init() {
	callsCmd.Flags().IntVarP(&callsLimit, "limit", "n", 20, "maximum calls to list (0 for all)")
	callsCmd.Flags().StringVar(&callsPromptKey, "prompt-key", "", "only calls with this prompt key")
	callsCmd.Flags().BoolVar(&callsFailed, "failed", false, "only failed calls")
	rootCmd.AddCommand(callsCmd)
}
