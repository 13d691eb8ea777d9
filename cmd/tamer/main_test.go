package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/tamer/internal/completion"
	"github.com/jackzampolin/tamer/internal/config"
	"github.com/jackzampolin/tamer/internal/home"
	"github.com/jackzampolin/tamer/internal/output"
	"github.com/jackzampolin/tamer/internal/prompts"
	"github.com/jackzampolin/tamer/internal/providers"
)

// newTestApp wires an app around a mock provider.
func newTestApp(t *testing.T, mock *providers.MockClient, format output.Format) (*app, *bytes.Buffer) {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var buf bytes.Buffer
	return &app{
		cfg:        config.DefaultConfig(),
		home:       h,
		logger:     logger,
		out:        output.NewPrinter(&buf, format),
		prompts:    prompts.NewResolver(h.PromptsPath(), logger),
		llm:        mock,
		completion: completion.New(completion.Config{LLM: mock, Logger: logger}),
	}, &buf
}

// scripted answers each demo prompt the way a cooperative model would.
func scripted(req *providers.ChatRequest) (string, error) {
	prompt := req.Messages[0].Content
	switch {
	case strings.Contains(prompt, "# Analysis Report"):
		return "## Analysis\nQubits use superposition.", nil
	case strings.Contains(prompt, "Highly recommend"):
		return "1. CATEGORY: Positive\n2. CONFIDENCE: high\n3. REASONING: praise", nil
	case strings.Contains(prompt, "CATEGORY"):
		return "1. CATEGORY: Negative\n2. CONFIDENCE: high\n3. REASONING: frustrated user", nil
	default:
		return "Photosynthesis feeds the food web.", nil
	}
}

func TestRunDemo(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Respond = scripted
	mock.Fragments = []string{"AI began in the 1950s. ", "END", " trailing"}
	a, buf := newTestApp(t, mock, output.FormatText)

	report := runDemo(context.Background(), a)

	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", report.Errors)
	}
	if report.Completion != "Photosynthesis feeds the food web." {
		t.Errorf("Completion = %q", report.Completion)
	}
	if report.Analysis != "Qubits use superposition." {
		t.Errorf("Analysis = %q", report.Analysis)
	}
	if report.Streamed != "AI began in the 1950s. " {
		t.Errorf("Streamed = %q", report.Streamed)
	}
	if report.Classification == nil || report.Classification.Category != "Negative" {
		t.Errorf("Classification = %+v", report.Classification)
	}
	if len(report.Strategies) != 3 {
		t.Fatalf("Strategies = %d, want 3", len(report.Strategies))
	}

	printDemo(buf, a, report)
	for _, want := range []string{"Part 1", "Part 5", "Extracted Analysis:", "few_shot"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("demo output missing %q", want)
		}
	}
}

func TestRunDemo_ContinuesAfterFailure(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	a, _ := newTestApp(t, mock, output.FormatText)

	report := runDemo(context.Background(), a)

	for _, part := range []string{"completion", "analysis", "stream", "classification"} {
		if _, ok := report.Errors[part]; !ok {
			t.Errorf("expected %s failure to be reported", part)
		}
	}
	// Comparison still runs and drops every outcome.
	for _, s := range report.Strategies {
		if s.Dropped != len(sampleCompareTexts) {
			t.Errorf("%s dropped %d, want %d", s.Name, s.Dropped, len(sampleCompareTexts))
		}
	}
}

func TestAnalyzeAnalysis(t *testing.T) {
	got := analyzeAnalysis("# Analysis Report\n## Analysis\n  The answer.  ")
	if !got.Found || got.Analysis != "The answer." {
		t.Errorf("analyzeAnalysis() = %+v", got)
	}

	got = analyzeAnalysis("no heading here")
	if got.Found || got.Analysis != "no heading here" {
		t.Errorf("missing heading should fall back to the completion: %+v", got)
	}
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "texts.txt")
	if err := os.WriteFile(path, []byte("first\n\n  second  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readLines(nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("readLines() = %q", got)
	}

	got, err = readLines(strings.NewReader("from stdin\n"), "-")
	if err != nil || len(got) != 1 || got[0] != "from stdin" {
		t.Errorf("stdin readLines() = %q, %v", got, err)
	}

	if _, err := readLines(strings.NewReader("\n\n"), "-"); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "error", ""} {
		if _, err := parseLevel(s); err != nil {
			t.Errorf("parseLevel(%q) error = %v", s, err)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
