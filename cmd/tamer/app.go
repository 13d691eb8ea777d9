package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/classify"
	"github.com/jackzampolin/tamer/internal/completion"
	"github.com/jackzampolin/tamer/internal/config"
	"github.com/jackzampolin/tamer/internal/home"
	"github.com/jackzampolin/tamer/internal/llmcall"
	"github.com/jackzampolin/tamer/internal/output"
	"github.com/jackzampolin/tamer/internal/prompts"
	"github.com/jackzampolin/tamer/internal/providers"
	"github.com/jackzampolin/tamer/internal/strategy"
)

// app holds everything a command needs, built from flags and config.
type app struct {
	cfg     *config.Config
	cfgFile string
	home    *home.Dir
	logger  *slog.Logger
	out     *output.Printer
	prompts *prompts.Resolver

	// Set by connect
	llm        providers.LLMClient
	completion *completion.Client
	store      *llmcall.Store
}

// loadApp loads env files and config. It does not require an API key.
func loadApp(cmd *cobra.Command) (*app, error) {
	logger := newLogger()

	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	// .env files first so ${GROQ_API_KEY} and TAMER_* see them
	if _, err := config.LoadEnvFiles(logger, envFile, ".env", h.EnvPath()); err != nil {
		return nil, err
	}

	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     mgr.Get(),
		cfgFile: mgr.ConfigFile(),
		home:    h,
		logger:  logger,
		out:     output.NewPrinter(cmd.OutOrStdout(), format),
		prompts: prompts.NewResolver(h.PromptsPath(), logger),
	}, nil
}

// connectApp loads config and builds the completion client.
func connectApp(cmd *cobra.Command) (*app, error) {
	a, err := loadApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.connect(cmd.Context()); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) connect(ctx context.Context) error {
	apiKey, err := a.cfg.ResolveAPIKey()
	if err != nil {
		return err
	}

	a.llm = providers.WithRateLimit(providers.NewOpenAIClient(providers.OpenAIConfig{
		Name:         a.cfg.Provider.Name,
		APIKey:       apiKey,
		BaseURL:      a.cfg.Provider.BaseURL,
		DefaultModel: a.cfg.Provider.Model,
		Timeout:      a.cfg.Timeout(),
	}), a.cfg.Provider.RateLimit)

	var recorder completion.Recorder
	if a.cfg.RecordCalls {
		store, err := llmcall.Open(ctx, a.home.CallsDBPath())
		if err != nil {
			return fmt.Errorf("open call log: %w", err)
		}
		a.store = store
		recorder = llmcall.NewRecorder(store, a.logger)
	}

	a.completion = completion.New(completion.Config{
		LLM:        a.llm,
		Model:      a.cfg.Provider.Model,
		Timeout:    a.cfg.Timeout(),
		MaxRetries: a.cfg.Provider.MaxRetries,
		Recorder:   recorder,
		Logger:     a.logger,
	})
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing call log", "error", err)
		}
	}
}

// classifier builds a classifier. A negative threshold or empty format
// selects the configured value.
func (a *app) classifier(threshold float64, format string) (*classify.Classifier, error) {
	if threshold < 0 {
		threshold = a.cfg.Defaults.Threshold
	}
	if format == "" {
		format = a.cfg.Defaults.ClassifyFormat
	}
	return classify.New(classify.Config{
		Completion: a.completion,
		Prompts:    a.prompts,
		Threshold:  classify.Threshold(threshold),
		Mode:       classify.Mode(format),
		Logger:     a.logger,
	})
}

func (a *app) comparator(cls *classify.Classifier, concurrency int, parity bool) (*strategy.Comparator, error) {
	if concurrency <= 0 {
		concurrency = a.cfg.Defaults.Concurrency
	}
	return strategy.New(strategy.Config{
		Classifier:  cls,
		Prompts:     a.prompts,
		Concurrency: concurrency,
		ParityMode:  parity,
		Logger:      a.logger,
	})
}

// generation returns completion options from the configured defaults,
// overridden by flags the user actually set.
func (a *app) generation(cmd *cobra.Command, key string) completion.Options {
	opts := completion.Options{
		MaxTokens:   a.cfg.Defaults.MaxTokens,
		Temperature: completion.Temperature(a.cfg.Defaults.Temperature),
		PromptKey:   key,
	}
	if f := cmd.Flags().Lookup("max-tokens"); f != nil && f.Changed {
		opts.MaxTokens, _ = cmd.Flags().GetInt("max-tokens")
	}
	if f := cmd.Flags().Lookup("temperature"); f != nil && f.Changed {
		t, _ := cmd.Flags().GetFloat64("temperature")
		opts.Temperature = completion.Temperature(t)
	}
	return opts
}

func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-tokens", 0, "completion token budget (default from config)")
	cmd.Flags().Float64("temperature", 0, "sampling temperature (default from config)")
}
