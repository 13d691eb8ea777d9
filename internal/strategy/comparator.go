package strategy

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/tamer/internal/classify"
	"github.com/jackzampolin/tamer/internal/prompts"
)

// Classifier is the part of classify.Classifier the comparator drives.
type Classifier interface {
	Classify(ctx context.Context, text string, categories []string) (*classify.Classification, error)
	ClassifyFramed(ctx context.Context, promptKey, framing string, categories []string) (*classify.Classification, error)
}

// Config holds configuration for the comparator.
type Config struct {
	Classifier Classifier
	Prompts    *prompts.Resolver // nil uses embedded prompts only
	Strategies []Strategy        // nil uses Defaults()

	// Concurrency bounds in-flight classifications per strategy (default 1).
	Concurrency int

	// ParityMode ignores each strategy's framing and classifies every text
	// with the default classification prompt.
	ParityMode bool

	Logger *slog.Logger
}

// Comparator runs a batch of texts under each strategy.
type Comparator struct {
	classifier  Classifier
	prompts     *prompts.Resolver
	strategies  []Strategy
	concurrency int
	parity      bool
	logger      *slog.Logger
}

// New creates a comparator.
func New(cfg Config) (*Comparator, error) {
	if cfg.Classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Prompts == nil {
		cfg.Prompts = prompts.NewResolver("", cfg.Logger)
	}
	if cfg.Strategies == nil {
		cfg.Strategies = Defaults()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Comparator{
		classifier:  cfg.Classifier,
		prompts:     cfg.Prompts,
		strategies:  cfg.Strategies,
		concurrency: cfg.Concurrency,
		parity:      cfg.ParityMode,
		logger:      cfg.Logger,
	}, nil
}

// Compare classifies every text under every strategy. Strategies run one
// after another; failures drop the affected outcome rather than the batch.
func (c *Comparator) Compare(ctx context.Context, texts, categories []string) Results {
	results := make(Results, 0, len(c.strategies))
	for _, s := range c.strategies {
		results = append(results, c.run(ctx, s, texts, categories))
	}
	return results
}

func (c *Comparator) run(ctx context.Context, s Strategy, texts, categories []string) StrategyResult {
	// One slot per input keeps outcomes in input order regardless of
	// completion order.
	slots := make([]*classify.Classification, len(texts))

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			cls, err := c.classify(ctx, s, text, categories)
			if err != nil {
				c.logger.Warn("classification dropped",
					"strategy", s.Name,
					"index", i,
					"error", err)
				return nil
			}
			slots[i] = cls
			return nil
		})
	}
	// Workers never return errors.
	_ = g.Wait()

	res := StrategyResult{Name: s.Name, Outcomes: make([]Outcome, 0, len(texts))}
	for i, cls := range slots {
		if cls == nil {
			res.Dropped++
			continue
		}
		res.Outcomes = append(res.Outcomes, Outcome{Index: i, Text: texts[i], Classification: cls})
	}

	c.logger.Info("strategy complete",
		"strategy", s.Name,
		"classified", len(res.Outcomes),
		"dropped", res.Dropped)
	return res
}

func (c *Comparator) classify(ctx context.Context, s Strategy, text string, categories []string) (*classify.Classification, error) {
	if c.parity {
		return c.classifier.Classify(ctx, text, categories)
	}
	framing, err := c.prompts.Render(s.PromptKey, prompts.Data{Text: text, Categories: categories})
	if err != nil {
		return nil, err
	}
	return c.classifier.ClassifyFramed(ctx, s.PromptKey, framing, categories)
}
