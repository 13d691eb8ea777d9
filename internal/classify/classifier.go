// Package classify turns a model's free-form answer into a category with a
// confidence score, falling back to "uncertain" when the answer is not
// confident enough to trust.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/tamer/internal/completion"
	"github.com/jackzampolin/tamer/internal/extract"
	"github.com/jackzampolin/tamer/internal/prompts"
)

const DefaultMaxTokens = 500

// Response field labels in lines mode.
const (
	categoryLabel   = "1. CATEGORY:"
	confidenceLabel = "2. CONFIDENCE:"
	reasoningLabel  = "3. REASONING:"
)

var (
	// ErrNoCompletion wraps the completion failure that left nothing to classify.
	ErrNoCompletion = errors.New("no completion to classify")
	// ErrEmptyCompletion means the model answered with no text at all.
	ErrEmptyCompletion = errors.New("empty completion")
	ErrNoCategories = errors.New("at least one category is required")
)

// Mode selects the response format requested from the model.
type Mode string

const (
	ModeLines Mode = "lines"
	ModeJSON  Mode = "json"
)

// Completer is the part of completion.Client the classifier needs.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts completion.Options) completion.Result
}

// Classification is the decision for one text.
type Classification struct {
	Category   string  `json:"category" yaml:"category"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Reasoning  string  `json:"reasoning" yaml:"reasoning"`

	Label     string `json:"label,omitempty" yaml:"label,omitempty"` // confidence label as answered
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// IsUncertain reports whether the answer was rejected.
func (c *Classification) IsUncertain() bool {
	return c.Category == Uncertain
}

// Config holds configuration for the classifier.
type Config struct {
	Completion Completer
	Prompts    *prompts.Resolver // nil uses embedded prompts only
	Threshold  *float64          // nil uses DefaultThreshold
	MaxTokens  int
	Mode       Mode
	Logger     *slog.Logger
}

// Threshold returns a pointer suitable for Config.Threshold.
func Threshold(t float64) *float64 {
	return &t
}

// Classifier classifies text through a Completer.
type Classifier struct {
	completion Completer
	prompts    *prompts.Resolver
	threshold  float64
	maxTokens  int
	mode       Mode
	validator  *extract.Validator
	logger     *slog.Logger
}

// New creates a classifier.
func New(cfg Config) (*Classifier, error) {
	if cfg.Completion == nil {
		return nil, errors.New("completion client is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Prompts == nil {
		cfg.Prompts = prompts.NewResolver("", cfg.Logger)
	}
	threshold := DefaultThreshold
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v out of range [0,1]", threshold)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	c := &Classifier{
		completion: cfg.Completion,
		prompts:    cfg.Prompts,
		threshold:  threshold,
		maxTokens:  cfg.MaxTokens,
		mode:       cfg.Mode,
		logger:     cfg.Logger,
	}

	switch cfg.Mode {
	case "", ModeLines:
		c.mode = ModeLines
	case ModeJSON:
		schema, err := json.Marshal(ResponseSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal response schema: %w", err)
		}
		c.validator, err = extract.NewValidator("classification.json", schema)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown classification mode %q", cfg.Mode)
	}
	return c, nil
}

// Threshold returns the effective confidence threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Format renders the response-format block for the configured mode.
func (c *Classifier) Format(categories []string) (string, error) {
	key := prompts.ClassifyLinesKey
	if c.mode == ModeJSON {
		key = prompts.ClassifyJSONKey
	}
	return c.prompts.Render(key, prompts.Data{Categories: categories})
}

// Classify asks the model to put text into exactly one of categories.
func (c *Classifier) Classify(ctx context.Context, text string, categories []string) (*Classification, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	format, err := c.Format(categories)
	if err != nil {
		return nil, err
	}
	prompt, err := c.prompts.Render(prompts.ClassifyTaskKey, prompts.Data{
		Text:       text,
		Categories: categories,
		Format:     format,
	})
	if err != nil {
		return nil, err
	}
	return c.run(ctx, prompts.ClassifyTaskKey, prompt, categories)
}

// ClassifyFramed classifies with caller-supplied task framing. The
// response-format block is appended so the answer can still be parsed.
func (c *Classifier) ClassifyFramed(ctx context.Context, promptKey, framing string, categories []string) (*Classification, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	format, err := c.Format(categories)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, promptKey, framing+"\n\n"+format, categories)
}

func (c *Classifier) run(ctx context.Context, promptKey, prompt string, categories []string) (*Classification, error) {
	res := c.completion.Complete(ctx, prompt, completion.Options{
		MaxTokens:   c.maxTokens,
		Temperature: completion.Temperature(0),
		PromptKey:   promptKey,
	})
	if !res.OK() {
		return nil, fmt.Errorf("%w: %w", ErrNoCompletion, res.Err())
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("%w: %w", ErrNoCompletion, ErrEmptyCompletion)
	}

	var out *Classification
	if c.mode == ModeJSON {
		out = c.parseJSON(res.Text, categories)
	} else {
		out = c.Parse(res.Text, categories)
	}
	out.RequestID = res.RequestID

	c.logger.Debug("classified",
		"request_id", res.RequestID,
		"prompt_key", promptKey,
		"category", out.Category,
		"confidence", out.Confidence)
	return out, nil
}

// Parse applies the threshold to a lines-mode answer.
func (c *Classifier) Parse(response string, categories []string) *Classification {
	category, _ := extract.Line(response, categoryLabel)
	label, _ := extract.Line(response, confidenceLabel)
	reasoning, _ := extract.SectionToEnd(response, reasoningLabel)
	return c.decide(category, label, reasoning, categories)
}

func (c *Classifier) parseJSON(text string, categories []string) *Classification {
	var r response
	if err := c.validator.Decode(text, &r); err != nil {
		c.logger.Debug("malformed classification response", "error", err)
		return &Classification{Category: Uncertain, Reasoning: ReasonMalformed}
	}
	return c.decide(r.Category, r.Confidence, r.Reasoning, categories)
}

func (c *Classifier) decide(category, label, reasoning string, categories []string) *Classification {
	score := Score(label)
	if score <= c.threshold {
		return &Classification{
			Category:   Uncertain,
			Confidence: score,
			Reasoning:  ReasonBelowThreshold,
			Label:      label,
		}
	}

	canonical, ok := Normalize(category, categories)
	if !ok {
		return &Classification{
			Category:   Uncertain,
			Confidence: score,
			Reasoning:  ReasonNotInSet,
			Label:      label,
		}
	}
	return &Classification{
		Category:   canonical,
		Confidence: score,
		Reasoning:  reasoning,
		Label:      label,
	}
}
