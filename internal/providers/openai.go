package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

const (
	GroqName         = "groq"
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	GroqDefaultModel = "llama3-70b-8192"
)

// OpenAIConfig holds configuration for any OpenAI-compatible chat service.
type OpenAIConfig struct {
	Name         string // Client identifier (default: "groq")
	APIKey       string
	BaseURL      string // Default: Groq's OpenAI-compatible endpoint
	DefaultModel string
	Timeout      time.Duration // HTTP timeout
	HTTPClient   *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
// Retries are disabled at the SDK layer; callers own the retry policy.
type OpenAIClient struct {
	name         string
	defaultModel string
	client       openai.Client
}

// NewOpenAIClient creates a new OpenAI-compatible chat client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = GroqName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = GroqDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIClient{
		name:         cfg.Name,
		defaultModel: cfg.DefaultModel,
		client:       client,
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.defaultModel
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	resp, err := c.client.Chat.Completions.New(ctx, c.params(req))
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &ChatResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		ExecutionTime:    time.Since(start),
		Provider:         c.name,
		ModelUsed:        resp.Model,
		FinishReason:     resp.Choices[0].FinishReason,
		RequestID:        requestID,
	}, nil
}

// ChatStream opens a streaming chat completion request.
// Transport errors surface through the returned stream's Err.
func (c *OpenAIClient) ChatStream(ctx context.Context, req *ChatRequest) (Stream, error) {
	s := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
	return &openAIStream{stream: s}, nil
}

func (c *OpenAIClient) params(req *ChatRequest) openai.ChatCompletionNewParams {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	return params
}

// openAIStream adapts the SDK's SSE stream to Stream.
type openAIStream struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current string
}

func (s *openAIStream) Next() bool {
	if !s.stream.Next() {
		return false
	}
	chunk := s.stream.Current()
	s.current = ""
	if len(chunk.Choices) > 0 {
		s.current = chunk.Choices[0].Delta.Content
	}
	return true
}

func (s *openAIStream) Current() string {
	return s.current
}

func (s *openAIStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return mapOpenAIError(err)
	}
	return nil
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}

// Verify interface
var _ LLMClient = (*OpenAIClient)(nil)
