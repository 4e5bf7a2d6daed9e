package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

	// defaultCompletionTimeout bounds a single completion call. Timeouts
	// surface as errors; retry policy belongs to the caller's client, not
	// here.
	defaultCompletionTimeout = 120 * time.Second
)

// GroqClient implements Client using the openai-go SDK against Groq's
// OpenAI-compatible chat completions API.
type GroqClient struct {
	client openai.Client
	model  string
}

// NewGroqClient creates a Groq-backed LLM client.
func NewGroqClient(apiKey, model, baseURL string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, errors.New("groq api key missing")
	}
	if model == "" {
		return nil, errors.New("llm model is required")
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}

	return &GroqClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithRequestTimeout(defaultCompletionTimeout),
		),
		model: model,
	}, nil
}

// Complete sends a single-turn user prompt.
func (c *GroqClient) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName identifies the configured model.
func (c *GroqClient) ModelName() string {
	return c.model
}
