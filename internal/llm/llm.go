package llm

import (
	"context"
	"errors"
	"fmt"
	"podbrief/internal/core"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used for meeting summaries.
	DefaultModel = "gemini-2.5-flash"
	// DefaultMaxOutputTokens caps the length of a single summary.
	DefaultMaxOutputTokens = int32(8192)
	// DefaultTemperature balances faithfulness and readability.
	DefaultTemperature = float32(0.7)

	defaultTopK = float32(40)
	defaultTopP = float32(0.95)
)

// generator is the slice of the genai SDK the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures the Gemini client
type Options struct {
	APIKey          string
	Model           string
	MaxOutputTokens int32
	Temperature     float32
	Timeout         time.Duration // Per-call timeout, zero means none
}

// Client generates text with Gemini.
type Client struct {
	models  generator
	model   string
	config  *genai.GenerateContentConfig
	timeout time.Duration
}

// NewClient creates a Gemini client for the Gemini API backend.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in the config file")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newClient(gClient.Models, opts), nil
}

func newClient(models generator, opts Options) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}

	return &Client{
		models: models,
		model:  opts.Model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(opts.Temperature),
			TopK:            genai.Ptr(defaultTopK),
			TopP:            genai.Ptr(defaultTopP),
			MaxOutputTokens: opts.MaxOutputTokens,
		},
		timeout: opts.Timeout,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Summarize sends prompt as a single user turn and returns the generated text.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, c.config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	// Text() returns "" when there is no candidate
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("model %s: %w", c.model, core.ErrEmptyResponse)
	}

	return text, nil
}
