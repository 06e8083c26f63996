package openai

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"savewise/internal/adapters/config"
	"savewise/pkg/errors"
)

// Client generates short advisor replies with an OpenAI chat model
type Client struct {
	client  openai.Client // NewClient returns Client (not *Client)
	model   openai.ChatModel
	timeout time.Duration
}

// NewClient creates an OpenAI chat client. It fails when no API key is configured.
// Extra request options are appended after the API key (tests point the base URL at httptest).
func NewClient(cfg config.OpenAIConfig, opts ...option.RequestOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(errors.ErrUnavailable, "openai: OPENAI_API_KEY is not set")
	}

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)

	return &Client{
		client:  openai.NewClient(opts...),
		model:   openai.ChatModel(model),
		timeout: timeout,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return string(c.model)
}

// Generate sends prompt as a single user turn and returns the text reply
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(0.7),
		TopP:                openai.Float(1),
		MaxCompletionTokens: openai.Int(512),
	})
	if err != nil {
		return "", errors.Wrapf(err, "openai %s generate", c.model)
	}

	if len(resp.Choices) == 0 {
		return "", errors.Newf("openai %s returned no choices", c.model)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.Newf("openai %s returned an empty reply", c.model)
	}
	return text, nil
}
