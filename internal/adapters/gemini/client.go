package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"savewise/internal/adapters/config"
	"savewise/pkg/errors"
)

// Client generates short advisor replies with a Gemini model
type Client struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewClient creates a Gemini API client. It fails when no API key is configured.
func NewClient(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(errors.ErrUnavailable, "gemini: GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	return &Client{
		client: client,
		model:  cfg.Model,
		config: generationConfig(),
	}, nil
}

func generationConfig() *genai.GenerateContentConfig {
	blockNone := func(c genai.HarmCategory) *genai.SafetySetting {
		return &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdBlockNone}
	}

	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopP:            genai.Ptr[float32](1),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: 512,
		SafetySettings: []*genai.SafetySetting{
			blockNone(genai.HarmCategoryHarassment),
			blockNone(genai.HarmCategoryHateSpeech),
			blockNone(genai.HarmCategorySexuallyExplicit),
			blockNone(genai.HarmCategoryDangerousContent),
		},
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as a single user turn and returns the text reply
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", errors.Wrapf(err, "gemini %s generate", c.model)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.Newf("gemini %s returned an empty reply", c.model)
	}
	return text, nil
}
