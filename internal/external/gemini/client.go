package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"
	temperature  = float32(0.7)
)

var (
	ErrMissingAPIKey = errors.New("gemini api key is not configured")
	ErrEmptyResponse = errors.New("gemini returned no content")
)

// Client wraps the Gemini API for single-shot JSON completions
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Complete sends the system instruction and user prompts in one request
// and returns the concatenated text of the first candidate.
func (c *Client) Complete(ctx context.Context, system string, prompts []string) (string, error) {
	temp := temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	contents := make([]*genai.Content, 0, len(prompts))
	for _, p := range prompts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  string(genai.RoleUser),
			Parts: []*genai.Part{{Text: p}},
		})
	}
	if len(contents) == 0 {
		return "", errors.New("no prompt to send")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
