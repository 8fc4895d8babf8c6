package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion   = "2023-06-01"
)

// AnthropicService calls the Anthropic Messages API.
type AnthropicService struct {
	apiKey    string
	model     string
	maxTokens int
	url       string
	client    *http.Client
}

// NewAnthropicService creates an Anthropic-backed TextService.
func NewAnthropicService(
	apiKey string,
	modelName string,
	maxTokens int,
	timeout time.Duration,
) *AnthropicService {
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AnthropicService{
		apiKey:    apiKey,
		model:     modelName,
		maxTokens: maxTokens,
		url:       anthropicAPIURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// WithURL points the service at another messages endpoint.
func (s *AnthropicService) WithURL(url string) *AnthropicService {
	s.url = url
	return s
}

// GenerateText sends prompt as a single user message and joins the text
// blocks of the reply.
func (s *AnthropicService) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: []anthropicContentBlock{{Type: "text", Text: prompt}},
			},
		},
	}

	headers := map[string]string{
		"x-api-key":         s.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, s.client, s.url, headers, reqBody, &resp, anthropicErrorMessage); err != nil {
		return "", err
	}

	var textParts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}
	if len(textParts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(textParts, ""), nil
}

func anthropicErrorMessage(body []byte) string {
	var apiErr anthropicErrorResponse
	if json.Unmarshal(body, &apiErr) == nil {
		return apiErr.Error.Message
	}
	return ""
}

// --- Anthropic API types ---

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
}

type anthropicErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
