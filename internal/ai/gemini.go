package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiService calls the Gemini generateContent REST endpoint.
type GeminiService struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
}

// NewGeminiService creates a Gemini-backed TextService. Empty model and
// non-positive timeout select the defaults. A non-positive maxTokens
// leaves the output length to the model.
func NewGeminiService(
	apiKey string,
	modelName string,
	maxTokens int,
	timeout time.Duration,
) *GeminiService {
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GeminiService{
		apiKey:    apiKey,
		model:     modelName,
		maxTokens: maxTokens,
		baseURL:   defaultGeminiBaseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the service at another endpoint root.
func (s *GeminiService) WithBaseURL(baseURL string) *GeminiService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// GenerateText sends prompt as a single user turn and joins the text
// parts of the first candidate.
func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	// Thinking tokens count against maxOutputTokens, so a capped request
	// turns thinking off to leave the budget for the answer.
	if s.maxTokens > 0 {
		reqBody.GenerationConfig = &geminiGenerationConfig{
			MaxOutputTokens: s.maxTokens,
			ThinkingConfig:  &geminiThinkingConfig{ThinkingBudget: 0},
		}
	}

	url := s.baseURL + "/models/" + s.model + ":generateContent"
	headers := map[string]string{"x-goog-api-key": s.apiKey}

	var resp geminiResponse
	if err := postJSON(ctx, s.client, url, headers, reqBody, &resp, geminiErrorMessage); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func geminiErrorMessage(body []byte) string {
	var apiErr geminiErrorResponse
	if json.Unmarshal(body, &apiErr) == nil {
		return apiErr.Error.Message
	}
	return ""
}

// --- Gemini API types ---

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int                   `json:"maxOutputTokens,omitempty"`
	ThinkingConfig  *geminiThinkingConfig `json:"thinkingConfig,omitempty"`
}

type geminiThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
