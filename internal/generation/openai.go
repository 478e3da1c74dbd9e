// internal/generation/openai.go
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	commonhttp "planmytrip/internal/common/http"
)

const (
	ProviderOpenAI = "openai"

	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (Groq by default).
type OpenAIClient struct {
	http    *commonhttp.Client
	baseURL string
	apiKey  string
	model   string
}

func NewOpenAIClient(httpClient *commonhttp.Client, baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIClient{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (c *OpenAIClient) Provider() string { return ProviderOpenAI }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	resp, err := c.http.PostJSON(ctx, c.baseURL+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, req)
	if err != nil {
		return "", &ModelError{Provider: ProviderOpenAI, Kind: KindTransient, Err: err}
	}

	if !resp.IsSuccess() {
		return "", &ModelError{
			Provider:   ProviderOpenAI,
			Kind:       KindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        errors.New(apiErrorMessage(resp.Body)),
		}
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", &ModelError{
			Provider:   ProviderOpenAI,
			Kind:       KindTransient,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode completion envelope: %w", err),
		}
	}
	if len(out.Choices) == 0 {
		return "", &ModelError{
			Provider:   ProviderOpenAI,
			Kind:       KindTransient,
			StatusCode: resp.StatusCode,
			Err:        errors.New("completion has no choices"),
		}
	}

	// An empty message is returned as-is; the generator treats it as
	// malformed output.
	return out.Choices[0].Message.Content, nil
}

func apiErrorMessage(body []byte) string {
	var e apiErrorBody
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	if msg == "" {
		msg = "empty error body"
	}
	return msg
}
