// internal/generation/gemini.go
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ProviderGemini = "gemini"

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiClient calls Google's Gemini models through the generative-ai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Provider() string { return ProviderGemini }

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return text.String(), nil
}

func classifyGeminiError(err error) *ModelError {
	me := &ModelError{Provider: ProviderGemini, Kind: KindTransient, Err: err}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		me.Kind = KindRejected
		return me
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		me.StatusCode = apiErr.Code
		me.Kind = KindForStatus(apiErr.Code)
		return me
	}

	if st, ok := status.FromError(err); ok {
		me.StatusCode = int(st.Code())
		me.Kind = kindForGRPC(st.Code())
	}
	return me
}

func kindForGRPC(code codes.Code) ErrorKind {
	switch code {
	case codes.InvalidArgument,
		codes.Unauthenticated,
		codes.PermissionDenied,
		codes.NotFound,
		codes.FailedPrecondition,
		codes.Unimplemented:
		return KindRejected
	default:
		return KindTransient
	}
}
