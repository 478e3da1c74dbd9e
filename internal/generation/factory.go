// internal/generation/factory.go
package generation

import (
	"context"
	"fmt"

	"planmytrip/internal/common/config"
	commonhttp "planmytrip/internal/common/http"
)

// NewModelClient builds the client selected by llm.provider.
func NewModelClient(ctx context.Context, cfg config.LLMConfig) (ModelClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		httpClient := commonhttp.NewClient(config.GetDuration(cfg.AttemptTimeout))
		return NewOpenAIClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
