package models

import (
	"context"
	"fmt"

	einoclaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"taskwise/internal/config"
)

const defaultAnthropicMaxTokens = 4096

// NewAnthropic creates a new Anthropic (Claude) ChatModel.
func NewAnthropic(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: api_key is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	modelConfig := &einoclaude.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: maxTokens,
	}

	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		modelConfig.BaseURL = &baseURL
	}

	return einoclaude.NewChatModel(ctx, modelConfig)
}
