package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/lejockey/concierge/backend/internal/config"
	"github.com/lejockey/concierge/backend/internal/service/concierge"
)

// NewProvider 根据 AI_PROVIDER 创建后端。缺少密钥不算错误，
// 礼宾会降级为"暂不可用"的回复
func NewProvider(ctx context.Context, cfg config.AIConfig) (concierge.Provider, error) {
	if !cfg.Enabled() {
		log.Printf("[ai] %s provider disabled: credentials missing", cfg.Provider)
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		log.Printf("[ai] using ark model=%s", cfg.ArkModel)
		return NewArkProvider(chatModel), nil
	default:
		provider, err := NewGeminiProvider(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		log.Printf("[ai] using gemini chat=%s transcription=%s", cfg.ChatModel, cfg.TranscriptionModel)
		return provider, nil
	}
}

// Options 将 AI 配置转换为礼宾的生成参数
func Options(cfg config.AIConfig) concierge.Options {
	opts := concierge.DefaultOptions()
	if cfg.ChatModel != "" {
		opts.ChatModel = cfg.ChatModel
	}
	if cfg.TranscriptionModel != "" {
		opts.TranscriptionModel = cfg.TranscriptionModel
	}
	if cfg.Temperature != nil {
		opts.Temperature = float32(*cfg.Temperature)
	}
	if cfg.MaxTokens != nil && *cfg.MaxTokens > 0 {
		opts.MaxOutputTokens = *cfg.MaxTokens
	}
	if cfg.Provider == config.ProviderArk && cfg.ArkModel != "" {
		opts.ChatModel = cfg.ArkModel
	}
	opts.MapsGrounding = cfg.MapsGrounding
	if cfg.MaxTurns > 0 {
		opts.MaxTurns = cfg.MaxTurns
	}
	if cfg.RetryAttempts > 0 {
		opts.Retry.MaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryBaseDelay > 0 {
		opts.Retry.BaseDelay = cfg.RetryBaseDelay
	}
	return opts
}
