package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/stargraph/internal/config"
)

func NewClient(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (LLMClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens), nil

	case "local":
		// llama.cpp, vLLM and similar servers speak the OpenAI protocol.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "local"
		}
		log.Info("using local OpenAI-compatible server", zap.String("base_url", cfg.BaseURL))
		return NewOpenAIClient(apiKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		log.Info("using Ollama via OpenAI-compatible API", zap.String("base_url", baseURL))

		// Ollama ignores the key but the client requires one.
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, cfg.Model, baseURL, cfg.MaxTokens), nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.MaxTokens), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// NewAnswerer builds the full answering stack for cfg: the provider, then
// retry on model loading, then the optional circuit breaker, then the
// optional answer cache. The returned func releases what was opened.
func NewAnswerer(ctx context.Context, cfg *config.Config, log *zap.Logger) (Answerer, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		base    Answerer
		closers []func() error
	)
	if strings.ToLower(cfg.LLM.Provider) == "hf_qa" {
		base = NewHFQAClient(cfg.LLM.BaseURL, cfg.LLM.APIKey)
	} else {
		client, err := NewClient(ctx, cfg.LLM, log)
		if err != nil {
			return nil, nil, err
		}
		if g, ok := client.(*GeminiClient); ok {
			closers = append(closers, g.Close)
		}
		base = NewChatAnswerer(client)
	}

	var answerer Answerer = NewRetryAnswerer(base, cfg.Retry.MaxAttempts,
		time.Duration(cfg.Retry.BackoffSeconds)*time.Second, log)

	if cfg.Breaker.Enabled {
		answerer = NewBreakerAnswerer(answerer, cfg.Breaker, cfg.LLM.Provider, log)
	}

	if cfg.Cache.Dir != "" {
		cached, err := NewCachedAnswerer(answerer, cfg.Cache.Dir, cfg.LLM.Provider+"/"+cfg.LLM.Model, log)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, cached.Close)
		answerer = cached
	}

	return answerer, func() error { return closeAll(closers) }, nil
}

func closeAll(closers []func() error) error {
	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
