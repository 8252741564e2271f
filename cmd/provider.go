package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/o1-assessor/internal/ai"
	"github.com/spigell/o1-assessor/internal/ai/gemini"
	"github.com/spigell/o1-assessor/internal/ai/openai"
	"github.com/spigell/o1-assessor/internal/logger"
	"github.com/spigell/o1-assessor/internal/secrets"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

func normalizeProvider(provider string) string {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return providerGemini
	}
	return provider
}

// newGenerator is swapped in tests to avoid real provider clients.
var newGenerator = buildGenerator

// buildGenerator creates the configured model client wrapped in the rate limiter.
func buildGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Generator, error) {
	var (
		gen ai.Generator
		err error
	)

	switch provider := normalizeProvider(cfg.Provider); provider {
	case providerGemini:
		gen, err = newGeminiGenerator(ctx, cfg.Gemini, log)
	case providerOpenAI:
		gen, err = newOpenAIGenerator(cfg.OpenAI, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ai.NewRateLimited(gen, cfg.RequestsPerMinute, cfg.Burst), nil
}

func newGeminiGenerator(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (ai.Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set ai.gemini.api-key-file)", err)
	}

	genLogger := logger.WithCommonFields(log, providerGemini, cfg.Model).
		With(zap.Int("ai_retry_attempts", cfg.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     apiKey,
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
		Logger:     genLogger,
	})
	if err != nil {
		return nil, err
	}
	return generator, nil
}

func newOpenAIGenerator(cfg *OpenAIConfig, log *zap.Logger) (ai.Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("openai configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "openai api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "OPENAI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set ai.openai.api-key-file)", err)
	}

	generator, err := openai.NewGenerator(openai.Config{
		APIKey:  apiKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Logger:  logger.WithCommonFields(log, providerOpenAI, cfg.Model),
	})
	if err != nil {
		return nil, err
	}
	return generator, nil
}
