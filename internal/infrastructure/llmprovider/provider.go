package llmprovider

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/config"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/infrastructure/telemetry"
)

// NewGateway builds the configured provider wrapped with instrumentation.
func NewGateway(cfg *config.Config, sanitizer *telemetry.Sanitizer, log zerolog.Logger) (llm.Gateway, error) {
	var base llm.Gateway
	switch cfg.LLMProvider {
	case "openai":
		base = NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	case "workersai":
		base = NewWorkersAIClient(cfg.LLMBaseURL, cfg.LLMAccountID, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}

	log.Info().
		Str("provider", cfg.LLMProvider).
		Str("model", cfg.LLMModel).
		Msg("language model gateway configured")
	return Instrument(base, sanitizer, log), nil
}
