package llmprovider

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/infrastructure/observability"
	"github.com/creditx/creditx-server/internal/infrastructure/telemetry"
	"github.com/creditx/creditx-server/internal/metrics"
)

const previewRunes = 120

// InstrumentedGateway records metrics, spans and sanitized logs around another gateway.
type InstrumentedGateway struct {
	next      llm.Gateway
	sanitizer *telemetry.Sanitizer
	log       zerolog.Logger
}

// Instrument wraps next.
func Instrument(next llm.Gateway, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *InstrumentedGateway {
	return &InstrumentedGateway{
		next:      next,
		sanitizer: sanitizer,
		log:       log.With().Str("component", "llm-gateway").Logger(),
	}
}

// Complete delegates to the wrapped gateway.
func (g *InstrumentedGateway) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	stage := llm.StageFromContext(ctx)
	chars := len([]rune(prompt))

	ctx, span := observability.StartModelSpan(ctx, stage, chars)
	defer span.End()

	metrics.PromptChars.WithLabelValues(stage).Observe(float64(chars))
	start := time.Now()

	answer, err := g.next.Complete(ctx, prompt, opts)

	elapsed := time.Since(start)
	metrics.ModelCallDuration.WithLabelValues(stage).Observe(elapsed.Seconds())

	if err != nil {
		kind := apperrors.KindOf(err)
		metrics.ModelCallsTotal.WithLabelValues(stage, string(kind)).Inc()
		observability.RecordError(span, err, string(kind))
		g.log.Warn().
			Err(err).
			Str("stage", stage).
			Str("kind", string(kind)).
			Dur("elapsed", elapsed).
			Msg("model call failed")
		return "", err
	}

	metrics.ModelCallsTotal.WithLabelValues(stage, "success").Inc()
	g.log.Debug().
		Str("stage", stage).
		Int("prompt_chars", chars).
		Int("answer_chars", len([]rune(answer))).
		Dur("elapsed", elapsed).
		Str("answer_preview", g.sanitizer.Preview(answer, previewRunes)).
		Msg("model call completed")
	return answer, nil
}

var _ llm.Gateway = (*InstrumentedGateway)(nil)
