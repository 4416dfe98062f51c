package llm

import "context"

// Gateway sends a single prompt to a language model and returns the answer text.
// Implementations return MODEL_UNAVAILABLE for transport failures and
// MODEL_RESPONSE_MALFORMED when the provider payload lacks an answer.
type Gateway interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options tunes one completion. Zero values fall back to provider defaults.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Stage names used for logging, metrics and tracing.
const (
	StageBankSummary = "bank_summary"
	StageAISSummary  = "ais_summary"
	StageScoring     = "scoring"
	StageChat        = "chat"
	StageAdvice      = "advice"
	StageExpense     = "expense_analysis"
	StageWelfare     = "welfare_eligibility"
)

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Complete calls f.
func (f GatewayFunc) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}
