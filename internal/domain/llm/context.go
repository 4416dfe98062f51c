package llm

import "context"

type contextKey string

const stageKey contextKey = "llm-stage"

// ContextWithStage tags downstream model calls with the pipeline stage issuing them.
func ContextWithStage(ctx context.Context, stage string) context.Context {
	if ctx == nil || stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage recorded by ContextWithStage, or "unknown".
func StageFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if stage, ok := ctx.Value(stageKey).(string); ok {
		return stage
	}
	return "unknown"
}
