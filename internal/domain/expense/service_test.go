package expense_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/expense"
	"github.com/creditx/creditx-server/internal/domain/llm"
)

const analysis = `{"summary":"Mostly small UPI spends.","spending_breakdown":{"small":70,"medium":20,"large":10,"very_large":0},` +
	`"unusual_transactions":["12/04 ATM 9000"],"suggestions":["Cap daily UPI spend."]}`

const statementText = "01/04/2024 UPI grocery 450.00\n12/04/2024 ATM withdrawal 9,000.00\n15/04/2024 SALARY CREDIT 85,000.00\n"

type textExtractor struct {
	fail map[string]bool
}

func (e textExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if e.fail[string(data)] {
		return "", errors.New("corrupt upload")
	}
	return string(data), ctx.Err()
}

type recordingGateway struct {
	mu      sync.Mutex
	prompts []string
	stages  []string
	answer  string
	err     error
}

func (g *recordingGateway) Complete(ctx context.Context, prompt string, _ llm.Options) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.stages = append(g.stages, llm.StageFromContext(ctx))
	return g.answer, g.err
}

func newService(gw llm.Gateway, ext textExtractor, cfg expense.ServiceConfig) *expense.Service {
	if cfg.MinStatementChars == 0 {
		cfg.MinStatementChars = 50
	}
	cfg.ExtractionTimeout = time.Second
	return expense.NewService(ext, gw, llm.Options{MaxTokens: 1500}, cfg, zerolog.Nop())
}

func TestAnalyze(t *testing.T) {
	gw := &recordingGateway{answer: "```json\n" + analysis + "\n```"}
	svc := newService(gw, textExtractor{}, expense.ServiceConfig{})

	report, err := svc.Analyze(context.Background(), expense.AnalyzeParams{
		Statement:  []byte(statementText),
		Additional: [][]byte{[]byte("Salary slip: net pay 85000")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Mostly small UPI spends.", report.Insights.Summary)
	assert.Equal(t, expense.Percent(70), report.Insights.SpendingBreakdown.Small)
	assert.Equal(t, expense.Notes{"Cap daily UPI spend."}, report.Insights.Suggestions)
	require.Len(t, report.Transactions, 3)
	assert.Equal(t, expense.RangeLarge, report.Transactions[1].Range)
	assert.InDelta(t, 9000/9450.0*100, report.DebitShare[expense.RangeLarge], 0.001)

	require.Len(t, gw.prompts, 1)
	assert.Equal(t, llm.StageExpense, gw.stages[0])
	assert.Contains(t, gw.prompts[0], "12/04/2024 ATM withdrawal 9,000.00")
	assert.Contains(t, gw.prompts[0], "Salary slip: net pay 85000")
}

func TestAnalyzeClipsPromptInput(t *testing.T) {
	gw := &recordingGateway{answer: analysis}
	svc := newService(gw, textExtractor{}, expense.ServiceConfig{MaxStatementChars: 60, MaxAdditionalChars: 10})

	_, err := svc.Analyze(context.Background(), expense.AnalyzeParams{
		Statement:  []byte(statementText),
		Additional: [][]byte{[]byte("0123456789ABCDEF")},
	})
	require.NoError(t, err)
	assert.Contains(t, gw.prompts[0], "0123456789\n")
	assert.NotContains(t, gw.prompts[0], "ABCDEF")
	assert.NotContains(t, gw.prompts[0], "SALARY")
}

func TestAnalyzeSkipsUnreadableAdditionalFiles(t *testing.T) {
	gw := &recordingGateway{answer: analysis}
	svc := newService(gw, textExtractor{fail: map[string]bool{"broken": true}}, expense.ServiceConfig{})

	_, err := svc.Analyze(context.Background(), expense.AnalyzeParams{
		Statement:  []byte(statementText),
		Additional: [][]byte{[]byte("broken"), []byte("   "), []byte("Form 16 summary")},
	})
	require.NoError(t, err)
	assert.Contains(t, gw.prompts[0], "Form 16 summary")
	assert.NotContains(t, gw.prompts[0], "broken")
}

func TestAnalyzeRejectsInputs(t *testing.T) {
	tests := []struct {
		name      string
		params    expense.AnalyzeParams
		extractor textExtractor
		kind      apperrors.Kind
	}{
		{name: "missing statement", kind: apperrors.KindInvalidInput},
		{
			name:   "statement too short",
			params: expense.AnalyzeParams{Statement: []byte("01/04 50")},
			kind:   apperrors.KindExtractionFailed,
		},
		{
			name:      "unreadable statement",
			params:    expense.AnalyzeParams{Statement: []byte(statementText)},
			extractor: textExtractor{fail: map[string]bool{statementText: true}},
			kind:      apperrors.KindExtractionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &recordingGateway{answer: analysis}
			svc := newService(gw, tt.extractor, expense.ServiceConfig{})

			_, err := svc.Analyze(context.Background(), tt.params)
			assert.True(t, apperrors.IsKind(err, tt.kind), "got %v", err)
			assert.Empty(t, gw.prompts)
		})
	}
}

func TestAnalyzeModelFailures(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		gw := &recordingGateway{err: errors.New("502 bad gateway")}
		_, err := newService(gw, textExtractor{}, expense.ServiceConfig{}).
			Analyze(context.Background(), expense.AnalyzeParams{Statement: []byte(statementText)})
		assert.True(t, apperrors.IsKind(err, apperrors.KindModelUnavailable))

		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, llm.StageExpense, appErr.Stage)
	})

	t.Run("prose answer", func(t *testing.T) {
		gw := &recordingGateway{answer: "Your spending looks healthy overall."}
		_, err := newService(gw, textExtractor{}, expense.ServiceConfig{}).
			Analyze(context.Background(), expense.AnalyzeParams{Statement: []byte(statementText)})
		assert.True(t, apperrors.IsKind(err, apperrors.KindModelResponseMalformed))
		assert.True(t, strings.Contains(err.Error(), "JSON"))
	})
}
