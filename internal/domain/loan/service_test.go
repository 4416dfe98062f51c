package loan_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditx/creditx-server/internal/domain/bureau"
	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/status"
	"github.com/creditx/creditx-server/internal/domain/verdict"
	appRepo "github.com/creditx/creditx-server/internal/infrastructure/repository/application"
)

const approveVerdict = `{"Final Lending Decision":"Approve"}`

type passthroughExtractor struct{}

func (passthroughExtractor) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

type stubBureau struct {
	record bureau.Record
	err    error
}

func (b stubBureau) Lookup(context.Context, string) (bureau.Record, error) {
	return b.record, b.err
}

// stageGateway answers by pipeline stage and records every prompt it receives.
type stageGateway struct {
	mu      sync.Mutex
	prompts map[string][]string
	answers map[string]string
	errs    map[string]error
	hook    func(stage string)
}

func newStageGateway() *stageGateway {
	return &stageGateway{
		prompts: map[string][]string{},
		answers: map[string]string{
			llm.StageBankSummary: "BankSummary#1",
			llm.StageAISSummary:  "AisSummary#1",
			llm.StageScoring:     approveVerdict,
		},
		errs: map[string]error{},
	}
}

func (g *stageGateway) Complete(ctx context.Context, prompt string, _ llm.Options) (string, error) {
	stage := llm.StageFromContext(ctx)
	g.mu.Lock()
	g.prompts[stage] = append(g.prompts[stage], prompt)
	hook := g.hook
	err := g.errs[stage]
	answer := g.answers[stage]
	g.mu.Unlock()

	if hook != nil {
		hook(stage)
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (g *stageGateway) calls(stage string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts[stage])
}

func (g *stageGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, p := range g.prompts {
		n += len(p)
	}
	return n
}

type fixture struct {
	repo    *appRepo.InMemoryRepository
	gateway *stageGateway
	service *loan.Service
}

func newFixture(t *testing.T, provider bureau.Provider, strict bool) *fixture {
	t.Helper()
	repo := appRepo.NewInMemoryRepository()
	gw := newStageGateway()
	svc := loan.NewService(
		repo,
		loan.NewPipeline(gw, llm.Options{MaxTokens: 2048}),
		passthroughExtractor{},
		provider,
		loan.ServiceConfig{
			ExtractionTimeout: time.Second,
			BureauTimeout:     time.Second,
			StoreTimeout:      time.Second,
			MinExtractedChars: 4,
			StrictVerdict:     strict,
		},
		zerolog.Nop(),
	)
	return &fixture{repo: repo, gateway: gw, service: svc}
}

func validParams() loan.SubmitParams {
	return loan.SubmitParams{
		UserID:          "user-1",
		OrgID:           "org-1",
		ApplicantID:     "ABCDE1234F",
		FirstName:       "Vikas",
		LastName:        "Mundada",
		LoanType:        "home",
		LoanDescription: "two bedroom flat",
		BankStatement:   []byte("01/04 SALARY 85000 CR"),
		AIS:             []byte("TDS deducted 12000 FY24"),
	}
}

func equifax() bureau.Record {
	return bureau.Record{"equifax": map[string]any{"CREDIT_SCORE": 770}}
}

func TestSubmitHappyPath(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)

	app, err := f.service.Submit(context.Background(), validParams())
	require.NoError(t, err)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, "BankSummary#1", app.BankSummary)
	assert.Equal(t, "AisSummary#1", app.AISSummary)
	assert.Equal(t, approveVerdict, app.CreditVerdict)
	assert.Equal(t, status.StatusPending, app.Status)
	assert.Equal(t, loan.TypeHome, app.LoanType)
	assert.Empty(t, app.VerdictError)

	stored, err := f.service.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, approveVerdict, stored.CreditVerdict)
	parsed, ok := stored.Verdict().(*verdict.Parsed)
	require.True(t, ok)
	assert.Equal(t, verdict.DecisionApprove, parsed.Decision())

	assert.Equal(t, 1, f.gateway.calls(llm.StageBankSummary))
	assert.Equal(t, 1, f.gateway.calls(llm.StageAISSummary))
	require.Equal(t, 1, f.gateway.calls(llm.StageScoring))

	scoring := f.gateway.prompts[llm.StageScoring][0]
	assert.Contains(t, scoring, "BankSummary#1")
	assert.Contains(t, scoring, "AisSummary#1")
	assert.Contains(t, scoring, `"CREDIT_SCORE": 770`)
	assert.Contains(t, f.gateway.prompts[llm.StageBankSummary][0], "01/04 SALARY 85000 CR")
	assert.Contains(t, f.gateway.prompts[llm.StageAISSummary][0], "TDS deducted 12000 FY24")
}

func TestSubmitSummarizesConcurrently(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)

	var started sync.WaitGroup
	started.Add(2)
	released := make(chan struct{})
	var timedOut atomic.Bool
	go func() {
		started.Wait()
		close(released)
	}()
	f.gateway.hook = func(stage string) {
		if stage == llm.StageScoring {
			return
		}
		started.Done()
		select {
		case <-released:
		case <-time.After(2 * time.Second):
			timedOut.Store(true)
		}
	}

	_, err := f.service.Submit(context.Background(), validParams())
	require.NoError(t, err)
	assert.False(t, timedOut.Load(), "summaries should be requested in parallel")
}

func TestSubmitScoresOnlyAfterBothSummaries(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)

	var finished atomic.Int32
	var finishedAtScoring atomic.Int32
	finishedAtScoring.Store(-1)
	f.gateway.hook = func(stage string) {
		switch stage {
		case llm.StageAISSummary:
			time.Sleep(200 * time.Millisecond)
			finished.Add(1)
		case llm.StageBankSummary:
			finished.Add(1)
		case llm.StageScoring:
			finishedAtScoring.Store(finished.Load())
		}
	}

	app, err := f.service.Submit(context.Background(), validParams())
	require.NoError(t, err)
	assert.Equal(t, approveVerdict, app.CreditVerdict)
	require.Equal(t, 1, f.gateway.calls(llm.StageScoring))
	assert.Equal(t, int32(2), finishedAtScoring.Load(), "scoring requested before the slow summary returned")

	scoring := f.gateway.prompts[llm.StageScoring][0]
	assert.Contains(t, scoring, "AisSummary#1")
}

func TestSubmitSummaryFailureSkipsScoring(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)
	f.gateway.errs[llm.StageBankSummary] = apperrors.New(apperrors.KindModelUnavailable, "503 from provider")

	_, err := f.service.Submit(context.Background(), validParams())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindModelUnavailable))

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, llm.StageBankSummary, appErr.Stage)
	assert.Zero(t, f.gateway.calls(llm.StageScoring))
	assert.Zero(t, f.repo.Count())
}

func TestSubmitUnclassifiedModelErrorIsUnavailable(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)
	f.gateway.errs[llm.StageScoring] = errors.New("connection reset")

	_, err := f.service.Submit(context.Background(), validParams())
	assert.True(t, apperrors.IsKind(err, apperrors.KindModelUnavailable))
	assert.Zero(t, f.repo.Count())
}

func TestSubmitExtractionFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *loan.SubmitParams)
		stage  string
	}{
		{"empty bank statement", func(p *loan.SubmitParams) { p.BankStatement = nil }, "bank_statement"},
		{"empty ais", func(p *loan.SubmitParams) { p.AIS = []byte{} }, "ais"},
		{"whitespace only", func(p *loan.SubmitParams) { p.AIS = []byte("  \n\t ") }, "ais"},
		{"too short", func(p *loan.SubmitParams) { p.BankStatement = []byte("ok") }, "bank_statement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, stubBureau{record: equifax()}, true)
			params := validParams()
			tt.mutate(&params)

			_, err := f.service.Submit(context.Background(), params)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindExtractionFailed))
			var appErr *apperrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.stage, appErr.Stage)
			assert.Zero(t, f.gateway.total())
			assert.Zero(t, f.repo.Count())
		})
	}
}

func TestSubmitVerdictModes(t *testing.T) {
	t.Run("strict rejects prose", func(t *testing.T) {
		f := newFixture(t, stubBureau{record: equifax()}, true)
		f.gateway.answers[llm.StageScoring] = "I think they should get the loan."

		_, err := f.service.Submit(context.Background(), validParams())
		assert.True(t, apperrors.IsKind(err, apperrors.KindModelResponseMalformed))
		assert.Zero(t, f.repo.Count())
	})

	t.Run("lenient stores prose verbatim", func(t *testing.T) {
		f := newFixture(t, stubBureau{record: equifax()}, false)
		f.gateway.answers[llm.StageScoring] = "I think they should get the loan."

		app, err := f.service.Submit(context.Background(), validParams())
		require.NoError(t, err)
		assert.Equal(t, "I think they should get the loan.", app.CreditVerdict)
		assert.NotEmpty(t, app.VerdictError)
		assert.Equal(t, 1, f.repo.Count())
	})

	t.Run("fenced json is accepted", func(t *testing.T) {
		f := newFixture(t, stubBureau{record: equifax()}, true)
		fenced := "```json\n" + approveVerdict + "\n```"
		f.gateway.answers[llm.StageScoring] = fenced

		app, err := f.service.Submit(context.Background(), validParams())
		require.NoError(t, err)
		assert.Equal(t, fenced, app.CreditVerdict)
	})

	t.Run("strict accepts json with odd shapes", func(t *testing.T) {
		f := newFixture(t, stubBureau{record: equifax()}, true)
		odd := `{"Final Lending Decision":"Decline","Identified Risks":["two defaults"]}`
		f.gateway.answers[llm.StageScoring] = odd

		app, err := f.service.Submit(context.Background(), validParams())
		require.NoError(t, err)
		assert.Empty(t, app.VerdictError)
		parsed, ok := app.Verdict().(*verdict.Parsed)
		require.True(t, ok)
		assert.Error(t, parsed.ShapeErr)
		assert.Equal(t, verdict.DecisionDecline, parsed.Decision())
	})
}

func TestSubmitBureau(t *testing.T) {
	t.Run("missing record scores with empty bureau data", func(t *testing.T) {
		f := newFixture(t, stubBureau{err: bureau.ErrNotFound}, true)

		_, err := f.service.Submit(context.Background(), validParams())
		require.NoError(t, err)
		scoring := f.gateway.prompts[llm.StageScoring][0]
		assert.True(t, strings.Contains(scoring, "(excluding normalized credit score):\n\n{}\n"))
	})

	t.Run("outage fails before any model call", func(t *testing.T) {
		f := newFixture(t, stubBureau{err: errors.New("dial tcp: timeout")}, true)

		_, err := f.service.Submit(context.Background(), validParams())
		assert.True(t, apperrors.IsKind(err, apperrors.KindBureauUnavailable))
		assert.Zero(t, f.gateway.total())
		assert.Zero(t, f.repo.Count())
	})
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *loan.SubmitParams)
	}{
		{"unknown loan type", func(p *loan.SubmitParams) { p.LoanType = "yacht" }},
		{"missing org", func(p *loan.SubmitParams) { p.OrgID = "" }},
		{"missing pan", func(p *loan.SubmitParams) { p.ApplicantID = " " }},
		{"missing last name", func(p *loan.SubmitParams) { p.LastName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, stubBureau{record: equifax()}, true)
			params := validParams()
			tt.mutate(&params)

			_, err := f.service.Submit(context.Background(), params)
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
			assert.Zero(t, f.gateway.total())
		})
	}
}

type failingRepo struct {
	*appRepo.InMemoryRepository
}

func (failingRepo) Create(context.Context, *loan.Application) error {
	return errors.New("disk full")
}

func TestSubmitPersistenceFailure(t *testing.T) {
	gw := newStageGateway()
	svc := loan.NewService(
		failingRepo{appRepo.NewInMemoryRepository()},
		loan.NewPipeline(gw, llm.Options{}),
		passthroughExtractor{},
		stubBureau{record: equifax()},
		loan.ServiceConfig{ExtractionTimeout: time.Second, BureauTimeout: time.Second, StoreTimeout: time.Second, MinExtractedChars: 1, StrictVerdict: true},
		zerolog.Nop(),
	)

	_, err := svc.Submit(context.Background(), validParams())
	assert.True(t, apperrors.IsKind(err, apperrors.KindPersistenceFailed))
}

func TestSubmitPersistsAfterCallerCancels(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)
	ctx, cancel := context.WithCancel(context.Background())
	f.gateway.hook = func(stage string) {
		if stage == llm.StageScoring {
			cancel()
		}
	}

	app, err := f.service.Submit(ctx, validParams())
	require.NoError(t, err)
	_, err = f.repo.FindByID(context.Background(), app.ID)
	assert.NoError(t, err)
}

func TestGetUnknown(t *testing.T) {
	f := newFixture(t, stubBureau{}, true)
	_, err := f.service.Get(context.Background(), "missing")
	assert.True(t, apperrors.IsKind(err, apperrors.KindRequestNotFound))
}

func TestListByOrg(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)
	_, err := f.service.Submit(context.Background(), validParams())
	require.NoError(t, err)

	other := validParams()
	other.OrgID = "org-2"
	_, err = f.service.Submit(context.Background(), other)
	require.NoError(t, err)

	list, err := f.service.ListByOrg(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, verdict.DecisionApprove, list[0].Decision)
	assert.Equal(t, "ABCDE1234F", list[0].ApplicantID)

	_, err = f.service.ListByOrg(context.Background(), "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t, stubBureau{record: equifax()}, true)
	app, err := f.service.Submit(context.Background(), validParams())
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), app.ID, "archived")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = f.service.UpdateStatus(context.Background(), "missing", "approved")
	assert.True(t, apperrors.IsKind(err, apperrors.KindRequestNotFound))

	updated, err := f.service.UpdateStatus(context.Background(), app.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, status.StatusApproved, updated.Status)

	_, err = f.service.UpdateStatus(context.Background(), app.ID, "declined")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}
