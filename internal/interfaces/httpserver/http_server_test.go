package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditx/creditx-server/internal/config"
	"github.com/creditx/creditx-server/internal/domain/bureau"
	"github.com/creditx/creditx-server/internal/domain/conversation"
	"github.com/creditx/creditx-server/internal/domain/expense"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/profile"
	"github.com/creditx/creditx-server/internal/domain/welfare"
	"github.com/creditx/creditx-server/internal/infrastructure/auth"
	"github.com/creditx/creditx-server/internal/infrastructure/extractor"
	"github.com/creditx/creditx-server/internal/infrastructure/locker"
	"github.com/creditx/creditx-server/internal/infrastructure/memorystore"
	appRepo "github.com/creditx/creditx-server/internal/infrastructure/repository/application"
	profileRepo "github.com/creditx/creditx-server/internal/infrastructure/repository/profile"
	"github.com/creditx/creditx-server/internal/infrastructure/telemetry"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/handlers"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/responses"
)

type noBureau struct{}

func (noBureau) Lookup(context.Context, string) (bureau.Record, error) {
	return nil, bureau.ErrNotFound
}

type pageFetcher struct{}

func (pageFetcher) Fetch(_ context.Context, pageURL string) (string, error) {
	if strings.Contains(pageURL, "missing") {
		return "", errors.New("HTTP 404")
	}
	return "Scheme for families with income below 3 lakh.", nil
}

type testEnv struct {
	handler http.Handler
	failing bool
}

func newEnv(t *testing.T, checks map[string]httpserver.ReadinessCheck) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{}
	gw := llm.GatewayFunc(func(ctx context.Context, prompt string, _ llm.Options) (string, error) {
		if env.failing {
			return "", errors.New("provider down")
		}
		switch llm.StageFromContext(ctx) {
		case llm.StageBankSummary:
			return "BankSummary#1", nil
		case llm.StageAISSummary:
			return "AisSummary#1", nil
		case llm.StageScoring:
			return `{"Final Lending Decision":"Approve","Justification for the Decision":"steady income"}`, nil
		case llm.StageAdvice:
			return "Keep saving.", nil
		case llm.StageExpense:
			return `{"summary":"Salary funds a few large debits.","spending_breakdown":{"small":5,"medium":"15%","large":80,"very_large":0,` +
				`"date_pattern":{"week":{"Week 1":100}}},"unusual_transactions":["02/04 rent 9000"],"suggestions":["Keep an emergency fund."]}`, nil
		case llm.StageWelfare:
			return "Family income below 3 lakh.", nil
		default:
			return "Because income is steady.", nil
		}
	})

	cfg := &config.Config{
		ServiceName:     "creditx-server",
		Environment:     "test",
		MaxUploadBytes:  1 << 20,
		ShutdownTimeout: time.Second,
	}
	log := zerolog.Nop()
	sanitizer := telemetry.NewSanitizer(telemetry.PIILevelHashed, "salt")

	apps := appRepo.NewInMemoryRepository()
	loanService := loan.NewService(
		apps,
		loan.NewPipeline(gw, llm.Options{}),
		extractor.New(log),
		noBureau{},
		loan.ServiceConfig{
			ExtractionTimeout: time.Second,
			BureauTimeout:     time.Second,
			StoreTimeout:      time.Second,
			MinExtractedChars: 4,
			StrictVerdict:     true,
		},
		log,
	)
	chatService := conversation.NewService(apps, memorystore.NewInMemoryStore(), locker.NewLocal(), gw, llm.Options{}, 20, 5*time.Second, log)
	profileService := profile.NewService(profileRepo.NewInMemoryRepository(), gw, llm.Options{}, log)
	expenseService := expense.NewService(extractor.New(log), gw, llm.Options{}, expense.ServiceConfig{
		ExtractionTimeout: time.Second,
		MinStatementChars: 20,
	}, log)
	welfareService := welfare.NewService(pageFetcher{}, gw, llm.Options{}, welfare.ServiceConfig{
		FetchTimeout: time.Second,
		MinPageChars: 4,
	}, log)

	validator, err := auth.NewValidator(context.Background(), cfg, log)
	require.NoError(t, err)

	provider := handlers.NewProvider(loanService, chatService, profileService, expenseService, welfareService, cfg.MaxUploadBytes, sanitizer, log)
	env.handler = httpserver.New(cfg, log, provider, validator, checks).Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) submit(t *testing.T, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		part, err := mw.CreateFormFile(name, name+".txt")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/applications", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func formFields() map[string]string {
	return map[string]string{
		"first_name":       "Vikas",
		"last_name":        "Mundada",
		"loan_type":        "home",
		"pan_id":           "ABCDE1234F",
		"loan_description": "flat",
		"org_id":           "org-1",
		"user_id":          "user-1",
	}
}

func documents() map[string]string {
	return map[string]string{
		"bank_statement": "01/04 SALARY 85000 CR",
		"ais":            "TDS deducted 12000 FY24",
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestApplicationLifecycle(t *testing.T) {
	env := newEnv(t, nil)

	w := env.submit(t, formFields(), documents())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[responses.ApplicationResponse](t, w)
	assert.NotEmpty(t, created.RequestID)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "Approve", created.Decision)
	assert.Equal(t, "steady income", created.Verdict["Justification for the Decision"])

	w = env.do(t, http.MethodGet, "/v1/applications/"+created.RequestID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode[responses.ApplicationResponse](t, w)
	assert.Equal(t, created.CreditVerdict, fetched.CreditVerdict)
	assert.Equal(t, "BankSummary#1", fetched.BankSummary)

	w = env.do(t, http.MethodGet, "/v1/applications?org_id=org-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[responses.ApplicationListResponse](t, w)
	require.Len(t, list.Data, 1)
	assert.Equal(t, created.RequestID, list.Data[0].RequestID)

	w = env.do(t, http.MethodPost, "/v1/applications/"+created.RequestID+"/chat", map[string]string{"query": "Why?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Because income is steady.", decode[responses.MessageResponse](t, w).Message)

	w = env.do(t, http.MethodGet, "/v1/applications/"+created.RequestID+"/conversation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	convo := decode[responses.ConversationResponse](t, w)
	require.Len(t, convo.Turns, 1)
	assert.Equal(t, "Why?", convo.Turns[0].UserQuery)

	w = env.do(t, http.MethodPatch, "/v1/applications/"+created.RequestID+"/status", map[string]string{"status": "declined"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "declined", decode[responses.ApplicationResponse](t, w).Status)

	w = env.do(t, http.MethodPatch, "/v1/applications/"+created.RequestID+"/status", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode[responses.ErrorResponse](t, w).Code)
}

func TestErrorMapping(t *testing.T) {
	env := newEnv(t, nil)

	missingAIS := documents()
	delete(missingAIS, "ais")
	w := env.submit(t, formFields(), missingAIS)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	empty := documents()
	empty["bank_statement"] = ""
	w = env.submit(t, formFields(), empty)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[responses.ErrorResponse](t, w)
	assert.Equal(t, "EXTRACTION_FAILED", body.Code)
	assert.Equal(t, "bank_statement", body.Stage)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, body.RequestID, w.Header().Get("X-Request-Id"))

	badType := formFields()
	badType["loan_type"] = "yacht"
	w = env.submit(t, badType, documents())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/applications/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REQUEST_NOT_FOUND", decode[responses.ErrorResponse](t, w).Code)

	w = env.do(t, http.MethodPost, "/v1/applications/unknown/chat", map[string]string{"query": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/v1/applications/unknown/chat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/applications", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.failing = true
	w = env.submit(t, formFields(), documents())
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	failed := decode[responses.ErrorResponse](t, w)
	assert.Equal(t, "MODEL_UNAVAILABLE", failed.Code)
	assert.True(t, failed.Retryable)
}

func TestProfiles(t *testing.T) {
	env := newEnv(t, nil)

	w := env.do(t, http.MethodPost, "/v1/profiles", map[string]string{
		"pan_card_number": "ABCDE1234F",
		"monthly_savings": "10000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/profiles/ABCDE1234F", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10000", decode[profile.FinancialProfile](t, w).MonthlySavings)

	w = env.do(t, http.MethodPost, "/v1/profiles/ABCDE1234F/advice", map[string]string{"message": "Can I buy a car?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Keep saving.", decode[responses.MessageResponse](t, w).Message)

	w = env.do(t, http.MethodPost, "/v1/profiles", map[string]string{"monthly_savings": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/profiles/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicRoutes(t *testing.T) {
	env := newEnv(t, map[string]httpserver.ReadinessCheck{
		"database": func(context.Context) error { return nil },
	})

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/readyz", nil).Code)

	w := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "creditx_http_requests_total"))

	unready := newEnv(t, map[string]httpserver.ReadinessCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	w = unready.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func (e *testEnv) analyzeStatement(t *testing.T, files map[string][]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, contents := range files {
		for i, content := range contents {
			part, err := mw.CreateFormFile(field, fmt.Sprintf("%s-%d.txt", field, i))
			require.NoError(t, err)
			_, err = part.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/expense-analysis", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func TestExpenseAnalysis(t *testing.T) {
	env := newEnv(t, nil)

	w := env.analyzeStatement(t, map[string][]string{
		"statement_file":   {"01/04/2024 SALARY CREDIT 85,000.00\n02/04/2024 rent 9,000.00\n03/04/2024 tea 40.00\n"},
		"additional_files": {"salary slip", "form 16"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[responses.ExpenseAnalysisResponse](t, w)
	assert.Equal(t, "Analysis complete", body.Message)
	assert.Equal(t, "Salary funds a few large debits.", body.Summary)
	assert.InDelta(t, 15.0, body.SpendingByAmountRange["medium"], 0.001)
	assert.InDelta(t, 100.0, body.SpendingByWeek["Week 1"], 0.001)
	assert.Empty(t, body.SpendingByDay)
	assert.Equal(t, []string{"Keep an emergency fund."}, body.Suggestions)
	require.Len(t, body.Transactions, 3)
	assert.Equal(t, "credit", body.Transactions[0].TransactionType)
	assert.Equal(t, "Large (₹2,000-10,000)", body.Transactions[1].AmountRange)
	assert.InDelta(t, 9000/9040.0*100, body.DebitShareByRange["large"], 0.001)

	w = env.analyzeStatement(t, map[string][]string{"additional_files": {"only extras"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.analyzeStatement(t, map[string][]string{"statement_file": {"too short"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env.failing = true
	w = env.analyzeStatement(t, map[string][]string{"statement_file": {"01/04/2024 SALARY CREDIT 85,000.00 and more text"}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWelfareEligibility(t *testing.T) {
	env := newEnv(t, nil)

	w := env.do(t, http.MethodPost, "/v1/welfare/eligibility", map[string]string{"url": "https://pmay.gov.in/scheme"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[responses.EligibilityResponse](t, w)
	assert.Equal(t, "https://pmay.gov.in/scheme", body.URL)
	assert.Equal(t, "Family income below 3 lakh.", body.EligibilityCriteria)

	w = env.do(t, http.MethodGet, "/v1/welfare/eligibility?url=https%3A%2F%2Fpmay.gov.in%2Fscheme", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/v1/welfare/eligibility", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/welfare/eligibility", map[string]string{"url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/welfare/eligibility", map[string]string{"url": "https://pmay.gov.in/missing"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errBody := decode[responses.ErrorResponse](t, w)
	assert.Equal(t, "EXTRACTION_FAILED", errBody.Code)
}
