package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/expense"
	"github.com/creditx/creditx-server/internal/domain/welfare"
	"github.com/creditx/creditx-server/internal/infrastructure/observability"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/requests"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/responses"
	"github.com/creditx/creditx-server/internal/metrics"
)

// ExpenseService analyses a bank statement.
type ExpenseService interface {
	Analyze(ctx context.Context, params expense.AnalyzeParams) (*expense.Report, error)
}

// WelfareService reads eligibility criteria off a scheme page.
type WelfareService interface {
	Extract(ctx context.Context, pageURL string) (*welfare.Eligibility, error)
}

// AnalysisHandler exposes the stateless expense and welfare tools.
type AnalysisHandler struct {
	expenses  ExpenseService
	welfare   WelfareService
	maxUpload int64
	log       zerolog.Logger
}

// NewAnalysisHandler constructs the handler.
func NewAnalysisHandler(expenses ExpenseService, schemes WelfareService, maxUpload int64, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		expenses:  expenses,
		welfare:   schemes,
		maxUpload: maxUpload,
		log:       log.With().Str("handler", "analysis").Logger(),
	}
}

// AnalyzeStatement handles POST /v1/expense-analysis
// @Summary Analyse spending in a bank statement
// @Description Extracts the statement, lists its dated transactions and asks the model for a spending breakdown. Nothing is stored.
// @Tags Tools
// @Accept multipart/form-data
// @Produce json
// @Param statement_file formData file true "Bank statement (PDF or text)"
// @Param additional_files formData file false "Supporting documents, repeatable"
// @Success 200 {object} responses.ExpenseAnalysisResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse
// @Router /v1/expense-analysis [post]
func (h *AnalysisHandler) AnalyzeStatement(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	statement, err := readUpload(c, "statement_file")
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	additional, err := readOptionalUploads(c, "additional_files")
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	ctx, span := observability.StartStageSpan(c.Request.Context(), "expense_analysis")
	defer span.End()

	report, err := h.expenses.Analyze(ctx, expense.AnalyzeParams{Statement: statement, Additional: additional})
	if err != nil {
		kind := string(apperrors.KindOf(err))
		metrics.AnalysesTotal.WithLabelValues("expense", kind).Inc()
		observability.RecordError(span, err, kind)
		h.log.Warn().Err(err).Msg("expense analysis failed")
		responses.HandleError(c, err)
		return
	}

	metrics.AnalysesTotal.WithLabelValues("expense", "completed").Inc()
	c.JSON(http.StatusOK, responses.FromExpenseReport(report))
}

// ExtractEligibility handles POST /v1/welfare/eligibility and GET /v1/welfare/eligibility?url=
// @Summary Extract the eligibility criteria of a welfare scheme
// @Description Fetches the scheme page and asks the model for its eligibility criteria. Nothing is stored.
// @Tags Tools
// @Accept json
// @Produce json
// @Param request body requests.EligibilityRequest false "Scheme page (POST)"
// @Param url query string false "Scheme page (GET)"
// @Success 200 {object} responses.EligibilityResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse
// @Router /v1/welfare/eligibility [post]
// @Router /v1/welfare/eligibility [get]
func (h *AnalysisHandler) ExtractEligibility(c *gin.Context) {
	var req requests.EligibilityRequest
	bind := c.ShouldBindJSON
	if c.Request.Method == http.MethodGet {
		bind = c.ShouldBindQuery
	}
	if err := bind(&req); err != nil {
		responses.HandleNewError(c, apperrors.KindInvalidInput, "url is required")
		return
	}

	ctx, span := observability.StartStageSpan(c.Request.Context(), "welfare_eligibility")
	defer span.End()

	result, err := h.welfare.Extract(ctx, req.URL)
	if err != nil {
		kind := string(apperrors.KindOf(err))
		metrics.AnalysesTotal.WithLabelValues("welfare", kind).Inc()
		observability.RecordError(span, err, kind)
		h.log.Warn().Err(err).Msg("eligibility extraction failed")
		responses.HandleError(c, err)
		return
	}

	metrics.AnalysesTotal.WithLabelValues("welfare", "completed").Inc()
	c.JSON(http.StatusOK, responses.FromEligibility(result))
}
