package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/infrastructure/observability"
	"github.com/creditx/creditx-server/internal/infrastructure/telemetry"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/requests"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/responses"
	"github.com/creditx/creditx-server/internal/metrics"
)

// ApplicationService is the loan workflow the handler exposes.
type ApplicationService interface {
	Submit(ctx context.Context, params loan.SubmitParams) (*loan.Application, error)
	Get(ctx context.Context, id string) (*loan.Application, error)
	ListByOrg(ctx context.Context, orgID string) ([]loan.Summary, error)
	UpdateStatus(ctx context.Context, id, status string) (*loan.Application, error)
}

// ApplicationHandler exposes HTTP entrypoints for credit applications.
type ApplicationHandler struct {
	service   ApplicationService
	maxUpload int64
	sanitizer *telemetry.Sanitizer
	log       zerolog.Logger
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(service ApplicationService, maxUpload int64, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		maxUpload: maxUpload,
		sanitizer: sanitizer,
		log:       log.With().Str("handler", "application").Logger(),
	}
}

// Submit handles POST /v1/applications
// @Summary Submit a credit application
// @Description Extracts both documents, summarises them, scores the applicant and stores the result
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Param first_name formData string true "First name"
// @Param middle_name formData string false "Middle name"
// @Param last_name formData string true "Last name"
// @Param loan_type formData string true "home, personal, car, education or business"
// @Param pan_id formData string true "Applicant PAN"
// @Param loan_description formData string false "Purpose of the loan"
// @Param org_id formData string true "Lending organisation"
// @Param user_id formData string true "Submitting user"
// @Param bank_statement formData file true "Bank statement (PDF or text)"
// @Param ais formData file true "Annual Information Statement (PDF or text)"
// @Success 201 {object} responses.ApplicationResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse
// @Router /v1/applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	bank, err := readUpload(c, "bank_statement")
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	ais, err := readUpload(c, "ais")
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	params := loan.SubmitParams{
		UserID:          c.PostForm("user_id"),
		OrgID:           c.PostForm("org_id"),
		ApplicantID:     c.PostForm("pan_id"),
		FirstName:       c.PostForm("first_name"),
		MiddleName:      c.PostForm("middle_name"),
		LastName:        c.PostForm("last_name"),
		LoanType:        c.PostForm("loan_type"),
		LoanDescription: c.PostForm("loan_description"),
		BankStatement:   bank,
		AIS:             ais,
	}

	ctx, span := observability.StartStageSpan(c.Request.Context(), "submit")
	defer span.End()

	app, err := h.service.Submit(ctx, params)
	if err != nil {
		kind := string(apperrors.KindOf(err))
		metrics.SubmissionsTotal.WithLabelValues(kind).Inc()
		observability.RecordError(span, err, kind)
		h.log.Warn().
			Err(err).
			Str("applicant", h.sanitizer.ID(params.ApplicantID)).
			Msg("submission failed")
		responses.HandleError(c, err)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues("scored").Inc()
	observability.SetApplicationID(span, app.ID)
	h.log.Info().
		Str("request_id", app.ID).
		Str("applicant", h.sanitizer.ID(app.ApplicantID)).
		Msg("application scored")
	c.JSON(http.StatusCreated, responses.FromApplication(app))
}

// readUpload returns the bytes of a multipart file field.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if tooLarge := uploadTooLarge(err); tooLarge != nil {
			return nil, tooLarge
		}
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "%s file is required", field)
	}
	return readFileHeader(header, field)
}

// readOptionalUploads returns the bytes of every file sent under field, if any.
func readOptionalUploads(c *gin.Context, field string) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if tooLarge := uploadTooLarge(err); tooLarge != nil {
			return nil, tooLarge
		}
		return nil, apperrors.Wrap(err, apperrors.KindInvalidInput, "multipart form expected")
	}
	headers := form.File[field]
	out := make([][]byte, 0, len(headers))
	for _, header := range headers {
		data, err := readFileHeader(header, field)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func uploadTooLarge(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.Newf(apperrors.KindInvalidInput, "upload exceeds %d bytes", tooLarge.Limit)
	}
	return nil
}

func readFileHeader(header *multipart.FileHeader, field string) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInvalidInput, "open "+field)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInvalidInput, "read "+field)
	}
	return data, nil
}

// Get handles GET /v1/applications/:request_id
// @Summary Get an application
// @Tags Applications
// @Produce json
// @Param request_id path string true "Application request id"
// @Success 200 {object} responses.ApplicationResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/applications/{request_id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.service.Get(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.FromApplication(app))
}

// List handles GET /v1/applications?org_id=
// @Summary List an organisation's applications
// @Tags Applications
// @Produce json
// @Param org_id query string true "Organisation id"
// @Success 200 {object} responses.ApplicationListResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	items, err := h.service.ListByOrg(c.Request.Context(), c.Query("org_id"))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.FromSummaries(items))
}

// UpdateStatus handles PATCH /v1/applications/:request_id/status
// @Summary Approve or decline a pending application
// @Tags Applications
// @Accept json
// @Produce json
// @Param request_id path string true "Application request id"
// @Param request body requests.UpdateStatusRequest true "Target status"
// @Success 200 {object} responses.ApplicationResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Router /v1/applications/{request_id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req requests.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, apperrors.KindInvalidInput, "status is required")
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), c.Param("request_id"), req.Status)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.FromApplication(app))
}
