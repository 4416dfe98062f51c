package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/profile"
	"github.com/creditx/creditx-server/internal/infrastructure/telemetry"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/requests"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/responses"
)

// ProfileService stores planning forms and answers questions over them.
type ProfileService interface {
	Save(ctx context.Context, p *profile.FinancialProfile) error
	Get(ctx context.Context, applicantID string) (*profile.FinancialProfile, error)
	Advise(ctx context.Context, applicantID, message string) (string, error)
}

// ProfileHandler exposes the financial planning form and assistant.
type ProfileHandler struct {
	service   ProfileService
	sanitizer *telemetry.Sanitizer
	log       zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service ProfileService, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service:   service,
		sanitizer: sanitizer,
		log:       log.With().Str("handler", "profile").Logger(),
	}
}

// Save handles POST /v1/profiles
// @Summary Create or replace a financial planning profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param request body requests.FinancialProfileRequest true "Planning form"
// @Success 200 {object} profile.FinancialProfile
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/profiles [post]
func (h *ProfileHandler) Save(c *gin.Context) {
	var req requests.FinancialProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, apperrors.KindInvalidInput, "pan_card_number is required")
		return
	}

	p := req.ToDomain()
	if err := h.service.Save(c.Request.Context(), p); err != nil {
		responses.HandleError(c, err)
		return
	}
	h.log.Info().Str("applicant", h.sanitizer.ID(p.ApplicantID)).Msg("financial profile saved")
	c.JSON(http.StatusOK, p)
}

// Get handles GET /v1/profiles/:applicant_id
// @Summary Get a financial planning profile
// @Tags Profiles
// @Produce json
// @Param applicant_id path string true "Applicant PAN"
// @Success 200 {object} profile.FinancialProfile
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/profiles/{applicant_id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("applicant_id"))
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Advise handles POST /v1/profiles/:applicant_id/advice
// @Summary Ask the financial assistant about a stored profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param applicant_id path string true "Applicant PAN"
// @Param request body requests.AdviceRequest true "Question"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse
// @Router /v1/profiles/{applicant_id}/advice [post]
func (h *ProfileHandler) Advise(c *gin.Context) {
	var req requests.AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, apperrors.KindInvalidInput, "message is required")
		return
	}

	answer, err := h.service.Advise(c.Request.Context(), c.Param("applicant_id"), req.Message)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.MessageResponse{Message: answer})
}
