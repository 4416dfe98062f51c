package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/domain/conversation"
	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/infrastructure/observability"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/requests"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/responses"
	"github.com/creditx/creditx-server/internal/metrics"
)

// ChatService answers follow-up questions about an application.
type ChatService interface {
	Ask(ctx context.Context, requestID, query string) (string, error)
	History(ctx context.Context, requestID string) ([]conversation.Turn, error)
}

// ChatHandler exposes the per-application conversation.
type ChatHandler struct {
	service ChatService
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Ask handles POST /v1/applications/:request_id/chat
// @Summary Ask a follow-up question about an application
// @Tags Chat
// @Accept json
// @Produce json
// @Param request_id path string true "Application request id"
// @Param request body requests.ChatRequest true "Question"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 503 {object} responses.ErrorResponse
// @Router /v1/applications/{request_id}/chat [post]
func (h *ChatHandler) Ask(c *gin.Context) {
	var req requests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, apperrors.KindInvalidInput, "query is required")
		return
	}

	requestID := c.Param("request_id")
	ctx, span := observability.StartStageSpan(c.Request.Context(), "chat")
	defer span.End()
	observability.SetApplicationID(span, requestID)

	answer, err := h.service.Ask(ctx, requestID, req.Query)
	if err != nil {
		kind := string(apperrors.KindOf(err))
		metrics.ChatTurnsTotal.WithLabelValues(kind).Inc()
		observability.RecordError(span, err, kind)
		responses.HandleError(c, err)
		return
	}

	metrics.ChatTurnsTotal.WithLabelValues("answered").Inc()
	c.JSON(http.StatusOK, responses.MessageResponse{Message: answer})
}

// History handles GET /v1/applications/:request_id/conversation
// @Summary Read the conversation of an application
// @Tags Chat
// @Produce json
// @Param request_id path string true "Application request id"
// @Success 200 {object} responses.ConversationResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/applications/{request_id}/conversation [get]
func (h *ChatHandler) History(c *gin.Context) {
	requestID := c.Param("request_id")
	turns, err := h.service.History(c.Request.Context(), requestID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.FromTurns(requestID, turns))
}
