package responses

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creditx/creditx-server/internal/domain/conversation"
	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/verdict"
	"github.com/creditx/creditx-server/internal/interfaces/httpserver/middlewares"
)

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Stage     string `json:"stage,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindExtractionFailed:
		return http.StatusUnprocessableEntity
	case apperrors.KindModelUnavailable, apperrors.KindBureauUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.KindModelResponseMalformed:
		return http.StatusBadGateway
	case apperrors.KindRequestNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError aborts the request with the classified error.
func HandleError(c *gin.Context, err error) {
	body := ErrorResponse{
		Code:      string(apperrors.KindInternal),
		Message:   "internal error",
		RequestID: middlewares.RequestIDFromContext(c),
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		body.Code = string(appErr.Kind)
		body.Message = appErr.Message
		body.Stage = appErr.Stage
		body.Retryable = appErr.Retryable
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(apperrors.Kind(body.Code)), body)
}

// HandleNewError aborts the request with a fresh error of kind.
func HandleNewError(c *gin.Context, kind apperrors.Kind, message string) {
	HandleError(c, apperrors.New(kind, message))
}

// ApplicationResponse is the full view of a scored application.
type ApplicationResponse struct {
	RequestID       string         `json:"request_id"`
	UserID          string         `json:"user_id"`
	OrgID           string         `json:"org_id"`
	PanID           string         `json:"pan_id"`
	FirstName       string         `json:"first_name"`
	MiddleName      string         `json:"middle_name,omitempty"`
	LastName        string         `json:"last_name"`
	LoanType        string         `json:"loan_type"`
	LoanDescription string         `json:"loan_description"`
	BankSummary     string         `json:"bank_summary"`
	AISSummary      string         `json:"ais_summary"`
	CreditVerdict   string         `json:"credit_verdict"`
	Verdict         map[string]any `json:"verdict,omitempty"`
	Decision        string         `json:"decision,omitempty"`
	VerdictError    string         `json:"verdict_error,omitempty"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// FromApplication maps the domain application to its response.
func FromApplication(a *loan.Application) ApplicationResponse {
	out := ApplicationResponse{
		RequestID:       a.ID,
		UserID:          a.UserID,
		OrgID:           a.OrgID,
		PanID:           a.ApplicantID,
		FirstName:       a.FirstName,
		MiddleName:      a.MiddleName,
		LastName:        a.LastName,
		LoanType:        string(a.LoanType),
		LoanDescription: a.LoanDescription,
		BankSummary:     a.BankSummary,
		AISSummary:      a.AISSummary,
		CreditVerdict:   a.CreditVerdict,
		VerdictError:    a.VerdictError,
		Status:          a.Status.String(),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if p, ok := a.Verdict().(*verdict.Parsed); ok {
		out.Verdict = p.Fields
		out.Decision = string(p.Decision())
	}
	return out
}

// ApplicationSummaryResponse is one row of an organisation listing.
type ApplicationSummaryResponse struct {
	RequestID string    `json:"request_id"`
	PanID     string    `json:"pan_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	LoanType  string    `json:"loan_type"`
	Decision  string    `json:"decision,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplicationListResponse wraps a listing.
type ApplicationListResponse struct {
	Data []ApplicationSummaryResponse `json:"data"`
}

// FromSummaries maps listing views.
func FromSummaries(items []loan.Summary) ApplicationListResponse {
	out := ApplicationListResponse{Data: make([]ApplicationSummaryResponse, 0, len(items))}
	for _, s := range items {
		out.Data = append(out.Data, ApplicationSummaryResponse{
			RequestID: s.ID,
			PanID:     s.ApplicantID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			LoanType:  string(s.LoanType),
			Decision:  string(s.Decision),
			Status:    s.Status.String(),
			CreatedAt: s.CreatedAt,
		})
	}
	return out
}

// MessageResponse carries a model answer.
type MessageResponse struct {
	Message string `json:"message"`
}

// ConversationResponse is the ordered turn log of an application.
type ConversationResponse struct {
	RequestID string              `json:"request_id"`
	Turns     []conversation.Turn `json:"turns"`
}

// FromTurns maps a conversation log.
func FromTurns(requestID string, turns []conversation.Turn) ConversationResponse {
	if turns == nil {
		turns = []conversation.Turn{}
	}
	return ConversationResponse{RequestID: requestID, Turns: turns}
}
