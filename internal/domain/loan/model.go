package loan

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/status"
	"github.com/creditx/creditx-server/internal/domain/verdict"
)

// Type is the requested loan product.
type Type string

const (
	TypeHome      Type = "home"
	TypePersonal  Type = "personal"
	TypeCar       Type = "car"
	TypeEducation Type = "education"
	TypeBusiness  Type = "business"
)

// ParseType validates a loan type.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypeHome, TypePersonal, TypeCar, TypeEducation, TypeBusiness:
		return t, nil
	}
	return "", apperrors.Newf(apperrors.KindInvalidInput, "unsupported loan type %q", raw)
}

// Application is one scored credit application request.
type Application struct {
	ID              string
	UserID          string
	OrgID           string
	ApplicantID     string
	FirstName       string
	MiddleName      string
	LastName        string
	LoanType        Type
	LoanDescription string
	BankSummary     string
	AISSummary      string
	// CreditVerdict is the model's verdict text, stored byte for byte.
	CreditVerdict string
	// VerdictError is set when the verdict did not parse and lenient mode stored it anyway.
	VerdictError string
	Status       status.Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Verdict parses the stored verdict text.
func (a *Application) Verdict() verdict.Verdict {
	return verdict.Parse(a.CreditVerdict)
}

// Summary is the listing view of an application.
type Summary struct {
	ID          string
	Status      status.Status
	LoanType    Type
	ApplicantID string
	FirstName   string
	LastName    string
	Decision    verdict.Decision
	CreatedAt   time.Time
}

// SummaryOf projects an application into its listing view.
func SummaryOf(a *Application) Summary {
	s := Summary{
		ID:          a.ID,
		Status:      a.Status,
		LoanType:    a.LoanType,
		ApplicantID: a.ApplicantID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		CreatedAt:   a.CreatedAt,
	}
	if p, ok := a.Verdict().(*verdict.Parsed); ok {
		s.Decision = p.Decision()
	}
	return s
}

// SubmitParams carries one submission: applicant details plus both raw documents.
type SubmitParams struct {
	UserID          string
	OrgID           string
	ApplicantID     string
	FirstName       string
	MiddleName      string
	LastName        string
	LoanType        string
	LoanDescription string
	BankStatement   []byte
	AIS             []byte
}

func (p SubmitParams) validate() (Type, error) {
	loanType, err := ParseType(p.LoanType)
	if err != nil {
		return "", err
	}
	required := map[string]string{
		"user_id":    p.UserID,
		"org_id":     p.OrgID,
		"pan_id":     p.ApplicantID,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
	}
	for _, name := range []string{"user_id", "org_id", "pan_id", "first_name", "last_name"} {
		if strings.TrimSpace(required[name]) == "" {
			return "", apperrors.Newf(apperrors.KindInvalidInput, "%s is required", name)
		}
	}
	return loanType, nil
}

// Repository persists applications. Implementations return REQUEST_NOT_FOUND for
// unknown ids and PERSISTENCE_FAILED for storage errors.
type Repository interface {
	Create(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id string) (*Application, error)
	ListByOrg(ctx context.Context, orgID string) ([]*Application, error)
	UpdateStatus(ctx context.Context, id string, from, to status.Status) (*Application, error)
}
