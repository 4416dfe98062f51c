package profile

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/prompt"
)

// FinancialProfile is the self-reported planning form of an applicant.
type FinancialProfile struct {
	ApplicantID        string    `json:"pan_card_number"`
	RetirementPlanning string    `json:"retirement_planning"`
	Insurance          string    `json:"insurance"`
	BankAccounts       string    `json:"bank_accounts"`
	MonthlySavings     string    `json:"monthly_savings"`
	MonthlyEMIs        string    `json:"monthly_emis"`
	InvestmentChannels string    `json:"investment_channels"`
	ExistingLoans      string    `json:"existing_loans"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Repository stores one profile per applicant.
type Repository interface {
	Upsert(ctx context.Context, p *FinancialProfile) error
	FindByApplicantID(ctx context.Context, applicantID string) (*FinancialProfile, error)
}

// Service stores profiles and answers planning questions over them.
type Service struct {
	repo    Repository
	gateway llm.Gateway
	opts    llm.Options
	log     zerolog.Logger
}

// NewService wires dependencies.
func NewService(repo Repository, gateway llm.Gateway, opts llm.Options, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		gateway: gateway,
		opts:    opts,
		log:     log.With().Str("component", "profile-service").Logger(),
	}
}

// Save creates or replaces the applicant's profile.
func (s *Service) Save(ctx context.Context, p *FinancialProfile) error {
	if strings.TrimSpace(p.ApplicantID) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "pan_card_number is required")
	}
	p.UpdatedAt = time.Now().UTC()
	return s.repo.Upsert(ctx, p)
}

// Get returns the applicant's profile.
func (s *Service) Get(ctx context.Context, applicantID string) (*FinancialProfile, error) {
	return s.repo.FindByApplicantID(ctx, applicantID)
}

// Advise answers message in plain language using the stored profile as context.
func (s *Service) Advise(ctx context.Context, applicantID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperrors.New(apperrors.KindInvalidInput, "message is required")
	}
	p, err := s.repo.FindByApplicantID(ctx, applicantID)
	if err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindInternal, "render profile")
	}

	answer, err := s.gateway.Complete(llm.ContextWithStage(ctx, llm.StageAdvice), prompt.Advisor(string(body), message), s.opts)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindModelUnavailable, "model call failed").WithStage(llm.StageAdvice)
	}
	return answer, nil
}
