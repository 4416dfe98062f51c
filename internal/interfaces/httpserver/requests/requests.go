package requests

import "github.com/creditx/creditx-server/internal/domain/profile"

// ChatRequest asks a follow-up question about an application.
type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

// UpdateStatusRequest records a lender decision.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdviceRequest asks the financial assistant a question.
type AdviceRequest struct {
	Message string `json:"message" binding:"required"`
}

// FinancialProfileRequest is the planning form as submitted.
type FinancialProfileRequest struct {
	PanCardNumber      string `json:"pan_card_number" binding:"required"`
	RetirementPlanning string `json:"retirement_planning"`
	Insurance          string `json:"insurance"`
	BankAccounts       string `json:"bank_accounts"`
	MonthlySavings     string `json:"monthly_savings"`
	MonthlyEMIs        string `json:"monthly_emis"`
	InvestmentChannels string `json:"investment_channels"`
	ExistingLoans      string `json:"existing_loans"`
}

// ToDomain maps the form to a profile.
func (r FinancialProfileRequest) ToDomain() *profile.FinancialProfile {
	return &profile.FinancialProfile{
		ApplicantID:        r.PanCardNumber,
		RetirementPlanning: r.RetirementPlanning,
		Insurance:          r.Insurance,
		BankAccounts:       r.BankAccounts,
		MonthlySavings:     r.MonthlySavings,
		MonthlyEMIs:        r.MonthlyEMIs,
		InvestmentChannels: r.InvestmentChannels,
		ExistingLoans:      r.ExistingLoans,
	}
}

// EligibilityRequest names the welfare scheme page to read.
type EligibilityRequest struct {
	URL string `json:"url" form:"url" binding:"required"`
}
