package responses

import (
	"github.com/creditx/creditx-server/internal/domain/expense"
	"github.com/creditx/creditx-server/internal/domain/welfare"
)

// TransactionResponse is one dated statement line.
type TransactionResponse struct {
	Date            string  `json:"date"`
	Amount          float64 `json:"amount"`
	TransactionType string  `json:"transaction_type"`
	AmountRange     string  `json:"amount_range"`
	Description     string  `json:"description"`
}

// ExpenseAnalysisResponse is the outcome of a statement analysis.
type ExpenseAnalysisResponse struct {
	Message               string                `json:"message"`
	Summary               string                `json:"summary"`
	Transactions          []TransactionResponse `json:"transactions"`
	SpendingByAmountRange map[string]float64    `json:"spending_by_amount_range"`
	SpendingByDay         map[string]float64    `json:"spending_by_day"`
	SpendingByWeek        map[string]float64    `json:"spending_by_week"`
	// DebitShareByRange is computed from the parsed transactions rather than by the model.
	DebitShareByRange   map[string]float64 `json:"debit_share_by_range"`
	UnusualTransactions []string           `json:"unusual_transactions"`
	Suggestions         []string           `json:"suggestions"`
}

// FromExpenseReport maps an expense report to its response.
func FromExpenseReport(r *expense.Report) ExpenseAnalysisResponse {
	out := ExpenseAnalysisResponse{
		Message:               "Analysis complete",
		Summary:               r.Insights.Summary,
		Transactions:          make([]TransactionResponse, 0, len(r.Transactions)),
		SpendingByAmountRange: rangeMap(r.Insights.SpendingBreakdown.ByRange()),
		SpendingByDay:         percentMap(r.Insights.SpendingBreakdown.DatePattern.Day),
		SpendingByWeek:        percentMap(r.Insights.SpendingBreakdown.DatePattern.Week),
		DebitShareByRange:     rangeMap(r.DebitShare),
		UnusualTransactions:   nonNil(r.Insights.UnusualTransactions),
		Suggestions:           nonNil(r.Insights.Suggestions),
	}
	for _, t := range r.Transactions {
		out.Transactions = append(out.Transactions, TransactionResponse{
			Date:            t.Date,
			Amount:          t.Amount,
			TransactionType: t.Type(),
			AmountRange:     t.Range.Label(),
			Description:     t.Description,
		})
	}
	return out
}

func rangeMap(in map[expense.Range]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}

func percentMap(in map[string]expense.Percent) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = float64(v)
	}
	return out
}

func nonNil(in expense.Notes) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// EligibilityResponse carries the criteria read off a welfare scheme page.
type EligibilityResponse struct {
	URL                 string `json:"url"`
	EligibilityCriteria string `json:"eligibility_criteria"`
}

// FromEligibility maps the domain result to its response.
func FromEligibility(e *welfare.Eligibility) EligibilityResponse {
	return EligibilityResponse{URL: e.URL, EligibilityCriteria: e.Criteria}
}
