// Package verdict interprets the scoring model's lending verdict.
package verdict

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/creditx/creditx-server/internal/domain/llm"
)

// Decision is the lending decision named by the model.
type Decision string

const (
	DecisionApprove           Decision = "Approve"
	DecisionDecline           Decision = "Decline"
	DecisionApproveConditions Decision = "Approve with Conditions"
	DecisionUnknown           Decision = ""
)

// ErrNotJSON is returned when the verdict text holds no JSON object.
var ErrNotJSON = errors.New("verdict is not a JSON object")

// Verdict is either a Parsed or a Raw verdict.
type Verdict interface {
	// Text is the verdict exactly as the model returned it.
	Text() string
	isVerdict()
}

// Terms are the recommended lending terms.
type Terms struct {
	MaximumLoanAmount     string `json:"Maximum Loan Amount,omitempty"`
	InterestRateRange     string `json:"Interest Rate Range,omitempty"`
	Tenure                string `json:"Tenure,omitempty"`
	CollateralRequirement string `json:"Collateral Requirement,omitempty"`
}

// Parsed is a verdict that decoded as a JSON object.
type Parsed struct {
	ApplicantProfileSummary    string `json:"Applicant Profile Summary,omitempty"`
	CreditworthinessAssessment string `json:"Creditworthiness Assessment,omitempty"`
	IdentifiedRisks            string `json:"Identified Risks,omitempty"`
	FinalLendingDecision       string `json:"Final Lending Decision,omitempty"`
	Justification              string `json:"Justification for the Decision,omitempty"`
	RecommendedTerms           Terms  `json:"Recommended Lending Terms,omitempty"`
	RiskMitigation             string `json:"Risk Mitigation Suggestions,omitempty"`

	// Fields holds every key of the object, including ones not modelled above.
	Fields map[string]any `json:"-"`
	// ShapeErr is set when a modelled key held an unexpected type. The typed fields
	// that did match are still filled and Fields keeps the rest.
	ShapeErr error `json:"-"`
	raw      string
}

// Text implements Verdict.
func (p *Parsed) Text() string { return p.raw }
func (*Parsed) isVerdict() {}

// Decision normalises FinalLendingDecision.
func (p *Parsed) Decision() Decision {
	d := strings.ToLower(strings.TrimSpace(p.FinalLendingDecision))
	switch {
	case strings.HasPrefix(d, "approve with"):
		return DecisionApproveConditions
	case strings.HasPrefix(d, "approve"):
		return DecisionApprove
	case strings.HasPrefix(d, "decline"), strings.HasPrefix(d, "reject"):
		return DecisionDecline
	default:
		return DecisionUnknown
	}
}

// Raw is a verdict that could not be decoded. Err explains why.
type Raw struct {
	Body string
	Err  error
}

// Text implements Verdict.
func (r *Raw) Text() string { return r.Body }
func (*Raw) isVerdict() {}

// Parse decodes model output into a Parsed verdict, or a Raw one carrying the parse error.
// Surrounding prose and markdown code fences are tolerated; the original text is kept.
func Parse(text string) Verdict {
	body, ok := llm.ExtractJSONObject(text)
	if !ok {
		return &Raw{Body: text, Err: ErrNotJSON}
	}

	fields := map[string]any{}
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return &Raw{Body: text, Err: fmt.Errorf("decode verdict: %w", err)}
	}

	p := &Parsed{raw: text, Fields: fields}
	if err := json.Unmarshal([]byte(body), p); err != nil {
		p = &Parsed{raw: text, Fields: fields, ShapeErr: fmt.Errorf("verdict shape: %w", err)}
		p.fillStrings()
	}
	return p
}

// fillStrings copies the string-valued keys of Fields into the typed fields.
func (p *Parsed) fillStrings() {
	targets := map[string]*string{
		"Applicant Profile Summary":      &p.ApplicantProfileSummary,
		"Creditworthiness Assessment":    &p.CreditworthinessAssessment,
		"Identified Risks":               &p.IdentifiedRisks,
		"Final Lending Decision":         &p.FinalLendingDecision,
		"Justification for the Decision": &p.Justification,
		"Risk Mitigation Suggestions":    &p.RiskMitigation,
	}
	for key, dst := range targets {
		if v, ok := p.Fields[key].(string); ok {
			*dst = v
		}
	}
	if terms, ok := p.Fields["Recommended Lending Terms"].(map[string]any); ok {
		for key, dst := range map[string]*string{
			"Maximum Loan Amount":    &p.RecommendedTerms.MaximumLoanAmount,
			"Interest Rate Range":    &p.RecommendedTerms.InterestRateRange,
			"Tenure":                 &p.RecommendedTerms.Tenure,
			"Collateral Requirement": &p.RecommendedTerms.CollateralRequirement,
		} {
			if v, ok := terms[key].(string); ok {
				*dst = v
			}
		}
	}
}
