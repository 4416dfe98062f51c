package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Stage     string `json:"stage,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Stage != "" {
		msg += " (stage " + e.Stage + ")"
	}
	if e.Retryable {
		msg += " [retryable]"
	}
	return msg
}

type application struct {
	RequestID       string         `json:"request_id"`
	PanID           string         `json:"pan_id"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	LoanType        string         `json:"loan_type"`
	BankSummary     string         `json:"bank_summary"`
	AISSummary      string         `json:"ais_summary"`
	CreditVerdict   string         `json:"credit_verdict"`
	Verdict         map[string]any `json:"verdict,omitempty"`
	Decision        string         `json:"decision,omitempty"`
	VerdictError    string         `json:"verdict_error,omitempty"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

type applicationList struct {
	Data []application `json:"data"`
}

type message struct {
	Message string `json:"message"`
}

type turn struct {
	UserQuery  string    `json:"user"`
	AIResponse string    `json:"ai"`
	CreatedAt  time.Time `json:"created_at"`
}

type conversationLog struct {
	RequestID string `json:"request_id"`
	Turns     []turn `json:"turns"`
}

type submission struct {
	UserID          string
	OrgID           string
	PanID           string
	FirstName       string
	MiddleName      string
	LastName        string
	LoanType        string
	LoanDescription string
	BankStatement   string
	AIS             string
}

type expenseReport struct {
	Summary             string             `json:"summary"`
	DebitShareByRange   map[string]float64 `json:"debit_share_by_range"`
	UnusualTransactions []string           `json:"unusual_transactions"`
	Suggestions         []string           `json:"suggestions"`
	Transactions        []struct {
		Date   string  `json:"date"`
		Amount float64 `json:"amount"`
		Type   string  `json:"transaction_type"`
	} `json:"transactions"`
}

type eligibility struct {
	URL      string `json:"url"`
	Criteria string `json:"eligibility_criteria"`
}

// apiClient wraps the v1 HTTP API.
type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL, apiKey, token string, timeout time.Duration) *apiClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetError(&apiError{})
	if apiKey != "" {
		c.SetHeader("X-API-Key", apiKey)
	}
	if token != "" {
		c.SetAuthToken(token)
	}
	return &apiClient{http: c}
}

func (c *apiClient) Submit(s submission) (*application, []byte, error) {
	out := &application{}
	resp, err := c.http.R().
		SetFormData(map[string]string{
			"user_id":          s.UserID,
			"org_id":           s.OrgID,
			"pan_id":           s.PanID,
			"first_name":       s.FirstName,
			"middle_name":      s.MiddleName,
			"last_name":        s.LastName,
			"loan_type":        s.LoanType,
			"loan_description": s.LoanDescription,
		}).
		SetFile("bank_statement", s.BankStatement).
		SetFile("ais", s.AIS).
		SetResult(out).
		Post("/v1/applications")
	return out, body(resp), check(resp, err)
}

func (c *apiClient) Get(id string) (*application, []byte, error) {
	out := &application{}
	resp, err := c.http.R().
		SetPathParam("id", id).
		SetResult(out).
		Get("/v1/applications/{id}")
	return out, body(resp), check(resp, err)
}

func (c *apiClient) List(orgID string) (*applicationList, []byte, error) {
	out := &applicationList{}
	resp, err := c.http.R().
		SetQueryParam("org_id", orgID).
		SetResult(out).
		Get("/v1/applications")
	return out, body(resp), check(resp, err)
}

func (c *apiClient) Ask(id, query string) (*message, []byte, error) {
	out := &message{}
	resp, err := c.http.R().
		SetPathParam("id", id).
		SetBody(map[string]string{"query": query}).
		SetResult(out).
		Post("/v1/applications/{id}/chat")
	return out, body(resp), check(resp, err)
}

func (c *apiClient) History(id string) (*conversationLog, []byte, error) {
	out := &conversationLog{}
	resp, err := c.http.R().
		SetPathParam("id", id).
		SetResult(out).
		Get("/v1/applications/{id}/conversation")
	return out, body(resp), check(resp, err)
}

func (c *apiClient) UpdateStatus(id, status string) (*application, []byte, error) {
	out := &application{}
	resp, err := c.http.R().
		SetPathParam("id", id).
		SetBody(map[string]string{"status": status}).
		SetResult(out).
		Patch("/v1/applications/{id}/status")
	return out, body(resp), check(resp, err)
}

func (c *apiClient) AnalyzeExpenses(statement string, additional []string) (*expenseReport, []byte, error) {
	out := &expenseReport{}
	req := c.http.R().SetFile("statement_file", statement)
	// SetFile keys by field name, so repeated additional_files parts go through readers.
	for _, path := range additional {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		req.SetFileReader("additional_files", filepath.Base(path), bytes.NewReader(data))
	}
	resp, err := req.SetResult(out).Post("/v1/expense-analysis")
	return out, body(resp), check(resp, err)
}

func (c *apiClient) Eligibility(pageURL string) (*eligibility, []byte, error) {
	out := &eligibility{}
	resp, err := c.http.R().
		SetBody(map[string]string{"url": pageURL}).
		SetResult(out).
		Post("/v1/welfare/eligibility")
	return out, body(resp), check(resp, err)
}

func body(resp *resty.Response) []byte {
	if resp == nil {
		return nil
	}
	return resp.Body()
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Code != "" {
		return apiErr
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
}
