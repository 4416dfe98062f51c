package llmprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
)

// WorkersAIClient implements llm.Gateway against Cloudflare Workers AI.
type WorkersAIClient struct {
	httpClient *resty.Client
	accountID  string
	model      string
}

type workersMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type workersRequest struct {
	Messages    []workersMessage `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float32          `json:"temperature,omitempty"`
}

type workersResponse struct {
	Result *struct {
		Response *string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
}

// NewWorkersAIClient creates a Resty-backed client.
func NewWorkersAIClient(baseURL, accountID, apiKey, model string, timeout time.Duration) *WorkersAIClient {
	return &WorkersAIClient{
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(apiKey).
			SetTimeout(timeout),
		accountID: accountID,
		model:     model,
	}
}

// Complete calls /accounts/{account}/ai/run/{model} and returns result.response.
func (c *WorkersAIClient) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(workersRequest{
			Messages:    []workersMessage{{Role: "user", Content: prompt}},
			MaxTokens:   opts.MaxTokens,
			Temperature: opts.Temperature,
		}).
		Post(fmt.Sprintf("/accounts/%s/ai/run/%s", c.accountID, model))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindModelUnavailable, "workers ai request failed")
	}
	if resp.IsError() {
		return "", apperrors.Newf(apperrors.KindModelUnavailable, "workers ai error: %d %s", resp.StatusCode(), resp.String())
	}

	var payload workersResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindModelResponseMalformed, "decode workers ai response")
	}
	if payload.Result == nil || payload.Result.Response == nil {
		return "", apperrors.New(apperrors.KindModelResponseMalformed, "workers ai response missing result.response")
	}
	if strings.TrimSpace(*payload.Result.Response) == "" {
		return "", apperrors.New(apperrors.KindModelResponseMalformed, "workers ai returned an empty response")
	}
	return *payload.Result.Response, nil
}

var _ llm.Gateway = (*WorkersAIClient)(nil)
