package bureau

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	domain "github.com/creditx/creditx-server/internal/domain/bureau"
)

// HTTPProvider fetches bureau records from GET {base}/bureaus/{name}/records/{applicantID}.
type HTTPProvider struct {
	client *resty.Client
	name   string
}

// NewHTTPProvider creates a resty-backed bureau client.
func NewHTTPProvider(baseURL, apiKey, name string, timeout time.Duration) *HTTPProvider {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		client.SetHeader("X-API-Key", apiKey)
	}
	return &HTTPProvider{
		client: client,
		name:   strings.ToLower(strings.TrimSpace(name)),
	}
}

// Lookup returns {bureau: record}; a 404 maps to ErrNotFound.
func (p *HTTPProvider) Lookup(ctx context.Context, applicantID string) (domain.Record, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"bureau":    p.name,
			"applicant": strings.ToUpper(strings.TrimSpace(applicantID)),
		}).
		Get("/bureaus/{bureau}/records/{applicant}")
	if err != nil {
		return nil, fmt.Errorf("bureau request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bureau responded %d", resp.StatusCode())
	}

	var record map[string]any
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return nil, fmt.Errorf("decode bureau record: %w", err)
	}
	return domain.Record{p.name: record}, nil
}

var _ domain.Provider = (*HTTPProvider)(nil)
