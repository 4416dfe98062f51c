// Package welfare extracts eligibility criteria from public welfare scheme pages.
package welfare

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/domain/document"
	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/prompt"
)

// Fetcher returns the visible text of a web page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Eligibility is the criteria the model read off a scheme page.
type Eligibility struct {
	URL      string
	Criteria string
}

// ServiceConfig bounds the page fetch and the prompt size.
type ServiceConfig struct {
	FetchTimeout time.Duration
	// MaxPageChars caps the page text sent to the model; 0 means no cap.
	MaxPageChars int
	MinPageChars int
}

// Service answers eligibility extraction requests. Nothing is persisted.
type Service struct {
	fetcher Fetcher
	gateway llm.Gateway
	opts    llm.Options
	cfg     ServiceConfig
	log     zerolog.Logger
}

// NewService wires dependencies.
func NewService(fetcher Fetcher, gateway llm.Gateway, opts llm.Options, cfg ServiceConfig, log zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		gateway: gateway,
		opts:    opts,
		cfg:     cfg,
		log:     log.With().Str("component", "welfare-service").Logger(),
	}
}

// Extract fetches pageURL and asks the model for the scheme's eligibility criteria.
func (s *Service) Extract(ctx context.Context, pageURL string) (*Eligibility, error) {
	target, err := ValidateURL(pageURL)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("host", target.Host).Logger()

	text, err := s.fetch(ctx, target.String())
	if err != nil {
		log.Warn().Err(err).Msg("scheme page fetch failed")
		return nil, err
	}

	answer, err := s.gateway.Complete(llm.ContextWithStage(ctx, llm.StageWelfare), prompt.WelfareEligibility(clip(text, s.cfg.MaxPageChars)), s.opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindModelUnavailable, "model call failed").WithStage(llm.StageWelfare)
	}
	criteria := strings.TrimSpace(answer)
	if criteria == "" {
		return nil, apperrors.New(apperrors.KindModelResponseMalformed, "model returned no eligibility criteria").
			WithStage(llm.StageWelfare)
	}

	log.Info().Int("page_chars", len(text)).Msg("eligibility extracted")
	return &Eligibility{URL: target.String(), Criteria: criteria}, nil
}

func (s *Service) fetch(ctx context.Context, pageURL string) (string, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}
	text, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindExtractionFailed, "fetch scheme page").
			WithStage(string(document.KindWebPage))
	}
	if err := document.Validate(document.KindWebPage, text, s.cfg.MinPageChars); err != nil {
		return "", err
	}
	return text, nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "url %q must be an absolute http or https address", raw)
	}
	return u, nil
}

func clip(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
