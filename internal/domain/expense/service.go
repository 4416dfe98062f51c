// Package expense analyses spending patterns in an uploaded bank statement.
package expense

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/creditx/creditx-server/internal/domain/document"
	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/prompt"
)

// ServiceConfig bounds extraction and the amount of text sent to the model.
type ServiceConfig struct {
	ExtractionTimeout time.Duration
	// MinStatementChars rejects statements that yield less text than this.
	MinStatementChars int
	// MaxStatementChars and MaxAdditionalChars cap prompt input; 0 means no cap.
	MaxStatementChars  int
	MaxAdditionalChars int
}

// AnalyzeParams carries the uploads of one analysis.
type AnalyzeParams struct {
	Statement  []byte
	Additional [][]byte
}

// Report is the outcome of one analysis.
type Report struct {
	// Transactions are the dated lines found in the statement, in statement order.
	Transactions []Transaction
	// DebitShare is computed from Transactions, independently of the model.
	DebitShare map[Range]float64
	Insights   Insights
}

// Service runs expense analyses. Nothing is persisted.
type Service struct {
	extractor document.Extractor
	gateway   llm.Gateway
	opts      llm.Options
	cfg       ServiceConfig
	log       zerolog.Logger
}

// NewService wires dependencies.
func NewService(extractor document.Extractor, gateway llm.Gateway, opts llm.Options, cfg ServiceConfig, log zerolog.Logger) *Service {
	return &Service{
		extractor: extractor,
		gateway:   gateway,
		opts:      opts,
		cfg:       cfg,
		log:       log.With().Str("component", "expense-service").Logger(),
	}
}

// Analyze extracts the statement and any supporting documents, asks the model for a
// spending analysis and pairs it with the transactions found in the statement.
func (s *Service) Analyze(ctx context.Context, params AnalyzeParams) (*Report, error) {
	if len(params.Statement) == 0 {
		return nil, apperrors.New(apperrors.KindInvalidInput, "statement_file is required")
	}
	started := time.Now()

	statement, additional, err := s.gather(ctx, params)
	if err != nil {
		s.log.Warn().Err(err).Msg("expense inputs rejected")
		return nil, err
	}

	text := prompt.ExpenseAnalysis(clip(statement, s.cfg.MaxStatementChars), clip(additional, s.cfg.MaxAdditionalChars))
	answer, err := s.gateway.Complete(llm.ContextWithStage(ctx, llm.StageExpense), text, s.opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindModelUnavailable, "model call failed").WithStage(llm.StageExpense)
	}

	insights, err := ParseInsights(answer)
	if err != nil {
		s.log.Error().Err(err).Int("answer_chars", len(answer)).Msg("expense analysis rejected")
		return nil, apperrors.Wrap(err, apperrors.KindModelResponseMalformed, "expense analysis is not valid JSON").
			WithStage(llm.StageExpense)
	}

	txns := ParseTransactions(statement)
	s.log.Info().
		Int("transactions", len(txns)).
		Int("additional_files", len(params.Additional)).
		Dur("elapsed", time.Since(started)).
		Msg("expense analysis complete")
	return &Report{
		Transactions: txns,
		DebitShare:   DebitShareByRange(txns),
		Insights:     *insights,
	}, nil
}

// gather extracts every upload concurrently. Supporting documents that yield no
// text are skipped; only the statement is required.
func (s *Service) gather(ctx context.Context, params AnalyzeParams) (string, string, error) {
	var statement string
	extra := make([]string, len(params.Additional))
	var mu sync.Mutex
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := s.extract(gctx, params.Statement)
		if err != nil {
			return apperrors.Wrap(err, apperrors.KindExtractionFailed, "extract statement").
				WithStage(string(document.KindStatement))
		}
		if err := document.Validate(document.KindStatement, text, s.cfg.MinStatementChars); err != nil {
			return err
		}
		statement = text
		return nil
	})
	for i, data := range params.Additional {
		i, data := i, data
		g.Go(func() error {
			text, err := s.extract(gctx, data)
			if err != nil || strings.TrimSpace(text) == "" {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			extra[i] = strings.TrimSpace(text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	if skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Msg("additional files yielded no text")
	}

	kept := extra[:0]
	for _, t := range extra {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return statement, strings.Join(kept, "\n"), nil
}

func (s *Service) extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if s.cfg.ExtractionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ExtractionTimeout)
		defer cancel()
	}
	return s.extractor.Extract(ctx, data)
}

// clip keeps the first limit runes of s.
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
