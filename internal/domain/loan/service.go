package loan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/creditx/creditx-server/internal/domain/bureau"
	"github.com/creditx/creditx-server/internal/domain/document"
	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/status"
	"github.com/creditx/creditx-server/internal/domain/verdict"
)

// ServiceConfig bounds the external calls a submission makes.
type ServiceConfig struct {
	ExtractionTimeout time.Duration
	BureauTimeout     time.Duration
	StoreTimeout      time.Duration
	MinExtractedChars int
	// StrictVerdict rejects verdicts that are not JSON objects instead of storing them raw.
	StrictVerdict bool
}

// Service runs submissions end to end and serves stored applications.
type Service struct {
	repo      Repository
	pipeline  *Pipeline
	extractor document.Extractor
	bureau    bureau.Provider
	cfg       ServiceConfig
	log       zerolog.Logger
}

// NewService wires dependencies.
func NewService(
	repo Repository,
	pipeline *Pipeline,
	extractor document.Extractor,
	bureauProvider bureau.Provider,
	cfg ServiceConfig,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		pipeline:  pipeline,
		extractor: extractor,
		bureau:    bureauProvider,
		cfg:       cfg,
		log:       log.With().Str("component", "loan-service").Logger(),
	}
}

type inputs struct {
	bankText string
	aisText  string
	record   bureau.Record
}

// Submit extracts both documents, summarises them, scores the applicant and persists the result.
// Nothing is persisted unless every stage succeeds.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Application, error) {
	loanType, err := params.validate()
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := s.log.With().Str("request_id", id).Str("loan_type", string(loanType)).Logger()
	started := time.Now()

	in, err := s.gather(ctx, params)
	if err != nil {
		log.Warn().Err(err).Msg("submission inputs rejected")
		return nil, err
	}

	summaries, err := s.pipeline.Summarize(ctx, in.bankText, in.aisText)
	if err != nil {
		log.Error().Err(err).Msg("summarization failed")
		return nil, err
	}

	verdictText, err := s.pipeline.Score(ctx, summaries, in.record)
	if err != nil {
		log.Error().Err(err).Msg("scoring failed")
		return nil, err
	}

	var verdictErr string
	switch v := verdict.Parse(verdictText).(type) {
	case *verdict.Raw:
		if s.cfg.StrictVerdict {
			log.Error().Err(v.Err).Msg("verdict rejected")
			return nil, apperrors.Wrap(v.Err, apperrors.KindModelResponseMalformed, "verdict is not a JSON object").
				WithStage("scoring")
		}
		verdictErr = v.Err.Error()
		log.Warn().Err(v.Err).Msg("storing unparsed verdict")
	case *verdict.Parsed:
		if v.ShapeErr != nil {
			log.Warn().Err(v.ShapeErr).Msg("verdict keys have unexpected shapes")
		}
	}

	now := time.Now().UTC()
	app := &Application{
		ID:              id,
		UserID:          params.UserID,
		OrgID:           params.OrgID,
		ApplicantID:     params.ApplicantID,
		FirstName:       params.FirstName,
		MiddleName:      params.MiddleName,
		LastName:        params.LastName,
		LoanType:        loanType,
		LoanDescription: params.LoanDescription,
		BankSummary:     summaries.Bank,
		AISSummary:      summaries.AIS,
		CreditVerdict:   verdictText,
		VerdictError:    verdictErr,
		Status:          status.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The model work is done; keep the write alive if the caller goes away.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.StoreTimeout)
	defer cancel()
	if err := s.repo.Create(storeCtx, app); err != nil {
		log.Error().Err(err).Msg("persist application")
		return nil, apperrors.Wrap(err, apperrors.KindPersistenceFailed, "persist application")
	}

	log.Info().Dur("elapsed", time.Since(started)).Msg("application scored")
	return app, nil
}

// gather extracts both documents and fetches bureau data concurrently.
func (s *Service) gather(ctx context.Context, params SubmitParams) (inputs, error) {
	var in inputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := s.extract(gctx, document.KindBankStatement, params.BankStatement)
		in.bankText = text
		return err
	})
	g.Go(func() error {
		text, err := s.extract(gctx, document.KindAIS, params.AIS)
		in.aisText = text
		return err
	})
	g.Go(func() error {
		record, err := s.lookupBureau(gctx, params.ApplicantID)
		in.record = record
		return err
	})

	if err := g.Wait(); err != nil {
		return inputs{}, err
	}
	return in, nil
}

func (s *Service) extract(ctx context.Context, kind document.Kind, data []byte) (string, error) {
	if len(data) == 0 {
		return "", document.Validate(kind, "", s.cfg.MinExtractedChars)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExtractionTimeout)
	defer cancel()

	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindExtractionFailed, "extract "+string(kind)).
			WithStage(string(kind))
	}
	if err := document.Validate(kind, text, s.cfg.MinExtractedChars); err != nil {
		return "", err
	}
	return text, nil
}

func (s *Service) lookupBureau(ctx context.Context, applicantID string) (bureau.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BureauTimeout)
	defer cancel()

	record, err := s.bureau.Lookup(ctx, applicantID)
	switch {
	case errors.Is(err, bureau.ErrNotFound):
		s.log.Info().Msg("no bureau record for applicant, scoring without bureau data")
		return bureau.Record{}, nil
	case err != nil:
		return nil, apperrors.Wrap(err, apperrors.KindBureauUnavailable, "bureau lookup failed").WithStage("bureau")
	}
	return record, nil
}

// Get returns a stored application.
func (s *Service) Get(ctx context.Context, id string) (*Application, error) {
	return s.repo.FindByID(ctx, id)
}

// ListByOrg returns listing views of an organisation's applications, newest first.
func (s *Service) ListByOrg(ctx context.Context, orgID string) ([]Summary, error) {
	if orgID == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "org_id is required")
	}
	apps, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(apps))
	for _, a := range apps {
		out = append(out, SummaryOf(a))
	}
	return out, nil
}

// UpdateStatus records a lender decision on a pending application.
func (s *Service) UpdateStatus(ctx context.Context, id, raw string) (*Application, error) {
	target, err := status.Parse(raw)
	if err != nil {
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "unknown status %q", raw)
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := app.Status.TransitionTo(target); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInvalidTransition,
			"cannot move from "+app.Status.String()+" to "+target.String())
	}

	updated, err := s.repo.UpdateStatus(ctx, id, app.Status, target)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("request_id", id).Str("from", app.Status.String()).Str("to", target.String()).Msg("status updated")
	return updated, nil
}
