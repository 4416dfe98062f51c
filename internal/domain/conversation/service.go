package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/loan"
	"github.com/creditx/creditx-server/internal/domain/prompt"
)

// ApplicationReader loads the context a chat turn is answered against.
type ApplicationReader interface {
	FindByID(ctx context.Context, id string) (*loan.Application, error)
}

// Service answers follow-up questions about a scored application.
type Service struct {
	apps    ApplicationReader
	store   Store
	locker  Locker
	gateway llm.Gateway
	opts    llm.Options
	// window caps how many recent turns are replayed; 0 replays all of them.
	window int
	// storeTimeout bounds every store and repository call; 0 leaves them to the caller's context.
	storeTimeout time.Duration
	log          zerolog.Logger
}

// NewService wires dependencies.
func NewService(
	apps ApplicationReader,
	store Store,
	locker Locker,
	gateway llm.Gateway,
	opts llm.Options,
	window int,
	storeTimeout time.Duration,
	log zerolog.Logger,
) *Service {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &Service{
		apps:         apps,
		store:        store,
		locker:       locker,
		gateway:      gateway,
		opts:         opts,
		window:       window,
		storeTimeout: storeTimeout,
		log:          log.With().Str("component", "conversation-service").Logger(),
	}
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// Ask answers query against the application's summaries, verdict and prior turns,
// then appends the exchange. A failed model call appends nothing.
func (s *Service) Ask(ctx context.Context, requestID, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", apperrors.New(apperrors.KindInvalidInput, "query is required")
	}

	app, err := s.findApplication(ctx, requestID)
	if err != nil {
		return "", err
	}

	unlock, err := s.locker.Lock(ctx, requestID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindPersistenceFailed, "acquire conversation lock")
	}
	defer unlock()

	turns, err := s.loadTurns(ctx, requestID)
	if err != nil {
		return "", err
	}

	history, omitted := windowed(turns, s.window)
	text := prompt.Chat(prompt.ChatInput{
		BankSummary:   app.BankSummary,
		AISSummary:    app.AISSummary,
		CreditVerdict: app.CreditVerdict,
		History:       history,
		Omitted:       omitted,
		Query:         query,
	})

	answer, err := s.gateway.Complete(llm.ContextWithStage(ctx, llm.StageChat), text, s.opts)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindModelUnavailable, "model call failed").WithStage(llm.StageChat)
	}

	turn := Turn{UserQuery: query, AIResponse: answer, CreatedAt: time.Now().UTC()}
	// The answer is already paid for, so the append outlives a cancelled request but not the store timeout.
	appendCtx, cancel := s.storeContext(context.WithoutCancel(ctx))
	defer cancel()
	if err := s.store.Append(appendCtx, requestID, turn); err != nil {
		s.log.Error().Err(err).Str("request_id", requestID).Msg("append conversation turn")
		return "", apperrors.Wrap(err, apperrors.KindPersistenceFailed, "append conversation turn")
	}

	s.log.Debug().
		Str("request_id", requestID).
		Int("history_turns", len(turns)).
		Int("replayed_turns", len(history)).
		Msg("chat turn answered")
	return answer, nil
}

// History returns every stored turn of an application in order.
func (s *Service) History(ctx context.Context, requestID string) ([]Turn, error) {
	if _, err := s.findApplication(ctx, requestID); err != nil {
		return nil, err
	}
	return s.loadTurns(ctx, requestID)
}

func (s *Service) findApplication(ctx context.Context, requestID string) (*loan.Application, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	app, err := s.apps.FindByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindPersistenceFailed, "load application")
	}
	return app, nil
}

func (s *Service) loadTurns(ctx context.Context, requestID string) ([]Turn, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	turns, err := s.store.Load(ctx, requestID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindPersistenceFailed, "load conversation")
	}
	return turns, nil
}

func windowed(turns []Turn, window int) ([]prompt.Exchange, int) {
	omitted := 0
	if window > 0 && len(turns) > window {
		omitted = len(turns) - window
		turns = turns[omitted:]
	}
	out := make([]prompt.Exchange, 0, len(turns))
	for _, t := range turns {
		out = append(out, prompt.Exchange{User: t.UserQuery, AI: t.AIResponse})
	}
	return out, omitted
}
