package loan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/creditx/creditx-server/internal/domain/bureau"
	apperrors "github.com/creditx/creditx-server/internal/domain/errors"
	"github.com/creditx/creditx-server/internal/domain/llm"
	"github.com/creditx/creditx-server/internal/domain/prompt"
)

// Summaries holds both document summaries. Neither field is empty once Summarize succeeds.
type Summaries struct {
	Bank string
	AIS  string
}

// Pipeline runs the model stages of a submission.
type Pipeline struct {
	gateway llm.Gateway
	opts    llm.Options
}

// NewPipeline creates a pipeline issuing completions with opts.
func NewPipeline(gateway llm.Gateway, opts llm.Options) *Pipeline {
	return &Pipeline{gateway: gateway, opts: opts}
}

// Summarize summarises the bank statement and AIS concurrently.
// The first failure cancels the other call and fails the stage; there is no partial result.
func (p *Pipeline) Summarize(ctx context.Context, bankText, aisText string) (Summaries, error) {
	var out Summaries
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := p.complete(gctx, llm.StageBankSummary, prompt.BankStatement(bankText))
		if err != nil {
			return err
		}
		out.Bank = text
		return nil
	})
	g.Go(func() error {
		text, err := p.complete(gctx, llm.StageAISSummary, prompt.AIS(aisText))
		if err != nil {
			return err
		}
		out.AIS = text
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summaries{}, err
	}
	return out, nil
}

// Score fuses both summaries with bureau data and returns the model's verdict text unparsed.
func (p *Pipeline) Score(ctx context.Context, s Summaries, record bureau.Record) (string, error) {
	return p.complete(ctx, llm.StageScoring, prompt.CreditScore(s.Bank, s.AIS, record.Render()))
}

func (p *Pipeline) complete(ctx context.Context, stage, text string) (string, error) {
	answer, err := p.gateway.Complete(llm.ContextWithStage(ctx, stage), text, p.opts)
	if err != nil {
		return "", stageError(err, stage)
	}
	return answer, nil
}

func stageError(err error, stage string) error {
	e := apperrors.Wrap(err, apperrors.KindModelUnavailable, "model call failed")
	return e.WithStage(stage)
}
