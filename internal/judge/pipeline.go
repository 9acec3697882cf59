package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

// Evaluator sends the evaluation request to a text model and returns its raw reply.
type Evaluator interface {
	Evaluate(ctx context.Context, request string) (string, error)
}

type Pipeline struct {
	timeout time.Duration
}

func NewPipeline(timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Pipeline{timeout: timeout}
}

// Judge evaluates a completed debate. Every failure is reported in-band as
// a malformed scorecard.
func (p *Pipeline) Judge(ctx context.Context, ev Evaluator, st debate.State, turns []debate.Turn) (card Scorecard) {
	logger := log.With().Str("debate", st.ID).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("judge:panic")
			card = Malformed(CauseEvaluatorUnavailable, fmt.Sprintf("judge API call failed: %v", r), "")
		}
	}()

	if ev == nil {
		logger.Warn().Msg("judge:no-evaluator")
		return Malformed(CauseEvaluatorUnavailable, "judge API call failed: no evaluator configured", "")
	}

	req := BuildRequest(st, turns)
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	raw, err := ev.Evaluate(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Dur("dur", time.Since(start)).Msg("judge:evaluator-failed")
		return Malformed(CauseEvaluatorUnavailable, fmt.Sprintf("judge API call failed: %v", err), err.Error())
	}

	card = Parse(raw)
	if !card.Valid() {
		logger.Warn().Str("error", card.Error).Msg("judge:malformed")
		return card
	}
	logger.Info().Str("winner", string(card.Winner)).Dur("dur", time.Since(start)).Msg("judge:scored")
	return card
}
