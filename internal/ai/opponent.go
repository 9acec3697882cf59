package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

const opponentPrompt = `You are a skilled, assertive and competitive debater. Your only role is to debate the human user formally and try to win.

TOPIC: %[1]s
YOUR STANCE: %[2]s. Defend this position at all costs.
USER'S STANCE: %[3]s.

Rules:
- Only make arguments that support the %[2]s side.
- Directly rebut the user's previous points and expose flaws in their logic or evidence.
- Bring your own counter-arguments, evidence and examples.
- Stay formal, respectful and intelligent.
- Never act as a judge, coach or assistant. Never give feedback, concede points, summarize the debate or declare a winner.

You will receive the conversation so far. Reply with your next rebuttal only.`

// OpponentPrompt is the system instruction for the opponent generator.
func OpponentPrompt(topic string, own, opponent debate.Stance) string {
	return fmt.Sprintf(opponentPrompt, topic, own, opponent)
}

var ErrEmptyResponse = errors.New("ai: empty response")

// Opponent adapts a Provider to debate.Generator.
type Opponent struct {
	provider Provider
	model    string
}

func NewOpponent(p Provider, model string) *Opponent {
	return &Opponent{provider: p, model: model}
}

func (o *Opponent) Generate(ctx context.Context, req debate.GenerationRequest) (string, error) {
	msgs := make([]Message, 0, len(req.History))
	for _, m := range req.History {
		role := RoleUser
		if m.Speaker == debate.RoleB {
			role = RoleAssistant
		}
		msgs = append(msgs, Message{Role: role, Content: m.Text})
	}
	out, err := o.provider.Chat(ctx, o.model, OpponentPrompt(req.Topic, req.OwnStance, req.OpponentStance), msgs, Options{Temperature: 0.8})
	if err != nil {
		return "", fmt.Errorf("ai: generate: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// Evaluator adapts a Provider to judge.Evaluator.
type Evaluator struct {
	provider Provider
	model    string
}

func NewEvaluator(p Provider, model string) *Evaluator {
	return &Evaluator{provider: p, model: model}
}

func (e *Evaluator) Evaluate(ctx context.Context, request string) (string, error) {
	out, err := e.provider.Chat(ctx, e.model, "", []Message{{Role: RoleUser, Content: request}}, Options{JSON: true})
	if err != nil {
		return "", fmt.Errorf("ai: evaluate: %w", err)
	}
	return out, nil
}
