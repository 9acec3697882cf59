package judge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

type mockEvaluator struct {
	reply   string
	err     error
	calls   int
	request string
}

func (m *mockEvaluator) Evaluate(_ context.Context, request string) (string, error) {
	m.calls++
	m.request = request
	return m.reply, m.err
}

type blockingEvaluator struct{}

func (blockingEvaluator) Evaluate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type panickyEvaluator struct{}

func (panickyEvaluator) Evaluate(context.Context, string) (string, error) { panic("boom") }

func completedPractice(t *testing.T) (debate.State, []debate.Turn) {
	t.Helper()
	s, err := debate.NewSession("alice", debate.Config{
		Mode:         debate.ModeSingleOpponent,
		Topic:        "Universal basic income",
		ParticipantA: debate.Participant{Stance: debate.StanceFor},
		Turns:        1,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := s.Submit(debate.RoleA, "UBI ends poverty traps", "0:30"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := s.AppendOpponent("It is unaffordable", false); err != nil {
		t.Fatalf("append: %v", err)
	}
	return s.Snapshot(), s.Transcript()
}

func TestPipelineJudge(t *testing.T) {
	st, turns := completedPractice(t)
	ev := &mockEvaluator{reply: validJSON}
	card := NewPipeline(time.Second).Judge(context.Background(), ev, st, turns)
	if !card.Valid() {
		t.Fatalf("expected valid card, got %s", card.Error)
	}
	if ev.calls != 1 {
		t.Fatalf("evaluator should be called once, got %d", ev.calls)
	}
	for _, want := range []string{
		"Topic: Universal basic income",
		"User (For): UBI ends poverty traps\n\nAI (Against): It is unaffordable",
		`"overallWinner"`,
	} {
		if !strings.Contains(ev.request, want) {
			t.Fatalf("request missing %q:\n%s", want, ev.request)
		}
	}
	if strings.Contains(ev.request, "0:30") {
		t.Fatal("elapsed labels should not reach the evaluator")
	}
}

func TestPipelineEvaluatorError(t *testing.T) {
	st, turns := completedPractice(t)
	card := NewPipeline(time.Second).Judge(context.Background(), &mockEvaluator{err: errors.New("quota exceeded")}, st, turns)
	if card.Valid() {
		t.Fatal("expected malformed card")
	}
	if card.Cause != CauseEvaluatorUnavailable {
		t.Fatalf("expected EvaluatorUnavailable, got %s", card.Cause)
	}
	if card.RawText != "quota exceeded" {
		t.Fatalf("error text should be kept as raw text, got %q", card.RawText)
	}
}

func TestPipelineTimeout(t *testing.T) {
	st, turns := completedPractice(t)
	card := NewPipeline(10*time.Millisecond).Judge(context.Background(), blockingEvaluator{}, st, turns)
	if card.Cause != CauseEvaluatorUnavailable {
		t.Fatalf("expected EvaluatorUnavailable after timeout, got %s", card.Cause)
	}
}

func TestPipelineRecoversAndHandlesNil(t *testing.T) {
	st, turns := completedPractice(t)
	p := NewPipeline(time.Second)
	if card := p.Judge(context.Background(), panickyEvaluator{}, st, turns); card.Valid() {
		t.Fatal("panicking evaluator should yield a malformed card")
	}
	if card := p.Judge(context.Background(), nil, st, turns); card.Cause != CauseEvaluatorUnavailable {
		t.Fatalf("nil evaluator should be unavailable, got %s", card.Cause)
	}
}

func TestRenderTranscriptDualHuman(t *testing.T) {
	s, _ := debate.NewSession("alice", debate.Config{
		Mode:         debate.ModeDualHuman,
		Topic:        "School uniforms",
		ParticipantA: debate.Participant{DisplayName: "Asha", Stance: debate.StanceAgainst},
		ParticipantB: debate.Participant{DisplayName: "Ben"},
		Turns:        1,
	})
	s.Submit(debate.RoleA, "They stifle expression", "")
	s.Submit(debate.RoleB, "They reduce bullying", "")

	got := RenderTranscript(s.Snapshot(), s.Transcript())
	want := "Asha (Against): They stifle expression\n\nBen (For): They reduce bullying"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	req := BuildRequest(s.Snapshot(), s.Transcript())
	if !strings.Contains(req, `"User" refers to Asha and "AI" refers to Ben`) {
		t.Fatalf("dual-human request should map contract sides to names:\n%s", req)
	}
}
