package debate

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfig      = errors.New("invalid debate config")
	ErrInvalidState       = errors.New("debate already completed")
	ErrEmptyArgument      = errors.New("argument is empty")
	ErrTurnOrderViolation = errors.New("not this speaker's turn")
	ErrSessionNotFound    = errors.New("session not found")
)

// Session holds one debate. All methods are safe for concurrent use.
type Session struct {
	state State
	turns []Turn

	// practice mode only: the generator owes a reply to the last user turn
	awaitingReply bool

	now func() time.Time
	mu  sync.Mutex
}

// NewSession validates cfg and returns a fresh session owned by identity.
func NewSession(identity string, cfg Config) (*Session, error) {
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	if cfg.Turns <= 0 {
		return nil, fmt.Errorf("%w: turns must be positive", ErrInvalidConfig)
	}
	a, b := cfg.ParticipantA, cfg.ParticipantB
	if a.Stance != StanceFor && a.Stance != StanceAgainst {
		return nil, fmt.Errorf("%w: stance must be For or Against", ErrInvalidConfig)
	}
	if b.Stance == "" {
		b.Stance = a.Stance.Opposite()
	}
	if b.Stance != a.Stance.Opposite() {
		return nil, fmt.Errorf("%w: stances must be complementary", ErrInvalidConfig)
	}

	total := cfg.Turns
	switch cfg.Mode {
	case ModeSingleOpponent:
		a.DisplayName, b.DisplayName = "User", "AI"
	case ModeDualHuman:
		a.DisplayName = strings.TrimSpace(a.DisplayName)
		b.DisplayName = strings.TrimSpace(b.DisplayName)
		if a.DisplayName == "" {
			a.DisplayName = "Player 1"
		}
		if b.DisplayName == "" {
			b.DisplayName = "Player 2"
		}
		total = cfg.Turns * 2
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
	}

	s := &Session{now: func() time.Time { return time.Now().UTC() }}
	s.state = State{
		ID:             uuid.NewString(),
		Identity:       identity,
		Mode:           cfg.Mode,
		Topic:          topic,
		ParticipantA:   a,
		ParticipantB:   b,
		TotalTurns:     total,
		CurrentSpeaker: RoleA,
		Status:         StatusAwaitingFirstTurn,
		CreatedAt:      s.now(),
	}
	return s, nil
}

func (s *Session) ID() string { return s.state.ID }

func (s *Session) Identity() string { return s.state.Identity }

// Snapshot returns a copy of the session bookkeeping.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.CompletedAt != nil {
		t := *st.CompletedAt
		st.CompletedAt = &t
	}
	return st
}

// Transcript returns a copy of the turns in append order.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// AwaitingReply reports whether the generator owes a reply to the last turn.
func (s *Session) AwaitingReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingReply
}

// Submit validates and appends a participant turn. It returns the appended
// turn; all errors are returned before anything is mutated.
func (s *Session) Submit(speaker Role, text, elapsed string) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == StatusCompleted {
		return Turn{}, ErrInvalidState
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyArgument
	}
	switch s.state.Mode {
	case ModeSingleOpponent:
		if speaker != RoleA || s.awaitingReply {
			return Turn{}, ErrTurnOrderViolation
		}
	case ModeDualHuman:
		if speaker != s.state.CurrentSpeaker {
			return Turn{}, ErrTurnOrderViolation
		}
	}

	t := Turn{Speaker: speaker, Text: text, ElapsedTime: strings.TrimSpace(elapsed), CreatedAt: s.now()}
	s.turns = append(s.turns, t)
	s.state.TurnsTaken++
	s.state.Status = StatusInProgress

	if s.state.Mode == ModeSingleOpponent {
		s.awaitingReply = true
	}
	if s.state.TurnsTaken >= s.state.TotalTurns {
		s.state.Status = StatusCompleted
		done := t.CreatedAt
		s.state.CompletedAt = &done
		return t, nil
	}
	if s.state.Mode == ModeDualHuman {
		s.state.CurrentSpeaker = s.state.CurrentSpeaker.Other()
	}
	return t, nil
}

// AppendOpponent appends the generator's reply to the last user turn in
// practice mode. Replies never count toward the turn limit, so the closing
// reply after the final user turn is accepted on a completed session.
func (s *Session) AppendOpponent(text string, degraded bool) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Mode != ModeSingleOpponent || !s.awaitingReply {
		return Turn{}, ErrTurnOrderViolation
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyArgument
	}
	t := Turn{Speaker: RoleB, Text: text, Degraded: degraded, CreatedAt: s.now()}
	s.turns = append(s.turns, t)
	s.awaitingReply = false
	return t, nil
}

// GenerationRequest assembles the generator context: the debate framing from
// the generator's side plus role and text of every turn so far.
func (s *Session) GenerationRequest() GenerationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	hist := make([]Message, 0, len(s.turns))
	for _, t := range s.turns {
		hist = append(hist, Message{Speaker: t.Speaker, Text: t.Text})
	}
	return GenerationRequest{
		Topic:          s.state.Topic,
		OwnStance:      s.state.ParticipantB.Stance,
		OpponentStance: s.state.ParticipantA.Stance,
		History:        hist,
	}
}
