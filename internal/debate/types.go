package debate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Mode string

const (
	// ModeSingleOpponent pits the signed-in user against the opponent generator.
	ModeSingleOpponent Mode = "practice"
	// ModeDualHuman is a hot-seat debate between two people sharing one client.
	ModeDualHuman Mode = "judge"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingleOpponent, "single", "singleopponent":
		return ModeSingleOpponent, nil
	case ModeDualHuman, "dual", "dualhuman":
		return ModeDualHuman, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

type Stance string

const (
	StanceFor     Stance = "For"
	StanceAgainst Stance = "Against"
)

// Opposite returns the complementary stance.
func (s Stance) Opposite() Stance {
	if s == StanceFor {
		return StanceAgainst
	}
	return StanceFor
}

func ParseStance(s string) (Stance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "for":
		return StanceFor, nil
	case "against":
		return StanceAgainst, nil
	}
	return "", fmt.Errorf("%w: unknown stance %q", ErrInvalidConfig, s)
}

// Role identifies a side of the debate. In practice mode the generator
// always speaks as RoleB.
type Role string

const (
	RoleA Role = "A"
	RoleB Role = "B"
)

func (r Role) Other() Role {
	if r == RoleA {
		return RoleB
	}
	return RoleA
}

type Status string

const (
	StatusAwaitingFirstTurn Status = "AwaitingFirstTurn"
	StatusInProgress        Status = "InProgress"
	StatusCompleted         Status = "Completed"
)

type Participant struct {
	DisplayName string `json:"displayName"`
	Stance      Stance `json:"stance"`
}

// Config describes a debate to start. Turns is the number of user turns in
// practice mode and the number of turns per player in judge mode.
type Config struct {
	Mode         Mode        `json:"mode"`
	Topic        string      `json:"topic"`
	ParticipantA Participant `json:"participantA"`
	ParticipantB Participant `json:"participantB"`
	Turns        int         `json:"turns"`
}

// Turn is one utterance. Turns are never modified once appended.
type Turn struct {
	Speaker     Role      `json:"speaker"`
	Text        string    `json:"text"`
	ElapsedTime string    `json:"elapsedTime,omitempty"`
	Degraded    bool      `json:"degraded,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// State is a point-in-time copy of a session's bookkeeping.
type State struct {
	ID             string      `json:"id"`
	Identity       string      `json:"identity"`
	Mode           Mode        `json:"mode"`
	Topic          string      `json:"topic"`
	ParticipantA   Participant `json:"participantA"`
	ParticipantB   Participant `json:"participantB"`
	TotalTurns     int         `json:"totalTurns"`
	TurnsTaken     int         `json:"turnsTaken"`
	CurrentSpeaker Role        `json:"currentSpeaker"`
	Status         Status      `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	CompletedAt    *time.Time  `json:"completedAt,omitempty"`
}

// Participant returns the participant speaking as role.
func (s State) Participant(role Role) Participant {
	if role == RoleB {
		return s.ParticipantB
	}
	return s.ParticipantA
}

func (s State) Completed() bool { return s.Status == StatusCompleted }

// Message is a turn stripped down to what the opponent generator accepts.
type Message struct {
	Speaker Role   `json:"speaker"`
	Text    string `json:"text"`
}

// GenerationRequest is everything the opponent generator gets to see.
type GenerationRequest struct {
	Topic          string    `json:"topic"`
	OwnStance      Stance    `json:"ownStance"`
	OpponentStance Stance    `json:"opponentStance"`
	History        []Message `json:"history"`
}

// Generator produces the next opponent argument.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}
