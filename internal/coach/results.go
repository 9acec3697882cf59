package coach

import (
	"fmt"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
)

type ScoreRow struct {
	Skill judge.Skill `json:"skill"`
	Label string      `json:"label"`
	A     *float64    `json:"a"`
	B     *float64    `json:"b"`
}

type TranscriptLine struct {
	Speaker  debate.Role `json:"speaker"`
	Text     string      `json:"text"`
	Display  string      `json:"display"`
	Degraded bool        `json:"degraded,omitempty"`
}

// Results is the post-debate breakdown shown to the user.
type Results struct {
	Outcome    string            `json:"outcome"`
	HeaderA    string            `json:"headerA"`
	HeaderB    string            `json:"headerB"`
	Scores     []ScoreRow        `json:"scores,omitempty"`
	Reasoning  map[string]string `json:"reasoning,omitempty"`
	FeedbackA  string            `json:"feedbackA,omitempty"`
	FeedbackB  string            `json:"feedbackB,omitempty"`
	Error      string            `json:"error,omitempty"`
	RawText    string            `json:"rawText,omitempty"`
	Transcript []TranscriptLine  `json:"transcript"`
}

// BuildResults renders a completed debate and its scorecard for display.
func BuildResults(st debate.State, turns []debate.Turn, card judge.Scorecard) Results {
	r := Results{
		HeaderA: fmt.Sprintf("%s (%s)", st.ParticipantA.DisplayName, st.ParticipantA.Stance),
		HeaderB: fmt.Sprintf("%s (%s)", st.ParticipantB.DisplayName, st.ParticipantB.Stance),
	}
	if st.Mode == debate.ModeSingleOpponent {
		r.HeaderA = fmt.Sprintf("YOU (%s)", st.ParticipantA.Stance)
	}

	for _, t := range turns {
		name := st.Participant(t.Speaker).DisplayName
		if st.Mode == debate.ModeSingleOpponent && t.Speaker == debate.RoleA {
			name = "You"
		}
		display := fmt.Sprintf("%s: %s", name, t.Text)
		if t.ElapsedTime != "" {
			display = fmt.Sprintf("%s (%s): %s", name, t.ElapsedTime, t.Text)
		}
		r.Transcript = append(r.Transcript, TranscriptLine{Speaker: t.Speaker, Text: t.Text, Display: display, Degraded: t.Degraded})
	}

	if !card.Valid() {
		r.Outcome = "Outcome: Unavailable"
		r.Error = card.Error
		r.RawText = card.RawText
		return r
	}

	r.Outcome = OutcomeLabel(st, card.Winner)
	for _, skill := range judge.Skills {
		row := ScoreRow{Skill: skill, Label: skill.Label()}
		if v, ok := card.Score(debate.RoleA, skill); ok {
			row.A = &v
		}
		if v, ok := card.Score(debate.RoleB, skill); ok {
			row.B = &v
		}
		r.Scores = append(r.Scores, row)
	}
	r.Reasoning = card.Reasoning
	r.FeedbackA = card.Reasoning[judge.ConstructiveFeedbackUser]
	r.FeedbackB = card.Reasoning[judge.ConstructiveFeedbackAI]
	return r
}

// OutcomeLabel phrases the winner from the signed-in user's point of view in
// practice mode and by display name in judge mode.
func OutcomeLabel(st debate.State, w judge.Winner) string {
	if st.Mode == debate.ModeSingleOpponent {
		switch w {
		case judge.WinnerA:
			return "Outcome: You Won"
		case judge.WinnerB:
			return "Outcome: You Lost"
		}
		return "Outcome: You Drew"
	}
	switch w {
	case judge.WinnerA:
		return fmt.Sprintf("Outcome: %s Wins!", st.ParticipantA.DisplayName)
	case judge.WinnerB:
		return fmt.Sprintf("Outcome: %s Wins!", st.ParticipantB.DisplayName)
	}
	return "Outcome: Draw"
}
