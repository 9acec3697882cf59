package judge

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

// RoleLabel is how a side is named in the rendered transcript.
func RoleLabel(st debate.State, role debate.Role) string {
	if st.Mode == debate.ModeDualHuman {
		return st.Participant(role).DisplayName
	}
	if role == debate.RoleB {
		return contractSideAI
	}
	return contractSideUser
}

// RenderTranscript renders turns as "{Role} ({Stance}): {text}" blocks.
func RenderTranscript(st debate.State, turns []debate.Turn) string {
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		blocks = append(blocks, fmt.Sprintf("%s (%s): %s", RoleLabel(st, t.Speaker), st.Participant(t.Speaker).Stance, t.Text))
	}
	return strings.Join(blocks, "\n\n")
}

var requestTmpl = template.Must(template.New("judge").Parse(`You are an impartial, expert debate judge. Analyze the debate transcript below and return your evaluation as a single JSON object.

DEBATE DETAILS
- Topic: {{.Topic}}
- {{.UserLabel}} stance: {{.UserStance}}
- {{.AILabel}} stance: {{.AIStance}}
{{- if .Dual}}
In the JSON below, "User" refers to {{.UserLabel}} and "AI" refers to {{.AILabel}}.
{{- end}}

TRANSCRIPT
{{.Transcript}}
---
Score both sides from 0 (non-existent) to 10 (excellent) on each criterion. Be strict: an argument that is missing, irrelevant or makes no attempt scores 0.

1. logicalConsistency: a coherent thesis with no internal contradictions, fallacies or non-sequiturs.
2. evidenceAndExamples: specific, credible, timely evidence that is clearly linked to the claim.
3. clarityAndConcision: signposting, clear topic sentences, no rambling or filler.
4. rebuttalEffectiveness: direct line-by-line engagement with the opponent's actual points.
5. overallPersuasiveness: a clear framework and a demonstrated comparative advantage.

OUTPUT FORMAT
Respond with valid JSON only, no text before or after it and no markdown fences. Use exactly this structure:
{
  "scores": {
    "User": {"logicalConsistency": <0-10>, "evidenceAndExamples": <0-10>, "clarityAndConcision": <0-10>, "rebuttalEffectiveness": <0-10>, "overallPersuasiveness": <0-10>},
    "AI": {"logicalConsistency": <0-10>, "evidenceAndExamples": <0-10>, "clarityAndConcision": <0-10>, "rebuttalEffectiveness": <0-10>, "overallPersuasiveness": <0-10>}
  },
  "reasoning": {
    "strongestArgumentUser": "<User's best point, or 'No argument presented.'>",
    "strongestArgumentAI": "<AI's best point, or 'No argument presented.'>",
    "weakestArgumentUser": "<User's weakest point, or 'No argument presented.'>",
    "weakestArgumentAI": "<AI's weakest point, or 'No argument presented.'>",
    "rebuttalAnalysis": "<how well each side engaged the other>",
    "overallWinner": "<'User', 'AI', or 'Draw'>",
    "constructiveFeedbackUser": "<one actionable tip for User>",
    "constructiveFeedbackAI": "<one actionable tip for AI>"
  }
}
`))

type requestData struct {
	Topic      string
	UserLabel  string
	AILabel    string
	UserStance debate.Stance
	AIStance   debate.Stance
	Dual       bool
	Transcript string
}

// BuildRequest renders the evaluation request for a completed debate.
func BuildRequest(st debate.State, turns []debate.Turn) string {
	data := requestData{
		Topic:      st.Topic,
		UserLabel:  RoleLabel(st, debate.RoleA),
		AILabel:    RoleLabel(st, debate.RoleB),
		UserStance: st.ParticipantA.Stance,
		AIStance:   st.ParticipantB.Stance,
		Dual:       st.Mode == debate.ModeDualHuman,
		Transcript: RenderTranscript(st, turns),
	}
	var sb strings.Builder
	// the template has no fallible actions
	_ = requestTmpl.Execute(&sb, data)
	return sb.String()
}
