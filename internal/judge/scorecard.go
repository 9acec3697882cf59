package judge

import (
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

type Skill string

const (
	LogicalConsistency    Skill = "logicalConsistency"
	EvidenceAndExamples   Skill = "evidenceAndExamples"
	ClarityAndConcision   Skill = "clarityAndConcision"
	RebuttalEffectiveness Skill = "rebuttalEffectiveness"
	OverallPersuasiveness Skill = "overallPersuasiveness"
)

// Skills lists the rubric in display order.
var Skills = []Skill{
	LogicalConsistency,
	EvidenceAndExamples,
	ClarityAndConcision,
	RebuttalEffectiveness,
	OverallPersuasiveness,
}

// Label returns the human readable skill name.
func (s Skill) Label() string {
	switch s {
	case LogicalConsistency:
		return "Logical Consistency"
	case EvidenceAndExamples:
		return "Evidence & Examples"
	case ClarityAndConcision:
		return "Clarity & Concision"
	case RebuttalEffectiveness:
		return "Rebuttal Effectiveness"
	case OverallPersuasiveness:
		return "Overall Persuasiveness"
	}
	return string(s)
}

// Reasoning keys of the evaluator contract.
const (
	StrongestArgumentUser    = "strongestArgumentUser"
	StrongestArgumentAI      = "strongestArgumentAI"
	WeakestArgumentUser      = "weakestArgumentUser"
	WeakestArgumentAI        = "weakestArgumentAI"
	RebuttalAnalysis         = "rebuttalAnalysis"
	OverallWinner            = "overallWinner"
	ConstructiveFeedbackUser = "constructiveFeedbackUser"
	ConstructiveFeedbackAI   = "constructiveFeedbackAI"
)

// Side names the evaluator uses regardless of display names.
const (
	contractSideUser = "User"
	contractSideAI   = "AI"
	contractDraw     = "Draw"
)

var ReasoningKeys = []string{
	StrongestArgumentUser,
	StrongestArgumentAI,
	WeakestArgumentUser,
	WeakestArgumentAI,
	RebuttalAnalysis,
	OverallWinner,
	ConstructiveFeedbackUser,
	ConstructiveFeedbackAI,
}

type Winner string

const (
	WinnerA    Winner = "A"
	WinnerB    Winner = "B"
	WinnerDraw Winner = "Draw"
)

type ParseStatus string

const (
	StatusValid     ParseStatus = "Valid"
	StatusMalformed ParseStatus = "MalformedResponse"
)

// Cause says why a scorecard is malformed.
type Cause string

const (
	CauseEvaluatorUnavailable Cause = "EvaluatorUnavailable"
	CauseMalformedResponse    Cause = "MalformedResponse"
)

// Scorecard is the parsed verdict on a completed debate.
type Scorecard struct {
	ParseStatus   ParseStatus                       `json:"parseStatus"`
	Scores        map[debate.Role]map[Skill]float64 `json:"scores,omitempty"`
	InvalidScores map[debate.Role][]Skill           `json:"invalidScores,omitempty"`
	Reasoning     map[string]string                 `json:"reasoning,omitempty"`
	Winner        Winner                            `json:"winner,omitempty"`
	Cause         Cause                             `json:"cause,omitempty"`
	Error         string                            `json:"error,omitempty"`
	RawText       string                            `json:"rawText,omitempty"`
	CreatedAt     time.Time                         `json:"createdAt"`
}

func (c Scorecard) Valid() bool { return c.ParseStatus == StatusValid }

// Score returns the value for role and skill if the evaluator gave a usable one.
func (c Scorecard) Score(role debate.Role, skill Skill) (float64, bool) {
	v, ok := c.Scores[role][skill]
	return v, ok
}

// Malformed builds a scorecard carrying only the failure.
func Malformed(cause Cause, msg, raw string) Scorecard {
	return Scorecard{
		ParseStatus: StatusMalformed,
		Cause:       cause,
		Error:       msg,
		RawText:     raw,
		CreatedAt:   time.Now().UTC(),
	}
}
