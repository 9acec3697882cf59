package judge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

var (
	errNoJSON        = errors.New("no JSON object found in response")
	errMissingScores = errors.New("missing scores")
	errMissingReason = errors.New("missing reasoning")
)

type stage struct {
	name    string
	extract func(string) (string, bool)
}

var stages = []stage{
	{"structured", extractWhole},
	{"fenced", extractFenced},
	{"brace", ExtractJSONObject},
}

// Parse runs the staged parser over a raw evaluator reply. It never fails:
// when no stage yields a usable object the result is a malformed scorecard
// holding raw verbatim.
func Parse(raw string) Scorecard {
	lastErr := errNoJSON
	for _, st := range stages {
		candidate, ok := st.extract(raw)
		if !ok {
			continue
		}
		card, err := decode(candidate)
		if err == nil {
			return card
		}
		lastErr = fmt.Errorf("%s: %w", st.name, err)
	}
	return Malformed(CauseMalformedResponse, "failed to parse judgment: "+lastErr.Error(), raw)
}

// ParseStructured treats the whole trimmed reply as the JSON object.
func ParseStructured(raw string) (Scorecard, error) { return parseWith(extractWhole, raw) }

// ParseFenced decodes the first ```json fenced block.
func ParseFenced(raw string) (Scorecard, error) { return parseWith(extractFenced, raw) }

// ParseBraceSpan decodes the span from the first '{' to the last '}'.
func ParseBraceSpan(raw string) (Scorecard, error) { return parseWith(ExtractJSONObject, raw) }

func parseWith(extract func(string) (string, bool), raw string) (Scorecard, error) {
	candidate, ok := extract(raw)
	if !ok {
		return Scorecard{}, errNoJSON
	}
	return decode(candidate)
}

func extractWhole(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	return s, strings.HasPrefix(s, "{")
}

func extractFenced(raw string) (string, bool) {
	m := codeBlockRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractJSONObject returns raw[first '{' : last '}'].
func ExtractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

type wireScorecard struct {
	Scores    map[string]map[string]json.RawMessage `json:"scores"`
	Reasoning map[string]json.RawMessage            `json:"reasoning"`
}

func decode(text string) (Scorecard, error) {
	var w wireScorecard
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Scorecard{}, err
	}
	if w.Scores == nil {
		return Scorecard{}, errMissingScores
	}
	if w.Reasoning == nil {
		return Scorecard{}, errMissingReason
	}

	card := Scorecard{
		ParseStatus:   StatusValid,
		Scores:        make(map[debate.Role]map[Skill]float64, 2),
		InvalidScores: make(map[debate.Role][]Skill),
		Reasoning:     make(map[string]string, len(ReasoningKeys)),
		CreatedAt:     time.Now().UTC(),
	}
	for side, role := range map[string]debate.Role{contractSideUser: debate.RoleA, contractSideAI: debate.RoleB} {
		raw, ok := w.Scores[side]
		if !ok {
			return Scorecard{}, fmt.Errorf("%w for %q", errMissingScores, side)
		}
		scores := make(map[Skill]float64, len(Skills))
		for _, skill := range Skills {
			v, ok := coerceScore(raw[string(skill)])
			if !ok {
				card.InvalidScores[role] = append(card.InvalidScores[role], skill)
				continue
			}
			scores[skill] = v
		}
		card.Scores[role] = scores
	}
	if len(card.InvalidScores) == 0 {
		card.InvalidScores = nil
	}

	for _, key := range ReasoningKeys {
		card.Reasoning[key] = reasoningText(w.Reasoning[key])
	}
	winner, err := mapWinner(card.Reasoning[OverallWinner])
	if err != nil {
		return Scorecard{}, err
	}
	card.Winner = winner
	return card, nil
}

func mapWinner(s string) (Winner, error) {
	switch strings.TrimSpace(s) {
	case contractSideUser:
		return WinnerA, nil
	case contractSideAI:
		return WinnerB, nil
	case contractDraw:
		return WinnerDraw, nil
	case "":
		return "", fmt.Errorf("%w: overallWinner", errMissingReason)
	}
	return "", fmt.Errorf("invalid overallWinner %q", s)
}

// coerceScore accepts JSON numbers and numeric strings within [0,10].
func coerceScore(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 10 {
		return 0, false
	}
	return v, true
}

func reasoningText(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
