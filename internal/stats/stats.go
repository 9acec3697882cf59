package stats

import (
	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
)

// Statistics is a participant's running record.
type Statistics struct {
	Wins     int                     `json:"wins"`
	Losses   int                     `json:"losses"`
	Draws    int                     `json:"draws"`
	Averages map[judge.Skill]float64 `json:"skillAverages"`
}

func New() Statistics {
	s := Statistics{Averages: make(map[judge.Skill]float64, len(judge.Skills))}
	for _, skill := range judge.Skills {
		s.Averages[skill] = 0
	}
	return s
}

func (s Statistics) Total() int { return s.Wins + s.Losses + s.Draws }

// Apply folds one scorecard into old from side A's point of view. It returns
// old unchanged and false when the scorecard is not valid. A skill the
// evaluator did not score keeps its current mean.
func Apply(old Statistics, card judge.Scorecard) (Statistics, bool) {
	if !card.Valid() {
		return old, false
	}
	next := Statistics{
		Wins:     old.Wins,
		Losses:   old.Losses,
		Draws:    old.Draws,
		Averages: make(map[judge.Skill]float64, len(judge.Skills)),
	}
	switch card.Winner {
	case judge.WinnerA:
		next.Wins++
	case judge.WinnerB:
		next.Losses++
	default:
		next.Draws++
	}

	n := float64(next.Total())
	for _, skill := range judge.Skills {
		mean := old.Averages[skill]
		score, ok := card.Score(debate.RoleA, skill)
		if !ok {
			score = mean
		}
		next.Averages[skill] = (mean*(n-1) + score) / n
	}
	return next, true
}
