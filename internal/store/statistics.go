package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
	"github.com/Rakshana0506/ET-project-deployment/internal/stats"
)

const selectStats = `SELECT debates_won, debates_lost, debates_drawn,
	avg_logicalConsistency, avg_evidenceAndExamples, avg_clarityAndConcision,
	avg_rebuttalEffectiveness, avg_overallPersuasiveness
	FROM user_stats WHERE username = ?`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStats(row rowScanner) (stats.Statistics, error) {
	st := stats.New()
	avgs := make([]float64, len(judge.Skills))
	dest := []any{&st.Wins, &st.Losses, &st.Draws}
	for i := range avgs {
		dest = append(dest, &avgs[i])
	}
	if err := row.Scan(dest...); err != nil {
		return stats.Statistics{}, err
	}
	for i, skill := range judge.Skills {
		st.Averages[skill] = avgs[i]
	}
	return st, nil
}

// ReadStatistics returns the identity's record, zeroed if none exists yet.
func (s *Store) ReadStatistics(ctx context.Context, identity string) (stats.Statistics, error) {
	st, err := scanStats(s.db.QueryRowContext(ctx, selectStats, identity))
	if errors.Is(err, sql.ErrNoRows) {
		return stats.New(), nil
	}
	if err != nil {
		return stats.Statistics{}, fmt.Errorf("store: read stats: %w", err)
	}
	return st, nil
}

// UpdateStatistics folds card into the identity's record inside one
// transaction. Malformed scorecards are ignored and reported as not applied.
func (s *Store) UpdateStatistics(ctx context.Context, identity string, card judge.Scorecard) (stats.Statistics, bool, error) {
	if !card.Valid() {
		log.Info().Str("user", identity).Msg("stats:skip-malformed")
		st, err := s.ReadStatistics(ctx, identity)
		return st, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats.Statistics{}, false, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	old, err := scanStats(tx.QueryRowContext(ctx, selectStats, identity))
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_stats (username) VALUES (?)`, identity); err != nil {
			return stats.Statistics{}, false, fmt.Errorf("store: insert stats: %w", err)
		}
		old = stats.New()
	} else if err != nil {
		return stats.Statistics{}, false, fmt.Errorf("store: read stats: %w", err)
	}

	next, _ := stats.Apply(old, card)
	_, err = tx.ExecContext(ctx,
		`UPDATE user_stats SET debates_won = ?, debates_lost = ?, debates_drawn = ?,
			avg_logicalConsistency = ?, avg_evidenceAndExamples = ?, avg_clarityAndConcision = ?,
			avg_rebuttalEffectiveness = ?, avg_overallPersuasiveness = ?
		 WHERE username = ?`,
		next.Wins, next.Losses, next.Draws,
		next.Averages[judge.LogicalConsistency], next.Averages[judge.EvidenceAndExamples],
		next.Averages[judge.ClarityAndConcision], next.Averages[judge.RebuttalEffectiveness],
		next.Averages[judge.OverallPersuasiveness], identity)
	if err != nil {
		return stats.Statistics{}, false, fmt.Errorf("store: update stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return stats.Statistics{}, false, fmt.Errorf("store: commit: %w", err)
	}
	return next, true, nil
}
