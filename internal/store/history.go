package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
)

// HistoryEntry is one line of a user's debate list.
type HistoryEntry struct {
	ID        string      `json:"id"`
	Topic     string      `json:"topic"`
	Mode      debate.Mode `json:"mode"`
	Timestamp time.Time   `json:"timestamp"`
}

// Record is a fully archived debate.
type Record struct {
	ID         string          `json:"id"`
	Identity   string          `json:"identity"`
	Mode       debate.Mode     `json:"mode"`
	Topic      string          `json:"topic"`
	State      debate.State    `json:"state"`
	Transcript []debate.Turn   `json:"transcript"`
	Scorecard  judge.Scorecard `json:"scorecard"`
	Timestamp  time.Time       `json:"timestamp"`
}

// SaveSession archives a completed debate and returns the record id. State,
// transcript and scorecard are serialized independently; a scorecard that
// cannot be encoded is replaced by a malformed placeholder.
func (s *Store) SaveSession(ctx context.Context, identity string, st debate.State, turns []debate.Turn, card judge.Scorecard) (string, error) {
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("store: encode state: %w", err)
	}
	if turns == nil {
		turns = []debate.Turn{}
	}
	turnsJSON, err := json.Marshal(turns)
	if err != nil {
		return "", fmt.Errorf("store: encode transcript: %w", err)
	}
	cardJSON, err := json.Marshal(card)
	if err != nil {
		log.Warn().Err(err).Str("debate", st.ID).Msg("store:scorecard-unencodable")
		placeholder := judge.Malformed(judge.CauseMalformedResponse, "scorecard could not be saved: "+err.Error(), card.RawText)
		if cardJSON, err = json.Marshal(placeholder); err != nil {
			return "", fmt.Errorf("store: encode scorecard: %w", err)
		}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO debate_history (id, username, debate_mode, debate_topic, debate_state, chat_history, final_results, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, identity, string(st.Mode), st.Topic, string(stateJSON), string(turnsJSON), string(cardJSON), now.UnixNano())
	if err != nil {
		return "", fmt.Errorf("store: insert history: %w", err)
	}
	return id, nil
}

// LoadHistoryList returns the identity's archived debates, newest first.
func (s *Store) LoadHistoryList(ctx context.Context, identity string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, debate_topic, debate_mode, created_at FROM debate_history
		 WHERE username = ? ORDER BY created_at DESC, rowid DESC`, identity)
	if err != nil {
		return nil, fmt.Errorf("store: query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var (
			e       HistoryEntry
			mode    string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Topic, &mode, &created); err != nil {
			return nil, fmt.Errorf("store: scan history: %w", err)
		}
		e.Mode = debate.Mode(mode)
		e.Timestamp = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadSessionByID loads one archived debate owned by identity.
func (s *Store) LoadSessionByID(ctx context.Context, identity, id string) (Record, error) {
	var (
		r                               Record
		mode, stateJSON, turnsJSON, res string
		created                         int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, debate_mode, debate_topic, debate_state, chat_history, final_results, created_at
		 FROM debate_history WHERE id = ?`, id).
		Scan(&r.ID, &r.Identity, &mode, &r.Topic, &stateJSON, &turnsJSON, &res, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: load history: %w", err)
	}
	if r.Identity != identity {
		return Record{}, ErrForbidden
	}

	r.Mode = debate.Mode(mode)
	r.Timestamp = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(stateJSON), &r.State); err != nil {
		return Record{}, fmt.Errorf("store: decode state: %w", err)
	}
	if err := json.Unmarshal([]byte(turnsJSON), &r.Transcript); err != nil {
		return Record{}, fmt.Errorf("store: decode transcript: %w", err)
	}
	if err := json.Unmarshal([]byte(res), &r.Scorecard); err != nil {
		r.Scorecard = judge.Malformed(judge.CauseMalformedResponse, "stored results are unreadable: "+err.Error(), res)
	}
	return r, nil
}
