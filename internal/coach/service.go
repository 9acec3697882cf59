package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rakshana0506/ET-project-deployment/internal/debate"
	"github.com/Rakshana0506/ET-project-deployment/internal/export"
	"github.com/Rakshana0506/ET-project-deployment/internal/judge"
	"github.com/Rakshana0506/ET-project-deployment/internal/speech"
	"github.com/Rakshana0506/ET-project-deployment/internal/stats"
	"github.com/Rakshana0506/ET-project-deployment/internal/store"
)

var (
	ErrNotCompleted       = errors.New("coach: debate has not finished")
	ErrTranscriberMissing = errors.New("coach: speech recognition is not configured")
)

// Archive is the persistence the service needs.
type Archive interface {
	SaveSession(ctx context.Context, identity string, st debate.State, turns []debate.Turn, card judge.Scorecard) (string, error)
	UpdateStatistics(ctx context.Context, identity string, card judge.Scorecard) (stats.Statistics, bool, error)
	ReadStatistics(ctx context.Context, identity string) (stats.Statistics, error)
	LoadHistoryList(ctx context.Context, identity string) ([]store.HistoryEntry, error)
	LoadSessionByID(ctx context.Context, identity, id string) (store.Record, error)
}

// Publisher receives live debate events.
type Publisher interface {
	Publish(debateID, event string, payload any)
}

const (
	EventTurn      = "debate:turn"
	EventCompleted = "debate:completed"
)

type nopPublisher struct{}

func (nopPublisher) Publish(string, string, any) {}

type Options struct {
	Manager           *debate.Manager
	Pipeline          *judge.Pipeline
	Archive           Archive
	Resolver          Resolver
	Publisher         Publisher
	Exporter          *export.Exporter
	GenerationTimeout time.Duration
}

// Service runs debates end to end: turn validation, opponent replies,
// judgment, statistics and archiving.
type Service struct {
	manager    *debate.Manager
	pipeline   *judge.Pipeline
	archive    Archive
	resolver   Resolver
	publisher  Publisher
	exporter   *export.Exporter
	genTimeout time.Duration

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	outcomes map[string]Outcome
}

func New(opts Options) *Service {
	s := &Service{
		manager:    opts.Manager,
		pipeline:   opts.Pipeline,
		archive:    opts.Archive,
		resolver:   opts.Resolver,
		publisher:  opts.Publisher,
		exporter:   opts.Exporter,
		genTimeout: opts.GenerationTimeout,
		locks:      make(map[string]*sync.Mutex),
		outcomes:   make(map[string]Outcome),
	}
	if s.manager == nil {
		s.manager = debate.NewManager()
	}
	if s.pipeline == nil {
		s.pipeline = judge.NewPipeline(0)
	}
	if s.resolver == nil {
		s.resolver = Static{}
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.genTimeout <= 0 {
		s.genTimeout = 60 * time.Second
	}
	return s
}

// SetPublisher swaps the event sink; the socket server registers itself here.
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

func (s *Service) publish(debateID, event string, payload any) {
	s.mu.Lock()
	p := s.publisher
	s.mu.Unlock()
	p.Publish(debateID, event, payload)
}

// Outcome is what the judgment phase produced for a debate.
type Outcome struct {
	Scorecard    judge.Scorecard   `json:"scorecard"`
	Results      Results           `json:"results"`
	ArchiveID    string            `json:"archiveId,omitempty"`
	Statistics   *stats.Statistics `json:"statistics,omitempty"`
	StatsApplied bool              `json:"statsApplied"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// TurnResult is returned from SubmitTurn.
type TurnResult struct {
	Session debate.State  `json:"session"`
	Turns   []debate.Turn `json:"turns"`
	Outcome *Outcome      `json:"outcome,omitempty"`
}

func (s *Service) StartDebate(identity string, cfg debate.Config) (debate.State, error) {
	sess, err := s.manager.Create(identity, cfg)
	if err != nil {
		return debate.State{}, err
	}
	st := sess.Snapshot()
	log.Info().Str("debate", st.ID).Str("user", identity).Str("mode", string(st.Mode)).Int("turns", st.TotalTurns).Msg("debate:start")
	return st, nil
}

// Session returns the live state and transcript of a debate.
func (s *Service) Session(identity, id string) (debate.State, []debate.Turn, error) {
	sess, err := s.manager.Get(identity, id)
	if err != nil {
		return debate.State{}, nil, err
	}
	return sess.Snapshot(), sess.Transcript(), nil
}

// Active returns the identity's most recent live debate.
func (s *Service) Active(identity string) (debate.State, bool) {
	sess, ok := s.manager.Active(identity)
	if !ok {
		return debate.State{}, false
	}
	return sess.Snapshot(), true
}

// Outcome returns the judgment of a completed live debate.
func (s *Service) Outcome(identity, id string) (Outcome, error) {
	if _, err := s.manager.Get(identity, id); err != nil {
		return Outcome{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.outcomes[id]
	if !ok {
		return Outcome{}, ErrNotCompleted
	}
	return o, nil
}

func (s *Service) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[id]
	if l == nil {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// SubmitTurn appends a participant turn and drives the debate forward: the
// opponent reply in practice mode and, when the turn limit is reached, the
// judgment, statistics update and archiving.
func (s *Service) SubmitTurn(ctx context.Context, identity, id string, speaker debate.Role, text, elapsed string) (TurnResult, error) {
	sess, err := s.manager.Get(identity, id)
	if err != nil {
		return TurnResult{}, err
	}
	l := s.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	turn, err := sess.Submit(speaker, text, elapsed)
	if err != nil {
		return TurnResult{}, err
	}
	logger := log.With().Str("debate", id).Str("user", identity).Logger()
	logger.Info().Str("speaker", string(speaker)).Msg("debate:turn")
	s.publish(id, EventTurn, map[string]any{"debateId": id, "turn": turn})

	res := TurnResult{Turns: []debate.Turn{turn}}
	caps := s.resolver.Resolve(ctx, identity)

	if sess.AwaitingReply() {
		reply := s.generate(ctx, caps.Generator, sess)
		res.Turns = append(res.Turns, reply)
		s.publish(id, EventTurn, map[string]any{"debateId": id, "turn": reply})
	}

	st := sess.Snapshot()
	res.Session = st
	if !st.Completed() {
		return res, nil
	}

	// the judgment must survive a client that hangs up mid-request
	outcome := s.complete(context.WithoutCancel(ctx), identity, sess, caps.Evaluator)
	res.Outcome = &outcome
	return res, nil
}

func (s *Service) generate(ctx context.Context, gen debate.Generator, sess *debate.Session) debate.Turn {
	logger := log.With().Str("debate", sess.ID()).Logger()
	var (
		text string
		err  error
	)
	if gen == nil {
		err = errors.New("no opponent generator configured")
	} else {
		gctx, cancel := context.WithTimeout(ctx, s.genTimeout)
		start := time.Now()
		text, err = gen.Generate(gctx, sess.GenerationRequest())
		cancel()
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("empty response")
		}
		logger.Debug().Dur("dur", time.Since(start)).Msg("debate:generate")
	}

	degraded := err != nil
	if degraded {
		logger.Warn().Err(err).Msg("debate:generation-failed")
		text = fmt.Sprintf("An error occurred while generating the AI's response: %v", err)
	}
	turn, appendErr := sess.AppendOpponent(text, degraded)
	if appendErr != nil {
		// only reachable if the reply is no longer owed
		logger.Error().Err(appendErr).Msg("debate:append-reply")
	}
	return turn
}

func (s *Service) complete(ctx context.Context, identity string, sess *debate.Session, ev judge.Evaluator) Outcome {
	st, turns := sess.Snapshot(), sess.Transcript()
	logger := log.With().Str("debate", st.ID).Str("user", identity).Logger()

	card := s.pipeline.Judge(ctx, ev, st, turns)
	out := Outcome{Scorecard: card, Results: BuildResults(st, turns, card)}

	if st.Mode == debate.ModeSingleOpponent && s.archive != nil {
		next, applied, err := s.archive.UpdateStatistics(ctx, identity, card)
		if err != nil {
			logger.Error().Err(err).Msg("stats:persist-failed")
			out.Warnings = append(out.Warnings, "statistics could not be saved")
		} else {
			out.Statistics, out.StatsApplied = &next, applied
		}
	}

	if s.archive != nil {
		archiveID, err := s.archive.SaveSession(ctx, identity, st, turns, card)
		if err != nil {
			logger.Error().Err(err).Msg("history:persist-failed")
			out.Warnings = append(out.Warnings, "debate could not be saved to history")
		} else {
			out.ArchiveID = archiveID
		}
	}

	if s.exporter != nil {
		if err := s.exporter.Append(st, turns, card); err != nil {
			logger.Error().Err(err).Msg("export:failed")
		} else {
			logger.Info().Str("file", s.exporter.Path()).Msg("export:written")
		}
	}

	s.mu.Lock()
	s.outcomes[st.ID] = out
	s.mu.Unlock()

	logger.Info().Str("parseStatus", string(card.ParseStatus)).Str("archive", out.ArchiveID).Msg("debate:completed")
	s.publish(st.ID, EventCompleted, map[string]any{"debateId": st.ID, "outcome": out})
	return out
}

// History lists the identity's archived debates, newest first.
func (s *Service) History(ctx context.Context, identity string) ([]store.HistoryEntry, error) {
	if s.archive == nil {
		return []store.HistoryEntry{}, nil
	}
	return s.archive.LoadHistoryList(ctx, identity)
}

// ArchivedDebate is an archived record with its rendered results.
type ArchivedDebate struct {
	Record  store.Record `json:"record"`
	Results Results      `json:"results"`
}

func (s *Service) Archived(ctx context.Context, identity, id string) (ArchivedDebate, error) {
	if s.archive == nil {
		return ArchivedDebate{}, store.ErrNotFound
	}
	rec, err := s.archive.LoadSessionByID(ctx, identity, id)
	if err != nil {
		return ArchivedDebate{}, err
	}
	return ArchivedDebate{Record: rec, Results: BuildResults(rec.State, rec.Transcript, rec.Scorecard)}, nil
}

func (s *Service) Statistics(ctx context.Context, identity string) (stats.Statistics, error) {
	if s.archive == nil {
		return stats.New(), nil
	}
	return s.archive.ReadStatistics(ctx, identity)
}

// Transcribe recognizes speech in a WAV upload and appends it to draft.
func (s *Service) Transcribe(ctx context.Context, identity string, wav []byte, draft string) (string, error) {
	audio, err := speech.DecodeWAV(wav)
	if err != nil {
		return "", err
	}
	tr := s.resolver.Resolve(ctx, identity).Transcriber
	if tr == nil {
		return "", ErrTranscriberMissing
	}
	text, err := tr.Transcribe(ctx, audio)
	if err != nil {
		return "", err
	}
	log.Debug().Str("user", identity).Int("chars", len(text)).Msg("speech:transcribed")
	return speech.AppendToDraft(draft, text), nil
}

// Sweep forgets live debates created before cutoff.
func (s *Service) Sweep(cutoff time.Time) int {
	removed := s.manager.Sweep(cutoff)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range removed {
		delete(s.locks, id)
		delete(s.outcomes, id)
	}
	return len(removed)
}
