package service

import (
	"log/slog"
	"os"
	"sync"
	"time"

	protocol "siav/internal/modules/protocol/domain"
	"siav/internal/modules/session/domain"
	"siav/internal/platform/clock"
	apperrors "siav/internal/platform/errors"
	"siav/internal/platform/id"
	"siav/internal/platform/logging"
	"siav/internal/platform/metrics"
)

// Result is what an engine operation hands back to the caller: the state
// right after the operation and the cues it raised.
type Result struct {
	State domain.State
	Cues  []domain.Cue
}

// Finished carries a closed session out of the registry.
type Finished struct {
	Session *domain.Session
	Summary protocol.Summary
	Log     domain.SessionLog
}

// SessionService is the registry of the single active session. Every
// operation runs under one lock, so a rhythm recorded during a tick is seen
// by the next recommendation.
type SessionService struct {
	clock   clock.Clock
	idGen   id.Generator
	logger  *slog.Logger
	metrics *metrics.Engine
	device  protocol.Defibrillator

	mu      sync.Mutex
	current *domain.Session
	lastRec protocol.Recommendation
}

func NewSessionService(clock clock.Clock, idGen id.Generator, device protocol.Defibrillator, logger *slog.Logger, m *metrics.Engine) *SessionService {
	if device == "" {
		device = protocol.Biphasic
	}
	return &SessionService{clock: clock, idGen: idGen, device: device, logger: logging.OrDiscard(logger), metrics: m}
}

func (s *SessionService) Start(patient protocol.Patient) (domain.ActiveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Active() {
		return domain.ActiveSession{}, apperrors.ErrActiveSessionExists
	}
	now := s.clock.Now()
	sess, err := domain.New(s.idGen.New(), now, patient)
	if err != nil {
		return domain.ActiveSession{}, err
	}
	s.current = sess
	s.lastRec = protocol.Recommendation{}
	s.metrics.SessionStarted()
	s.logger.Info("session started", "session_id", sess.ID, "pediatric", patient.Pediatric())
	return domain.ActiveSession{
		SessionID:   sess.ID,
		PatientName: patient.Name,
		StartedAt:   now,
		PID:         os.Getpid(),
	}, nil
}

// Do runs op against the active session. Cues raised before a failure (a
// boundary crossed while syncing time) are still returned.
func (s *SessionService) Do(op string, fn func(sess *domain.Session, now time.Time) ([]domain.Cue, error)) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.activeLocked()
	if err != nil {
		return Result{}, err
	}
	before := sess.Entries()
	cues, opErr := fn(sess, s.clock.Now())
	s.countEvents(before, sess.Entries())
	state, err := sess.State()
	if err != nil {
		return Result{Cues: cues}, err
	}
	cues = append(cues, s.drugEdgeLocked(state.Recommendation)...)
	for _, cue := range cues {
		s.metrics.Cue(string(cue))
	}
	if opErr != nil {
		s.metrics.Rejected(op)
		s.logger.Warn("action rejected", "session_id", sess.ID, "action", op, "phase", state.Phase, "err", opErr)
		return Result{State: state, Cues: cues}, opErr
	}
	s.logger.Debug("action applied", "session_id", sess.ID, "action", op, "phase", state.Phase, "cycle", state.CycleCount)
	return Result{State: state, Cues: cues}, nil
}

// Tick advances logical time to the clock.
func (s *SessionService) Tick() (Result, error) {
	return s.Do("tick", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		return sess.Sync(now), nil
	})
}

func (s *SessionService) Snapshot() (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.activeLocked()
	if err != nil {
		return domain.State{}, err
	}
	return sess.State()
}

func (s *SessionService) ShockAdvice() (protocol.ShockAdvice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.activeLocked()
	if err != nil {
		return protocol.ShockAdvice{}, err
	}
	return sess.ShockAdvice(s.device), nil
}

// Finish closes the active session and removes it from the registry. With
// rosc set the ROSC marker is recorded first.
func (s *SessionService) Finish(notes string, rosc bool) (Finished, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.activeLocked()
	if err != nil {
		return Finished{}, err
	}
	now := s.clock.Now()
	var summary protocol.Summary
	if rosc {
		summary, err = sess.RecordROSC(now, notes)
		if err != nil {
			return Finished{}, err
		}
	} else {
		var ok bool
		summary, ok = sess.Finish(now, notes)
		if !ok {
			return Finished{}, apperrors.ErrNoActiveSession
		}
	}
	s.current = nil
	s.lastRec = protocol.Recommendation{}
	s.metrics.SessionFinished(summary.ROSC)
	s.logger.Info("session finished", "session_id", sess.ID, "rosc", summary.ROSC, "duration_s", summary.DurationSeconds, "shocks", summary.ShockCount)
	return Finished{Session: sess, Summary: summary, Log: domain.NewSessionLog(sess, summary)}, nil
}

func (s *SessionService) SinkFailed() {
	s.metrics.SinkFailure()
}

// Discard drops the in-memory session without recording anything.
func (s *SessionService) Discard() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	sid := s.current.ID
	s.current = nil
	s.lastRec = protocol.Recommendation{}
	s.logger.Warn("session discarded", "session_id", sid)
	return sid
}

func (s *SessionService) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || !s.current.Active() {
		return ""
	}
	return s.current.ID
}

func (s *SessionService) activeLocked() (*domain.Session, error) {
	if s.current == nil || !s.current.Active() {
		return nil, apperrors.ErrNoActiveSession
	}
	return s.current, nil
}

// drugEdgeLocked raises DRUG when a drug recommendation first appears or
// switches to a different drug decision.
func (s *SessionService) drugEdgeLocked(rec protocol.Recommendation) []domain.Cue {
	prev := s.lastRec
	s.lastRec = rec
	if rec.CriticalAction != protocol.ActionDrug {
		return nil
	}
	if prev.CriticalAction == protocol.ActionDrug && prev.Reason == rec.Reason {
		return nil
	}
	return []domain.Cue{domain.CueDrug}
}

func (s *SessionService) countEvents(before, after []protocol.TimelineEntry) {
	for _, e := range after[len(before):] {
		s.metrics.Event(string(e.Event.Kind()))
	}
}
