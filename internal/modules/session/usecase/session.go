package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	protocol "siav/internal/modules/protocol/domain"
	"siav/internal/modules/session/domain"
	sessiondto "siav/internal/modules/session/dto"
	sessionin "siav/internal/modules/session/port/in"
	sessionout "siav/internal/modules/session/port/out"
	"siav/internal/modules/session/service"
	apperrors "siav/internal/platform/errors"
	"siav/internal/platform/logging"
)

// Deps are the outbound ports of the session usecase. Sink, Notifier,
// Renderer and Reports are optional.
type Deps struct {
	Active   sessionout.ActiveSessionStore
	Index    sessionout.LogIndex
	Queue    sessionout.OfflineQueue
	Sink     sessionout.SessionLogSink
	Reports  sessionout.ReportWriter
	Notifier sessionout.Notifier
	Renderer sessionout.Renderer
	Ticks    sessionout.TickSource
	Logger   *slog.Logger
}

type Interactor struct {
	svc  *service.SessionService
	deps Deps
	log  *slog.Logger

	// lifecycle serializes start, finish and reset so the marker, the
	// registry and the tick source always change together.
	lifecycle  sync.Mutex
	lastFinish *sessiondto.FinishOutput
}

func NewInteractor(svc *service.SessionService, deps Deps) sessionin.Usecase {
	return &Interactor{svc: svc, deps: deps, log: logging.OrDiscard(deps.Logger)}
}

func (i *Interactor) StartSession(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	i.lifecycle.Lock()
	defer i.lifecycle.Unlock()

	if sid := i.svc.ActiveID(); sid != "" {
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: %s", apperrors.ErrActiveSessionExists, sid)
	}
	if i.deps.Active != nil {
		active, err := i.deps.Active.LoadActive(ctx)
		if err == nil {
			return sessiondto.SessionOutput{}, fmt.Errorf("%w: %s", apperrors.ErrActiveSessionExists, active.SessionID)
		}
		if !errors.Is(err, apperrors.ErrNoActiveSession) {
			return sessiondto.SessionOutput{}, err
		}
	}

	patient := toPatient(input.Patient)
	active, err := i.svc.Start(patient)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	// Only the caller that claimed the registry touches the timers, so a
	// refused start never stops a running session's ticks.
	if i.deps.Ticks != nil {
		i.deps.Ticks.Stop()
	}
	i.lastFinish = nil
	if i.deps.Active != nil {
		if err := i.deps.Active.SaveActive(ctx, active); err != nil {
			i.svc.Discard()
			return sessiondto.SessionOutput{}, err
		}
	}
	if i.deps.Ticks != nil {
		if err := i.deps.Ticks.Start(context.WithoutCancel(ctx), i.onTick); err != nil {
			i.svc.Discard()
			if i.deps.Active != nil {
				_ = i.deps.Active.ClearActive(ctx)
			}
			return sessiondto.SessionOutput{}, fmt.Errorf("start tick source: %w", err)
		}
	}
	if state, err := i.svc.Snapshot(); err == nil {
		i.render(ctx, state)
	}
	return sessiondto.SessionOutput{
		SessionID:   active.SessionID,
		PatientName: active.PatientName,
		StartedAt:   active.StartedAt,
		Pediatric:   patient.Pediatric(),
	}, nil
}

func (i *Interactor) BeginCompressions(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	res, err := i.apply(ctx, "begin_compressions", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		return sess.BeginCompressions(now)
	})
	return toSnapshot(res.State), err
}

func (i *Interactor) TriggerRhythmCheck(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	res, err := i.apply(ctx, "rhythm_check", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		return sess.TriggerRhythmCheck(now)
	})
	return toSnapshot(res.State), err
}

func (i *Interactor) RecordRhythm(ctx context.Context, input sessiondto.RhythmInput) (sessiondto.RhythmOutput, error) {
	kind, err := protocol.ParseRhythmKind(input.Rhythm)
	if err != nil {
		return sessiondto.RhythmOutput{}, err
	}
	var shockable bool
	res, err := i.apply(ctx, "rhythm", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		var cues []domain.Cue
		var recErr error
		shockable, cues, recErr = sess.RecordRhythm(now, kind, strings.TrimSpace(input.Notes))
		return cues, recErr
	})
	if err != nil {
		return sessiondto.RhythmOutput{}, err
	}
	return sessiondto.RhythmOutput{Rhythm: string(kind), Label: kind.Label(), Shockable: shockable, Phase: string(res.State.Phase)}, nil
}

func (i *Interactor) RecordShock(ctx context.Context, input sessiondto.ShockInput) (sessiondto.ShockOutput, error) {
	var shock protocol.ShockRecord
	res, err := i.apply(ctx, "shock", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		var cues []domain.Cue
		var recErr error
		shock, cues, recErr = sess.RecordShock(now, input.Joules)
		return cues, recErr
	})
	if err != nil {
		return sessiondto.ShockOutput{}, err
	}
	return sessiondto.ShockOutput{Ordinal: shock.Ordinal, Joules: shock.EnergyJoules, Phase: string(res.State.Phase), Cycle: res.State.CycleCount}, nil
}

func (i *Interactor) RecordMedication(ctx context.Context, input sessiondto.MedicationInput) (sessiondto.MedicationOutput, error) {
	drug, err := protocol.ParseDrug(input.Drug)
	if err != nil {
		return sessiondto.MedicationOutput{}, err
	}
	route, err := protocol.ParseRoute(input.Route)
	if err != nil {
		return sessiondto.MedicationOutput{}, err
	}
	var event protocol.MedicationEvent
	_, err = i.apply(ctx, "medication", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		var cues []domain.Cue
		var recErr error
		event, cues, recErr = sess.RecordMedication(now, drug, input.Dose, route)
		return cues, recErr
	})
	if err != nil {
		return sessiondto.MedicationOutput{}, err
	}
	return sessiondto.MedicationOutput{Drug: event.Drug.DisplayName(), Dose: event.DoseText, Route: string(event.Route), At: event.AdministeredAt}, nil
}

func (i *Interactor) AddNote(ctx context.Context, input sessiondto.NoteInput) error {
	severity := protocol.Severity(strings.ToLower(strings.TrimSpace(input.Severity)))
	_, err := i.apply(ctx, "note", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		return sess.AddNote(now, input.Text, severity)
	})
	return err
}

func (i *Interactor) RecordVitals(ctx context.Context, input sessiondto.VitalsInput) (sessiondto.VitalsOutput, error) {
	vitals := protocol.Vitals{Systolic: input.Systolic, Diastolic: input.Diastolic, HeartRate: input.HeartRate, SpO2: input.SpO2}
	var status protocol.VitalsStatus
	_, err := i.apply(ctx, "vitals", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		var cues []domain.Cue
		var recErr error
		status, cues, recErr = sess.RecordVitals(now, vitals)
		return cues, recErr
	})
	if err != nil {
		return sessiondto.VitalsOutput{}, err
	}
	return sessiondto.VitalsOutput{MAP: vitals.MAP(), Severity: string(status.Severity), Findings: status.Findings}, nil
}

func (i *Interactor) RecordGlasgow(ctx context.Context, input sessiondto.GlasgowInput) (sessiondto.GlasgowOutput, error) {
	g := protocol.Glasgow{Eye: input.Eye, Verbal: input.Verbal, Motor: input.Motor}
	var band string
	_, err := i.apply(ctx, "glasgow", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		var cues []domain.Cue
		var recErr error
		band, cues, recErr = sess.RecordGlasgow(now, g)
		return cues, recErr
	})
	if err != nil {
		return sessiondto.GlasgowOutput{}, err
	}
	return sessiondto.GlasgowOutput{Total: g.Total(), Band: band}, nil
}

func (i *Interactor) CheckQuality(ctx context.Context, input sessiondto.QualityInput) (sessiondto.QualityOutput, error) {
	var fb protocol.QualityFeedback
	_, err := i.apply(ctx, "quality", func(sess *domain.Session, now time.Time) ([]domain.Cue, error) {
		var cues []domain.Cue
		var recErr error
		fb, cues, recErr = sess.CheckQuality(now, input.Rate, input.DepthCm)
		return cues, recErr
	})
	if err != nil {
		return sessiondto.QualityOutput{}, err
	}
	return sessiondto.QualityOutput{OK: fb.OK(), Messages: fb.Messages}, nil
}

func (i *Interactor) Tick(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	res, err := i.svc.Tick()
	if err != nil {
		return sessiondto.SnapshotOutput{}, err
	}
	i.dispatch(ctx, res)
	return toSnapshot(res.State), nil
}

func (i *Interactor) Snapshot(_ context.Context) (sessiondto.SnapshotOutput, error) {
	state, err := i.svc.Snapshot()
	if err != nil {
		return sessiondto.SnapshotOutput{}, err
	}
	return toSnapshot(state), nil
}

func (i *Interactor) ShockAdvice(_ context.Context) (sessiondto.ShockAdviceOutput, error) {
	advice, err := i.svc.ShockAdvice()
	if err != nil {
		return sessiondto.ShockAdviceOutput{}, err
	}
	return sessiondto.ShockAdviceOutput{Joules: advice.Joules, Options: advice.Options, Basis: advice.Basis}, nil
}

func (i *Interactor) RecordROSC(ctx context.Context) (sessiondto.FinishOutput, error) {
	return i.finish(ctx, "", true)
}

func (i *Interactor) FinishSession(ctx context.Context, input sessiondto.FinishInput) (sessiondto.FinishOutput, error) {
	return i.finish(ctx, input.Notes, false)
}

// finish repeated after a successful close returns the earlier result and
// changes nothing.
func (i *Interactor) finish(ctx context.Context, notes string, rosc bool) (sessiondto.FinishOutput, error) {
	i.lifecycle.Lock()
	defer i.lifecycle.Unlock()

	if i.svc.ActiveID() == "" {
		if i.lastFinish != nil {
			return *i.lastFinish, nil
		}
		return sessiondto.FinishOutput{}, apperrors.ErrNoActiveSession
	}
	// A tick in flight completes before the session closes; later ones find
	// no active session.
	if i.deps.Ticks != nil {
		i.deps.Ticks.Stop()
	}
	fin, err := i.svc.Finish(notes, rosc)
	if err != nil {
		return sessiondto.FinishOutput{}, err
	}
	if state, err := fin.Session.State(); err == nil {
		i.render(ctx, state)
	}

	out, persistErr := i.persist(ctx, fin.Log)
	if i.deps.Active != nil {
		if err := i.deps.Active.ClearActive(ctx); err != nil {
			persistErr = errors.Join(persistErr, err)
		}
	}
	out.Summary = toSummary(fin.Summary)
	i.lastFinish = &out
	return out, persistErr
}

// persist writes the report, tries the remote sink and archives locally.
// A sink failure queues the log; the error is returned only when the log
// could not be kept anywhere.
func (i *Interactor) persist(ctx context.Context, log domain.SessionLog) (sessiondto.FinishOutput, error) {
	out := sessiondto.FinishOutput{SessionID: log.SessionID, EndedAt: log.EndedAt}
	lg := i.log.With("session_id", log.SessionID)

	if i.deps.Reports != nil {
		path, err := i.deps.Reports.WriteReport(ctx, log)
		if err != nil {
			lg.Error("write report failed", "err", err)
		} else {
			log.ReportPath = path
			out.ReportPath = path
		}
	}

	var sinkErr error
	if i.deps.Sink != nil {
		if _, sinkErr = i.deps.Sink.SaveSessionLog(ctx, log); sinkErr == nil {
			out.Synced = true
		} else {
			i.svc.SinkFailed()
			lg.Warn("log sink failed, queueing", "err", sinkErr)
		}
	}

	var kept []error
	if i.deps.Index != nil {
		if err := i.deps.Index.PutLog(ctx, log, out.Synced); err != nil {
			lg.Error("archive log failed", "err", err)
			kept = append(kept, err)
		}
	}
	if sinkErr != nil && i.deps.Queue != nil {
		if err := i.deps.Queue.Enqueue(ctx, log); err != nil {
			lg.Error("enqueue log failed", "err", err)
			kept = append(kept, err)
		} else {
			out.Queued = true
		}
	}

	stored := out.Synced || out.Queued || (i.deps.Index != nil && len(kept) == 0)
	if !stored && (sinkErr != nil || len(kept) > 0) {
		return out, fmt.Errorf("session %s log not persisted: %w", log.SessionID, errors.Join(append(kept, sinkErr)...))
	}
	return out, nil
}

func (i *Interactor) SyncPending(ctx context.Context) (int, error) {
	if i.deps.Sink == nil {
		return 0, apperrors.ErrSinkNotConfigured
	}
	if i.deps.Queue == nil {
		return 0, nil
	}
	pending, err := i.deps.Queue.Pending(ctx)
	if err != nil {
		return 0, err
	}
	delivered := 0
	var firstErr error
	for _, log := range pending {
		if _, err := i.deps.Sink.SaveSessionLog(ctx, log); err != nil {
			i.log.Warn("sync failed", "session_id", log.SessionID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := i.deps.Queue.MarkSynced(ctx, log.SessionID); err != nil {
			return delivered, err
		}
		delivered++
	}
	if firstErr != nil {
		return delivered, fmt.Errorf("%d of %d logs still pending: %w", len(pending)-delivered, len(pending), firstErr)
	}
	return delivered, nil
}

func (i *Interactor) ListLogs(ctx context.Context, limit int) ([]sessiondto.LogOutput, error) {
	if i.deps.Index == nil {
		return nil, nil
	}
	records, err := i.deps.Index.ListLogs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.LogOutput, 0, len(records))
	for _, rec := range records {
		out = append(out, sessiondto.LogOutput{
			SessionID:   rec.Log.SessionID,
			PatientName: rec.Log.Patient.Name,
			StartedAt:   rec.Log.StartedAt,
			EndedAt:     rec.Log.EndedAt,
			ReportPath:  rec.Log.ReportPath,
			Synced:      rec.Synced,
			Summary:     toSummary(rec.Log.Summary),
		})
	}
	return out, nil
}

// ResetActive abandons any running session and clears the on-disk marker
// without writing a log.
func (i *Interactor) ResetActive(ctx context.Context) error {
	i.lifecycle.Lock()
	defer i.lifecycle.Unlock()

	i.lastFinish = nil
	if i.deps.Ticks != nil {
		i.deps.Ticks.Stop()
	}
	i.svc.Discard()
	if i.deps.Active == nil {
		return nil
	}
	return i.deps.Active.ClearActive(ctx)
}

func (i *Interactor) apply(ctx context.Context, op string, fn func(*domain.Session, time.Time) ([]domain.Cue, error)) (service.Result, error) {
	res, err := i.svc.Do(op, fn)
	if res.State.SessionID != "" {
		i.dispatch(ctx, res)
	}
	return res, err
}

func (i *Interactor) onTick(ctx context.Context) {
	if _, err := i.Tick(ctx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
		i.log.Error("tick failed", "err", err)
	}
}

// dispatch runs outside the service lock.
func (i *Interactor) dispatch(ctx context.Context, res service.Result) {
	if i.deps.Notifier != nil {
		for _, cue := range res.Cues {
			if err := i.deps.Notifier.Notify(ctx, res.State.SessionID, cue); err != nil {
				i.log.Warn("notify failed", "session_id", res.State.SessionID, "cue", cue, "err", err)
			}
		}
	}
	i.render(ctx, res.State)
}

func (i *Interactor) render(ctx context.Context, state domain.State) {
	if i.deps.Renderer == nil {
		return
	}
	if err := i.deps.Renderer.Render(ctx, toSnapshot(state)); err != nil {
		i.log.Warn("render failed", "session_id", state.SessionID, "err", err)
	}
}
