package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	protocol "siav/internal/modules/protocol/domain"
	sessionout "siav/internal/modules/session/adapter/out"
	"siav/internal/modules/session/domain"
	sessiondto "siav/internal/modules/session/dto"
	sessionin "siav/internal/modules/session/port/in"
	sessionoutport "siav/internal/modules/session/port/out"
	"siav/internal/modules/session/service"
	"siav/internal/modules/session/usecase"
	apperrors "siav/internal/platform/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeID struct{ n int }

func (f *fakeID) New() string {
	f.n++
	return "sess-" + string(rune('0'+f.n))
}

type fakeTicks struct {
	mu     sync.Mutex
	fn     func(context.Context)
	starts int
	stops  int
}

func (f *fakeTicks) Start(_ context.Context, fn func(context.Context)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
	f.starts++
	return nil
}

func (f *fakeTicks) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = nil
	f.stops++
}

// fire delivers one tick the way the real source does, if still running.
func (f *fakeTicks) fire(ctx context.Context) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(ctx)
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	cues []domain.Cue
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, cue domain.Cue) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cues = append(n.cues, cue)
	return nil
}

// take returns the cues seen since the previous call.
func (n *recordingNotifier) take() []domain.Cue {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.cues
	n.cues = nil
	return out
}

type recordingRenderer struct {
	mu    sync.Mutex
	count int
	last  sessiondto.SnapshotOutput
}

func (r *recordingRenderer) Render(_ context.Context, snap sessiondto.SnapshotOutput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	r.last = snap
	return nil
}

type fakeSink struct {
	err   error
	saved []string
}

func (s *fakeSink) SaveSessionLog(_ context.Context, log domain.SessionLog) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, log.SessionID)
	return log.SessionID, nil
}

type harness struct {
	uc       sessionin.Usecase
	clk      *fakeClock
	ticks    *fakeTicks
	notifier *recordingNotifier
	renderer *recordingRenderer
	sink     *fakeSink
	active   string
	reports  string
}

func newHarness(t *testing.T, sink *fakeSink) *harness {
	t.Helper()
	return newHarnessWithActive(t, sink, nil)
}

// newHarnessWithActive lets wrap decorate the file-backed active session
// store.
func newHarnessWithActive(t *testing.T, sink *fakeSink, wrap func(sessionoutport.ActiveSessionStore) sessionoutport.ActiveSessionStore) *harness {
	t.Helper()
	dir := t.TempDir()
	store, err := sessionout.NewSQLiteLogStore(filepath.Join(dir, ".siav", "siav.db"))
	if err != nil {
		t.Fatalf("open log store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	h := &harness{
		clk:      &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)},
		ticks:    &fakeTicks{},
		notifier: &recordingNotifier{},
		renderer: &recordingRenderer{},
		sink:     sink,
		active:   filepath.Join(dir, ".siav", "active-session.json"),
		reports:  filepath.Join(dir, "reports"),
	}
	svc := service.NewSessionService(h.clk, &fakeID{}, protocol.Biphasic, nil, nil)
	var active sessionoutport.ActiveSessionStore = sessionout.NewFileActiveSessionStore(h.active)
	if wrap != nil {
		active = wrap(active)
	}
	deps := usecase.Deps{
		Active:   active,
		Index:    store,
		Queue:    store,
		Reports:  sessionout.NewMarkdownReportWriter(h.reports),
		Notifier: h.notifier,
		Renderer: h.renderer,
		Ticks:    h.ticks,
	}
	if sink != nil {
		deps.Sink = sink
	}
	h.uc = usecase.NewInteractor(svc, deps)
	return h
}

func (h *harness) start(t *testing.T, patient sessiondto.PatientInput) sessiondto.SessionOutput {
	t.Helper()
	out, err := h.uc.StartSession(context.Background(), sessiondto.StartInput{Patient: patient})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return out
}

func (h *harness) snapshot(t *testing.T) sessiondto.SnapshotOutput {
	t.Helper()
	snap, err := h.uc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

func hasCue(cues []domain.Cue, want domain.Cue) bool {
	for _, c := range cues {
		if c == want {
			return true
		}
	}
	return false
}

func TestScenarioNonShockableAutoCheckThenAdrenaline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	h.start(t, sessiondto.PatientInput{Name: "Maria", AgeYears: 64, WeightKg: 70})

	if _, err := h.uc.BeginCompressions(ctx); err != nil {
		t.Fatalf("begin compressions: %v", err)
	}
	h.clk.Advance(60 * time.Second)
	h.ticks.fire(ctx)
	if snap := h.snapshot(t); snap.Phase != "compressions" || snap.Progress != 50 {
		t.Fatalf("mid-cycle state got phase=%s progress=%v", snap.Phase, snap.Progress)
	}

	h.clk.Advance(60 * time.Second)
	h.ticks.fire(ctx)
	h.ticks.fire(ctx)
	cues := h.notifier.take()
	checks := 0
	for _, c := range cues {
		if c == domain.CueCheckRhythm {
			checks++
		}
	}
	if checks != 1 {
		t.Fatalf("rhythm check must fire exactly once, cues=%v", cues)
	}
	snap := h.snapshot(t)
	if snap.Phase != "rhythm_check" || snap.Progress != 0 {
		t.Fatalf("expected rhythm_check with reset progress, got %s %v", snap.Phase, snap.Progress)
	}
	if snap.Recommendation.CriticalAction != "" {
		t.Fatalf("no drug before any rhythm, got %+v", snap.Recommendation)
	}

	out, err := h.uc.RecordRhythm(ctx, sessiondto.RhythmInput{Rhythm: "AESP"})
	if err != nil {
		t.Fatalf("record rhythm: %v", err)
	}
	if out.Shockable || out.Phase != "compressions" {
		t.Fatalf("unexpected rhythm output: %+v", out)
	}
	snap = h.snapshot(t)
	if snap.CycleCount != 2 {
		t.Fatalf("cycle count got=%d want=2", snap.CycleCount)
	}
	rec := snap.Recommendation
	if rec.CriticalAction != "DRUG" || rec.Reason != string(protocol.ReasonAdrenalineFirstDose) {
		t.Fatalf("expected immediate adrenaline, got %+v", rec)
	}
	if !strings.Contains(rec.Secondary, "5H") {
		t.Fatalf("non-shockable must remind reversible causes, got %q", rec.Secondary)
	}
	if !hasCue(h.notifier.take(), domain.CueDrug) {
		t.Fatalf("expected DRUG cue on adrenaline recommendation")
	}
}

func TestScenarioShockableAwaitsTwoShocksThenDrugs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	h.start(t, sessiondto.PatientInput{Name: "José"})

	rhythm, err := h.uc.RecordRhythm(ctx, sessiondto.RhythmInput{Rhythm: "FV"})
	if err != nil {
		t.Fatalf("record rhythm: %v", err)
	}
	if !rhythm.Shockable || rhythm.Phase != "shock_advised" {
		t.Fatalf("unexpected rhythm output: %+v", rhythm)
	}
	if !hasCue(h.notifier.take(), domain.CueShock) {
		t.Fatalf("expected SHOCK cue")
	}

	shock, err := h.uc.RecordShock(ctx, sessiondto.ShockInput{Joules: 200})
	if err != nil {
		t.Fatalf("record shock: %v", err)
	}
	if shock.Ordinal != 1 || shock.Phase != "compressions" || shock.Cycle != 1 {
		t.Fatalf("unexpected shock output: %+v", shock)
	}
	snap := h.snapshot(t)
	if snap.ShockCount != 1 || snap.Recommendation.CriticalAction != "" {
		t.Fatalf("no drug after first shock, got %+v", snap.Recommendation)
	}
	if !strings.Contains(strings.ToLower(snap.Recommendation.Message), "awaiting 2 shocks (1/2)") {
		t.Fatalf("unexpected message %q", snap.Recommendation.Message)
	}

	// Second loop: the cycle runs out, the rhythm is still VF, second shock.
	h.clk.Advance(2 * time.Minute)
	h.ticks.fire(ctx)
	if _, err := h.uc.RecordRhythm(ctx, sessiondto.RhythmInput{Rhythm: "vf"}); err != nil {
		t.Fatalf("record second rhythm: %v", err)
	}
	if _, err := h.uc.RecordShock(ctx, sessiondto.ShockInput{Joules: 200}); err != nil {
		t.Fatalf("record second shock: %v", err)
	}
	snap = h.snapshot(t)
	if snap.ShockCount != 2 || snap.CycleCount != 2 {
		t.Fatalf("unexpected counts shocks=%d cycle=%d", snap.ShockCount, snap.CycleCount)
	}
	if snap.Recommendation.Reason != string(protocol.ReasonAdrenalineFirstDose) {
		t.Fatalf("expected adrenaline after 2nd shock, got %+v", snap.Recommendation)
	}
	h.notifier.take()

	med, err := h.uc.RecordMedication(ctx, sessiondto.MedicationInput{Drug: "adrenalina"})
	if err != nil {
		t.Fatalf("record adrenaline: %v", err)
	}
	if !strings.HasPrefix(med.Dose, "1 mg") || med.Route != "EV" {
		t.Fatalf("unexpected default dose: %+v", med)
	}
	snap = h.snapshot(t)
	if snap.Recommendation.Reason != string(protocol.ReasonAmiodaroneFirstDose) || !strings.Contains(snap.Recommendation.Message, "300") {
		t.Fatalf("expected amiodarone 300 once adrenaline was given, got %+v", snap.Recommendation)
	}
	if snap.Recommendation.Countdown != protocol.AdrenalineIntervalSeconds {
		t.Fatalf("adrenaline countdown got=%d", snap.Recommendation.Countdown)
	}
	if !hasCue(h.notifier.take(), domain.CueDrug) {
		t.Fatalf("switching to amiodarone must raise a DRUG cue")
	}
}

func TestStartRejectsSecondSessionAndKeepsFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	first := h.start(t, sessiondto.PatientInput{Name: "Ana"})
	if _, err := h.uc.BeginCompressions(ctx); err != nil {
		t.Fatalf("begin compressions: %v", err)
	}

	_, err := h.uc.StartSession(ctx, sessiondto.StartInput{Patient: sessiondto.PatientInput{Name: "Bruno"}})
	if !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected active session error, got %v", err)
	}
	snap := h.snapshot(t)
	if snap.SessionID != first.SessionID || snap.PatientName != "Ana" || snap.Phase != "compressions" {
		t.Fatalf("first session was disturbed: %+v", snap)
	}
	if h.ticks.starts != 1 || h.ticks.stops != 1 {
		t.Fatalf("rejected start must not touch the running ticker, starts=%d stops=%d", h.ticks.starts, h.ticks.stops)
	}
}

// gatedActiveStore reports "no marker" on its first load and then holds the
// caller until released, widening the window between the refusal checks and
// the claim.
type gatedActiveStore struct {
	sessionoutport.ActiveSessionStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedActiveStore) LoadActive(ctx context.Context) (domain.ActiveSession, error) {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return g.ActiveSessionStore.LoadActive(ctx)
}

func TestConcurrentStartsKeepWinnerTicking(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gate := &gatedActiveStore{entered: make(chan struct{}), release: make(chan struct{})}
	h := newHarnessWithActive(t, nil, func(inner sessionoutport.ActiveSessionStore) sessionoutport.ActiveSessionStore {
		gate.ActiveSessionStore = inner
		return gate
	})

	type result struct {
		out sessiondto.SessionOutput
		err error
	}
	results := make(chan result, 2)
	start := func(name string) {
		out, err := h.uc.StartSession(ctx, sessiondto.StartInput{Patient: sessiondto.PatientInput{Name: name}})
		results <- result{out, err}
	}

	go start("Bruno")
	<-gate.entered
	go start("Ana")
	time.Sleep(50 * time.Millisecond)
	close(gate.release)

	var winner sessiondto.SessionOutput
	refused := 0
	for n := 0; n < 2; n++ {
		r := <-results
		switch {
		case r.err == nil:
			winner = r.out
		case errors.Is(r.err, apperrors.ErrActiveSessionExists):
			refused++
		default:
			t.Fatalf("unexpected start error: %v", r.err)
		}
	}
	if refused != 1 || winner.SessionID == "" {
		t.Fatalf("exactly one start must win, refused=%d winner=%+v", refused, winner)
	}

	snap := h.snapshot(t)
	if snap.SessionID != winner.SessionID {
		t.Fatalf("active session %q, winner %q", snap.SessionID, winner.SessionID)
	}
	h.ticks.mu.Lock()
	running, starts := h.ticks.fn != nil, h.ticks.starts
	h.ticks.mu.Unlock()
	if !running || starts != 1 {
		t.Fatalf("winner must keep its tick source, running=%v starts=%d", running, starts)
	}
}

func TestStartRejectsMarkerFromAnotherProcess(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	store := sessionout.NewFileActiveSessionStore(h.active)
	if err := store.SaveActive(context.Background(), domain.ActiveSession{SessionID: "other", StartedAt: time.Now()}); err != nil {
		t.Fatalf("seed marker: %v", err)
	}
	_, err := h.uc.StartSession(context.Background(), sessiondto.StartInput{})
	if !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected active session error, got %v", err)
	}
	if err := h.uc.ResetActive(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	h.start(t, sessiondto.PatientInput{})
}

func TestClinicalActionsRequireActiveSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	if _, err := h.uc.RecordShock(ctx, sessiondto.ShockInput{Joules: 200}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("shock: expected no active session, got %v", err)
	}
	if _, err := h.uc.RecordMedication(ctx, sessiondto.MedicationInput{Drug: "adrenaline"}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("drug: expected no active session, got %v", err)
	}
	if _, err := h.uc.RecordRhythm(ctx, sessiondto.RhythmInput{Rhythm: "FV"}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("rhythm: expected no active session, got %v", err)
	}
}

func TestClinicalValidationBlocksAction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	h.start(t, sessiondto.PatientInput{})

	if _, err := h.uc.RecordRhythm(ctx, sessiondto.RhythmInput{Rhythm: "sinus"}); !errors.Is(err, protocol.ErrInvalidRhythmKind) {
		t.Fatalf("expected invalid rhythm, got %v", err)
	}
	if _, err := h.uc.RecordMedication(ctx, sessiondto.MedicationInput{Drug: "aspirin"}); !errors.Is(err, protocol.ErrUnknownDrug) {
		t.Fatalf("expected unknown drug, got %v", err)
	}
	if _, err := h.uc.RecordShock(ctx, sessiondto.ShockInput{Joules: 200}); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("shock outside shock_advised must conflict, got %v", err)
	}
	if _, err := h.uc.RecordRhythm(ctx, sessiondto.RhythmInput{Rhythm: "FV"}); err != nil {
		t.Fatalf("record rhythm: %v", err)
	}
	if _, err := h.uc.RecordShock(ctx, sessiondto.ShockInput{Joules: 0}); !errors.Is(err, protocol.ErrInvalidEnergy) {
		t.Fatalf("expected invalid energy, got %v", err)
	}
	snap := h.snapshot(t)
	if snap.ShockCount != 0 || snap.Phase != "shock_advised" {
		t.Fatalf("rejected shock must not change state: %+v", snap)
	}
}

func TestFinishIsIdempotentAndStopsTicks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, &fakeSink{})
	h.start(t, sessiondto.PatientInput{Name: "Carla"})
	if _, err := h.uc.BeginCompressions(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	h.clk.Advance(90 * time.Second)
	h.ticks.mu.Lock()
	lateTick := h.ticks.fn
	h.ticks.mu.Unlock()

	out, err := h.uc.FinishSession(ctx, sessiondto.FinishInput{Notes: "family present"})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !out.Synced || out.Queued || out.ReportPath == "" {
		t.Fatalf("unexpected finish output: %+v", out)
	}
	if out.Summary.DurationSeconds != 90 || out.Summary.CompressionSeconds != 90 {
		t.Fatalf("unexpected summary: %+v", out.Summary)
	}
	if h.renderer.last.Active {
		t.Fatalf("final render must show an inactive session")
	}

	if h.ticks.stops != 2 {
		t.Fatalf("finish must stop the tick source, stops=%d", h.ticks.stops)
	}
	rendersBefore := h.renderer.count
	lateTick(ctx)
	if h.renderer.count != rendersBefore {
		t.Fatalf("a late tick must be a no-op")
	}
	if _, err := h.uc.Tick(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("tick after finish: expected no active session, got %v", err)
	}

	again, err := h.uc.FinishSession(ctx, sessiondto.FinishInput{Notes: "ignored"})
	if err != nil {
		t.Fatalf("second finish must be a no-op, got %v", err)
	}
	if again.SessionID != out.SessionID || again.ReportPath != out.ReportPath || again.Summary.DurationSeconds != out.Summary.DurationSeconds {
		t.Fatalf("second finish must repeat the first result: %+v", again)
	}
	if len(h.sink.saved) != 1 {
		t.Fatalf("sink must receive the log once, got %v", h.sink.saved)
	}
	raw, err := os.ReadFile(out.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if got := strings.Count(string(raw), "session finished"); got != 1 {
		t.Fatalf("finish marker must appear once, got %d", got)
	}
	if _, err := os.Stat(h.active); !os.IsNotExist(err) {
		t.Fatalf("active marker must be cleared, stat err=%v", err)
	}
	h.start(t, sessiondto.PatientInput{Name: "Next"})
}

func TestROSCFinishesSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	h.start(t, sessiondto.PatientInput{})
	if _, err := h.uc.BeginCompressions(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	h.clk.Advance(30 * time.Second)
	out, err := h.uc.RecordROSC(ctx)
	if err != nil {
		t.Fatalf("rosc: %v", err)
	}
	if !out.Summary.ROSC || out.Synced || out.Queued {
		t.Fatalf("unexpected rosc output: %+v", out)
	}
	if again, err := h.uc.RecordROSC(ctx); err != nil || again.SessionID != out.SessionID {
		t.Fatalf("second rosc must be a no-op: out=%+v err=%v", again, err)
	}
	logs, err := h.uc.ListLogs(ctx, 10)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || !logs[0].Summary.ROSC || logs[0].Synced {
		t.Fatalf("unexpected archived logs: %+v", logs)
	}
}

func TestSinkFailureQueuesAndSyncDelivers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sink := &fakeSink{err: errors.New("network unreachable")}
	h := newHarness(t, sink)
	h.start(t, sessiondto.PatientInput{Name: "Davi"})

	out, err := h.uc.FinishSession(ctx, sessiondto.FinishInput{})
	if err != nil {
		t.Fatalf("finish must survive sink failure: %v", err)
	}
	if out.Synced || !out.Queued {
		t.Fatalf("expected queued log, got %+v", out)
	}

	if n, err := h.uc.SyncPending(ctx); err == nil || n != 0 {
		t.Fatalf("sync while offline: n=%d err=%v", n, err)
	}

	sink.err = nil
	n, err := h.uc.SyncPending(ctx)
	if err != nil || n != 1 {
		t.Fatalf("sync: n=%d err=%v", n, err)
	}
	logs, err := h.uc.ListLogs(ctx, 0)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || !logs[0].Synced {
		t.Fatalf("log must be flagged synced: %+v", logs)
	}
	if n, err := h.uc.SyncPending(ctx); err != nil || n != 0 {
		t.Fatalf("second sync: n=%d err=%v", n, err)
	}
}

func TestSyncWithoutSinkIsRejected(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	if _, err := h.uc.SyncPending(context.Background()); !errors.Is(err, apperrors.ErrSinkNotConfigured) {
		t.Fatalf("expected sink not configured, got %v", err)
	}
}

func TestAuxiliaryRecordsLandOnTimeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, nil)
	h.start(t, sessiondto.PatientInput{AgeYears: 5, WeightKg: 20})

	vitals, err := h.uc.RecordVitals(ctx, sessiondto.VitalsInput{Systolic: 80, Diastolic: 50, HeartRate: 130, SpO2: 92})
	if err != nil {
		t.Fatalf("vitals: %v", err)
	}
	if vitals.Severity != "critical" {
		t.Fatalf("hypotension must be critical, got %+v", vitals)
	}
	gcs, err := h.uc.RecordGlasgow(ctx, sessiondto.GlasgowInput{Eye: 2, Verbal: 2, Motor: 4})
	if err != nil || gcs.Total != 8 || gcs.Band != "severe" {
		t.Fatalf("glasgow: %+v err=%v", gcs, err)
	}
	quality, err := h.uc.CheckQuality(ctx, sessiondto.QualityInput{Rate: 90, DepthCm: 5.5})
	if err != nil || quality.OK {
		t.Fatalf("quality: %+v err=%v", quality, err)
	}
	if err := h.uc.AddNote(ctx, sessiondto.NoteInput{Text: "IO access right tibia", Severity: "success"}); err != nil {
		t.Fatalf("note: %v", err)
	}
	if err := h.uc.AddNote(ctx, sessiondto.NoteInput{Text: "   "}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("blank note: expected invalid input, got %v", err)
	}
	advice, err := h.uc.ShockAdvice(ctx)
	if err != nil || advice.Joules != 40 {
		t.Fatalf("pediatric shock advice: %+v err=%v", advice, err)
	}

	snap := h.snapshot(t)
	if len(snap.Timeline) != 5 {
		t.Fatalf("timeline got %d entries: %+v", len(snap.Timeline), snap.Timeline)
	}
	if snap.Timeline[0].Text != "IO access right tibia" || snap.Timeline[len(snap.Timeline)-1].Kind != "marker" {
		t.Fatalf("timeline must be newest first: %+v", snap.Timeline)
	}
}
