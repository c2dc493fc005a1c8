package domain

import (
	"fmt"
	"strings"
	"time"

	protocol "siav/internal/modules/protocol/domain"
	apperrors "siav/internal/platform/errors"
)

const SchemaVersion = 1

// ActiveSession is the on-disk marker of the session currently running.
type ActiveSession struct {
	SessionID   string    `json:"session_id"`
	PatientName string    `json:"patient_name"`
	StartedAt   time.Time `json:"started_at"`
	PID         int       `json:"pid"`
}

// Cue is a fire-and-forget audio/visual prompt.
type Cue string

const (
	CueShock       Cue = "SHOCK"
	CueCheckRhythm Cue = "CHECK_RHYTHM"
	CueDrug        Cue = "DRUG"
)

// Session is one CPR encounter. It owns the cycle clock, the rhythm tracker,
// the medication history and the timeline, and stamps every event with its
// own elapsed seconds. Callers serialize access.
type Session struct {
	ID        string
	StartedAt time.Time
	Patient   protocol.Patient

	elapsed  int
	cycle    *protocol.CycleClock
	rhythm   *protocol.RhythmTracker
	meds     *protocol.MedicationScheduler
	timeline *protocol.Timeline
	rosc     bool
	active   bool
	endedAt  time.Time
}

func New(id string, startedAt time.Time, patient protocol.Patient) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if err := patient.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		ID:        id,
		StartedAt: startedAt,
		Patient:   patient,
		cycle:     protocol.NewCycleClock(),
		rhythm:    protocol.NewRhythmTracker(),
		meds:      protocol.NewMedicationScheduler(),
		timeline:  protocol.NewTimeline(),
		active:    true,
	}
	text := "CPR session started"
	if patient.Name != "" {
		text += " - " + patient.Name
	}
	s.mark(startedAt, protocol.SeverityNormal, protocol.MarkerSessionStarted, text)
	return s, nil
}

func (s *Session) Active() bool       { return s.active }
func (s *Session) Elapsed() int       { return s.elapsed }
func (s *Session) ROSC() bool         { return s.rosc }
func (s *Session) EndedAt() time.Time { return s.endedAt }

func (s *Session) Entries() []protocol.TimelineEntry {
	return s.timeline.Entries()
}

// Sync advances logical time to now. Elapsed seconds never decrease. When
// the compression countdown has run out the rhythm check fires here, once.
func (s *Session) Sync(now time.Time) []Cue {
	if !s.active {
		return nil
	}
	if e := int(now.Sub(s.StartedAt) / time.Second); e > s.elapsed {
		s.elapsed = e
	}
	if s.cycle.Advance(s.elapsed) {
		s.markRhythmCheck(now, "cycle complete")
		return []Cue{CueCheckRhythm}
	}
	return nil
}

func (s *Session) BeginCompressions(now time.Time) ([]Cue, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	cues := s.Sync(now)
	started, err := s.cycle.BeginCompressions(s.elapsed)
	if err != nil {
		return cues, err
	}
	if started {
		s.markCompressions(now)
	}
	return cues, nil
}

// TriggerRhythmCheck is the manual early check; repeated calls in the same
// cycle are no-ops.
func (s *Session) TriggerRhythmCheck(now time.Time) ([]Cue, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	cues := s.Sync(now)
	if s.cycle.TriggerRhythmCheck() {
		s.markRhythmCheck(now, "manual")
		cues = append(cues, CueCheckRhythm)
	}
	return cues, nil
}

func (s *Session) RecordRhythm(now time.Time, kind protocol.RhythmKind, notes string) (bool, []Cue, error) {
	if err := s.guard(); err != nil {
		return false, nil, err
	}
	if err := kind.Validate(); err != nil {
		return false, nil, err
	}
	cues := s.Sync(now)
	shockable, err := s.rhythm.RecordRhythm(kind, s.elapsed, notes)
	if err != nil {
		return false, cues, err
	}
	severity := protocol.SeverityWarning
	if shockable {
		severity = protocol.SeverityCritical
	}
	s.append(now, severity, protocol.RhythmEvent{Rhythm: kind, Shockable: shockable, Notes: notes})

	before := s.cycle.Count()
	phase, err := s.cycle.ResolveRhythm(s.elapsed, shockable)
	if err != nil {
		return shockable, cues, err
	}
	switch {
	case phase == protocol.PhaseShockAdvised:
		cues = append(cues, CueShock)
	case s.cycle.Count() > before:
		s.markCompressions(now)
	}
	return shockable, cues, nil
}

func (s *Session) RecordShock(now time.Time, joules int) (protocol.ShockRecord, []Cue, error) {
	if err := s.guard(); err != nil {
		return protocol.ShockRecord{}, nil, err
	}
	if err := protocol.ValidateShockEnergy(joules); err != nil {
		return protocol.ShockRecord{}, nil, err
	}
	cues := s.Sync(now)
	if s.cycle.Phase() != protocol.PhaseShockAdvised {
		return protocol.ShockRecord{}, cues, fmt.Errorf("%w: shock requires a shockable rhythm check, phase is %s", protocol.ErrIllegalTransition, s.cycle.Phase())
	}
	shock, err := s.rhythm.RecordShock(joules, s.elapsed)
	if err != nil {
		return protocol.ShockRecord{}, cues, err
	}
	last, _ := s.rhythm.LastRhythm()
	s.append(now, protocol.SeverityCritical, protocol.ShockEvent{Ordinal: shock.Ordinal, EnergyJoules: joules, Rhythm: last.Kind})
	if err := s.cycle.ResumeAfterShock(s.elapsed); err != nil {
		return shock, cues, err
	}
	s.markCompressions(now)
	return shock, cues, nil
}

func (s *Session) RecordMedication(now time.Time, drug protocol.Drug, dose string, route protocol.Route) (protocol.MedicationEvent, []Cue, error) {
	if err := s.guard(); err != nil {
		return protocol.MedicationEvent{}, nil, err
	}
	if err := drug.Validate(); err != nil {
		return protocol.MedicationEvent{}, nil, err
	}
	cues := s.Sync(now)
	if strings.TrimSpace(dose) == "" {
		text, err := protocol.DoseText(drug, s.Patient, s.meds.Count(drug)+1)
		if err != nil {
			return protocol.MedicationEvent{}, cues, err
		}
		dose = text
	}
	if route == "" {
		route = protocol.RouteEV
	}
	event := protocol.MedicationEvent{Drug: drug, DoseText: dose, Route: route, AdministeredAt: s.elapsed}
	if err := s.meds.Administer(event); err != nil {
		return protocol.MedicationEvent{}, cues, err
	}
	s.append(now, protocol.SeverityNormal, protocol.DrugEvent{Drug: drug, Dose: dose, Route: route})
	return event, cues, nil
}

func (s *Session) AddNote(now time.Time, text string, severity protocol.Severity) ([]Cue, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: note text is required", apperrors.ErrInvalidInput)
	}
	if severity == "" {
		severity = protocol.SeverityNormal
	}
	if err := severity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	cues := s.Sync(now)
	s.append(now, severity, protocol.NoteEvent{Text: text})
	return cues, nil
}

func (s *Session) RecordVitals(now time.Time, v protocol.Vitals) (protocol.VitalsStatus, []Cue, error) {
	if err := s.guard(); err != nil {
		return protocol.VitalsStatus{}, nil, err
	}
	if err := v.Validate(); err != nil {
		return protocol.VitalsStatus{}, nil, err
	}
	cues := s.Sync(now)
	status := protocol.AssessVitals(v)
	s.append(now, status.Severity, protocol.VitalsEvent{Vitals: v, Status: status.String()})
	return status, cues, nil
}

func (s *Session) RecordGlasgow(now time.Time, g protocol.Glasgow) (string, []Cue, error) {
	if err := s.guard(); err != nil {
		return "", nil, err
	}
	if err := g.Validate(); err != nil {
		return "", nil, err
	}
	cues := s.Sync(now)
	band, severity := g.Classify()
	text := fmt.Sprintf("Glasgow %d (E%d V%d M%d) - %s", g.Total(), g.Eye, g.Verbal, g.Motor, band)
	s.append(now, severity, protocol.NoteEvent{Text: text})
	return band, cues, nil
}

// CheckQuality records a warning note only when the reading is off target.
func (s *Session) CheckQuality(now time.Time, rate int, depthCm float64) (protocol.QualityFeedback, []Cue, error) {
	if err := s.guard(); err != nil {
		return protocol.QualityFeedback{}, nil, err
	}
	cues := s.Sync(now)
	fb := protocol.CheckCPRQuality(rate, depthCm)
	if !fb.OK() {
		s.append(now, protocol.SeverityWarning, protocol.NoteEvent{Text: "CPR quality: " + strings.Join(fb.Messages, "; ")})
	}
	return fb, cues, nil
}

// RecordROSC is terminal: it flips the ROSC flag once and finishes the session.
func (s *Session) RecordROSC(now time.Time, notes string) (protocol.Summary, error) {
	if err := s.guard(); err != nil {
		return protocol.Summary{}, err
	}
	s.Sync(now)
	s.rosc = true
	s.mark(now, protocol.SeveritySuccess, protocol.MarkerROSC, "ROSC achieved")
	summary, _ := s.Finish(now, notes)
	return summary, nil
}

// Finish closes the session exactly once. The second call reports false and
// leaves the timeline untouched.
func (s *Session) Finish(now time.Time, notes string) (protocol.Summary, bool) {
	if !s.active {
		return protocol.Summary{}, false
	}
	s.Sync(now)
	if notes = strings.TrimSpace(notes); notes != "" {
		s.append(now, protocol.SeverityNormal, protocol.NoteEvent{Text: notes})
	}
	severity := protocol.SeverityCritical
	text := "session finished without ROSC"
	if s.rosc {
		severity = protocol.SeveritySuccess
		text = "session finished with ROSC"
	}
	s.mark(now, severity, protocol.MarkerSessionFinished, text)
	s.active = false
	s.endedAt = now
	return s.Summary(), true
}

func (s *Session) Summary() protocol.Summary {
	return protocol.Summarize(s.timeline.Entries(), s.elapsed)
}

func (s *Session) ShockAdvice(device protocol.Defibrillator) protocol.ShockAdvice {
	return protocol.RecommendShock(s.Patient, s.rhythm.ShockCount(), device)
}

func (s *Session) Advise() (protocol.Recommendation, error) {
	return protocol.Advise(protocol.AdvisorInput{
		Phase:        s.cycle.Phase(),
		Shockability: s.rhythm.CurrentShockability(),
		ShockCount:   s.rhythm.ShockCount(),
		CycleCount:   s.cycle.Count(),
		Medications:  s.meds,
		Patient:      s.Patient,
		Now:          s.elapsed,
		UntilCheck:   s.cycle.SecondsUntilCheck(s.elapsed),
	})
}

func (s *Session) State() (State, error) {
	rec, err := s.Advise()
	if err != nil {
		return State{}, err
	}
	last, _ := s.rhythm.LastRhythm()
	return State{
		SessionID:      s.ID,
		StartedAt:      s.StartedAt,
		Patient:        s.Patient,
		Elapsed:        s.elapsed,
		Phase:          s.cycle.Phase(),
		CycleCount:     s.cycle.Count(),
		Progress:       s.cycle.Progress(),
		UntilCheck:     s.cycle.SecondsUntilCheck(s.elapsed),
		ShockCount:     s.rhythm.ShockCount(),
		Shockability:   s.rhythm.CurrentShockability(),
		LastRhythm:     last.Kind,
		Medications:    len(s.meds.Events()),
		ROSC:           s.rosc,
		Active:         s.active,
		Recommendation: rec,
		Timeline:       s.timeline.EntriesNewestFirst(),
	}, nil
}

func (s *Session) guard() error {
	if !s.active {
		return apperrors.ErrNoActiveSession
	}
	return nil
}

func (s *Session) append(now time.Time, severity protocol.Severity, event protocol.Event) {
	// Severity and event are produced in this package and always valid.
	_, _ = s.timeline.Append(s.elapsed, now, severity, event)
}

func (s *Session) mark(now time.Time, severity protocol.Severity, marker protocol.Marker, text string) {
	s.append(now, severity, protocol.MarkerEvent{Marker: marker, Cycle: s.cycle.Count(), Text: text})
}

func (s *Session) markCompressions(now time.Time) {
	s.mark(now, protocol.SeverityNormal, protocol.MarkerCompressionsStarted, fmt.Sprintf("compressions started - cycle %d", s.cycle.Count()))
}

func (s *Session) markRhythmCheck(now time.Time, trigger string) {
	s.mark(now, protocol.SeverityWarning, protocol.MarkerRhythmCheck, fmt.Sprintf("rhythm check (%s) - cycle %d", trigger, s.cycle.Count()))
}
