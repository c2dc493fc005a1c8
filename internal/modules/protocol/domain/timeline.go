package domain

import (
	"errors"
	"fmt"
	"time"
)

type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeveritySuccess  Severity = "success"
)

func (s Severity) Validate() error {
	switch s {
	case SeverityNormal, SeverityCritical, SeverityWarning, SeveritySuccess:
		return nil
	default:
		return fmt.Errorf("unknown severity %q", string(s))
	}
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

func maxSeverity(a, b Severity) Severity {
	if severityRank(b) > severityRank(a) {
		return b
	}
	return a
}

type EntryKind string

const (
	KindShock  EntryKind = "shock"
	KindDrug   EntryKind = "drug"
	KindRhythm EntryKind = "rhythm"
	KindNote   EntryKind = "note"
	KindVitals EntryKind = "vitals"
	KindMarker EntryKind = "marker"
)

// Event is the closed set of timeline payloads. Only types in this package
// implement it.
type Event interface {
	Kind() EntryKind
	Describe() string
	sealed()
}

type ShockEvent struct {
	Ordinal      int
	EnergyJoules int
	Rhythm       RhythmKind
}

func (ShockEvent) Kind() EntryKind { return KindShock }
func (e ShockEvent) Describe() string {
	if e.Rhythm == "" {
		return fmt.Sprintf("shock #%d - %d J", e.Ordinal, e.EnergyJoules)
	}
	return fmt.Sprintf("shock #%d - %s - %d J", e.Ordinal, e.Rhythm, e.EnergyJoules)
}
func (ShockEvent) sealed() {}

type DrugEvent struct {
	Drug  Drug
	Dose  string
	Route Route
}

func (DrugEvent) Kind() EntryKind { return KindDrug }
func (e DrugEvent) Describe() string {
	return fmt.Sprintf("%s %s %s", e.Drug.DisplayName(), e.Dose, e.Route)
}
func (DrugEvent) sealed() {}

type RhythmEvent struct {
	Rhythm    RhythmKind
	Shockable bool
	Notes     string
}

func (RhythmEvent) Kind() EntryKind { return KindRhythm }
func (e RhythmEvent) Describe() string {
	s := fmt.Sprintf("rhythm %s (%s)", e.Rhythm, shockabilityOf(e.Rhythm))
	if e.Notes != "" {
		s += ": " + e.Notes
	}
	return s
}
func (RhythmEvent) sealed() {}

type NoteEvent struct {
	Text string
}

func (NoteEvent) Kind() EntryKind    { return KindNote }
func (e NoteEvent) Describe() string { return e.Text }
func (NoteEvent) sealed()            {}

type VitalsEvent struct {
	Vitals Vitals
	Status string
}

func (VitalsEvent) Kind() EntryKind { return KindVitals }
func (e VitalsEvent) Describe() string {
	v := e.Vitals
	s := fmt.Sprintf("BP %d/%d (MAP %d) HR %d", v.Systolic, v.Diastolic, v.MAP(), v.HeartRate)
	if v.SpO2 > 0 {
		s += fmt.Sprintf(" SpO2 %d%%", v.SpO2)
	}
	if e.Status != "" {
		s += " - " + e.Status
	}
	return s
}
func (VitalsEvent) sealed() {}

type Marker string

const (
	MarkerSessionStarted      Marker = "session_started"
	MarkerCompressionsStarted Marker = "compressions_started"
	MarkerRhythmCheck         Marker = "rhythm_check"
	MarkerROSC                Marker = "rosc"
	MarkerSessionFinished     Marker = "session_finished"
)

type MarkerEvent struct {
	Marker Marker
	Cycle  int
	Text   string
}

func (MarkerEvent) Kind() EntryKind { return KindMarker }
func (e MarkerEvent) Describe() string {
	if e.Text != "" {
		return e.Text
	}
	return string(e.Marker)
}
func (MarkerEvent) sealed() {}

type TimelineEntry struct {
	Seq      int
	At       int
	Wall     time.Time
	Severity Severity
	Event    Event
}

// Timeline is an append-only audit log. Insertion order is the storage order.
type Timeline struct {
	entries []TimelineEntry
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

func (t *Timeline) Append(at int, wall time.Time, severity Severity, event Event) (TimelineEntry, error) {
	if event == nil {
		return TimelineEntry{}, errors.New("timeline event is required")
	}
	if err := severity.Validate(); err != nil {
		return TimelineEntry{}, err
	}
	entry := TimelineEntry{Seq: len(t.entries) + 1, At: at, Wall: wall, Severity: severity, Event: event}
	t.entries = append(t.entries, entry)
	return entry, nil
}

func (t *Timeline) Len() int { return len(t.entries) }

func (t *Timeline) Entries() []TimelineEntry {
	return append([]TimelineEntry(nil), t.entries...)
}

func (t *Timeline) EntriesNewestFirst() []TimelineEntry {
	out := make([]TimelineEntry, len(t.entries))
	for i, e := range t.entries {
		out[len(t.entries)-1-i] = e
	}
	return out
}

func (t *Timeline) HasMarker(m Marker) bool {
	for _, e := range t.entries {
		if me, ok := e.Event.(MarkerEvent); ok && me.Marker == m {
			return true
		}
	}
	return false
}
