package domain

import (
	"time"

	protocol "siav/internal/modules/protocol/domain"
)

// State is a point-in-time copy of a session for rendering.
type State struct {
	SessionID      string
	StartedAt      time.Time
	Patient        protocol.Patient
	Elapsed        int
	Phase          protocol.Phase
	CycleCount     int
	Progress       float64
	UntilCheck     int
	ShockCount     int
	Shockability   protocol.Shockability
	LastRhythm     protocol.RhythmKind
	Medications    int
	ROSC           bool
	Active         bool
	Recommendation protocol.Recommendation
	Timeline       []protocol.TimelineEntry
}

type LogEntry struct {
	Seq      int       `json:"seq"`
	At       int       `json:"at"`
	Wall     time.Time `json:"wall"`
	Kind     string    `json:"kind"`
	Severity string    `json:"severity"`
	Text     string    `json:"text"`
}

// SessionLog is the persisted record of a finished session.
type SessionLog struct {
	SchemaVersion int              `json:"schema_version"`
	SessionID     string           `json:"session_id"`
	StartedAt     time.Time        `json:"started_at"`
	EndedAt       time.Time        `json:"ended_at"`
	Patient       protocol.Patient `json:"patient"`
	Summary       protocol.Summary `json:"summary"`
	Entries       []LogEntry       `json:"entries"`
	ReportPath    string           `json:"report_path,omitempty"`
}

func NewSessionLog(s *Session, summary protocol.Summary) SessionLog {
	entries := s.Entries()
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogEntry{
			Seq:      e.Seq,
			At:       e.At,
			Wall:     e.Wall,
			Kind:     string(e.Event.Kind()),
			Severity: string(e.Severity),
			Text:     e.Event.Describe(),
		})
	}
	return SessionLog{
		SchemaVersion: SchemaVersion,
		SessionID:     s.ID,
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt(),
		Patient:       s.Patient,
		Summary:       summary,
		Entries:       out,
	}
}

// LogRecord is a stored log as listed from the local archive.
type LogRecord struct {
	Log    SessionLog
	Synced bool
}
