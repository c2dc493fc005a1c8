package domain_test

import (
	"testing"
	"time"

	"siav/internal/modules/protocol/domain"
)

func TestTimelineAppendOnlyAndNewestFirst(t *testing.T) {
	t.Parallel()
	tl := domain.NewTimeline()
	wall := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, text := range []string{"a", "b", "a"} {
		if _, err := tl.Append(i*10, wall, domain.SeverityNormal, domain.NoteEvent{Text: text}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if tl.Len() != 3 {
		t.Fatalf("duplicates must be kept, got %d entries", tl.Len())
	}
	newest := tl.EntriesNewestFirst()
	if newest[0].Seq != 3 || newest[2].Seq != 1 {
		t.Fatalf("unexpected newest-first order: %d..%d", newest[0].Seq, newest[2].Seq)
	}
	if tl.Entries()[0].Seq != 1 {
		t.Fatalf("storage order must stay insertion order")
	}
	if _, err := tl.Append(40, wall, domain.Severity("loud"), domain.NoteEvent{Text: "x"}); err == nil {
		t.Fatalf("unknown severity should fail")
	}
	if _, err := tl.Append(40, wall, domain.SeverityNormal, nil); err == nil {
		t.Fatalf("nil event should fail")
	}
}

func TestSummarizeDerivesReportFields(t *testing.T) {
	t.Parallel()
	tl := domain.NewTimeline()
	wall := time.Now()
	add := func(at int, sev domain.Severity, ev domain.Event) {
		if _, err := tl.Append(at, wall, sev, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	add(0, domain.SeverityNormal, domain.MarkerEvent{Marker: domain.MarkerSessionStarted})
	add(10, domain.SeverityNormal, domain.MarkerEvent{Marker: domain.MarkerCompressionsStarted, Cycle: 1})
	add(130, domain.SeverityWarning, domain.MarkerEvent{Marker: domain.MarkerRhythmCheck, Cycle: 1})
	add(135, domain.SeverityCritical, domain.RhythmEvent{Rhythm: domain.RhythmVF, Shockable: true})
	add(140, domain.SeverityCritical, domain.ShockEvent{Ordinal: 1, EnergyJoules: 200, Rhythm: domain.RhythmVF})
	add(140, domain.SeverityNormal, domain.MarkerEvent{Marker: domain.MarkerCompressionsStarted, Cycle: 2})
	add(200, domain.SeverityNormal, domain.DrugEvent{Drug: domain.DrugAdrenaline, Dose: "1 mg", Route: domain.RouteEV})
	add(210, domain.SeverityNormal, domain.NoteEvent{Text: "IO access"})
	add(260, domain.SeveritySuccess, domain.MarkerEvent{Marker: domain.MarkerROSC})
	add(260, domain.SeveritySuccess, domain.MarkerEvent{Marker: domain.MarkerSessionFinished})

	s := domain.Summarize(tl.Entries(), 260)
	if s.DurationSeconds != 260 || s.CompressionSeconds != 240 {
		t.Fatalf("expected 240/260 hands-on, got %d/%d", s.CompressionSeconds, s.DurationSeconds)
	}
	if s.ShockCount != 1 || s.FirstShockAt == nil || *s.FirstShockAt != 140 || s.FirstShockJoules != 200 {
		t.Fatalf("unexpected shock summary: %+v", s)
	}
	if s.FirstAdrenalineAt == nil || *s.FirstAdrenalineAt != 200 {
		t.Fatalf("expected first adrenaline at 200")
	}
	if s.FinalRhythm != domain.RhythmVF || !s.ROSC || s.CycleCount != 2 || s.RhythmChecks != 1 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if len(s.Notes) != 1 || len(s.Medications) != 1 {
		t.Fatalf("expected one note and one medication, got %d/%d", len(s.Notes), len(s.Medications))
	}
}

func TestSummarizeOpenSpanAndEmpty(t *testing.T) {
	t.Parallel()
	empty := domain.Summarize(nil, 0)
	if empty.CompressionRatio != 0 || empty.FirstShockAt != nil {
		t.Fatalf("empty summary should be zero: %+v", empty)
	}
	tl := domain.NewTimeline()
	_, _ = tl.Append(0, time.Now(), domain.SeverityNormal, domain.MarkerEvent{Marker: domain.MarkerCompressionsStarted, Cycle: 1})
	s := domain.Summarize(tl.Entries(), 100)
	if s.CompressionSeconds != 100 || s.CompressionRatio != 1 {
		t.Fatalf("open span should close at end, got %+v", s)
	}
}
