package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	sessiondto "siav/internal/modules/session/dto"
	"siav/internal/ui/components"
)

type stubSession struct {
	sessionPort
	patient sessiondto.PatientInput
	vitals  []int
	joules  int
}

func (s *stubSession) Start(_ context.Context, p sessiondto.PatientInput) (sessiondto.SessionOutput, error) {
	s.patient = p
	return sessiondto.SessionOutput{SessionID: "s-1"}, nil
}

func (s *stubSession) Vitals(_ context.Context, sys, dia, hr, spo2 int) (sessiondto.VitalsOutput, error) {
	s.vitals = []int{sys, dia, hr, spo2}
	return sessiondto.VitalsOutput{}, nil
}

func (s *stubSession) Shock(_ context.Context, joules int) (sessiondto.ShockOutput, error) {
	s.joules = joules
	return sessiondto.ShockOutput{Ordinal: 1, Joules: 200}, nil
}

func run(t *testing.T, m tea.Model, input string) Model {
	t.Helper()
	next, cmd := m.(Model).executePalette(input)
	if cmd != nil {
		if done, ok := cmd().(actionDoneMsg); ok && done.err != nil {
			t.Fatalf("%q: %v", input, done.err)
		}
	}
	return next.(Model)
}

func TestPaletteStartParsesPatient(t *testing.T) {
	t.Parallel()
	stub := &stubSession{}
	run(t, NewModel(stub, nil), "start Ana 6 20.5")
	if stub.patient.Name != "Ana" || stub.patient.AgeYears != 6 || stub.patient.WeightKg != 20.5 {
		t.Fatalf("unexpected patient: %+v", stub.patient)
	}
}

func TestPaletteRejectsMalformedNumbers(t *testing.T) {
	t.Parallel()
	stub := &stubSession{}
	m := run(t, NewModel(stub, nil), "start Ana six")
	if m.status != "invalid age" {
		t.Fatalf("status = %q", m.status)
	}
	m = run(t, m, "vitals 120 80")
	if stub.vitals != nil || m.status != "usage: vitals <sys> <dia> <hr> <spo2>" {
		t.Fatalf("vitals should not be recorded, status %q", m.status)
	}
	m = run(t, m, "teleport")
	if m.status != "unknown command: teleport" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestPaletteVitalsAndShock(t *testing.T) {
	t.Parallel()
	stub := &stubSession{}
	m := run(t, NewModel(stub, nil), "vitals 110 70 95 97")
	if len(stub.vitals) != 4 || stub.vitals[0] != 110 || stub.vitals[3] != 97 {
		t.Fatalf("unexpected vitals: %v", stub.vitals)
	}
	run(t, m, "shock 150")
	if stub.joules != 150 {
		t.Fatalf("joules = %d", stub.joules)
	}
}

func TestQuitRefusedWhileSessionActive(t *testing.T) {
	t.Parallel()
	m := NewModel(&stubSession{}, nil)
	m.snap = sessiondto.SnapshotOutput{Active: true}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd != nil {
		t.Fatal("q must not quit during a session")
	}
	if next.(Model).status == "ready" {
		t.Fatal("expected a warning in the status bar")
	}
}

func TestEveryPaletteHintIsHandled(t *testing.T) {
	t.Parallel()
	for _, h := range components.Hints() {
		m := NewModel(&stubSession{}, nil)
		next, _ := m.executePalette(h.Verb)
		if status := next.(Model).status; status == "unknown command: "+h.Verb {
			t.Fatalf("palette hint %q has no handler", h.Verb)
		}
	}
}
