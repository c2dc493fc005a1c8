package domain_test

import (
	"errors"
	"strings"
	"testing"

	"siav/internal/modules/protocol/domain"
)

func TestMedicationSchedulerIsDueThresholds(t *testing.T) {
	t.Parallel()
	s := domain.NewMedicationScheduler()
	st, err := s.IsDue(domain.DrugAdrenaline, 180, 30)
	if err != nil {
		t.Fatalf("is due: %v", err)
	}
	if !st.IsDue || st.Reason != "never administered, give now" {
		t.Fatalf("never-given drug must be due now, got %+v", st)
	}

	if err := s.Administer(domain.MedicationEvent{Drug: domain.DrugAdrenaline, DoseText: "1 mg", Route: domain.RouteEV, AdministeredAt: 60}); err != nil {
		t.Fatalf("administer: %v", err)
	}
	st, _ = s.IsDue(domain.DrugAdrenaline, 180, 160)
	if st.IsDue || st.SecondsUntilDue != 80 {
		t.Fatalf("expected not due with 80 s left, got %+v", st)
	}
	st, _ = s.IsDue(domain.DrugAdrenaline, 180, 240)
	if !st.IsDue {
		t.Fatalf("expected due at exactly 180 s, got %+v", st)
	}
	since, given, _ := s.TimeSinceLastDose(domain.DrugAdrenaline, 100)
	if !given || since != 40 {
		t.Fatalf("expected 40 s since last dose, got %d %v", since, given)
	}
	if _, given, _ := s.TimeSinceLastDose(domain.DrugAtropine, 100); given {
		t.Fatalf("atropine never given")
	}
}

func TestMedicationSchedulerUnknownDrug(t *testing.T) {
	t.Parallel()
	s := domain.NewMedicationScheduler()
	if _, err := s.IsDue(domain.Drug("vasopressin"), 180, 0); !errors.Is(err, domain.ErrUnknownDrug) {
		t.Fatalf("expected unknown drug, got %v", err)
	}
	if err := s.Administer(domain.MedicationEvent{Drug: "aspirin"}); !errors.Is(err, domain.ErrUnknownDrug) {
		t.Fatalf("expected unknown drug on administer, got %v", err)
	}
	if _, err := domain.ParseDrug("Adrenalina"); err != nil {
		t.Fatalf("portuguese alias should parse: %v", err)
	}
}

func TestAntiarrhythmicCountIncludesLidocaine(t *testing.T) {
	t.Parallel()
	s := domain.NewMedicationScheduler()
	_ = s.Administer(domain.MedicationEvent{Drug: domain.DrugLidocaine, AdministeredAt: 10})
	_ = s.Administer(domain.MedicationEvent{Drug: domain.DrugAdrenaline, AdministeredAt: 20})
	_ = s.Administer(domain.MedicationEvent{Drug: domain.DrugAmiodarone, AdministeredAt: 30})
	if got := s.AntiarrhythmicCount(); got != 2 {
		t.Fatalf("expected 2 antiarrhythmics, got %d", got)
	}
	if got := s.Count(domain.DrugAdrenaline); got != 1 {
		t.Fatalf("expected 1 adrenaline, got %d", got)
	}
}

func TestDoseTextPediatricCaps(t *testing.T) {
	t.Parallel()
	child := domain.Patient{AgeYears: 5, WeightKg: 18}
	dose, err := domain.DoseText(domain.DrugAdrenaline, child, 1)
	if err != nil || !strings.HasPrefix(dose, "0.18 mg") {
		t.Fatalf("expected 0.18 mg, got %q %v", dose, err)
	}
	dose, _ = domain.DoseText(domain.DrugAtropine, domain.Patient{AgeYears: 1, WeightKg: 3}, 1)
	if !strings.HasPrefix(dose, "0.1 mg") {
		t.Fatalf("atropine minimum 0.1 mg, got %q", dose)
	}
	dose, _ = domain.DoseText(domain.DrugAmiodarone, domain.Patient{AgeYears: 40, WeightKg: 80}, 2)
	if dose != "150 mg EV/IO bolus" {
		t.Fatalf("adult second amiodarone dose, got %q", dose)
	}
}
