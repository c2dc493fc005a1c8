package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"siav/internal/modules/protocol/domain"
	"siav/internal/modules/protocol/dto"
	"siav/internal/modules/protocol/usecase"
	apperrors "siav/internal/platform/errors"
)

func TestAdviseShockableAfterSecondShock(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor()
	out, err := uc.Advise(context.Background(), dto.AdviseInput{Rhythm: "FV", Shocks: 2, Cycle: 2, AdrenalineAgo: -1})
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if out.Reason != string(domain.ReasonAdrenalineFirstDose) || out.CriticalAction != "DRUG" {
		t.Fatalf("unexpected advice: %+v", out)
	}
}

func TestAdviseAdrenalineCountdown(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor()
	out, err := uc.Advise(context.Background(), dto.AdviseInput{Rhythm: "AESP", Cycle: 2, AdrenalineAgo: 60, UntilCheck: 30})
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if out.Reason != string(domain.ReasonNoActionDue) || out.Countdown != 120 {
		t.Fatalf("unexpected advice: %+v", out)
	}
	if !strings.Contains(out.Secondary, "5T") {
		t.Fatalf("missing reversible causes: %q", out.Secondary)
	}

	out, err = uc.Advise(context.Background(), dto.AdviseInput{Rhythm: "AESP", Cycle: 3, AdrenalineAgo: 200})
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if out.Reason != string(domain.ReasonAdrenalineDue) {
		t.Fatalf("expected adrenaline due, got %+v", out)
	}
}

func TestAdviseRejectsBadInput(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor()
	if _, err := uc.Advise(context.Background(), dto.AdviseInput{Phase: "resting", AdrenalineAgo: -1}); !errors.Is(err, domain.ErrUnknownPhase) {
		t.Fatalf("expected unknown phase, got %v", err)
	}
	if _, err := uc.Advise(context.Background(), dto.AdviseInput{Rhythm: "sinus", AdrenalineAgo: -1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestCausesAreWeightAware(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor()
	causes, err := uc.Causes(context.Background(), dto.PatientInput{AgeYears: 6, WeightKg: 20})
	if err != nil {
		t.Fatalf("causes: %v", err)
	}
	if len(causes) != 10 {
		t.Fatalf("causes got=%d want=10", len(causes))
	}
	if causes[0].Cause != "hypovolemia" || !strings.Contains(causes[0].Treatment, "400 ml") {
		t.Fatalf("unexpected hypovolemia guidance: %+v", causes[0])
	}
}

func TestShockEnergyAndDose(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor()
	energy, err := uc.ShockEnergy(context.Background(), dto.ShockEnergyInput{Patient: dto.PatientInput{WeightKg: 15}, Shocks: 1})
	if err != nil || energy.Joules != 60 {
		t.Fatalf("pediatric second shock: %+v err=%v", energy, err)
	}
	if _, err := uc.ShockEnergy(context.Background(), dto.ShockEnergyInput{Device: "laser"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid device, got %v", err)
	}
	dose, err := uc.Dose(context.Background(), dto.DoseInput{Drug: "amiodarona", Ordinal: 2})
	if err != nil {
		t.Fatalf("dose: %v", err)
	}
	if !dose.Antiarrhythmic || !strings.HasPrefix(dose.Dose, "150 mg") {
		t.Fatalf("unexpected dose: %+v", dose)
	}
}
