package usecase

import (
	"context"
	"fmt"
	"strings"

	"siav/internal/modules/protocol/domain"
	"siav/internal/modules/protocol/dto"
	protocolin "siav/internal/modules/protocol/port/in"
	apperrors "siav/internal/platform/errors"
)

type Interactor struct{}

func NewInteractor() protocolin.Usecase {
	return Interactor{}
}

// Advise rebuilds just enough engine state from the input to run the
// decision function once.
func (Interactor) Advise(_ context.Context, input dto.AdviseInput) (dto.AdviceOutput, error) {
	phase := domain.Phase(strings.ToLower(strings.TrimSpace(input.Phase)))
	if phase == "" {
		phase = domain.PhaseCompressions
	}
	if input.Shocks < 0 || input.Cycle < 0 || input.Antiarrhythmics < 0 {
		return dto.AdviceOutput{}, fmt.Errorf("%w: counts must not be negative", apperrors.ErrInvalidInput)
	}
	patient := toPatient(input.AgeYears, input.WeightKg)
	if err := patient.Validate(); err != nil {
		return dto.AdviceOutput{}, err
	}

	shockability := domain.ShockabilityUnknown
	if strings.TrimSpace(input.Rhythm) != "" {
		kind, err := domain.ParseRhythmKind(input.Rhythm)
		if err != nil {
			return dto.AdviceOutput{}, err
		}
		shockability = domain.NonShockable
		if kind.Shockable() {
			shockability = domain.Shockable
		}
	}

	now := 0
	meds := domain.NewMedicationScheduler()
	if input.AdrenalineAgo >= 0 {
		now = input.AdrenalineAgo
		if err := meds.Administer(domain.MedicationEvent{Drug: domain.DrugAdrenaline, AdministeredAt: 0}); err != nil {
			return dto.AdviceOutput{}, err
		}
	}
	for i := 0; i < input.Antiarrhythmics; i++ {
		if err := meds.Administer(domain.MedicationEvent{Drug: domain.DrugAmiodarone, AdministeredAt: 0}); err != nil {
			return dto.AdviceOutput{}, err
		}
	}

	rec, err := domain.Advise(domain.AdvisorInput{
		Phase:        phase,
		Shockability: shockability,
		ShockCount:   input.Shocks,
		CycleCount:   input.Cycle,
		Medications:  meds,
		Patient:      patient,
		Now:          now,
		UntilCheck:   input.UntilCheck,
	})
	if err != nil {
		return dto.AdviceOutput{}, err
	}
	return dto.AdviceOutput{
		Reason:         string(rec.Reason),
		Message:        rec.Message,
		Urgency:        string(rec.Urgency),
		CriticalAction: string(rec.CriticalAction),
		Detail:         rec.Detail,
		Dose:           rec.Dose,
		Route:          rec.Route,
		Checklist:      rec.Checklist,
		Secondary:      rec.Secondary,
		Countdown:      rec.Countdown,
	}, nil
}

func (Interactor) Causes(_ context.Context, input dto.PatientInput) ([]dto.CauseOutput, error) {
	patient := toPatient(input.AgeYears, input.WeightKg)
	if err := patient.Validate(); err != nil {
		return nil, err
	}
	out := make([]dto.CauseOutput, 0, len(domain.ReversibleCauses))
	for _, c := range domain.ReversibleCauses {
		out = append(out, dto.CauseOutput{Cause: string(c), Label: c.Label(), Treatment: domain.Treatment(c, patient)})
	}
	return out, nil
}

func (Interactor) ShockEnergy(_ context.Context, input dto.ShockEnergyInput) (dto.ShockEnergyOutput, error) {
	patient := toPatient(input.Patient.AgeYears, input.Patient.WeightKg)
	if err := patient.Validate(); err != nil {
		return dto.ShockEnergyOutput{}, err
	}
	if input.Shocks < 0 {
		return dto.ShockEnergyOutput{}, fmt.Errorf("%w: shocks must not be negative", apperrors.ErrInvalidInput)
	}
	device := domain.Defibrillator(strings.ToLower(strings.TrimSpace(input.Device)))
	switch device {
	case "":
		device = domain.Biphasic
	case domain.Biphasic, domain.Monophasic:
	default:
		return dto.ShockEnergyOutput{}, fmt.Errorf("%w: unknown defibrillator %q", apperrors.ErrInvalidInput, input.Device)
	}
	advice := domain.RecommendShock(patient, input.Shocks, device)
	return dto.ShockEnergyOutput{Joules: advice.Joules, Options: advice.Options, Basis: advice.Basis}, nil
}

func (Interactor) Dose(_ context.Context, input dto.DoseInput) (dto.DoseOutput, error) {
	drug, err := domain.ParseDrug(input.Drug)
	if err != nil {
		return dto.DoseOutput{}, err
	}
	patient := toPatient(input.Patient.AgeYears, input.Patient.WeightKg)
	if err := patient.Validate(); err != nil {
		return dto.DoseOutput{}, err
	}
	ordinal := input.Ordinal
	if ordinal < 1 {
		ordinal = 1
	}
	text, err := domain.DoseText(drug, patient, ordinal)
	if err != nil {
		return dto.DoseOutput{}, err
	}
	return dto.DoseOutput{Drug: drug.DisplayName(), Dose: text, Antiarrhythmic: drug.Antiarrhythmic()}, nil
}

func toPatient(age int, weight float64) domain.Patient {
	return domain.Patient{AgeYears: age, WeightKg: weight}
}
