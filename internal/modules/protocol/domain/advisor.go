package domain

import "fmt"

type Urgency string

const (
	UrgencyPrimary Urgency = "primary"
	UrgencyDanger  Urgency = "danger"
	UrgencyWarning Urgency = "warning"
	UrgencySuccess Urgency = "success"
)

type CriticalAction string

const (
	ActionNone  CriticalAction = ""
	ActionShock CriticalAction = "SHOCK"
	ActionDrug  CriticalAction = "DRUG"
)

// Reason names the decision branch that produced a recommendation.
type Reason string

const (
	ReasonPreparation          Reason = "preparation"
	ReasonRhythmAssessment     Reason = "rhythm_assessment"
	ReasonAwaitingRhythm       Reason = "awaiting_rhythm"
	ReasonAdrenalineFirstDose  Reason = "adrenaline_first_dose"
	ReasonAwaitingShocks       Reason = "awaiting_shocks"
	ReasonAdrenalineDue        Reason = "adrenaline_due"
	ReasonAmiodaroneFirstDose  Reason = "amiodarone_first_dose"
	ReasonAmiodaroneSecondDose Reason = "amiodarone_second_dose"
	ReasonNoActionDue          Reason = "no_action_due"
)

var PreparationChecklist = []string{
	"Scene safety",
	"Check responsiveness",
	"Activate emergency response",
	"Check pulse (max 10 s)",
	"Begin compressions",
}

type Recommendation struct {
	Reason         Reason
	Message        string
	Urgency        Urgency
	Icon           string
	CriticalAction CriticalAction
	Detail         string
	Dose           string
	Route          string
	Checklist      []string
	// Secondary carries reminders shown alongside the main message, such as
	// the reversible causes during non-shockable arrest.
	Secondary string
	// Countdown is the pending adrenaline wait, zero when none.
	Countdown int
}

type AdvisorInput struct {
	Phase        Phase
	Shockability Shockability
	ShockCount   int
	CycleCount   int
	Medications  *MedicationScheduler
	Patient      Patient
	Now          int
	// UntilCheck is the seconds left in the current compression cycle.
	UntilCheck int
}

// Advise is the protocol decision function. Rules are evaluated in order and
// the first one that yields a recommendation wins; the maintain-CPR default is
// its own named branch.
func Advise(in AdvisorInput) (Recommendation, error) {
	if err := in.Phase.Validate(); err != nil {
		return Recommendation{}, err
	}
	meds := in.Medications
	if meds == nil {
		meds = NewMedicationScheduler()
	}

	switch in.Phase {
	case PhasePreparation:
		return Recommendation{
			Reason:    ReasonPreparation,
			Message:   "Start resuscitation",
			Urgency:   UrgencyPrimary,
			Icon:      "hand",
			Checklist: append([]string(nil), PreparationChecklist...),
		}, nil
	case PhaseRhythmCheck, PhaseShockAdvised:
		rec := Recommendation{
			Reason:  ReasonRhythmAssessment,
			Message: "Pause to assess rhythm and pulse (max 10 s)",
			Urgency: UrgencyDanger,
			Icon:    "alert",
			Detail:  "non-shockable - resume compressions",
		}
		if in.Shockability == Shockable {
			rec.CriticalAction = ActionShock
			rec.Detail = "shockable - prepare defibrillator"
		}
		return rec, nil
	}

	if in.Shockability == ShockabilityUnknown {
		return Recommendation{
			Reason:  ReasonAwaitingRhythm,
			Message: "Awaiting rhythm check",
			Urgency: UrgencyWarning,
			Icon:    "hourglass",
		}, nil
	}

	secondary := ""
	if in.Shockability == NonShockable {
		secondary = "Investigate reversible causes (5H/5T): " + ReversibleCausesSummary
	}

	adrenalineGiven := meds.Count(DrugAdrenaline)
	countdown := 0
	if adrenalineGiven == 0 {
		switch {
		case in.Shockability == NonShockable && in.CycleCount >= 1:
			return drugRecommendation(ReasonAdrenalineFirstDose, "Adrenaline - urgent, give now",
				"1 mg EV/IO - immediate, repeat every 3-5 min",
				"non-shockable rhythm: continuous CPR", in.Patient, 1, secondary), nil
		case in.Shockability == Shockable && in.ShockCount >= 2:
			return drugRecommendation(ReasonAdrenalineFirstDose, "Adrenaline - give now",
				"1 mg EV/IO - after 2nd shock, repeat every 3-5 min",
				"after 2nd shock; consider Amiodarone", in.Patient, 1, secondary), nil
		case in.Shockability == Shockable:
			return Recommendation{
				Reason:    ReasonAwaitingShocks,
				Message:   fmt.Sprintf("Awaiting 2 shocks (%d/2)", in.ShockCount),
				Urgency:   UrgencyWarning,
				Icon:      "hourglass",
				Detail:    "shockable rhythm: adrenaline after the 2nd shock",
				Secondary: secondary,
			}, nil
		}
	} else {
		status, err := meds.IsDue(DrugAdrenaline, AdrenalineIntervalSeconds, in.Now)
		if err != nil {
			return Recommendation{}, err
		}
		if status.IsDue {
			return drugRecommendation(ReasonAdrenalineDue, "Adrenaline - dose due",
				"1 mg EV/IO - give now, repeat every 3-5 min",
				status.Reason, in.Patient, adrenalineGiven+1, secondary), nil
		}
		countdown = status.SecondsUntilDue
	}

	if in.Shockability == Shockable && in.Phase == PhaseCompressions {
		anti := meds.AntiarrhythmicCount()
		switch {
		case in.ShockCount >= 2 && anti == 0:
			rec := amiodarone(ReasonAmiodaroneFirstDose, "Amiodarone 300 mg - give now", "300 mg EV/IO",
				"persistent VF/pVT after 2 shocks; give during compressions", in.Patient, 1)
			rec.Countdown = countdown
			return rec, nil
		case in.ShockCount >= 3 && anti == 1:
			rec := amiodarone(ReasonAmiodaroneSecondDose, "Amiodarone 150 mg - consider", "150 mg EV/IO",
				"VF/pVT persisting after further shocks", in.Patient, 2)
			rec.Countdown = countdown
			return rec, nil
		}
	}

	detail := fmt.Sprintf("Cycle %d (%d min): next rhythm check in %s", in.CycleCount, in.CycleCount*2, FormatClock(in.UntilCheck))
	if countdown > 0 {
		detail += fmt.Sprintf("; adrenaline due in %s", FormatClock(countdown))
	}
	return Recommendation{
		Reason:    ReasonNoActionDue,
		Message:   "Maintain high-quality CPR",
		Urgency:   UrgencySuccess,
		Icon:      "heartbeat",
		Detail:    detail,
		Secondary: secondary,
		Countdown: countdown,
	}, nil
}

func drugRecommendation(reason Reason, message, adultDose, detail string, patient Patient, ordinal int, secondary string) Recommendation {
	dose := adultDose
	if patient.Pediatric() && patient.WeightKg > 0 {
		dose, _ = DoseText(DrugAdrenaline, patient, ordinal)
	}
	return Recommendation{
		Reason:         reason,
		Message:        message,
		Urgency:        UrgencyDanger,
		Icon:           "syringe",
		CriticalAction: ActionDrug,
		Detail:         detail,
		Dose:           dose,
		Route:          "EV/IO",
		Secondary:      secondary,
	}
}

func amiodarone(reason Reason, message, adultDose, detail string, patient Patient, ordinal int) Recommendation {
	dose := adultDose
	if patient.Pediatric() && patient.WeightKg > 0 {
		dose, _ = DoseText(DrugAmiodarone, patient, ordinal)
	}
	urgency := UrgencyPrimary
	if ordinal > 1 {
		urgency = UrgencyWarning
	}
	return Recommendation{
		Reason:         reason,
		Message:        message,
		Urgency:        urgency,
		Icon:           "syringe",
		CriticalAction: ActionDrug,
		Detail:         detail,
		Dose:           dose,
		Route:          "EV/IO",
	}
}
