package domain

import (
	"fmt"
	"math"
	"strings"
)

// AdrenalineIntervalSeconds is the minimum spacing between adrenaline doses.
const AdrenalineIntervalSeconds = 180

type Drug string

const (
	DrugAdrenaline  Drug = "adrenaline"
	DrugAmiodarone  Drug = "amiodarone"
	DrugAtropine    Drug = "atropine"
	DrugLidocaine   Drug = "lidocaine"
	DrugBicarbonate Drug = "bicarbonate"
	DrugMagnesium   Drug = "magnesium"
)

type Route string

const (
	RouteEV Route = "EV"
	RouteIO Route = "IO"
	RouteET Route = "ET"
)

type drugSpec struct {
	display        string
	antiarrhythmic bool
	adult          func(ordinal int) string
	pediatric      func(weightKg float64, ordinal int) string
}

var dosingTable = map[Drug]drugSpec{
	DrugAdrenaline: {
		display: "Adrenaline",
		adult:   func(int) string { return "1 mg EV/IO, repeat every 3-5 min" },
		pediatric: func(w float64, _ int) string {
			return fmt.Sprintf("%s mg EV/IO (0.01 mg/kg, max 1 mg)", formatAmount(capped(w*0.01, 0, 1)))
		},
	},
	DrugAmiodarone: {
		display:        "Amiodarone",
		antiarrhythmic: true,
		adult: func(ordinal int) string {
			if ordinal <= 1 {
				return "300 mg EV/IO bolus"
			}
			return "150 mg EV/IO bolus"
		},
		pediatric: func(w float64, _ int) string {
			return fmt.Sprintf("%s mg EV/IO (5 mg/kg, max 300 mg)", formatAmount(capped(w*5, 0, 300)))
		},
	},
	DrugAtropine: {
		display: "Atropine",
		adult:   func(int) string { return "1 mg EV, max 3 doses" },
		pediatric: func(w float64, _ int) string {
			return fmt.Sprintf("%s mg EV (0.02 mg/kg, min 0.1, max 1 mg)", formatAmount(capped(w*0.02, 0.1, 1)))
		},
	},
	DrugLidocaine: {
		display:        "Lidocaine",
		antiarrhythmic: true,
		adult:          func(int) string { return "1-1.5 mg/kg EV/IO" },
		pediatric: func(w float64, _ int) string {
			return fmt.Sprintf("%s mg EV/IO (1 mg/kg)", formatAmount(w))
		},
	},
	DrugBicarbonate: {
		display: "Sodium bicarbonate",
		adult:   func(int) string { return "1 mEq/kg EV" },
		pediatric: func(w float64, _ int) string {
			return fmt.Sprintf("%s mEq EV (1 mEq/kg)", formatAmount(w))
		},
	},
	DrugMagnesium: {
		display: "Magnesium sulfate",
		adult:   func(int) string { return "1-2 g EV diluted" },
		pediatric: func(w float64, _ int) string {
			return fmt.Sprintf("%s mg EV (25 mg/kg, max 2000 mg)", formatAmount(capped(w*25, 0, 2000)))
		},
	},
}

var drugAliases = map[string]Drug{
	"adrenaline":  DrugAdrenaline,
	"adrenalina":  DrugAdrenaline,
	"epinephrine": DrugAdrenaline,
	"amiodarone":  DrugAmiodarone,
	"amiodarona":  DrugAmiodarone,
	"atropine":    DrugAtropine,
	"atropina":    DrugAtropine,
	"lidocaine":   DrugLidocaine,
	"lidocaina":   DrugLidocaine,
	"lidocaína":   DrugLidocaine,
	"bicarbonate": DrugBicarbonate,
	"bicarbonato": DrugBicarbonate,
	"magnesium":   DrugMagnesium,
	"sulfato":     DrugMagnesium,
}

func ParseDrug(raw string) (Drug, error) {
	if d, ok := drugAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDrug, raw)
}

func (d Drug) Validate() error {
	if _, ok := dosingTable[d]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDrug, string(d))
	}
	return nil
}

func (d Drug) DisplayName() string {
	if spec, ok := dosingTable[d]; ok {
		return spec.display
	}
	return string(d)
}

func (d Drug) Antiarrhythmic() bool {
	return dosingTable[d].antiarrhythmic
}

// DoseText renders the dose for the given ordinal (1-based) administration.
func DoseText(d Drug, patient Patient, ordinal int) (string, error) {
	spec, ok := dosingTable[d]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDrug, string(d))
	}
	if patient.Pediatric() && patient.WeightKg > 0 {
		return spec.pediatric(patient.WeightKg, ordinal), nil
	}
	return spec.adult(ordinal), nil
}

func ParseRoute(raw string) (Route, error) {
	switch r := Route(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RouteEV, RouteIO, RouteET:
		return r, nil
	case "", "EV/IO":
		return RouteEV, nil
	}
	return "", fmt.Errorf("unknown route %q", raw)
}

type MedicationEvent struct {
	Drug           Drug
	DoseText       string
	Route          Route
	AdministeredAt int
}

type DueStatus struct {
	IsDue           bool
	SecondsUntilDue int
	Reason          string
}

// MedicationScheduler answers dose-timing questions from the ordered list of
// administrations. Counts and intervals are always derived, never stored.
type MedicationScheduler struct {
	events []MedicationEvent
}

func NewMedicationScheduler() *MedicationScheduler {
	return &MedicationScheduler{}
}

func (s *MedicationScheduler) Administer(event MedicationEvent) error {
	if err := event.Drug.Validate(); err != nil {
		return err
	}
	if event.AdministeredAt < 0 {
		return fmt.Errorf("administered at %d: negative time", event.AdministeredAt)
	}
	s.events = append(s.events, event)
	return nil
}

func (s *MedicationScheduler) Events() []MedicationEvent {
	return append([]MedicationEvent(nil), s.events...)
}

func (s *MedicationScheduler) Count(d Drug) int {
	n := 0
	for _, e := range s.events {
		if e.Drug == d {
			n++
		}
	}
	return n
}

func (s *MedicationScheduler) AntiarrhythmicCount() int {
	n := 0
	for _, e := range s.events {
		if e.Drug.Antiarrhythmic() {
			n++
		}
	}
	return n
}

// TimeSinceLastDose reports false when the drug was never given.
func (s *MedicationScheduler) TimeSinceLastDose(d Drug, now int) (int, bool, error) {
	if err := d.Validate(); err != nil {
		return 0, false, err
	}
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Drug == d {
			since := now - s.events[i].AdministeredAt
			if since < 0 {
				since = 0
			}
			return since, true, nil
		}
	}
	return 0, false, nil
}

func (s *MedicationScheduler) IsDue(d Drug, minIntervalSeconds, now int) (DueStatus, error) {
	since, given, err := s.TimeSinceLastDose(d, now)
	if err != nil {
		return DueStatus{}, err
	}
	if !given {
		return DueStatus{IsDue: true, Reason: "never administered, give now"}, nil
	}
	if since >= minIntervalSeconds {
		return DueStatus{IsDue: true, Reason: fmt.Sprintf("last dose %s ago, give now", FormatClock(since))}, nil
	}
	left := minIntervalSeconds - since
	return DueStatus{
		IsDue:           false,
		SecondsUntilDue: left,
		Reason:          fmt.Sprintf("%s due in %s", d.DisplayName(), FormatClock(left)),
	}, nil
}

func capped(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
