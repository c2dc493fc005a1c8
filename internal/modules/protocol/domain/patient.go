package domain

import "fmt"

// Patient is free-form demographic data. Zero age or weight means unknown.
type Patient struct {
	Name          string  `json:"name,omitempty"`
	AgeYears      int     `json:"age_years,omitempty"`
	WeightKg      float64 `json:"weight_kg,omitempty"`
	Sex           string  `json:"sex,omitempty"`
	Allergies     string  `json:"allergies,omitempty"`
	Comorbidities string  `json:"comorbidities,omitempty"`
}

func (p Patient) Validate() error {
	if p.AgeYears < 0 || p.AgeYears > 120 {
		return fmt.Errorf("%w: age %d out of range 0-120", ErrInvalidPatient, p.AgeYears)
	}
	if p.WeightKg < 0 || p.WeightKg > 300 {
		return fmt.Errorf("%w: weight %.1f out of range 0-300", ErrInvalidPatient, p.WeightKg)
	}
	return nil
}

// Pediatric selects weight-based dosing: age under 8 or weight under 30 kg.
func (p Patient) Pediatric() bool {
	return (p.AgeYears > 0 && p.AgeYears < 8) || (p.WeightKg > 0 && p.WeightKg < 30)
}

func (p Patient) weightOr(fallback float64) float64 {
	if p.WeightKg > 0 {
		return p.WeightKg
	}
	return fallback
}
