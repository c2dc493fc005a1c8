package domain

import (
	"fmt"
	"math"
)

const MaxShockJoules = 360

// WeightBasedShockBelowKg is the weight under which shock energy is dosed
// per kilogram, whatever the age.
const WeightBasedShockBelowKg = 50

type Defibrillator string

const (
	Biphasic   Defibrillator = "biphasic"
	Monophasic Defibrillator = "monophasic"
)

type ShockAdvice struct {
	Joules  int
	Options []int
	Basis   string
}

func ValidateShockEnergy(joules int) error {
	if joules <= 0 || joules > MaxShockJoules {
		return fmt.Errorf("%w: %d J (allowed 1-%d)", ErrInvalidEnergy, joules, MaxShockJoules)
	}
	return nil
}

// RecommendShock picks the energy for the next shock given how many have
// already been delivered. A known weight under 50 kg selects J/kg dosing; an
// unknown weight falls back to the adult device energy.
func RecommendShock(patient Patient, shocksDelivered int, device Defibrillator) ShockAdvice {
	if patient.WeightKg > 0 && patient.WeightKg < WeightBasedShockBelowKg {
		perKg := 2.0
		if shocksDelivered > 0 {
			perKg = 4.0
		}
		joules := int(math.Round(math.Min(patient.WeightKg*perKg, 200)))
		if joules < 1 {
			joules = 1
		}
		return ShockAdvice{
			Joules:  joules,
			Options: []int{joules},
			Basis:   fmt.Sprintf("weight-based %.0f J/kg x %.1f kg (max 200 J)", perKg, patient.WeightKg),
		}
	}
	if device == Monophasic {
		return ShockAdvice{Joules: 360, Options: []int{360}, Basis: "adult monophasic"}
	}
	return ShockAdvice{Joules: 200, Options: []int{120, 150, 200, 360}, Basis: "adult biphasic"}
}
