package in

import (
	"context"

	protocoldto "siav/internal/modules/protocol/dto"
	protocolin "siav/internal/modules/protocol/port/in"
)

type CLIHandler struct {
	usecase protocolin.Usecase
}

func NewCLIHandler(usecase protocolin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Advise(ctx context.Context, input protocoldto.AdviseInput) (protocoldto.AdviceOutput, error) {
	return h.usecase.Advise(ctx, input)
}

func (h CLIHandler) Causes(ctx context.Context, age int, weightKg float64) ([]protocoldto.CauseOutput, error) {
	return h.usecase.Causes(ctx, protocoldto.PatientInput{AgeYears: age, WeightKg: weightKg})
}

func (h CLIHandler) ShockEnergy(ctx context.Context, age int, weightKg float64, shocks int, device string) (protocoldto.ShockEnergyOutput, error) {
	return h.usecase.ShockEnergy(ctx, protocoldto.ShockEnergyInput{
		Patient: protocoldto.PatientInput{AgeYears: age, WeightKg: weightKg},
		Shocks:  shocks,
		Device:  device,
	})
}

func (h CLIHandler) Dose(ctx context.Context, drug string, ordinal, age int, weightKg float64) (protocoldto.DoseOutput, error) {
	return h.usecase.Dose(ctx, protocoldto.DoseInput{
		Drug:    drug,
		Ordinal: ordinal,
		Patient: protocoldto.PatientInput{AgeYears: age, WeightKg: weightKg},
	})
}
