package in

import (
	"context"

	"siav/internal/modules/protocol/dto"
)

// Usecase exposes the stateless parts of the engine: decisions and bedside
// references that need no running session.
type Usecase interface {
	Advise(ctx context.Context, input dto.AdviseInput) (dto.AdviceOutput, error)
	Causes(ctx context.Context, patient dto.PatientInput) ([]dto.CauseOutput, error)
	ShockEnergy(ctx context.Context, input dto.ShockEnergyInput) (dto.ShockEnergyOutput, error)
	Dose(ctx context.Context, input dto.DoseInput) (dto.DoseOutput, error)
}
