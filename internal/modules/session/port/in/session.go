package in

import (
	"context"

	"siav/internal/modules/session/dto"
)

type Usecase interface {
	StartSession(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	BeginCompressions(ctx context.Context) (dto.SnapshotOutput, error)
	TriggerRhythmCheck(ctx context.Context) (dto.SnapshotOutput, error)
	RecordRhythm(ctx context.Context, input dto.RhythmInput) (dto.RhythmOutput, error)
	RecordShock(ctx context.Context, input dto.ShockInput) (dto.ShockOutput, error)
	RecordMedication(ctx context.Context, input dto.MedicationInput) (dto.MedicationOutput, error)
	AddNote(ctx context.Context, input dto.NoteInput) error
	RecordVitals(ctx context.Context, input dto.VitalsInput) (dto.VitalsOutput, error)
	RecordGlasgow(ctx context.Context, input dto.GlasgowInput) (dto.GlasgowOutput, error)
	CheckQuality(ctx context.Context, input dto.QualityInput) (dto.QualityOutput, error)
	Tick(ctx context.Context) (dto.SnapshotOutput, error)
	Snapshot(ctx context.Context) (dto.SnapshotOutput, error)
	ShockAdvice(ctx context.Context) (dto.ShockAdviceOutput, error)
	RecordROSC(ctx context.Context) (dto.FinishOutput, error)
	FinishSession(ctx context.Context, input dto.FinishInput) (dto.FinishOutput, error)
	SyncPending(ctx context.Context) (int, error)
	ListLogs(ctx context.Context, limit int) ([]dto.LogOutput, error)
	ResetActive(ctx context.Context) error
}
