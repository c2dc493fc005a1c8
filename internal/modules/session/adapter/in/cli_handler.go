package in

import (
	"context"

	sessiondto "siav/internal/modules/session/dto"
	sessionin "siav/internal/modules/session/port/in"
)

// CLIHandler adapts flag values from the command line to the usecase.
type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, patient sessiondto.PatientInput) (sessiondto.SessionOutput, error) {
	return h.usecase.StartSession(ctx, sessiondto.StartInput{Patient: patient})
}

func (h CLIHandler) BeginCompressions(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.BeginCompressions(ctx)
}

func (h CLIHandler) CheckRhythm(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.TriggerRhythmCheck(ctx)
}

func (h CLIHandler) Rhythm(ctx context.Context, rhythm, notes string) (sessiondto.RhythmOutput, error) {
	return h.usecase.RecordRhythm(ctx, sessiondto.RhythmInput{Rhythm: rhythm, Notes: notes})
}

// Shock uses the recommended energy when joules is zero.
func (h CLIHandler) Shock(ctx context.Context, joules int) (sessiondto.ShockOutput, error) {
	if joules == 0 {
		advice, err := h.usecase.ShockAdvice(ctx)
		if err != nil {
			return sessiondto.ShockOutput{}, err
		}
		joules = advice.Joules
	}
	return h.usecase.RecordShock(ctx, sessiondto.ShockInput{Joules: joules})
}

func (h CLIHandler) Medication(ctx context.Context, drug, dose, route string) (sessiondto.MedicationOutput, error) {
	return h.usecase.RecordMedication(ctx, sessiondto.MedicationInput{Drug: drug, Dose: dose, Route: route})
}

func (h CLIHandler) Note(ctx context.Context, text, severity string) error {
	return h.usecase.AddNote(ctx, sessiondto.NoteInput{Text: text, Severity: severity})
}

func (h CLIHandler) Vitals(ctx context.Context, systolic, diastolic, heartRate, spo2 int) (sessiondto.VitalsOutput, error) {
	return h.usecase.RecordVitals(ctx, sessiondto.VitalsInput{Systolic: systolic, Diastolic: diastolic, HeartRate: heartRate, SpO2: spo2})
}

func (h CLIHandler) Glasgow(ctx context.Context, eye, verbal, motor int) (sessiondto.GlasgowOutput, error) {
	return h.usecase.RecordGlasgow(ctx, sessiondto.GlasgowInput{Eye: eye, Verbal: verbal, Motor: motor})
}

func (h CLIHandler) Quality(ctx context.Context, rate int, depthCm float64) (sessiondto.QualityOutput, error) {
	return h.usecase.CheckQuality(ctx, sessiondto.QualityInput{Rate: rate, DepthCm: depthCm})
}

func (h CLIHandler) Snapshot(ctx context.Context) (sessiondto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) ShockAdvice(ctx context.Context) (sessiondto.ShockAdviceOutput, error) {
	return h.usecase.ShockAdvice(ctx)
}

func (h CLIHandler) ROSC(ctx context.Context) (sessiondto.FinishOutput, error) {
	return h.usecase.RecordROSC(ctx)
}

func (h CLIHandler) Finish(ctx context.Context, notes string) (sessiondto.FinishOutput, error) {
	return h.usecase.FinishSession(ctx, sessiondto.FinishInput{Notes: notes})
}

func (h CLIHandler) Sync(ctx context.Context) (int, error) {
	return h.usecase.SyncPending(ctx)
}

func (h CLIHandler) Logs(ctx context.Context, limit int) ([]sessiondto.LogOutput, error) {
	return h.usecase.ListLogs(ctx, limit)
}

func (h CLIHandler) Reset(ctx context.Context) error {
	return h.usecase.ResetActive(ctx)
}
