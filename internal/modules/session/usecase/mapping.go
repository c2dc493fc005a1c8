package usecase

import (
	"fmt"
	"strings"

	protocol "siav/internal/modules/protocol/domain"
	"siav/internal/modules/session/domain"
	sessiondto "siav/internal/modules/session/dto"
)

func toPatient(in sessiondto.PatientInput) protocol.Patient {
	return protocol.Patient{
		Name:          strings.TrimSpace(in.Name),
		AgeYears:      in.AgeYears,
		WeightKg:      in.WeightKg,
		Sex:           strings.TrimSpace(in.Sex),
		Allergies:     strings.TrimSpace(in.Allergies),
		Comorbidities: strings.TrimSpace(in.Comorbidities),
	}
}

func toSnapshot(state domain.State) sessiondto.SnapshotOutput {
	if state.SessionID == "" {
		return sessiondto.SnapshotOutput{}
	}
	timeline := make([]sessiondto.TimelineEntryOutput, 0, len(state.Timeline))
	for _, e := range state.Timeline {
		timeline = append(timeline, sessiondto.TimelineEntryOutput{
			Seq:      e.Seq,
			At:       e.At,
			Clock:    protocol.FormatClock(e.At),
			Kind:     string(e.Event.Kind()),
			Severity: string(e.Severity),
			Text:     e.Event.Describe(),
		})
	}
	rec := state.Recommendation
	return sessiondto.SnapshotOutput{
		SessionID:    state.SessionID,
		PatientName:  state.Patient.Name,
		Active:       state.Active,
		Elapsed:      state.Elapsed,
		ElapsedClock: protocol.FormatClock(state.Elapsed),
		Phase:        string(state.Phase),
		CycleCount:   state.CycleCount,
		Progress:     state.Progress,
		UntilCheck:   state.UntilCheck,
		ShockCount:   state.ShockCount,
		Shockability: state.Shockability.String(),
		LastRhythm:   string(state.LastRhythm),
		Medications:  state.Medications,
		ROSC:         state.ROSC,
		Recommendation: sessiondto.RecommendationOutput{
			Reason:         string(rec.Reason),
			Message:        rec.Message,
			Urgency:        string(rec.Urgency),
			Icon:           rec.Icon,
			CriticalAction: string(rec.CriticalAction),
			Detail:         rec.Detail,
			Dose:           rec.Dose,
			Route:          rec.Route,
			Checklist:      rec.Checklist,
			Secondary:      rec.Secondary,
			Countdown:      rec.Countdown,
		},
		Timeline: timeline,
	}
}

func toSummary(s protocol.Summary) sessiondto.SummaryOutput {
	out := sessiondto.SummaryOutput{
		DurationSeconds:    s.DurationSeconds,
		CompressionSeconds: s.CompressionSeconds,
		CompressionRatio:   s.CompressionRatio,
		CycleCount:         s.CycleCount,
		RhythmChecks:       s.RhythmChecks,
		ShockCount:         s.ShockCount,
		FinalRhythm:        string(s.FinalRhythm),
		ROSC:               s.ROSC,
	}
	if s.FirstShockAt != nil {
		out.FirstShockAt = protocol.FormatClock(*s.FirstShockAt)
	}
	if s.FirstAdrenalineAt != nil {
		out.FirstAdrenalineAt = protocol.FormatClock(*s.FirstAdrenalineAt)
	}
	for _, m := range s.Medications {
		out.Medications = append(out.Medications, fmt.Sprintf("%s %s %s %s", protocol.FormatClock(m.At), m.Drug.DisplayName(), m.Dose, m.Route))
	}
	return out
}
