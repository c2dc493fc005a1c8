package domain

type MedicationLine struct {
	Drug  Drug   `json:"drug"`
	Dose  string `json:"dose"`
	Route Route  `json:"route"`
	At    int    `json:"at"`
}

// Summary is the end-of-case report. Every field is derived from the
// timeline by Summarize.
type Summary struct {
	DurationSeconds    int              `json:"duration_seconds"`
	CompressionSeconds int              `json:"compression_seconds"`
	CompressionRatio   float64          `json:"compression_ratio"`
	CycleCount         int              `json:"cycle_count"`
	RhythmChecks       int              `json:"rhythm_checks"`
	ShockCount         int              `json:"shock_count"`
	FirstShockAt       *int             `json:"first_shock_at,omitempty"`
	FirstShockJoules   int              `json:"first_shock_joules,omitempty"`
	FirstAdrenalineAt  *int             `json:"first_adrenaline_at,omitempty"`
	FinalRhythm        RhythmKind       `json:"final_rhythm,omitempty"`
	ROSC               bool             `json:"rosc"`
	Medications        []MedicationLine `json:"medications,omitempty"`
	Notes              []string         `json:"notes,omitempty"`
}

// Summarize scans entries in insertion order. Hands-on time is the sum of the
// spans opened by a compressions marker and closed by the next pause marker,
// or by endAt when still open.
func Summarize(entries []TimelineEntry, endAt int) Summary {
	s := Summary{DurationSeconds: endAt}
	openAt := -1
	closeSpan := func(at int) {
		if openAt >= 0 && at > openAt {
			s.CompressionSeconds += at - openAt
		}
		openAt = -1
	}

	for _, e := range entries {
		if e.At > s.DurationSeconds {
			s.DurationSeconds = e.At
		}
		switch ev := e.Event.(type) {
		case MarkerEvent:
			switch ev.Marker {
			case MarkerCompressionsStarted:
				if openAt < 0 {
					openAt = e.At
					s.CycleCount++
				}
			case MarkerRhythmCheck:
				s.RhythmChecks++
				closeSpan(e.At)
			case MarkerROSC:
				s.ROSC = true
				closeSpan(e.At)
			case MarkerSessionFinished:
				closeSpan(e.At)
			}
		case ShockEvent:
			s.ShockCount++
			if s.FirstShockAt == nil {
				at := e.At
				s.FirstShockAt = &at
				s.FirstShockJoules = ev.EnergyJoules
			}
		case DrugEvent:
			s.Medications = append(s.Medications, MedicationLine{Drug: ev.Drug, Dose: ev.Dose, Route: ev.Route, At: e.At})
			if ev.Drug == DrugAdrenaline && s.FirstAdrenalineAt == nil {
				at := e.At
				s.FirstAdrenalineAt = &at
			}
		case RhythmEvent:
			s.FinalRhythm = ev.Rhythm
		case NoteEvent:
			s.Notes = append(s.Notes, ev.Text)
		}
	}
	closeSpan(s.DurationSeconds)

	if s.DurationSeconds > 0 {
		s.CompressionRatio = float64(s.CompressionSeconds) / float64(s.DurationSeconds)
	}
	return s
}
