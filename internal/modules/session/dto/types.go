package dto

import "time"

type PatientInput struct {
	Name          string  `json:"name"`
	AgeYears      int     `json:"age_years"`
	WeightKg      float64 `json:"weight_kg"`
	Sex           string  `json:"sex"`
	Allergies     string  `json:"allergies"`
	Comorbidities string  `json:"comorbidities"`
}

type StartInput struct {
	Patient PatientInput `json:"patient"`
}

type SessionOutput struct {
	SessionID   string    `json:"session_id"`
	PatientName string    `json:"patient_name"`
	StartedAt   time.Time `json:"started_at"`
	Pediatric   bool      `json:"pediatric"`
}

type RhythmInput struct {
	Rhythm string `json:"rhythm"`
	Notes  string `json:"notes"`
}

type RhythmOutput struct {
	Rhythm    string `json:"rhythm"`
	Label     string `json:"label"`
	Shockable bool   `json:"shockable"`
	Phase     string `json:"phase"`
}

type ShockInput struct {
	Joules int `json:"joules"`
}

type ShockOutput struct {
	Ordinal int    `json:"ordinal"`
	Joules  int    `json:"joules"`
	Phase   string `json:"phase"`
	Cycle   int    `json:"cycle"`
}

type MedicationInput struct {
	Drug  string `json:"drug"`
	Dose  string `json:"dose"`
	Route string `json:"route"`
}

type MedicationOutput struct {
	Drug  string `json:"drug"`
	Dose  string `json:"dose"`
	Route string `json:"route"`
	At    int    `json:"at"`
}

type NoteInput struct {
	Text     string `json:"text"`
	Severity string `json:"severity"`
}

type VitalsInput struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
	HeartRate int `json:"heart_rate"`
	SpO2      int `json:"spo2"`
}

type VitalsOutput struct {
	MAP      int      `json:"map"`
	Severity string   `json:"severity"`
	Findings []string `json:"findings"`
}

type GlasgowInput struct {
	Eye    int `json:"eye"`
	Verbal int `json:"verbal"`
	Motor  int `json:"motor"`
}

type GlasgowOutput struct {
	Total int    `json:"total"`
	Band  string `json:"band"`
}

type QualityInput struct {
	Rate    int     `json:"rate"`
	DepthCm float64 `json:"depth_cm"`
}

type QualityOutput struct {
	OK       bool     `json:"ok"`
	Messages []string `json:"messages"`
}

type RecommendationOutput struct {
	Reason         string   `json:"reason"`
	Message        string   `json:"message"`
	Urgency        string   `json:"urgency"`
	Icon           string   `json:"icon"`
	CriticalAction string   `json:"critical_action,omitempty"`
	Detail         string   `json:"detail,omitempty"`
	Dose           string   `json:"dose,omitempty"`
	Route          string   `json:"route,omitempty"`
	Checklist      []string `json:"checklist,omitempty"`
	Secondary      string   `json:"secondary,omitempty"`
	Countdown      int      `json:"countdown,omitempty"`
}

type TimelineEntryOutput struct {
	Seq      int    `json:"seq"`
	At       int    `json:"at"`
	Clock    string `json:"clock"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// SnapshotOutput is the rendering contract pushed to every UI.
type SnapshotOutput struct {
	SessionID      string                `json:"session_id"`
	PatientName    string                `json:"patient_name"`
	Active         bool                  `json:"active"`
	Elapsed        int                   `json:"elapsed"`
	ElapsedClock   string                `json:"elapsed_clock"`
	Phase          string                `json:"phase"`
	CycleCount     int                   `json:"cycle_count"`
	Progress       float64               `json:"progress"`
	UntilCheck     int                   `json:"until_check"`
	ShockCount     int                   `json:"shock_count"`
	Shockability   string                `json:"shockability"`
	LastRhythm     string                `json:"last_rhythm,omitempty"`
	Medications    int                   `json:"medications"`
	ROSC           bool                  `json:"rosc"`
	Recommendation RecommendationOutput  `json:"recommendation"`
	Timeline       []TimelineEntryOutput `json:"timeline"`
}

type ShockAdviceOutput struct {
	Joules  int    `json:"joules"`
	Options []int  `json:"options,omitempty"`
	Basis   string `json:"basis"`
}

type FinishInput struct {
	Notes string `json:"notes"`
}

type SummaryOutput struct {
	DurationSeconds    int      `json:"duration_seconds"`
	CompressionSeconds int      `json:"compression_seconds"`
	CompressionRatio   float64  `json:"compression_ratio"`
	CycleCount         int      `json:"cycle_count"`
	RhythmChecks       int      `json:"rhythm_checks"`
	ShockCount         int      `json:"shock_count"`
	FirstShockAt       string   `json:"first_shock_at,omitempty"`
	FirstAdrenalineAt  string   `json:"first_adrenaline_at,omitempty"`
	FinalRhythm        string   `json:"final_rhythm,omitempty"`
	ROSC               bool     `json:"rosc"`
	Medications        []string `json:"medications,omitempty"`
}

type FinishOutput struct {
	SessionID  string        `json:"session_id"`
	EndedAt    time.Time     `json:"ended_at"`
	ReportPath string        `json:"report_path,omitempty"`
	Synced     bool          `json:"synced"`
	Queued     bool          `json:"queued"`
	Summary    SummaryOutput `json:"summary"`
}

type LogOutput struct {
	SessionID   string        `json:"session_id"`
	PatientName string        `json:"patient_name"`
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     time.Time     `json:"ended_at"`
	ReportPath  string        `json:"report_path,omitempty"`
	Synced      bool          `json:"synced"`
	Summary     SummaryOutput `json:"summary"`
}
