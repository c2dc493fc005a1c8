package dto

// AdviseInput describes a resuscitation moment for a one-shot evaluation.
// AdrenalineAgo is the seconds since the last adrenaline dose, negative when
// none was given.
type AdviseInput struct {
	Phase           string  `json:"phase"`
	Rhythm          string  `json:"rhythm"`
	Shocks          int     `json:"shocks"`
	Cycle           int     `json:"cycle"`
	AdrenalineAgo   int     `json:"adrenaline_ago"`
	Antiarrhythmics int     `json:"antiarrhythmics"`
	UntilCheck      int     `json:"until_check"`
	AgeYears        int     `json:"age_years"`
	WeightKg        float64 `json:"weight_kg"`
}

type AdviceOutput struct {
	Reason         string   `json:"reason"`
	Message        string   `json:"message"`
	Urgency        string   `json:"urgency"`
	CriticalAction string   `json:"critical_action,omitempty"`
	Detail         string   `json:"detail,omitempty"`
	Dose           string   `json:"dose,omitempty"`
	Route          string   `json:"route,omitempty"`
	Checklist      []string `json:"checklist,omitempty"`
	Secondary      string   `json:"secondary,omitempty"`
	Countdown      int      `json:"countdown,omitempty"`
}

type PatientInput struct {
	AgeYears int     `json:"age_years"`
	WeightKg float64 `json:"weight_kg"`
}

type CauseOutput struct {
	Cause     string `json:"cause"`
	Label     string `json:"label"`
	Treatment string `json:"treatment"`
}

type ShockEnergyInput struct {
	Patient PatientInput `json:"patient"`
	Shocks  int          `json:"shocks"`
	Device  string       `json:"device"`
}

type ShockEnergyOutput struct {
	Joules  int    `json:"joules"`
	Options []int  `json:"options,omitempty"`
	Basis   string `json:"basis"`
}

type DoseInput struct {
	Drug    string       `json:"drug"`
	Ordinal int          `json:"ordinal"`
	Patient PatientInput `json:"patient"`
}

type DoseOutput struct {
	Drug           string `json:"drug"`
	Dose           string `json:"dose"`
	Antiarrhythmic bool   `json:"antiarrhythmic"`
}
