package domain

import (
	"fmt"
	"strings"
)

type RhythmKind string

const (
	RhythmVF       RhythmKind = "FV"
	RhythmPVT      RhythmKind = "TVSP"
	RhythmPEA      RhythmKind = "AESP"
	RhythmAsystole RhythmKind = "Assistolia"
)

var rhythmLabels = map[RhythmKind]string{
	RhythmVF:       "ventricular fibrillation",
	RhythmPVT:      "pulseless ventricular tachycardia",
	RhythmPEA:      "pulseless electrical activity",
	RhythmAsystole: "asystole",
}

func (k RhythmKind) Validate() error {
	switch k {
	case RhythmVF, RhythmPVT, RhythmPEA, RhythmAsystole:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRhythmKind, string(k))
	}
}

// Shockable is true for FV and TVSP only.
func (k RhythmKind) Shockable() bool {
	return k == RhythmVF || k == RhythmPVT
}

func (k RhythmKind) Label() string {
	if label, ok := rhythmLabels[k]; ok {
		return label
	}
	return string(k)
}

// ParseRhythmKind accepts the canonical codes case-insensitively plus a few
// English abbreviations used on monitors.
func ParseRhythmKind(raw string) (RhythmKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "fv", "vf":
		return RhythmVF, nil
	case "tvsp", "pvt", "vt":
		return RhythmPVT, nil
	case "aesp", "pea":
		return RhythmPEA, nil
	case "assistolia", "asystole":
		return RhythmAsystole, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRhythmKind, raw)
}

// Shockability distinguishes "no rhythm determined yet" from either answer.
type Shockability int

const (
	ShockabilityUnknown Shockability = iota
	Shockable
	NonShockable
)

func (s Shockability) String() string {
	switch s {
	case Shockable:
		return "shockable"
	case NonShockable:
		return "non-shockable"
	default:
		return "unknown"
	}
}

func shockabilityOf(kind RhythmKind) Shockability {
	if kind.Shockable() {
		return Shockable
	}
	return NonShockable
}

type RhythmRecord struct {
	Kind       RhythmKind
	Shockable  bool
	RecordedAt int
	Notes      string
}

type ShockRecord struct {
	Ordinal      int
	EnergyJoules int
	AppliedAt    int
}

// RhythmTracker holds the ordered rhythm determinations and shocks of one session.
type RhythmTracker struct {
	rhythms []RhythmRecord
	shocks  []ShockRecord
}

func NewRhythmTracker() *RhythmTracker {
	return &RhythmTracker{}
}

func (t *RhythmTracker) RecordRhythm(kind RhythmKind, at int, notes string) (bool, error) {
	if err := kind.Validate(); err != nil {
		return false, err
	}
	record := RhythmRecord{Kind: kind, Shockable: kind.Shockable(), RecordedAt: at, Notes: notes}
	t.rhythms = append(t.rhythms, record)
	return record.Shockable, nil
}

func (t *RhythmTracker) RecordShock(energyJoules, at int) (ShockRecord, error) {
	if err := ValidateShockEnergy(energyJoules); err != nil {
		return ShockRecord{}, err
	}
	shock := ShockRecord{Ordinal: len(t.shocks) + 1, EnergyJoules: energyJoules, AppliedAt: at}
	t.shocks = append(t.shocks, shock)
	return shock, nil
}

func (t *RhythmTracker) CurrentShockability() Shockability {
	last, ok := t.LastRhythm()
	if !ok {
		return ShockabilityUnknown
	}
	return shockabilityOf(last.Kind)
}

func (t *RhythmTracker) LastRhythm() (RhythmRecord, bool) {
	if len(t.rhythms) == 0 {
		return RhythmRecord{}, false
	}
	return t.rhythms[len(t.rhythms)-1], true
}

func (t *RhythmTracker) Rhythms() []RhythmRecord {
	return append([]RhythmRecord(nil), t.rhythms...)
}

func (t *RhythmTracker) ShockCount() int {
	return len(t.shocks)
}

// LastShockTime returns false when no shock has been applied.
func (t *RhythmTracker) LastShockTime() (int, bool) {
	if len(t.shocks) == 0 {
		return 0, false
	}
	return t.shocks[len(t.shocks)-1].AppliedAt, true
}

func (t *RhythmTracker) Shocks() []ShockRecord {
	return append([]ShockRecord(nil), t.shocks...)
}
