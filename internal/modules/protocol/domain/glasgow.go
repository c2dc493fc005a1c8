package domain

import "fmt"

type Glasgow struct {
	Eye    int
	Verbal int
	Motor  int
}

func (g Glasgow) Validate() error {
	if g.Eye < 1 || g.Eye > 4 {
		return fmt.Errorf("%w: eye %d out of range 1-4", ErrInvalidGlasgow, g.Eye)
	}
	if g.Verbal < 1 || g.Verbal > 5 {
		return fmt.Errorf("%w: verbal %d out of range 1-5", ErrInvalidGlasgow, g.Verbal)
	}
	if g.Motor < 1 || g.Motor > 6 {
		return fmt.Errorf("%w: motor %d out of range 1-6", ErrInvalidGlasgow, g.Motor)
	}
	return nil
}

func (g Glasgow) Total() int {
	return g.Eye + g.Verbal + g.Motor
}

// Classify returns the injury band and the timeline severity for it.
func (g Glasgow) Classify() (string, Severity) {
	switch total := g.Total(); {
	case total >= 13:
		return "mild", SeverityNormal
	case total >= 9:
		return "moderate", SeverityWarning
	default:
		return "severe", SeverityCritical
	}
}
