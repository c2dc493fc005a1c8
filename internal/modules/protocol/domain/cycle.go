package domain

import "fmt"

// CycleSeconds is the length of one compression block between rhythm checks.
const CycleSeconds = 120

type Phase string

const (
	PhasePreparation  Phase = "preparation"
	PhaseCompressions Phase = "compressions"
	PhaseRhythmCheck  Phase = "rhythm_check"
	PhaseShockAdvised Phase = "shock_advised"
)

func (p Phase) Validate() error {
	switch p {
	case PhasePreparation, PhaseCompressions, PhaseRhythmCheck, PhaseShockAdvised:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPhase, string(p))
	}
}

// CycleClock is the compression cycle state machine. Times are elapsed
// session seconds supplied by the caller; the clock never reads wall time.
type CycleClock struct {
	phase                Phase
	count                int
	startedAt            int
	progress             float64
	rhythmCheckTriggered bool
}

func NewCycleClock() *CycleClock {
	return &CycleClock{phase: PhasePreparation}
}

func (c *CycleClock) Phase() Phase               { return c.phase }
func (c *CycleClock) Count() int                 { return c.count }
func (c *CycleClock) Progress() float64          { return c.progress }
func (c *CycleClock) RhythmCheckTriggered() bool { return c.rhythmCheckTriggered }
func (c *CycleClock) CompressionsStartedAt() int { return c.startedAt }

// SecondsUntilCheck is the countdown to the next automatic rhythm check, zero
// outside compressions.
func (c *CycleClock) SecondsUntilCheck(now int) int {
	if c.phase != PhaseCompressions {
		return 0
	}
	left := CycleSeconds - (now - c.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// BeginCompressions leaves preparation. It is a no-op while compressions are
// already running and illegal during a rhythm pause.
func (c *CycleClock) BeginCompressions(now int) (bool, error) {
	switch c.phase {
	case PhaseCompressions:
		return false, nil
	case PhasePreparation:
		c.resume(now)
		return true, nil
	default:
		return false, fmt.Errorf("%w: begin compressions from %s", ErrIllegalTransition, c.phase)
	}
}

// Advance recomputes progress and reports true exactly once per cycle, when
// the countdown has elapsed and the clock moved into rhythm_check.
func (c *CycleClock) Advance(now int) bool {
	if c.phase != PhaseCompressions {
		return false
	}
	elapsed := now - c.startedAt
	if elapsed < 0 {
		elapsed = 0
	}
	progress := float64(elapsed) / CycleSeconds * 100
	if progress > 100 {
		progress = 100
	}
	if progress > c.progress {
		c.progress = progress
	}
	if elapsed < CycleSeconds {
		return false
	}
	return c.enterRhythmCheck()
}

// TriggerRhythmCheck is the manual early trigger. Reports false when the
// check was already triggered this cycle or compressions are not running.
func (c *CycleClock) TriggerRhythmCheck() bool {
	if c.phase != PhaseCompressions {
		return false
	}
	return c.enterRhythmCheck()
}

func (c *CycleClock) enterRhythmCheck() bool {
	if c.rhythmCheckTriggered {
		return false
	}
	c.rhythmCheckTriggered = true
	c.phase = PhaseRhythmCheck
	c.progress = 0
	return true
}

// ResolveRhythm applies a rhythm determination. From rhythm_check (or the
// initial analysis in preparation) a shockable rhythm advises a shock and a
// non-shockable one resumes compressions. During compressions the rhythm is
// informational and the phase is unchanged.
func (c *CycleClock) ResolveRhythm(now int, shockable bool) (Phase, error) {
	switch c.phase {
	case PhaseRhythmCheck, PhasePreparation:
		if shockable {
			c.phase = PhaseShockAdvised
			c.progress = 0
		} else {
			c.resume(now)
		}
	case PhaseCompressions:
	case PhaseShockAdvised:
		if !shockable {
			c.resume(now)
		}
	default:
		return c.phase, fmt.Errorf("%w: %q", ErrUnknownPhase, string(c.phase))
	}
	return c.phase, nil
}

// ResumeAfterShock closes the shock_advised pause.
func (c *CycleClock) ResumeAfterShock(now int) error {
	if c.phase != PhaseShockAdvised {
		return fmt.Errorf("%w: shock delivered during %s", ErrIllegalTransition, c.phase)
	}
	c.resume(now)
	return nil
}

func (c *CycleClock) resume(now int) {
	c.phase = PhaseCompressions
	c.count++
	c.startedAt = now
	c.progress = 0
	c.rhythmCheckTriggered = false
}
