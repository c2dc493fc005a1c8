package domain_test

import (
	"errors"
	"testing"

	"siav/internal/modules/protocol/domain"
)

func TestCycleClockBeginsAndAutoTransitionsExactlyOnce(t *testing.T) {
	t.Parallel()
	c := domain.NewCycleClock()
	if c.Phase() != domain.PhasePreparation || c.Count() != 0 {
		t.Fatalf("expected preparation with cycle 0, got %s/%d", c.Phase(), c.Count())
	}
	started, err := c.BeginCompressions(5)
	if err != nil || !started {
		t.Fatalf("begin compressions: started=%v err=%v", started, err)
	}
	if c.Count() != 1 || c.Progress() != 0 {
		t.Fatalf("expected cycle 1 at 0%%, got %d at %.1f", c.Count(), c.Progress())
	}

	last := 0.0
	for now := 5; now < 5+domain.CycleSeconds; now++ {
		if c.Advance(now) {
			t.Fatalf("rhythm check fired early at %d", now)
		}
		if c.Progress() < last {
			t.Fatalf("progress decreased at %d: %.2f < %.2f", now, c.Progress(), last)
		}
		last = c.Progress()
	}
	if !c.Advance(125) {
		t.Fatalf("expected rhythm check at cycle boundary")
	}
	if c.Advance(125) || c.Advance(126) || c.TriggerRhythmCheck() {
		t.Fatalf("boundary must fire exactly once")
	}
	if c.Phase() != domain.PhaseRhythmCheck || c.Progress() != 0 {
		t.Fatalf("expected rhythm_check with progress reset, got %s %.1f", c.Phase(), c.Progress())
	}
}

func TestCycleClockBeginIsIdempotentAndIllegalDuringPause(t *testing.T) {
	t.Parallel()
	c := domain.NewCycleClock()
	if _, err := c.BeginCompressions(0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	started, err := c.BeginCompressions(10)
	if err != nil || started {
		t.Fatalf("second begin should be a silent no-op, got started=%v err=%v", started, err)
	}
	if c.Count() != 1 || c.CompressionsStartedAt() != 0 {
		t.Fatalf("no-op begin must not restart the cycle, got count=%d start=%d", c.Count(), c.CompressionsStartedAt())
	}
	if !c.TriggerRhythmCheck() {
		t.Fatalf("manual trigger should enter rhythm check")
	}
	if _, err := c.BeginCompressions(20); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	if err := c.ResumeAfterShock(20); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("shock outside shock_advised must fail, got %v", err)
	}
}

func TestCycleClockRhythmBranches(t *testing.T) {
	t.Parallel()
	c := domain.NewCycleClock()
	_, _ = c.BeginCompressions(0)
	c.Advance(120)

	phase, err := c.ResolveRhythm(125, true)
	if err != nil || phase != domain.PhaseShockAdvised {
		t.Fatalf("shockable rhythm should advise shock, got %s %v", phase, err)
	}
	if c.Count() != 1 {
		t.Fatalf("shock advice must not count a cycle, got %d", c.Count())
	}
	if err := c.ResumeAfterShock(130); err != nil {
		t.Fatalf("resume after shock: %v", err)
	}
	if c.Phase() != domain.PhaseCompressions || c.Count() != 2 || c.RhythmCheckTriggered() {
		t.Fatalf("expected compressions cycle 2 with guard reset, got %s %d %v", c.Phase(), c.Count(), c.RhythmCheckTriggered())
	}

	c.TriggerRhythmCheck()
	phase, err = c.ResolveRhythm(200, false)
	if err != nil || phase != domain.PhaseCompressions || c.Count() != 3 {
		t.Fatalf("non-shockable should resume compressions cycle 3, got %s %d %v", phase, c.Count(), err)
	}
	if got := c.SecondsUntilCheck(230); got != 90 {
		t.Fatalf("expected 90 s until check, got %d", got)
	}

	phase, _ = c.ResolveRhythm(240, true)
	if phase != domain.PhaseCompressions || c.Count() != 3 {
		t.Fatalf("rhythm during compressions is informational, got %s %d", phase, c.Count())
	}
}

func TestCycleClockInitialAnalysisFromPreparation(t *testing.T) {
	t.Parallel()
	c := domain.NewCycleClock()
	if phase, _ := c.ResolveRhythm(3, true); phase != domain.PhaseShockAdvised {
		t.Fatalf("initial shockable analysis should advise shock, got %s", phase)
	}
	if err := c.ResumeAfterShock(10); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if c.Count() != 1 {
		t.Fatalf("first compressions after initial shock is cycle 1, got %d", c.Count())
	}
}

func TestPhaseValidate(t *testing.T) {
	t.Parallel()
	if err := domain.Phase("compression").Validate(); !errors.Is(err, domain.ErrUnknownPhase) {
		t.Fatalf("expected unknown phase, got %v", err)
	}
	if err := domain.PhaseShockAdvised.Validate(); err != nil {
		t.Fatalf("valid phase rejected: %v", err)
	}
}
