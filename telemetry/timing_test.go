package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestRunTimer(t *testing.T) {
	r := NewRunTimer()
	r.now = fakeClock(time.Millisecond)

	// Each run spans three ticks, one per phase plus the lead-in.
	for i := 0; i < 4; i++ {
		r.StartRun()
		r.StartPhase(PhaseSimulate)
		r.StartPhase(PhaseAggregate)
		r.EndRun()
	}

	s := r.Stats()
	if s.Runs != 4 {
		t.Errorf("runs = %d, want 4", s.Runs)
	}
	if s.AvgRun != 3*time.Millisecond || s.MinRun != s.MaxRun {
		t.Errorf("avg %v min %v max %v", s.AvgRun, s.MinRun, s.MaxRun)
	}
	for _, phase := range phases {
		if math.Abs(s.PhasePct[phase]-100.0/3) > 1e-9 {
			t.Errorf("%s share = %v, want a third", phase, s.PhasePct[phase])
		}
	}
	if math.Abs(s.RunsPerSecond-1000.0/3) > 1e-9 {
		t.Errorf("runs per second = %v, want %v", s.RunsPerSecond, 1000.0/3)
	}
}

func TestRunTimerMerge(t *testing.T) {
	a, b := NewRunTimer(), NewRunTimer()
	a.now = fakeClock(time.Millisecond)
	b.now = fakeClock(2 * time.Millisecond)

	for _, r := range []*RunTimer{a, b} {
		r.StartRun()
		r.StartPhase(PhaseSimulate)
		r.EndRun()
	}

	total := NewRunTimer()
	total.Merge(a)
	total.Merge(b)
	total.Merge(NewRunTimer())

	s := total.Stats()
	if s.Runs != 2 {
		t.Errorf("runs = %d, want 2", s.Runs)
	}
	if s.MinRun != 2*time.Millisecond || s.MaxRun != 4*time.Millisecond {
		t.Errorf("min %v max %v, want 2ms and 4ms", s.MinRun, s.MaxRun)
	}
	if math.Abs(s.PhasePct[PhaseSimulate]-50) > 1e-9 {
		t.Errorf("simulate share = %v, want 50", s.PhasePct[PhaseSimulate])
	}
}

func TestRunTimerEmpty(t *testing.T) {
	s := NewRunTimer().Stats()
	if s.Runs != 0 || s.AvgRun != 0 || len(s.PhasePct) != 0 {
		t.Errorf("empty timer stats = %+v", s)
	}
}
