package telemetry

import (
	"log/slog"
	"time"
)

// Phase names of one creature evaluation.
const (
	PhaseSimulate  = "simulate"
	PhaseAggregate = "aggregate"
)

var phases = []string{PhaseSimulate, PhaseAggregate}

// RunTimer tracks how long each creature evaluation of a batch takes. It is
// not safe for concurrent use; give each worker its own and Merge them.
type RunTimer struct {
	runs      int
	total     time.Duration
	min, max  time.Duration
	phaseSum  map[string]time.Duration
	current   map[string]time.Duration
	runStart  time.Time
	start     time.Time
	lastPhase string
	now       func() time.Time
}

// NewRunTimer creates an empty timer.
func NewRunTimer() *RunTimer {
	return &RunTimer{
		phaseSum: make(map[string]time.Duration),
		current:  make(map[string]time.Duration),
		now:      time.Now,
	}
}

// StartRun begins timing one evaluation.
func (r *RunTimer) StartRun() {
	r.runStart = r.now()
	r.current = make(map[string]time.Duration)
	r.lastPhase = ""
}

// StartPhase ends the running phase, if any, and starts the named one.
func (r *RunTimer) StartPhase(phase string) {
	now := r.now()
	if r.lastPhase != "" {
		r.current[r.lastPhase] += now.Sub(r.start)
	}
	r.start = now
	r.lastPhase = phase
}

// EndRun closes the current evaluation and folds it into the totals.
func (r *RunTimer) EndRun() {
	now := r.now()
	if r.lastPhase != "" {
		r.current[r.lastPhase] += now.Sub(r.start)
	}
	d := now.Sub(r.runStart)

	if r.runs == 0 || d < r.min {
		r.min = d
	}
	if d > r.max {
		r.max = d
	}
	r.runs++
	r.total += d
	for phase, dur := range r.current {
		r.phaseSum[phase] += dur
	}
	r.lastPhase = ""
}

// Merge folds the finished runs of o into r.
func (r *RunTimer) Merge(o *RunTimer) {
	if o.runs == 0 {
		return
	}
	if r.runs == 0 || o.min < r.min {
		r.min = o.min
	}
	if o.max > r.max {
		r.max = o.max
	}
	r.runs += o.runs
	r.total += o.total
	for phase, dur := range o.phaseSum {
		r.phaseSum[phase] += dur
	}
}

// RunStats holds aggregated timing of a batch.
type RunStats struct {
	Runs          int
	AvgRun        time.Duration
	MinRun        time.Duration
	MaxRun        time.Duration
	PhasePct      map[string]float64 // share of total run time
	RunsPerSecond float64            // per worker
}

// Stats computes statistics over every finished run.
func (r *RunTimer) Stats() RunStats {
	s := RunStats{PhasePct: make(map[string]float64)}
	if r.runs == 0 {
		return s
	}

	s.Runs = r.runs
	s.AvgRun = r.total / time.Duration(r.runs)
	s.MinRun = r.min
	s.MaxRun = r.max
	if r.total > 0 {
		for phase, sum := range r.phaseSum {
			s.PhasePct[phase] = float64(sum) / float64(r.total) * 100
		}
		s.RunsPerSecond = float64(r.runs) / r.total.Seconds()
	}
	return s
}

// LogStats logs the batch timing.
func (s RunStats) LogStats() {
	attrs := []any{
		"runs", s.Runs,
		"avg_run_us", s.AvgRun.Microseconds(),
		"min_run_us", s.MinRun.Microseconds(),
		"max_run_us", s.MaxRun.Microseconds(),
		"runs_per_sec", int(s.RunsPerSecond),
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s RunStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("runs", s.Runs),
		slog.Int64("avg_run_us", s.AvgRun.Microseconds()),
		slog.Int64("min_run_us", s.MinRun.Microseconds()),
		slog.Int64("max_run_us", s.MaxRun.Microseconds()),
		slog.Float64("runs_per_sec", s.RunsPerSecond),
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}
