package energy

import "math"

// epsilon absorbs float noise when interval edges meet event minutes.
const epsilon = 1e-9

// Tier returns the efficiency multiplier at an energy level. Thresholds are
// compared with a strict greater-than, top down.
func (s *Simulator) Tier(level float64) float64 {
	for _, t := range s.cfg.Efficiency.Tiers {
		if level > t.Above {
			return t.Value
		}
	}
	return s.cfg.Efficiency.Floor
}

// nextThreshold returns the largest tier threshold strictly below level.
// With the default table: <=40 goes to 1, a multiple of 20 drops by 20 and
// anything else floors to a multiple of 20.
func (s *Simulator) nextThreshold(level float64) (float64, bool) {
	for _, th := range s.cfg.Derived.Thresholds {
		if th < level {
			return th, true
		}
	}
	return 0, false
}

// segment converts the energy timeline into efficiency intervals. Inside each
// gap the level decays from the opening event's After, emitting one interval
// per tier threshold crossed.
func (s *Simulator) segment(events []Event) []Interval {
	perUnit := s.cfg.Energy.MinutesPerUnit
	out := make([]Interval, 0, len(events)*2)

	for i := 1; i < len(events); i++ {
		start, end := events[i-1].Minute, events[i].Minute
		level := events[i-1].After
		for start < end {
			stop := end
			th, ok := s.nextThreshold(level)
			if ok {
				stop = math.Min(end, start+(level-th)*perUnit)
				if end-stop < epsilon {
					stop = end
				}
			}
			out = append(out, Interval{Start: start, End: stop, Tier: s.Tier(level), InWindow: true})
			start = stop
			level = th
		}
	}
	return mergeIntervals(out)
}

// mergeIntervals joins touching neighbours that share tier and flags, and
// drops empty intervals.
func mergeIntervals(intervals []Interval) []Interval {
	out := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.End-iv.Start <= 0 {
			continue
		}
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.sameState(iv) && math.Abs(last.End-iv.Start) < epsilon {
				last.End = iv.End
				continue
			}
		}
		out = append(out, iv)
	}
	return out
}

// splitAt cuts any interval straddling minute at and lets mark flag every
// resulting interval as lying before or after it.
func splitAt(intervals []Interval, at float64, mark func(iv *Interval, after bool)) []Interval {
	out := make([]Interval, 0, len(intervals)+1)
	for _, iv := range intervals {
		if iv.Start < at && iv.End > at {
			head, tail := iv, iv
			head.End, tail.Start = at, at
			mark(&head, false)
			mark(&tail, true)
			out = append(out, head, tail)
			continue
		}
		mark(&iv, iv.Start >= at)
		out = append(out, iv)
	}
	return out
}

// tagAwake splits intervals at the sleep boundary and flags the awake side.
func tagAwake(intervals []Interval, sleepStart float64) []Interval {
	return mergeIntervals(splitAt(intervals, sleepStart, func(iv *Interval, after bool) {
		iv.Awake = !after
	}))
}
