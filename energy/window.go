package energy

// applyWindow restricts the timeline to the first hours of the day. Events and
// intervals before the threshold stay in the window; a period_end event marks
// the cut when no event already sits there. Full days and the help-count
// sentinel leave everything in the window.
func (s *Simulator) applyWindow(events []Event, intervals []Interval, hours float64) ([]Event, []Interval, float64) {
	day := s.cfg.Schedule.DayMinutes
	threshold := hours * 60
	if hours < 0 || threshold >= day {
		evs := make([]Event, len(events))
		for i, ev := range events {
			ev.InWindow = true
			evs[i] = ev
		}
		ivs := make([]Interval, len(intervals))
		for i, iv := range intervals {
			iv.InWindow = true
			ivs[i] = iv
		}
		return evs, ivs, day
	}

	evs := make([]Event, 0, len(events)+1)
	crossed := false
	for i, ev := range events {
		switch {
		case crossed:
			ev.InWindow = false
		case ev.Minute < threshold:
			ev.InWindow = true
		default:
			crossed = true
			if i > 0 && ev.Minute > threshold {
				prev := events[i-1]
				level := s.decay(prev.After, threshold-prev.Minute)
				evs = append(evs, Event{
					Minute:    threshold,
					Kind:      KindPeriodEnd,
					Before:    level,
					After:     level,
					Saturated: prev.Saturated,
					InWindow:  true,
				})
			}
			ev.InWindow = false
		}
		evs = append(evs, ev)
	}

	ivs := splitAt(intervals, threshold, func(iv *Interval, after bool) {
		iv.InWindow = !after
	})
	return evs, mergeIntervals(ivs), threshold
}
