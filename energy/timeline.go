package energy

import (
	"math"
	"sort"
)

// SleepStart returns the minute the sleep phase begins for a sleep score.
func (s *Simulator) SleepStart(score int) float64 {
	sleep := math.Round(float64(score) * s.cfg.Energy.FullSleepMinutes / 100)
	return s.cfg.Schedule.DayMinutes - sleep
}

// Timeline builds the fixed events of one day: waking, meals, evenly spread
// bonus recoveries, falling asleep and waking again a day later.
func (s *Simulator) Timeline(bonusRecoveries int, sleepStart float64) []Event {
	sched := s.cfg.Schedule
	events := make([]Event, 0, 3+len(sched.MealMinutes)+bonusRecoveries)

	events = append(events, Event{Minute: 0, Kind: KindWake})
	for _, m := range sched.MealMinutes {
		events = append(events, Event{Minute: m, Kind: KindCook})
	}
	for i := 0; i < bonusRecoveries; i++ {
		m := math.Floor(sched.BonusRecoveryWindowEnd * float64(i+1) / float64(bonusRecoveries+1))
		events = append(events, Event{Minute: m, Kind: KindBonusRecovery})
	}
	events = append(events, Event{Minute: sleepStart, Kind: KindSleep})
	events = append(events, Event{Minute: sched.DayMinutes, Kind: KindWake})

	// Stable so the opening wake stays first and the closing wake last.
	sort.SliceStable(events, func(i, j int) bool { return events[i].Minute < events[j].Minute })
	return events
}
