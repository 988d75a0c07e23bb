package energy

import "math"

// decay returns the level after elapsed minutes without recovery.
func (s *Simulator) decay(level, minutes float64) float64 {
	return math.Max(0, level-minutes/s.cfg.Energy.MinutesPerUnit)
}

// mealGain returns the energy a meal restores at the given level.
func (s *Simulator) mealGain(level float64) float64 {
	for _, step := range s.cfg.Energy.MealRecovery {
		if level > step.Above {
			return step.Value
		}
	}
	return s.cfg.Energy.MealRecoveryFloor
}

func (s *Simulator) wakeCap(p Params) float64 {
	if p.RecoveryBoost {
		return s.cfg.Energy.WakeCapBoosted
	}
	return s.cfg.Energy.WakeCap
}

// SleepRecovery returns the energy restored on waking, already capped.
func (s *Simulator) SleepRecovery(p Params) float64 {
	p = p.withDefaults()
	e := s.cfg.Energy
	sleepMinutes := s.cfg.Schedule.DayMinutes - s.SleepStart(p.SleepScore)
	base := math.Round(sleepMinutes / e.FullSleepMinutes * 100)
	recovery := base * p.NatureFactor * (1 + e.RecoveryBonusRate*float64(p.RecoveryBonus))
	return math.Min(s.wakeCap(p), recovery)
}

// propagate fills Before/After of every event starting from opening.
// It returns a new slice.
func (s *Simulator) propagate(events []Event, opening float64, p Params) []Event {
	out := make([]Event, len(events))
	copy(out, events)

	maxLevel := s.cfg.Energy.Max
	dishEnergy := p.event().DishEnergy
	recovery := s.SleepRecovery(p)
	wakeCap := s.wakeCap(p)

	level := opening
	for i := range out {
		ev := &out[i]
		if i > 0 {
			level = s.decay(level, ev.Minute-out[i-1].Minute)
		}
		ev.Before = level
		if i == 0 {
			ev.After = level
			continue
		}
		switch ev.Kind {
		case KindCook:
			level = math.Min(maxLevel, math.Ceil(level+s.mealGain(level)+dishEnergy))
		case KindBonusRecovery:
			level = math.Min(maxLevel, math.Ceil(level+p.BonusRecoveryAmount))
		case KindWake:
			level = math.Min(wakeCap, level+recovery)
		}
		ev.After = level
	}
	return out
}

// converge runs propagate twice: the opening level of a day is the closing
// level of the same day, approximated by one seeded pass and one pass seeded
// with its result. It is not iterated further.
func (s *Simulator) converge(events []Event, p Params, seed float64) []Event {
	first := s.propagate(events, seed, p)
	closing := first[len(first)-1].After
	return s.propagate(events, closing, p)
}

// insertDepleted adds a depleted event wherever energy reaches zero between
// two events.
func (s *Simulator) insertDepleted(events []Event) []Event {
	out := make([]Event, 0, len(events)+2)
	for i, ev := range events {
		if i > 0 {
			prev := events[i-1]
			reach := prev.After * s.cfg.Energy.MinutesPerUnit
			if prev.After > 0 && reach < ev.Minute-prev.Minute {
				out = append(out, Event{Minute: prev.Minute + reach, Kind: KindDepleted})
			}
		}
		out = append(out, ev)
	}
	return out
}
