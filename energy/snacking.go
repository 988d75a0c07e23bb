package energy

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/sleepstrength/gamedata"
)

// HelpSeconds returns the seconds one help takes at efficiency 1, after level,
// helping bonuses, expert field adjustments and the camp ticket.
func (s *Simulator) HelpSeconds(c gamedata.Creature, p Params) float64 {
	if !c.Acts() {
		return 0
	}
	p = p.withDefaults()
	sp := s.cfg.Speed

	cost := c.Frequency * (1 - float64(p.Level-1)*sp.LevelReduction)

	reduction := sp.HelperBonusRate * float64(p.HelperBonus)
	if p.Field.Expert {
		switch {
		case p.Field.IsPrimary(c.Type):
			reduction += sp.ExpertMainBonus
		case !p.Field.IsFavorite(c.Type):
			reduction -= sp.ExpertOffTypeMalus
		}
	}
	reduction = math.Min(reduction, sp.MaxReduction)
	cost *= 1 - reduction

	if p.CampTicket {
		cost /= sp.CampTicketFactor
	}
	return cost
}

// Capacity returns the inventory size, rounded up.
func (s *Simulator) Capacity(c gamedata.Creature, p Params) int {
	capacity := float64(c.CarryLimit + p.InventoryBonus)
	if p.CampTicket {
		capacity *= s.cfg.Inventory.CampTicketFactor
	}
	return int(math.Ceil(capacity - epsilon))
}

// SkillChance returns the per-help skill trigger chance under the event bonus.
func SkillChance(c gamedata.Creature, p Params) float64 {
	return math.Min(1, math.Max(0, c.SkillRatio*p.event().SkillTrigger))
}

// saturationMinute walks the asleep intervals in order and returns the
// minute the inventory fills.
func (s *Simulator) saturationMinute(intervals []Interval, helpSeconds, itemsPerHelp float64, capacity int) (float64, bool) {
	if helpSeconds <= 0 || itemsPerHelp <= 0 {
		return -1, false
	}
	remaining := float64(capacity)
	for _, iv := range intervals {
		if iv.Awake {
			continue
		}
		perMinute := 60 / helpSeconds * iv.Tier * itemsPerHelp
		use := iv.Duration() * perMinute
		if use >= remaining {
			at := iv.Start + remaining/perMinute
			if at >= s.cfg.Schedule.DayMinutes {
				return -1, false
			}
			return at, true
		}
		remaining -= use
	}
	return -1, false
}

// insertSnack adds the snack event at minute at and flags every event from
// there on as saturated.
func (s *Simulator) insertSnack(events []Event, at, windowEnd float64) []Event {
	out := make([]Event, 0, len(events)+1)
	inserted := false
	for i, ev := range events {
		if !inserted && ev.Minute > at {
			prev := events[i-1]
			level := s.decay(prev.After, at-prev.Minute)
			out = append(out, Event{
				Minute:    at,
				Kind:      KindSnack,
				Before:    level,
				After:     level,
				Saturated: true,
				InWindow:  at < windowEnd,
			})
			inserted = true
		}
		ev.Saturated = ev.Minute >= at
		out = append(out, ev)
	}
	return out
}

// snack runs the sneaky snacking simulation on a windowed timeline and fills
// the help counts and post-wake trigger odds of res.
func (s *Simulator) snack(res *Result, c gamedata.Creature, p Params) {
	res.HelpSeconds = s.HelpSeconds(c, p)
	res.ItemsPerHelp = c.ItemsPerHelp()
	res.Capacity = s.Capacity(c, p)
	res.SkillChance = SkillChance(c, p)

	switch {
	case p.Taps.Awake == TapNone:
		res.AlwaysSaturated = true
		evs := make([]Event, len(res.Events))
		for i, ev := range res.Events {
			ev.Saturated = true
			evs[i] = ev
		}
		res.Events = evs
		ivs := make([]Interval, len(res.Intervals))
		for i, iv := range res.Intervals {
			iv.Saturated = true
			ivs[i] = iv
		}
		res.Intervals = ivs
	case p.Taps.Asleep == TapAlways:
		// Emptied all night long.
	default:
		res.CanBeSaturated = true
		if at, ok := s.saturationMinute(res.Intervals, res.HelpSeconds, res.ItemsPerHelp, res.Capacity); ok {
			res.SaturatedAt = at
			res.Events = s.insertSnack(res.Events, at, res.WindowEnd)
			res.Intervals = splitAt(res.Intervals, at, func(iv *Interval, after bool) { iv.Saturated = after })
		}
	}
	res.Intervals = mergeIntervals(res.Intervals)

	res.Helps = countHelps(res.Intervals, res.HelpSeconds)
	res.SkillProbOne, res.SkillProbTwoPlus = s.sleepTriggers(c, res.SkillChance, res.Helps.AsleepNormal)
}

// countHelps sums efficiency-weighted helps of in-window intervals by phase.
func countHelps(intervals []Interval, helpSeconds float64) HelpCounts {
	var h HelpCounts
	if helpSeconds <= 0 {
		return h
	}
	for _, iv := range intervals {
		if !iv.InWindow {
			continue
		}
		n := iv.Duration() * 60 / helpSeconds * iv.Tier
		h.Total += n
		switch {
		case iv.Awake:
			h.Awake += n
		case iv.Saturated:
			h.AsleepSnacking += n
		default:
			h.AsleepNormal += n
		}
	}
	return h
}

// sleepTriggers returns the odds of skill triggers banked over the helps done
// before the inventory filled. Multi-trigger specialties get P(exactly one)
// and P(two or more); everyone else gets P(at least one) and 0.
func (s *Simulator) sleepTriggers(c gamedata.Creature, p, asleepHelps float64) (float64, float64) {
	n := math.Ceil(asleepHelps)
	if n <= 0 || p <= 0 {
		return 0, 0
	}
	multi := s.cfg.Derived.MultiTrigger[string(c.Specialty)]
	if p >= 1 {
		if multi && n >= 2 {
			return 0, 1
		}
		return 1, 0
	}

	dist := distuv.Binomial{N: n, P: p}
	none := dist.Prob(0)
	if !multi {
		return 1 - none, 0
	}
	one := dist.Prob(1)
	return one, math.Max(0, 1-none-one)
}
