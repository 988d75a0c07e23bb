package energy

import (
	"fmt"
	"math"

	"github.com/pthm-cable/sleepstrength/config"
	"github.com/pthm-cable/sleepstrength/gamedata"
)

// Simulator runs energy simulations against a fixed configuration. It holds
// no mutable state and is safe for concurrent use.
type Simulator struct {
	cfg *config.Config
}

// New returns a simulator for cfg.
func New(cfg *config.Config) *Simulator {
	return &Simulator{cfg: cfg}
}

// Simulate runs one simulation of creature c.
func (s *Simulator) Simulate(c gamedata.Creature, p Params) (Result, error) {
	if err := s.validate(c, p); err != nil {
		return Result{}, err
	}
	p = p.withDefaults()

	switch p.Mode {
	case ModeAlwaysFull:
		return s.alwaysFull(c, p, p.Hours*60), nil
	case ModeWhistle:
		return s.alwaysFull(c, p, s.cfg.Whistle.Hours*60), nil
	}
	if p.Hours < 0 {
		return s.helpCount(c, p), nil
	}

	sleepStart := s.SleepStart(p.SleepScore)
	events := s.Timeline(p.BonusRecoveryCount, sleepStart)
	events = s.converge(events, p, s.cfg.Energy.Seed)
	events = s.insertDepleted(events)

	intervals := tagAwake(s.segment(events), sleepStart)
	events, intervals, windowEnd := s.applyWindow(events, intervals, p.Hours)

	res := Result{
		Events:      events,
		Intervals:   intervals,
		SleepStart:  sleepStart,
		WindowEnd:   windowEnd,
		SaturatedAt: -1,
	}
	if !c.Acts() {
		return res, nil
	}
	s.snack(&res, c, p)
	return res, nil
}

func (s *Simulator) validate(c gamedata.Creature, p Params) error {
	switch {
	case p.SleepScore < 0 || p.SleepScore > 100:
		return fmt.Errorf("%w: sleep score %d outside 0..100", ErrInvalidParams, p.SleepScore)
	case p.BonusRecoveryCount < 0 || p.HelperBonus < 0 || p.RecoveryBonus < 0:
		return fmt.Errorf("%w: negative bonus count", ErrInvalidParams)
	case p.NatureFactor < 0 || p.BonusRecoveryAmount < 0:
		return fmt.Errorf("%w: negative recovery", ErrInvalidParams)
	case math.IsNaN(p.Hours) || math.IsNaN(p.HelpCount) || math.IsNaN(p.NatureFactor) || math.IsNaN(p.BonusRecoveryAmount):
		return fmt.Errorf("%w: NaN parameter", ErrInvalidParams)
	case p.Hours < 0 && p.HelpCount < 0:
		return fmt.Errorf("%w: negative help count", ErrInvalidParams)
	case c.CarryLimit+p.InventoryBonus < 0:
		return fmt.Errorf("%w: negative capacity", ErrInvalidParams)
	case !p.Taps.valid():
		return fmt.Errorf("%w: unknown tap policy %+v", ErrInvalidParams, p.Taps)
	}
	if p.Bonus != nil && (p.Bonus.SkillTrigger < 0 || math.IsNaN(p.Bonus.SkillTrigger) || p.Bonus.DishEnergy < 0) {
		return fmt.Errorf("%w: event bonus out of range", ErrInvalidParams)
	}
	return nil
}

// alwaysFull pins energy at the top tier for a window of minutes, skipping
// the timeline entirely.
func (s *Simulator) alwaysFull(c gamedata.Creature, p Params, minutes float64) Result {
	day := s.cfg.Schedule.DayMinutes
	if minutes <= 0 || minutes > day {
		minutes = day
	}
	full := s.wakeCap(p)

	res := Result{
		Events: []Event{
			{Minute: 0, Kind: KindWake, Before: full, After: full, InWindow: true},
			{Minute: minutes, Kind: KindPeriodEnd, Before: full, After: full, InWindow: true},
		},
		Intervals: []Interval{
			{Start: 0, End: minutes, Tier: s.cfg.Derived.MaxTier, Awake: true, InWindow: true},
		},
		SleepStart:  day,
		WindowEnd:   minutes,
		SaturatedAt: -1,
	}
	if !c.Acts() {
		return res
	}
	res.HelpSeconds = s.HelpSeconds(c, p)
	res.ItemsPerHelp = c.ItemsPerHelp()
	res.Capacity = s.Capacity(c, p)
	res.SkillChance = SkillChance(c, p)
	res.Helps = countHelps(res.Intervals, res.HelpSeconds)
	return res
}

// helpCount reports a fixed number of awake helps.
func (s *Simulator) helpCount(c gamedata.Creature, p Params) Result {
	day := s.cfg.Schedule.DayMinutes
	res := Result{
		SleepStart:  day,
		WindowEnd:   day,
		SaturatedAt: -1,
	}
	if !c.Acts() {
		return res
	}
	res.HelpSeconds = s.HelpSeconds(c, p)
	res.ItemsPerHelp = c.ItemsPerHelp()
	res.Capacity = s.Capacity(c, p)
	res.SkillChance = SkillChance(c, p)
	res.Helps = HelpCounts{Total: p.HelpCount, Awake: p.HelpCount}
	return res
}
