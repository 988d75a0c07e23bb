package energy

import (
	"math"
	"testing"

	"github.com/pthm-cable/sleepstrength/bonus"
	"github.com/pthm-cable/sleepstrength/gamedata"
)

func TestHelpSeconds(t *testing.T) {
	s := newTestSimulator()
	tests := []struct {
		name   string
		mutate func(*Params)
		want   float64
	}{
		{"base", func(p *Params) {}, 2700},
		{"level 11", func(p *Params) { p.Level = 11 }, 2700 * 0.98},
		{"two helping bonuses", func(p *Params) { p.HelperBonus = 2 }, 2700 * 0.9},
		{"reduction capped", func(p *Params) { p.HelperBonus = 10 }, 2700 * 0.65},
		{"camp ticket", func(p *Params) { p.CampTicket = true }, 2250},
		{"expert primary type", func(p *Params) {
			p.Field = Field{Expert: true, Favorites: []string{"electric", "fire", "water"}}
		}, 2700 * 0.9},
		{"expert secondary favorite", func(p *Params) {
			p.Field = Field{Expert: true, Favorites: []string{"fire", "electric", "water"}}
		}, 2700},
		{"expert off type", func(p *Params) {
			p.Field = Field{Expert: true, Favorites: []string{"fire", "water", "grass"}}
		}, 2700 * 1.15},
		{"favorite on a normal field", func(p *Params) {
			p.Field = Field{Favorites: []string{"electric"}}
		}, 2700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if got := s.HelpSeconds(testCreature(), p); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HelpSeconds() = %v, want %v", got, tt.want)
			}
		})
	}

	idle := testCreature()
	idle.Frequency = gamedata.NeverActs
	if got := s.HelpSeconds(idle, DefaultParams()); got != 0 {
		t.Errorf("idle creature HelpSeconds() = %v, want 0", got)
	}
}

func TestCapacity(t *testing.T) {
	s := newTestSimulator()
	tests := []struct {
		name   string
		ticket bool
		extra  int
		want   int
	}{
		{"base", false, 0, 17},
		{"camp ticket", true, 0, 21},
		{"inventory bonus", false, 3, 20},
		{"exact multiple", true, 3, 24},
	}
	for _, tt := range tests {
		p := DefaultParams()
		p.CampTicket = tt.ticket
		p.InventoryBonus = tt.extra
		if got := s.Capacity(testCreature(), p); got != tt.want {
			t.Errorf("%s: Capacity() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSkillChance(t *testing.T) {
	c := testCreature()
	p := DefaultParams()
	if got := SkillChance(c, p); math.Abs(got-0.022) > 1e-12 {
		t.Errorf("SkillChance() = %v, want 0.022", got)
	}

	b := bonus.Neutral()
	b.SkillTrigger = 1.5
	p.Bonus = &b
	if got := SkillChance(c, p); math.Abs(got-0.033) > 1e-12 {
		t.Errorf("boosted SkillChance() = %v, want 0.033", got)
	}

	c.SkillRatio = 0.9
	if got := SkillChance(c, p); got != 1 {
		t.Errorf("SkillChance() = %v, want clamp to 1", got)
	}
}

func TestSneakySnacking(t *testing.T) {
	s := newTestSimulator()
	res, err := s.Simulate(testCreature(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	// 130 minutes at 1.515 before the bar runs dry, the rest at 1.0; two
	// items per help against a bag of 17.
	firstUse := 130 * 60.0 / 2700 * 1.515 * 2
	wantAt := 1060 + (17-firstUse)/(60.0/2700*2)

	if !res.CanBeSaturated || res.AlwaysSaturated {
		t.Errorf("saturation flags = %v/%v, want true/false", res.CanBeSaturated, res.AlwaysSaturated)
	}
	if math.Abs(res.SaturatedAt-wantAt) > 1e-9 {
		t.Errorf("SaturatedAt = %v, want %v", res.SaturatedAt, wantAt)
	}
	if res.SaturatedAt < res.SleepStart || res.SaturatedAt >= 1440 {
		t.Errorf("SaturatedAt %v outside [%v, 1440)", res.SaturatedAt, res.SleepStart)
	}
	if math.Abs(res.Helps.AsleepNormal-8.5) > 1e-9 {
		t.Errorf("AsleepNormal = %v, want 8.5", res.Helps.AsleepNormal)
	}

	var used float64
	for _, iv := range res.Intervals {
		if !iv.Awake && !iv.Saturated {
			used += iv.Duration() * 60 / res.HelpSeconds * iv.Tier * res.ItemsPerHelp
		}
		if !iv.Awake && iv.Saturated != (iv.Start >= res.SaturatedAt-1e-9) {
			t.Errorf("interval [%v, %v) saturated = %v", iv.Start, iv.End, iv.Saturated)
		}
	}
	if math.Abs(used-float64(res.Capacity)) > 1e-6 {
		t.Errorf("inventory used before saturation = %v, want %d", used, res.Capacity)
	}

	var snacks int
	for _, ev := range res.Events {
		if ev.Kind == KindSnack {
			snacks++
			if ev.Minute != res.SaturatedAt || !ev.Saturated {
				t.Errorf("snack event = %+v", ev)
			}
		}
		if ev.Saturated != (ev.Minute >= res.SaturatedAt) {
			t.Errorf("%s@%v: saturated = %v", ev.Kind, ev.Minute, ev.Saturated)
		}
	}
	if snacks != 1 {
		t.Errorf("got %d snack events, want 1", snacks)
	}

	wantOne := 1 - math.Pow(1-0.022, 9)
	if math.Abs(res.SkillProbOne-wantOne) > 1e-9 || res.SkillProbTwoPlus != 0 {
		t.Errorf("trigger odds = %v/%v, want %v/0", res.SkillProbOne, res.SkillProbTwoPlus, wantOne)
	}
}

func TestCampTicketSaturation(t *testing.T) {
	s := newTestSimulator()
	c := testCreature()

	off, err := s.Simulate(c, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	p := DefaultParams()
	p.CampTicket = true
	on, err := s.Simulate(c, p)
	if err != nil {
		t.Fatal(err)
	}

	if want := int(math.Ceil(float64(off.Capacity) * 1.2)); on.Capacity != want {
		t.Errorf("ticket capacity = %d, want %d", on.Capacity, want)
	}
	if on.SaturatedAt < off.SaturatedAt {
		t.Errorf("ticket saturates earlier: %v < %v", on.SaturatedAt, off.SaturatedAt)
	}
}

func TestAlwaysSaturated(t *testing.T) {
	s := newTestSimulator()
	p := DefaultParams()
	p.Taps.Awake = TapNone

	res, err := s.Simulate(testCreature(), p)
	if err != nil {
		t.Fatal(err)
	}
	if res.CanBeSaturated || !res.AlwaysSaturated || res.SaturatedAt != -1 {
		t.Errorf("flags = can %v always %v at %v", res.CanBeSaturated, res.AlwaysSaturated, res.SaturatedAt)
	}
	for _, iv := range res.Intervals {
		if !iv.Saturated {
			t.Errorf("interval [%v, %v) not saturated", iv.Start, iv.End)
		}
	}
	if res.Helps.AsleepNormal != 0 || res.Helps.AsleepSnacking <= 0 {
		t.Errorf("helps = %+v", res.Helps)
	}
	if res.SkillProbOne != 0 || res.SkillProbTwoPlus != 0 {
		t.Errorf("trigger odds = %v/%v, want 0/0", res.SkillProbOne, res.SkillProbTwoPlus)
	}
}

func TestTapsThroughSleep(t *testing.T) {
	s := newTestSimulator()
	p := DefaultParams()
	p.Taps.Asleep = TapAlways

	res, err := s.Simulate(testCreature(), p)
	if err != nil {
		t.Fatal(err)
	}
	if res.SaturatedAt != -1 || res.CanBeSaturated {
		t.Errorf("saturation = %v (can %v), want none", res.SaturatedAt, res.CanBeSaturated)
	}
	if res.Helps.AsleepSnacking != 0 {
		t.Errorf("AsleepSnacking = %v, want 0", res.Helps.AsleepSnacking)
	}
	for _, ev := range res.Events {
		if ev.Kind == KindSnack || ev.Saturated {
			t.Errorf("unexpected saturated event %s@%v", ev.Kind, ev.Minute)
		}
	}
}

func TestNeverSaturates(t *testing.T) {
	s := newTestSimulator()
	p := DefaultParams()
	p.InventoryBonus = 1000

	res, err := s.Simulate(testCreature(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CanBeSaturated || res.SaturatedAt != -1 {
		t.Errorf("saturation = %v (can %v), want never", res.SaturatedAt, res.CanBeSaturated)
	}
	if res.Helps.AsleepSnacking != 0 {
		t.Errorf("AsleepSnacking = %v, want 0", res.Helps.AsleepSnacking)
	}
}

func TestNeverActs(t *testing.T) {
	s := newTestSimulator()
	c := testCreature()
	c.Frequency = gamedata.NeverActs

	for _, mutate := range []func(*Params){
		func(p *Params) {},
		func(p *Params) { p.CampTicket = true; p.HelperBonus = 5 },
		func(p *Params) { p.Taps.Awake = TapNone },
		func(p *Params) { p.Hours = 6 },
	} {
		p := DefaultParams()
		mutate(&p)
		res, err := s.Simulate(c, p)
		if err != nil {
			t.Fatal(err)
		}
		if res.Helps != (HelpCounts{}) || res.SaturatedAt != -1 || res.Capacity != 0 {
			t.Errorf("idle creature result = %+v", res)
		}
		if res.SkillProbOne != 0 || res.SkillProbTwoPlus != 0 {
			t.Errorf("idle creature trigger odds = %v/%v", res.SkillProbOne, res.SkillProbTwoPlus)
		}
	}
}

func TestSleepTriggers(t *testing.T) {
	s := newTestSimulator()
	single := testCreature()
	multi := testCreature()
	multi.Specialty = gamedata.SpecialtySkills

	tests := []struct {
		name    string
		c       gamedata.Creature
		p, n    float64
		one     float64
		twoPlus float64
	}{
		{"single", single, 0.1, 8.5, 1 - math.Pow(0.9, 9), 0},
		{"multi", multi, 0.1, 8.5, 9 * 0.1 * math.Pow(0.9, 8), 1 - math.Pow(0.9, 9) - 9*0.1*math.Pow(0.9, 8)},
		{"no helps", multi, 0.1, 0, 0, 0},
		{"no chance", multi, 0, 8.5, 0, 0},
		{"certain single", single, 1, 3, 1, 0},
		{"certain multi", multi, 1, 3, 0, 1},
		{"certain multi one help", multi, 1, 0.4, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			one, two := s.sleepTriggers(tt.c, tt.p, tt.n)
			if math.Abs(one-tt.one) > 1e-9 || math.Abs(two-tt.twoPlus) > 1e-9 {
				t.Errorf("sleepTriggers() = %v/%v, want %v/%v", one, two, tt.one, tt.twoPlus)
			}
			if one+two > 1+1e-12 {
				t.Errorf("probabilities sum to %v", one+two)
			}
		})
	}
}
