// Package energy simulates a helper's energy over one day and derives its
// efficiency timeline, inventory saturation and help counts.
package energy

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/pthm-cable/sleepstrength/bonus"
	"github.com/pthm-cable/sleepstrength/config"
)

// ErrInvalidParams is returned for parameters outside their valid range.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// EventKind identifies what happens at an event.
type EventKind string

const (
	KindWake          EventKind = "wake"
	KindSleep         EventKind = "sleep"
	KindCook          EventKind = "cook"
	KindBonusRecovery EventKind = "bonus_recovery"
	KindDepleted      EventKind = "depleted"
	KindSnack         EventKind = "snack"      // inventory fills during sleep
	KindPeriodEnd     EventKind = "period_end" // end of a sub-day window
)

// Event is a point on the day's timeline, in minutes since waking.
type Event struct {
	Minute    float64   `csv:"minute"`
	Kind      EventKind `csv:"kind"`
	Before    float64   `csv:"energy_before"`
	After     float64   `csv:"energy_after"`
	Saturated bool      `csv:"saturated"`
	InWindow  bool      `csv:"in_window"`
}

// Interval is a half-open span [Start, End) of constant efficiency.
type Interval struct {
	Start     float64 `csv:"start"`
	End       float64 `csv:"end"`
	Tier      float64 `csv:"efficiency"`
	Awake     bool    `csv:"awake"`
	Saturated bool    `csv:"saturated"`
	InWindow  bool    `csv:"in_window"`
}

// Duration returns the interval length in minutes.
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

func (iv Interval) sameState(o Interval) bool {
	return iv.Tier == o.Tier && iv.Awake == o.Awake && iv.Saturated == o.Saturated && iv.InWindow == o.InWindow
}

// Tap says whether the player empties the inventory during a phase.
type Tap string

const (
	TapAlways Tap = "always"
	TapNone   Tap = "none"
)

// TapPolicy holds tap availability per phase. Empty values mean the usual
// play pattern: always tap while awake, never while asleep.
type TapPolicy struct {
	Awake  Tap
	Asleep Tap
}

func (t TapPolicy) valid() bool {
	ok := func(v Tap) bool { return v == "" || v == TapAlways || v == TapNone }
	return ok(t.Awake) && ok(t.Asleep)
}

// Field is the research area the creature helps in.
type Field struct {
	Bonus        float64  // Area bonus in percent
	Favorites    []string // Favorite types; the first is primary on expert fields
	AllFavorites bool
	Expert       bool
}

// FieldFromArea builds a field from an area preset. Non-empty favorites
// replace the preset's list.
func FieldFromArea(a config.AreaConfig, bonusPct float64, favorites []string) Field {
	f := Field{
		Bonus:        bonusPct,
		Favorites:    a.Favorites,
		AllFavorites: a.AllFavorites,
		Expert:       a.Expert,
	}
	if len(favorites) > 0 {
		f.Favorites = favorites
	}
	return f
}

// IsFavorite reports whether typ is a favorite type of the field.
func (f Field) IsFavorite(typ string) bool {
	return f.AllFavorites || slices.Contains(f.Favorites, typ)
}

// IsPrimary reports whether typ is the primary favorite of an expert field.
func (f Field) IsPrimary(typ string) bool {
	return f.Expert && len(f.Favorites) > 0 && f.Favorites[0] == typ
}

// Mode selects how help counts are produced.
type Mode int

const (
	ModeTimeline   Mode = iota // full energy simulation
	ModeAlwaysFull             // energy pinned at the top tier for the window
	ModeWhistle                // always full over the configured whistle window
)

// Horizon sentinels for Params.Hours.
const (
	FullDay        = 24
	HelpCountHours = -1 // aggregate a fixed number of helps instead of a window
)

// Params holds the caller's inputs for one simulation.
type Params struct {
	Mode      Mode
	Hours     float64 // 0 or >= FullDay for a whole day, negative for HelpCount
	HelpCount float64 // target helps when Hours is negative

	SleepScore          int     // 0..100
	NatureFactor        float64 // energy recovery multiplier of the temperament, 0 means 1
	RecoveryBoost       bool    // raises the wake cap
	BonusRecoveryCount  int
	BonusRecoveryAmount float64
	HelperBonus         int // helping bonuses on the team
	RecoveryBonus       int // energy recovery bonuses on the creature
	CampTicket          bool
	InventoryBonus      int // extra carry limit
	Level               int // creature level, 0 means 1

	Taps  TapPolicy
	Bonus *bonus.Bonus // nil means no event
	Field Field
}

// DefaultParams returns a full day with a perfect sleep and no bonuses.
func DefaultParams() Params {
	return Params{
		Hours:        FullDay,
		SleepScore:   100,
		NatureFactor: 1,
		Level:        1,
		Taps:         TapPolicy{Awake: TapAlways, Asleep: TapNone},
	}
}

func (p Params) event() bonus.Bonus {
	if p.Bonus == nil {
		return bonus.Neutral()
	}
	return *p.Bonus
}

func (p Params) withDefaults() Params {
	if p.Hours == 0 {
		p.Hours = FullDay
	}
	if p.NatureFactor == 0 {
		p.NatureFactor = 1
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Taps.Awake == "" {
		p.Taps.Awake = TapAlways
	}
	if p.Taps.Asleep == "" {
		p.Taps.Asleep = TapNone
	}
	return p
}

// HelpCounts are efficiency-weighted help counts by phase.
type HelpCounts struct {
	Total          float64 `csv:"helps_total"`
	Awake          float64 `csv:"helps_awake"`
	AsleepNormal   float64 `csv:"helps_asleep_normal"`
	AsleepSnacking float64 `csv:"helps_asleep_snacking"`
}

// Result is the outcome of one simulation. It is never mutated after return.
type Result struct {
	Events    []Event
	Intervals []Interval

	SleepStart      float64 // minute the sleep phase begins
	WindowEnd       float64 // minute the aggregation window closes
	CanBeSaturated  bool
	AlwaysSaturated bool    // inventory is never emptied while awake
	SaturatedAt     float64 // -1 when the inventory never fills

	SkillChance      float64 // per-help trigger chance
	SkillProbOne     float64 // P(exactly one) for multi-trigger specialties, else P(at least one)
	SkillProbTwoPlus float64

	Capacity     int
	HelpSeconds  float64 // seconds per help at efficiency 1
	ItemsPerHelp float64

	Helps HelpCounts
}

// SleepTriggers returns the expected number of skill triggers banked during sleep.
func (r Result) SleepTriggers() float64 {
	return r.SkillProbOne + 2*r.SkillProbTwoPlus
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("events", len(r.Events)),
		slog.Int("intervals", len(r.Intervals)),
		slog.Float64("sleep_start", r.SleepStart),
		slog.Float64("window_end", r.WindowEnd),
		slog.Bool("can_be_saturated", r.CanBeSaturated),
		slog.Bool("always_saturated", r.AlwaysSaturated),
		slog.Float64("saturated_at", r.SaturatedAt),
		slog.Float64("skill_chance", r.SkillChance),
		slog.Float64("skill_prob_one", r.SkillProbOne),
		slog.Float64("skill_prob_two_plus", r.SkillProbTwoPlus),
		slog.Int("capacity", r.Capacity),
		slog.Float64("help_seconds", r.HelpSeconds),
		slog.Float64("items_per_help", r.ItemsPerHelp),
		slog.Float64("helps_total", r.Helps.Total),
		slog.Float64("helps_awake", r.Helps.Awake),
		slog.Float64("helps_asleep_normal", r.Helps.AsleepNormal),
		slog.Float64("helps_asleep_snacking", r.Helps.AsleepSnacking),
	)
}
