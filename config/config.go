// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all balance tables and tunables of the simulator.
type Config struct {
	Energy     EnergyConfig     `yaml:"energy"`
	Efficiency EfficiencyConfig `yaml:"efficiency"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Speed      SpeedConfig      `yaml:"speed"`
	Inventory  InventoryConfig  `yaml:"inventory"`
	Whistle    WhistleConfig    `yaml:"whistle"`
	Skills     SkillsConfig     `yaml:"skills"`
	Areas      []AreaConfig     `yaml:"areas"`
	Events     []EventConfig    `yaml:"events"`
	Output     OutputConfig     `yaml:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// EnergyConfig holds the energy economy parameters.
type EnergyConfig struct {
	Max               float64      `yaml:"max"`                 // Hard ceiling for any energy level
	MinutesPerUnit    float64      `yaml:"minutes_per_unit"`    // Minutes to lose one unit of energy
	WakeCap           float64      `yaml:"wake_cap"`            // Ceiling after sleep recovery
	WakeCapBoosted    float64      `yaml:"wake_cap_boosted"`    // Ceiling when a recovery boost is active
	FullSleepMinutes  float64      `yaml:"full_sleep_minutes"`  // Sleep length worth a score of 100
	RecoveryBonusRate float64      `yaml:"recovery_bonus_rate"` // Extra sleep recovery per recovery bonus
	Seed              float64      `yaml:"seed"`                // Opening level of the first propagation pass
	MealRecovery      []StepConfig `yaml:"meal_recovery"`       // Ordered by Above, descending
	MealRecoveryFloor float64      `yaml:"meal_recovery_floor"` // Gain at or below the last threshold
}

// StepConfig is one row of a descending step table: Value applies when the
// input is strictly greater than Above.
type StepConfig struct {
	Above float64 `yaml:"above"`
	Value float64 `yaml:"value"`
}

// EfficiencyConfig holds the energy to efficiency tier table.
type EfficiencyConfig struct {
	Tiers []StepConfig `yaml:"tiers"` // Ordered by Above, descending
	Floor float64      `yaml:"floor"` // Tier at or below the last threshold
}

// ScheduleConfig holds the fixed clock offsets of a day.
type ScheduleConfig struct {
	DayMinutes             float64   `yaml:"day_minutes"`
	MealMinutes            []float64 `yaml:"meal_minutes"`
	BonusRecoveryWindowEnd float64   `yaml:"bonus_recovery_window_end"`
}

// SpeedConfig holds help speed modifiers.
type SpeedConfig struct {
	HelperBonusRate    float64 `yaml:"helper_bonus_rate"`     // Reduction per helping bonus
	LevelReduction     float64 `yaml:"level_reduction"`       // Reduction per level above 1
	MaxReduction       float64 `yaml:"max_reduction"`         // Cap on the summed bonus reduction
	CampTicketFactor   float64 `yaml:"camp_ticket_factor"`    // Help cost is divided by this
	ExpertMainBonus    float64 `yaml:"expert_main_bonus"`     // Reduction for the primary favorite type
	ExpertOffTypeMalus float64 `yaml:"expert_off_type_malus"` // Increase for types outside all favorites
}

// InventoryConfig holds inventory capacity modifiers.
type InventoryConfig struct {
	CampTicketFactor float64 `yaml:"camp_ticket_factor"`
}

// WhistleConfig holds the whistle shortcut window.
type WhistleConfig struct {
	Hours float64 `yaml:"hours"`
}

// SkillsConfig holds skill trigger parameters.
type SkillsConfig struct {
	MultiTriggerSpecialties []string `yaml:"multi_trigger_specialties"`
}

// AreaConfig is a research area preset.
type AreaConfig struct {
	Name         string   `yaml:"name"`
	Favorites    []string `yaml:"favorites"`     // First entry is the primary favorite on expert fields
	AllFavorites bool     `yaml:"all_favorites"` // Every type counts as favorite
	Expert       bool     `yaml:"expert"`
}

// EventConfig is a named event with optional bonus overrides.
// Unset fields keep their neutral value.
type EventConfig struct {
	Name             string   `yaml:"name"`
	Start            string   `yaml:"start,omitempty"` // YYYY-MM-DD, inclusive
	End              string   `yaml:"end,omitempty"`   // YYYY-MM-DD, inclusive
	SkillTrigger     *float64 `yaml:"skill_trigger,omitempty"`
	SkillLevel       *int     `yaml:"skill_level,omitempty"`
	IngredientQty    *int     `yaml:"ingredient_qty,omitempty"`
	DreamShard       *float64 `yaml:"dream_shard,omitempty"`
	IngredientMagnet *float64 `yaml:"ingredient_magnet,omitempty"`
	DishEnergy       *float64 `yaml:"dish_energy,omitempty"`
	DishStrength     *float64 `yaml:"dish_strength,omitempty"`
}

// OutputConfig holds report file names.
type OutputConfig struct {
	EventsFile    string `yaml:"events_file"`
	IntervalsFile string `yaml:"intervals_file"`
	SummaryFile   string `yaml:"summary_file"`
	ConfigFile    string `yaml:"config_file"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxTier      float64                 // Highest efficiency tier
	Thresholds   []float64               // Tier thresholds, descending
	AreaIndex    map[string]int          // name -> index into Areas
	EventIndex   map[string]int          // name -> index into Events
	EventWindows map[string][2]time.Time // name -> [start, end) of dated events
	MultiTrigger map[string]bool         // specialties that can bank several sleep triggers
}

// global holds the configuration loaded by Init.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the configuration loaded by Init. Panics if Init was not called.
// The simulation packages never call this; they receive a *Config explicitly.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Validate checks the tables the simulation depends on.
func (c *Config) Validate() error {
	if c.Energy.Max <= 0 || c.Energy.MinutesPerUnit <= 0 {
		return fmt.Errorf("%w: energy.max and energy.minutes_per_unit must be positive", ErrInvalidConfig)
	}
	if c.Energy.WakeCap <= 0 || c.Energy.WakeCap > c.Energy.Max || c.Energy.WakeCapBoosted > c.Energy.Max {
		return fmt.Errorf("%w: wake caps must lie in (0, energy.max]", ErrInvalidConfig)
	}
	if c.Energy.FullSleepMinutes <= 0 {
		return fmt.Errorf("%w: energy.full_sleep_minutes must be positive", ErrInvalidConfig)
	}
	if err := checkDescending("energy.meal_recovery", c.Energy.MealRecovery); err != nil {
		return err
	}
	if len(c.Efficiency.Tiers) == 0 {
		return fmt.Errorf("%w: efficiency.tiers is empty", ErrInvalidConfig)
	}
	if err := checkDescending("efficiency.tiers", c.Efficiency.Tiers); err != nil {
		return err
	}
	if c.Schedule.DayMinutes <= 0 {
		return fmt.Errorf("%w: schedule.day_minutes must be positive", ErrInvalidConfig)
	}
	for _, m := range c.Schedule.MealMinutes {
		if m < 0 || m > c.Schedule.DayMinutes {
			return fmt.Errorf("%w: meal minute %v outside the day", ErrInvalidConfig, m)
		}
	}
	if c.Speed.CampTicketFactor <= 0 || c.Inventory.CampTicketFactor <= 0 {
		return fmt.Errorf("%w: camp ticket factors must be positive", ErrInvalidConfig)
	}
	if c.Speed.MaxReduction >= 1 {
		return fmt.Errorf("%w: speed.max_reduction must be below 1", ErrInvalidConfig)
	}
	return nil
}

func checkDescending(name string, steps []StepConfig) error {
	for i := 1; i < len(steps); i++ {
		if steps[i].Above >= steps[i-1].Above {
			return fmt.Errorf("%w: %s must be ordered by descending threshold", ErrInvalidConfig, name)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.MaxTier = c.Efficiency.Floor
	c.Derived.Thresholds = make([]float64, len(c.Efficiency.Tiers))
	for i, t := range c.Efficiency.Tiers {
		c.Derived.Thresholds[i] = t.Above
		if t.Value > c.Derived.MaxTier {
			c.Derived.MaxTier = t.Value
		}
	}

	c.Derived.AreaIndex = make(map[string]int, len(c.Areas))
	for i, a := range c.Areas {
		c.Derived.AreaIndex[a.Name] = i
	}

	c.Derived.EventIndex = make(map[string]int, len(c.Events))
	c.Derived.EventWindows = make(map[string][2]time.Time)
	for i, e := range c.Events {
		c.Derived.EventIndex[e.Name] = i
		if e.Start == "" || e.End == "" {
			continue
		}
		start, err := time.Parse(time.DateOnly, e.Start)
		if err != nil {
			return fmt.Errorf("%w: event %q start: %v", ErrInvalidConfig, e.Name, err)
		}
		end, err := time.Parse(time.DateOnly, e.End)
		if err != nil {
			return fmt.Errorf("%w: event %q end: %v", ErrInvalidConfig, e.Name, err)
		}
		// End is inclusive
		c.Derived.EventWindows[e.Name] = [2]time.Time{start, end.AddDate(0, 0, 1)}
	}

	c.Derived.MultiTrigger = make(map[string]bool, len(c.Skills.MultiTriggerSpecialties))
	for _, s := range c.Skills.MultiTriggerSpecialties {
		c.Derived.MultiTrigger[s] = true
	}
	return nil
}

// Area returns the area preset with the given name.
func (c *Config) Area(name string) (AreaConfig, bool) {
	i, ok := c.Derived.AreaIndex[name]
	if !ok {
		return AreaConfig{}, false
	}
	return c.Areas[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
